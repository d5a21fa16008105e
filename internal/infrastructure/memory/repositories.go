package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.StockRepository = (*stockRepo)(nil)
var _ repository.LedgerRepository = (*ledgerRepo)(nil)
var _ repository.SerialRepository = (*serialRepo)(nil)
var _ repository.TransferRepository = (*transferRepo)(nil)
var _ repository.AdjustmentRepository = (*adjustmentRepo)(nil)
var _ repository.ProductRepository = (*productRepo)(nil)
var _ repository.WarehouseRepository = (*warehouseRepo)(nil)

// Un adaptador pequeño por puerto sobre el mismo Store: las interfaces de
// repositorio comparten nombres de método (Create, GetByID) con firmas
// distintas, así que el Store no puede implementarlas todas directamente.

// Stocks devuelve el adaptador de StockRepository.
func (s *Store) Stocks() repository.StockRepository { return &stockRepo{s} }

// Ledger devuelve el adaptador de LedgerRepository.
func (s *Store) Ledger() repository.LedgerRepository { return &ledgerRepo{s} }

// Serials devuelve el adaptador de SerialRepository.
func (s *Store) Serials() repository.SerialRepository { return &serialRepo{s} }

// Transfers devuelve el adaptador de TransferRepository.
func (s *Store) Transfers() repository.TransferRepository { return &transferRepo{s} }

// Adjustments devuelve el adaptador de AdjustmentRepository.
func (s *Store) Adjustments() repository.AdjustmentRepository { return &adjustmentRepo{s} }

// Products devuelve el adaptador de ProductRepository.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s} }

// Warehouses devuelve el adaptador de WarehouseRepository.
func (s *Store) Warehouses() repository.WarehouseRepository { return &warehouseRepo{s} }

// --- StockRepository ---

type stockRepo struct{ s *Store }

func (r *stockRepo) Get(productID, warehouseID string) (*entity.Stock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	stock, ok := r.s.stocks[stockKey(productID, warehouseID)]
	if !ok {
		return nil, nil
	}
	return cloneStock(stock), nil
}

// GetOrCreateForUpdate crea la fila perezosamente con contadores en cero.
// El lock de fila real lo aproxima txMu del Store: las transacciones corren
// serializadas completas.
func (r *stockRepo) GetOrCreateForUpdate(product *entity.Product, warehouseID string) (*entity.Stock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := stockKey(product.ID, warehouseID)
	stock, ok := r.s.stocks[key]
	if !ok {
		now := time.Now()
		stock = &entity.Stock{
			ID:               uuid.New().String(),
			ProductID:        product.ID,
			WarehouseID:      warehouseID,
			TrackingMode:     product.TrackingMode,
			MinStockQuantity: product.MinStockQuantity,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		stock.RecalculateAvailable()
		r.s.stocks[key] = stock
	}
	return cloneStock(stock), nil
}

func (r *stockRepo) Update(stock *entity.Stock) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stocks[stockKey(stock.ProductID, stock.WarehouseID)] = cloneStock(stock)
	return nil
}

func (r *stockRepo) List(limit, offset int) ([]*entity.Stock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Stock
	for _, stock := range r.s.stocks {
		list = append(list, cloneStock(stock))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].ProductID != list[j].ProductID {
			return list[i].ProductID < list[j].ProductID
		}
		return list[i].WarehouseID < list[j].WarehouseID
	})
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *stockRepo) ListBelowMinimum() ([]*entity.Stock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Stock
	for _, stock := range r.s.stocks {
		if stock.BelowMinimum() {
			list = append(list, cloneStock(stock))
		}
	}
	return list, nil
}

// --- LedgerRepository ---

type ledgerRepo struct{ s *Store }

func (r *ledgerRepo) Append(entry *entity.LedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	r.s.nextSeq++
	entry.Seq = r.s.nextSeq
	r.s.ledger = append(r.s.ledger, cloneEntry(entry))
	return nil
}

func (r *ledgerRepo) ListByStock(productID, warehouseID string, asOf *time.Time) ([]*entity.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.LedgerEntry
	for _, e := range r.s.ledger {
		if e.ProductID != productID || e.WarehouseID != warehouseID {
			continue
		}
		if asOf != nil && e.PerformedAt.After(*asOf) {
			continue
		}
		list = append(list, cloneEntry(e))
	}
	sortEntries(list)
	return list, nil
}

func (r *ledgerRepo) LastPerformedAt(productID, warehouseID string) (*time.Time, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var last *time.Time
	for _, e := range r.s.ledger {
		if e.ProductID != productID || e.WarehouseID != warehouseID {
			continue
		}
		if last == nil || e.PerformedAt.After(*last) {
			t := e.PerformedAt
			last = &t
		}
	}
	return last, nil
}

func (r *ledgerRepo) ListByTransaction(transactionType, transactionID string) ([]*entity.LedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.LedgerEntry
	for _, e := range r.s.ledger {
		if e.TransactionType == transactionType && e.TransactionID == transactionID {
			list = append(list, cloneEntry(e))
		}
	}
	sortEntries(list)
	return list, nil
}

func sortEntries(list []*entity.LedgerEntry) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].PerformedAt.Equal(list[j].PerformedAt) {
			return list[i].PerformedAt.Before(list[j].PerformedAt)
		}
		return list[i].Seq < list[j].Seq
	})
}

// --- SerialRepository ---

type serialRepo struct{ s *Store }

func (r *serialRepo) Create(serial *entity.StockSerial) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := serialKey(serial.SerialNumber, serial.ProductID)
	if _, exists := r.s.serials[key]; exists {
		return domain.ErrSerialAlreadyExists
	}
	if serial.ID == "" {
		serial.ID = uuid.New().String()
	}
	r.s.serials[key] = cloneSerial(serial)
	return nil
}

func (r *serialRepo) GetBySerialNumber(serialNumber, productID string) (*entity.StockSerial, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	serial, ok := r.s.serials[serialKey(serialNumber, productID)]
	if !ok {
		return nil, nil
	}
	return cloneSerial(serial), nil
}

// Claim transiciona AVAILABLE->ISSUED (o RESERVED->ISSUED por el mismo
// documento) de forma atómica bajo el lock del Store: de dos reclamos
// concurrentes gana exactamente uno.
func (r *serialRepo) Claim(serialNumber, productID, warehouseID, issuedAgainst, referenceNumber string, outwardDate time.Time) (*entity.StockSerial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	serial, ok := r.s.serials[serialKey(serialNumber, productID)]
	if !ok || serial.WarehouseID != warehouseID || !serial.CanClaim(issuedAgainst) {
		return nil, domain.ErrSerialNotAvailable
	}
	serial.Status = entity.SerialStatusIssued
	serial.IssuedAgainst = issuedAgainst
	serial.ReferenceNumber = referenceNumber
	d := outwardDate
	serial.OutwardDate = &d
	serial.UpdatedAt = time.Now()
	return cloneSerial(serial), nil
}

func (r *serialRepo) Reserve(serialNumber, productID, warehouseID, issuedAgainst string) (*entity.StockSerial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	serial, ok := r.s.serials[serialKey(serialNumber, productID)]
	if !ok || serial.WarehouseID != warehouseID || serial.Status != entity.SerialStatusAvailable {
		return nil, domain.ErrSerialNotAvailable
	}
	serial.Status = entity.SerialStatusReserved
	serial.IssuedAgainst = issuedAgainst
	serial.UpdatedAt = time.Now()
	return cloneSerial(serial), nil
}

func (r *serialRepo) ReleaseReservation(serialNumber, productID, warehouseID string) (*entity.StockSerial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	serial, ok := r.s.serials[serialKey(serialNumber, productID)]
	if !ok || serial.WarehouseID != warehouseID || serial.Status != entity.SerialStatusReserved {
		return nil, domain.ErrSerialNotAvailable
	}
	serial.Status = entity.SerialStatusAvailable
	serial.IssuedAgainst = ""
	serial.UpdatedAt = time.Now()
	return cloneSerial(serial), nil
}

func (r *serialRepo) Relocate(serialNumber, productID, warehouseID, stockID, sourceType, sourceID string) (*entity.StockSerial, error) {
	return r.reactivateAt(serialNumber, productID, warehouseID, stockID, sourceType, sourceID)
}

func (r *serialRepo) Reactivate(serialNumber, productID, warehouseID, stockID, sourceType, sourceID string) (*entity.StockSerial, error) {
	return r.reactivateAt(serialNumber, productID, warehouseID, stockID, sourceType, sourceID)
}

func (r *serialRepo) reactivateAt(serialNumber, productID, warehouseID, stockID, sourceType, sourceID string) (*entity.StockSerial, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	serial, ok := r.s.serials[serialKey(serialNumber, productID)]
	if !ok || serial.Status != entity.SerialStatusIssued {
		return nil, domain.ErrSerialNotAvailable
	}
	serial.WarehouseID = warehouseID
	serial.StockID = stockID
	serial.Status = entity.SerialStatusAvailable
	serial.SourceType = sourceType
	serial.SourceID = sourceID
	serial.IssuedAgainst = ""
	serial.OutwardDate = nil
	serial.UpdatedAt = time.Now()
	return cloneSerial(serial), nil
}

func (r *serialRepo) ListAvailable(productID, warehouseID string) ([]*entity.StockSerial, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockSerial
	for _, serial := range r.s.serials {
		if serial.ProductID == productID && serial.WarehouseID == warehouseID &&
			serial.Status == entity.SerialStatusAvailable {
			list = append(list, cloneSerial(serial))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SerialNumber < list[j].SerialNumber })
	return list, nil
}

// --- TransferRepository ---

type transferRepo struct{ s *Store }

func (r *transferRepo) Create(t *entity.Transfer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.transfers[t.ID]; exists {
		return domain.ErrDuplicate
	}
	r.s.transfers[t.ID] = cloneTransfer(t)
	return nil
}

func (r *transferRepo) GetByID(id string) (*entity.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.transfers[id]
	if !ok {
		return nil, nil
	}
	return cloneTransfer(t), nil
}

// transition aplica un cambio de estado guardado por el estado previo.
func (r *transferRepo) transition(id, from string, apply func(*entity.Transfer)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transfers[id]
	if !ok {
		return domain.ErrNotFound
	}
	if t.Status != from {
		return domain.ErrWorkflowState
	}
	apply(t)
	return nil
}

func (r *transferRepo) MarkRequested(id string, at time.Time) error {
	return r.transition(id, entity.TransferStatusDraft, func(t *entity.Transfer) {
		t.Status = entity.TransferStatusRequested
		t.RequestedAt = cloneTime(&at)
		t.UpdatedAt = at
	})
}

func (r *transferRepo) MarkApproved(id, approvedBy string, at time.Time) error {
	return r.transition(id, entity.TransferStatusRequested, func(t *entity.Transfer) {
		t.Status = entity.TransferStatusApproved
		t.ApprovedBy = approvedBy
		t.ApprovedAt = cloneTime(&at)
		t.UpdatedAt = at
	})
}

func (r *transferRepo) MarkRejected(id, approvedBy, reason string, at time.Time) error {
	return r.transition(id, entity.TransferStatusRequested, func(t *entity.Transfer) {
		t.Status = entity.TransferStatusRejected
		t.ApprovedBy = approvedBy
		t.Remarks = reason
		t.ApprovedAt = cloneTime(&at)
		t.UpdatedAt = at
	})
}

func (r *transferRepo) MarkReceived(id string, at time.Time) error {
	return r.transition(id, entity.TransferStatusApproved, func(t *entity.Transfer) {
		t.Status = entity.TransferStatusReceived
		t.ReceivedAt = cloneTime(&at)
		t.UpdatedAt = at
	})
}

func (r *transferRepo) ListByStatus(status string, limit, offset int) ([]*entity.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Transfer
	for _, t := range r.s.transfers {
		if t.Status == status {
			list = append(list, cloneTransfer(t))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// --- AdjustmentRepository ---

type adjustmentRepo struct{ s *Store }

func (r *adjustmentRepo) Create(a *entity.Adjustment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.adjustments[a.ID]; exists {
		return domain.ErrDuplicate
	}
	r.s.adjustments[a.ID] = cloneAdjustment(a)
	return nil
}

func (r *adjustmentRepo) GetByID(id string) (*entity.Adjustment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.adjustments[id]
	if !ok {
		return nil, nil
	}
	return cloneAdjustment(a), nil
}

func (r *adjustmentRepo) transition(id, from string, apply func(*entity.Adjustment)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.adjustments[id]
	if !ok {
		return domain.ErrNotFound
	}
	if a.Status != from {
		return domain.ErrWorkflowState
	}
	apply(a)
	return nil
}

func (r *adjustmentRepo) MarkRequested(id string, at time.Time) error {
	return r.transition(id, entity.AdjustmentStatusDraft, func(a *entity.Adjustment) {
		a.Status = entity.AdjustmentStatusRequested
		a.RequestedAt = cloneTime(&at)
		a.UpdatedAt = at
	})
}

func (r *adjustmentRepo) MarkApproved(id, approvedBy string, at time.Time) error {
	return r.transition(id, entity.AdjustmentStatusRequested, func(a *entity.Adjustment) {
		a.Status = entity.AdjustmentStatusApproved
		a.ApprovedBy = approvedBy
		a.ApprovedAt = cloneTime(&at)
		a.UpdatedAt = at
	})
}

func (r *adjustmentRepo) MarkRejected(id, approvedBy, reason string, at time.Time) error {
	return r.transition(id, entity.AdjustmentStatusRequested, func(a *entity.Adjustment) {
		a.Status = entity.AdjustmentStatusRejected
		a.ApprovedBy = approvedBy
		a.Reason = reason
		a.ApprovedAt = cloneTime(&at)
		a.UpdatedAt = at
	})
}

func (r *adjustmentRepo) MarkPosted(id string, at time.Time) error {
	return r.transition(id, entity.AdjustmentStatusApproved, func(a *entity.Adjustment) {
		a.Status = entity.AdjustmentStatusPosted
		a.PostedAt = cloneTime(&at)
		a.UpdatedAt = at
	})
}

func (r *adjustmentRepo) ListByStatus(status string, limit, offset int) ([]*entity.Adjustment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Adjustment
	for _, a := range r.s.adjustments {
		if a.Status == status {
			list = append(list, cloneAdjustment(a))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// --- ProductRepository / WarehouseRepository ---

type productRepo struct{ s *Store }

func (r *productRepo) GetByID(id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

type warehouseRepo struct{ s *Store }

func (r *warehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	return cloneWarehouse(w), nil
}

// CorruptStock fuerza un on-hand arbitrario sin pasar por el ledger.
// Solo para tests de detección de deriva.
func (s *Store) CorruptStock(productID, warehouseID string, onHand decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stock, ok := s.stocks[stockKey(productID, warehouseID)]; ok {
		stock.QuantityOnHand = onHand
		stock.RecalculateAvailable()
	}
}
