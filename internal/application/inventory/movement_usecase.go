package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/inventory"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// MovementUseCase es el orquestador de movimientos: el único punto por el que
// Stock, Ledger y el registro de seriales se mutan juntos, atómicamente.
// Bloquea la fila de stock (SELECT FOR UPDATE), valida, escribe asientos,
// actualiza el agregado y transiciona seriales dentro de una sola transacción.
type MovementUseCase struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	policy        *inventory.Policy
}

// NewMovementUseCase construye el orquestador.
func NewMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	policy *inventory.Policy,
) *MovementUseCase {
	if policy == nil {
		policy = inventory.DefaultPolicy()
	}
	return &MovementUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		policy:        policy,
	}
}

// MovementInput es la entrada de PostMovement. PerformedBy es explícito:
// no hay usuario ambiente ni estado global.
// Para productos SERIAL la cantidad debe ser entera e igual al número de
// seriales; para LOT la lista de seriales debe venir vacía.
type MovementInput struct {
	ProductID       string
	WarehouseID     string
	TransactionType string
	TransactionID   string // documento causante; vacío = se genera uno
	MovementType    string // IN | OUT
	Quantity        decimal.Decimal
	SerialNumbers   []string
	Rate            decimal.Decimal // vacío = costo del producto
	IssuedAgainst   string
	ReferenceNumber string
	PerformedBy     string
	PerformedAt     time.Time // cero = ahora
}

// MovementResult devuelve el stock resultante y los asientos escritos.
type MovementResult struct {
	Stock   *entity.Stock
	Entries []*entity.LedgerEntry
}

// PostMovement ejecuta un movimiento como unidad atómica: bloquea la fila de
// stock, valida invariantes, escribe un asiento por unidad de trabajo (uno por
// serial en productos SERIAL, uno solo en LOT), aplica el delta agregado una
// vez y transiciona los seriales nombrados. Cualquier fallo revierte todo.
func (uc *MovementUseCase) PostMovement(ctx context.Context, input MovementInput) (*MovementResult, error) {
	product, err := uc.resolveProduct(input)
	if err != nil {
		return nil, err
	}
	wh, err := uc.warehouseRepo.GetByID(input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}

	var result *MovementResult
	err = uc.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		stockRepo repository.StockRepository,
		serialRepo repository.SerialRepository,
	) error {
		result, err = uc.postInTx(ledgerRepo, stockRepo, serialRepo, product, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PostMovementInTx ejecuta el movimiento con los repositorios del caller
// (misma transacción). Lo usan las transiciones terminales de los workflows,
// que deben abarcar varios movimientos en una sola tx.
func (uc *MovementUseCase) PostMovementInTx(
	ledgerRepo repository.LedgerRepository,
	stockRepo repository.StockRepository,
	serialRepo repository.SerialRepository,
	product *entity.Product,
	input MovementInput,
) (*MovementResult, error) {
	if err := validateInput(product, input); err != nil {
		return nil, err
	}
	return uc.postInTx(ledgerRepo, stockRepo, serialRepo, product, input)
}

// resolveProduct valida la entrada y carga el producto.
func (uc *MovementUseCase) resolveProduct(input MovementInput) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := validateInput(product, input); err != nil {
		return nil, err
	}
	return product, nil
}

// validateInput revisa forma y consistencia serial/lote antes
// de tocar la base. Una entrada malformada no es reintentable sin corrección.
func validateInput(product *entity.Product, input MovementInput) error {
	if input.ProductID == "" || input.WarehouseID == "" || input.PerformedBy == "" {
		return domain.ErrInvalidInput
	}
	if input.MovementType != entity.MovementTypeIN && input.MovementType != entity.MovementTypeOUT {
		return domain.ErrInvalidInput
	}
	if !entity.IsValidTransactionType(input.TransactionType) {
		return domain.ErrInvalidInput
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if product.TrackingMode == entity.TrackingModeSerial {
		n := int64(len(input.SerialNumbers))
		if n == 0 || !input.Quantity.Equal(decimal.NewFromInt(n)) {
			return domain.ErrInvalidInput
		}
		seen := make(map[string]struct{}, n)
		for _, sn := range input.SerialNumbers {
			if sn == "" {
				return domain.ErrInvalidInput
			}
			if _, dup := seen[sn]; dup {
				return domain.ErrInvalidInput
			}
			seen[sn] = struct{}{}
		}
	} else if len(input.SerialNumbers) > 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// postInTx es el algoritmo central. Precondición: los repos pertenecen a una
// transacción abierta y la entrada ya pasó validateInput.
func (uc *MovementUseCase) postInTx(
	ledgerRepo repository.LedgerRepository,
	stockRepo repository.StockRepository,
	serialRepo repository.SerialRepository,
	product *entity.Product,
	input MovementInput,
) (*MovementResult, error) {
	// 1. Bloquea (y crea si hace falta) la fila de stock. A partir de aquí
	// las escrituras concurrentes sobre el mismo contador quedan serializadas.
	stock, err := stockRepo.GetOrCreateForUpdate(product, input.WarehouseID)
	if err != nil {
		return nil, err
	}

	// La fila de stock copió el modo de rastreo del maestro al crearse; si el
	// maestro cambió después, el movimiento no puede decidir cuál de los dos
	// manda.
	if stock.TrackingMode != product.TrackingMode {
		return nil, domain.ErrConflict
	}

	// 2. Una salida no puede dejar stock negativo salvo tipos
	// autorizados por la política.
	if input.MovementType == entity.MovementTypeOUT &&
		!uc.policy.AllowsNegativeStock(input.TransactionType) &&
		input.Quantity.GreaterThan(stock.QuantityAvailable) {
		return nil, domain.ErrInsufficientStock
	}

	now := input.PerformedAt
	if now.IsZero() {
		now = time.Now()
	}
	txnID := input.TransactionID
	if txnID == "" {
		txnID = uuid.New().String()
	}
	rate := input.Rate
	if rate.IsZero() {
		rate = product.Cost
	}

	// Un movimiento no puede fecharse antes del último asiento del stock:
	// el journal dejaría de reconstruir el on-hand plegando en orden
	// (performed_at, seq) y el closing del último asiento ya no cuadraría.
	last, err := ledgerRepo.LastPerformedAt(input.ProductID, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if last != nil && now.Before(*last) {
		return nil, domain.ErrInvalidInput
	}

	// 3. Un asiento por unidad de trabajo, encadenando opening -> closing
	// desde el on-hand actual de la fila bloqueada.
	running := stock.QuantityOnHand
	var entries []*entity.LedgerEntry
	appendEntry := func(qty decimal.Decimal, serialID string) error {
		opening := running
		if input.MovementType == entity.MovementTypeOUT {
			running = running.Sub(qty)
		} else {
			running = running.Add(qty)
		}
		e := &entity.LedgerEntry{
			ID:              uuid.New().String(),
			ProductID:       input.ProductID,
			WarehouseID:     input.WarehouseID,
			TransactionType: input.TransactionType,
			TransactionID:   txnID,
			MovementType:    input.MovementType,
			OpeningQuantity: opening,
			Quantity:        qty,
			ClosingQuantity: running,
			Rate:            rate,
			Amount:          qty.Mul(rate),
			SerialID:        serialID,
			PerformedBy:     input.PerformedBy,
			PerformedAt:     now,
		}
		if err := ledgerRepo.Append(e); err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	}

	if stock.IsSerialTracked() {
		one := decimal.NewFromInt(1)
		for _, sn := range input.SerialNumbers {
			serial, err := uc.transitionSerial(serialRepo, stock, sn, input, txnID, now)
			if err != nil {
				return nil, err
			}
			if err := appendEntry(one, serial.ID); err != nil {
				return nil, err
			}
		}
	} else {
		if err := appendEntry(input.Quantity, ""); err != nil {
			return nil, err
		}
	}

	// 4. Aplica el delta agregado a la fila una sola vez y re-deriva el
	// disponible. El closing del último asiento debe coincidir con el
	// on-hand final.
	stock.QuantityOnHand = running
	stock.RecalculateAvailable()
	stock.UpdatedAt = now
	if err := stockRepo.Update(stock); err != nil {
		return nil, err
	}
	return &MovementResult{Stock: stock, Entries: entries}, nil
}

// transitionSerial aplica la transición del ciclo de vida de un serial según
// el sentido y el tipo de transacción. Cualquier fallo aborta el movimiento
// completo.
func (uc *MovementUseCase) transitionSerial(
	serialRepo repository.SerialRepository,
	stock *entity.Stock,
	serialNumber string,
	input MovementInput,
	txnID string,
	now time.Time,
) (*entity.StockSerial, error) {
	if input.MovementType == entity.MovementTypeOUT {
		// Salida: reclamo condicional AVAILABLE->ISSUED. Si dos llamadas
		// compiten por el mismo serial, exactamente una gana.
		return serialRepo.Claim(serialNumber, input.ProductID, input.WarehouseID,
			input.IssuedAgainst, input.ReferenceNumber, now)
	}

	existing, err := serialRepo.GetBySerialNumber(serialNumber, input.ProductID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		serial := &entity.StockSerial{
			ID:              uuid.New().String(),
			SerialNumber:    serialNumber,
			ProductID:       input.ProductID,
			WarehouseID:     input.WarehouseID,
			StockID:         stock.ID,
			Status:          entity.SerialStatusAvailable,
			SourceType:      input.TransactionType,
			SourceID:        txnID,
			ReferenceNumber: input.ReferenceNumber,
			InwardDate:      now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := serialRepo.Create(serial); err != nil {
			return nil, err
		}
		return serial, nil
	}

	switch {
	case input.TransactionType == entity.TxnTypeTransferIn:
		// Lado receptor del traslado: el serial viene ISSUED por el lado
		// emisor dentro de la misma tx; se reubica y queda AVAILABLE.
		return serialRepo.Relocate(serialNumber, input.ProductID, input.WarehouseID,
			stock.ID, input.TransactionType, txnID)
	case uc.policy.IsReversal(input.TransactionType):
		// Devolución: reactiva un serial emitido de vuelta a AVAILABLE.
		return serialRepo.Reactivate(serialNumber, input.ProductID, input.WarehouseID,
			stock.ID, input.TransactionType, txnID)
	default:
		// Un serial jamás se crea dos veces para el mismo producto.
		return nil, domain.ErrSerialAlreadyExists
	}
}
