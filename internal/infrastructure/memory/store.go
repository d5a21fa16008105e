// Package memory implementa los puertos del motor sobre mapas en memoria.
// Es el doble de pruebas del adaptador PostgreSQL: mismas interfaces, misma
// semántica de errores, transacciones con snapshot/rollback y un mutex que las
// serializa (el equivalente del SELECT FOR UPDATE para los tests de carrera).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-core/internal/application/adjustment"
	"github.com/jhoicas/inventario-core/internal/application/inventory"
	"github.com/jhoicas/inventario-core/internal/application/transfer"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)
var _ transfer.TxRunner = (*Store)(nil)
var _ adjustment.TxRunner = (*Store)(nil)

// Store guarda todo el estado del motor en memoria.
type Store struct {
	mu   sync.RWMutex // protege los mapas
	txMu sync.Mutex   // serializa transacciones completas

	products    map[string]*entity.Product
	warehouses  map[string]*entity.Warehouse
	stocks      map[string]*entity.Stock       // productID|warehouseID
	serials     map[string]*entity.StockSerial // serialNumber|productID
	ledger      []*entity.LedgerEntry
	transfers   map[string]*entity.Transfer
	adjustments map[string]*entity.Adjustment
	nextSeq     int64
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		products:    make(map[string]*entity.Product),
		warehouses:  make(map[string]*entity.Warehouse),
		stocks:      make(map[string]*entity.Stock),
		serials:     make(map[string]*entity.StockSerial),
		transfers:   make(map[string]*entity.Transfer),
		adjustments: make(map[string]*entity.Adjustment),
	}
}

// SeedProduct registra un producto maestro (solo para tests/arranque).
func (s *Store) SeedProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = cloneProduct(p)
}

// SeedWarehouse registra una bodega maestra.
func (s *Store) SeedWarehouse(w *entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[w.ID] = cloneWarehouse(w)
}

// snapshot copia el estado mutable completo (para rollback).
type snapshot struct {
	stocks      map[string]*entity.Stock
	serials     map[string]*entity.StockSerial
	ledger      []*entity.LedgerEntry
	transfers   map[string]*entity.Transfer
	adjustments map[string]*entity.Adjustment
	nextSeq     int64
}

func (s *Store) takeSnapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		stocks:      make(map[string]*entity.Stock, len(s.stocks)),
		serials:     make(map[string]*entity.StockSerial, len(s.serials)),
		ledger:      make([]*entity.LedgerEntry, len(s.ledger)),
		transfers:   make(map[string]*entity.Transfer, len(s.transfers)),
		adjustments: make(map[string]*entity.Adjustment, len(s.adjustments)),
		nextSeq:     s.nextSeq,
	}
	for k, v := range s.stocks {
		snap.stocks[k] = cloneStock(v)
	}
	for k, v := range s.serials {
		snap.serials[k] = cloneSerial(v)
	}
	for i, e := range s.ledger {
		snap.ledger[i] = cloneEntry(e)
	}
	for k, v := range s.transfers {
		snap.transfers[k] = cloneTransfer(v)
	}
	for k, v := range s.adjustments {
		snap.adjustments[k] = cloneAdjustment(v)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocks = snap.stocks
	s.serials = snap.serials
	s.ledger = snap.ledger
	s.transfers = snap.transfers
	s.adjustments = snap.adjustments
	s.nextSeq = snap.nextSeq
}

// runInTx serializa la transacción y revierte todo el estado si fn falla:
// nunca quedan asientos, contadores o transiciones parciales visibles.
func (s *Store) runInTx(fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.takeSnapshot()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	ledgerRepo repository.LedgerRepository,
	stockRepo repository.StockRepository,
	serialRepo repository.SerialRepository,
) error) error {
	return s.runInTx(func() error { return fn(s.Ledger(), s.Stocks(), s.Serials()) })
}

// RunTransfer implementa transfer.TxRunner.
func (s *Store) RunTransfer(ctx context.Context, fn func(
	ledgerRepo repository.LedgerRepository,
	stockRepo repository.StockRepository,
	serialRepo repository.SerialRepository,
	transferRepo repository.TransferRepository,
) error) error {
	return s.runInTx(func() error { return fn(s.Ledger(), s.Stocks(), s.Serials(), s.Transfers()) })
}

// RunAdjustment implementa adjustment.TxRunner.
func (s *Store) RunAdjustment(ctx context.Context, fn func(
	ledgerRepo repository.LedgerRepository,
	stockRepo repository.StockRepository,
	serialRepo repository.SerialRepository,
	adjustmentRepo repository.AdjustmentRepository,
) error) error {
	return s.runInTx(func() error { return fn(s.Ledger(), s.Stocks(), s.Serials(), s.Adjustments()) })
}

func stockKey(productID, warehouseID string) string   { return productID + "|" + warehouseID }
func serialKey(serialNumber, productID string) string { return serialNumber + "|" + productID }
