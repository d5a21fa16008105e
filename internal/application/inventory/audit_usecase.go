package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// AuditUseCase reconstruye cantidades desde el ledger y detecta deriva entre
// el journal (fuente de verdad) y el agregado Stock materializado.
type AuditUseCase struct {
	ledgerRepo repository.LedgerRepository
	stockRepo  repository.StockRepository
}

// NewAuditUseCase construye el caso de uso de auditoría.
func NewAuditUseCase(ledgerRepo repository.LedgerRepository, stockRepo repository.StockRepository) *AuditUseCase {
	return &AuditUseCase{ledgerRepo: ledgerRepo, stockRepo: stockRepo}
}

// DriftReport es el resultado de comparar ledger contra stock materializado.
type DriftReport struct {
	ProductID      string
	WarehouseID    string
	LedgerQuantity decimal.Decimal
	StockQuantity  decimal.Decimal
	EntryCount     int
	ChainBroken    bool // algún asiento no encadena opening/closing con el anterior
}

// HasDrift indica si el stock materializado difiere del ledger o la cadena está rota.
func (r DriftReport) HasDrift() bool {
	return r.ChainBroken || !r.LedgerQuantity.Equal(r.StockQuantity)
}

// Reconstruct pliega los asientos de un (producto, bodega) en orden
// (performed_at, seq) y devuelve la cantidad resultante. asOf nil = todos.
func (uc *AuditUseCase) Reconstruct(ctx context.Context, productID, warehouseID string, asOf *time.Time) (decimal.Decimal, error) {
	entries, err := uc.ledgerRepo.ListByStock(productID, warehouseID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return foldEntries(entries), nil
}

// CheckDrift reconstruye y compara contra el on-hand materializado.
func (uc *AuditUseCase) CheckDrift(ctx context.Context, productID, warehouseID string) (DriftReport, error) {
	report := DriftReport{ProductID: productID, WarehouseID: warehouseID}

	entries, err := uc.ledgerRepo.ListByStock(productID, warehouseID, nil)
	if err != nil {
		return report, err
	}
	report.EntryCount = len(entries)
	report.LedgerQuantity = foldEntries(entries)
	report.ChainBroken = chainBroken(entries)

	stock, err := uc.stockRepo.Get(productID, warehouseID)
	if err != nil {
		return report, err
	}
	if stock != nil {
		report.StockQuantity = stock.QuantityOnHand
	} else {
		report.StockQuantity = decimal.Zero
	}
	return report, nil
}

// foldEntries pliega opening -> closing aplicando la cantidad con signo.
func foldEntries(entries []*entity.LedgerEntry) decimal.Decimal {
	running := decimal.Zero
	for _, e := range entries {
		running = running.Add(e.SignedQuantity())
	}
	return running
}

// chainBroken verifica que cada asiento abra donde cerró el anterior y que
// closing = opening ± quantity.
func chainBroken(entries []*entity.LedgerEntry) bool {
	running := decimal.Zero
	for _, e := range entries {
		if !e.OpeningQuantity.Equal(running) {
			return true
		}
		if !e.ClosingQuantity.Equal(e.OpeningQuantity.Add(e.SignedQuantity())) {
			return true
		}
		running = e.ClosingQuantity
	}
	return false
}
