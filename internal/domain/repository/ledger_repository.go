package repository

import (
	"time"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// LedgerRepository define el puerto de persistencia del journal de inventario.
// Append-only: no existe Update ni Delete; una corrección es un asiento
// compensatorio nuevo.
type LedgerRepository interface {
	Append(entry *entity.LedgerEntry) error
	// ListByStock devuelve los asientos de un (producto, bodega) en orden
	// cronológico total (performed_at, seq). asOf nil = todos.
	ListByStock(productID, warehouseID string, asOf *time.Time) ([]*entity.LedgerEntry, error)
	// LastPerformedAt devuelve el performed_at del asiento más reciente del
	// (producto, bodega), nil si no hay asientos. Fechar un movimiento antes
	// de ese instante rompería la cadena opening -> closing del journal.
	LastPerformedAt(productID, warehouseID string) (*time.Time, error)
	ListByTransaction(transactionType, transactionID string) ([]*entity.LedgerEntry, error)
}
