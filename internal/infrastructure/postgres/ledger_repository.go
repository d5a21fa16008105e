package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `id, seq, product_id, warehouse_id, transaction_type, transaction_id,
		movement_type, opening_quantity, quantity, closing_quantity, rate, amount,
		serial_id, performed_by, performed_at`

// LedgerRepo implementación del journal sobre PostgreSQL (usable con pool o tx).
// Solo inserta: la tabla no tiene camino de UPDATE ni DELETE desde el motor.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append persiste un asiento y captura su seq (orden total de inserción).
func (r *LedgerRepo) Append(entry *entity.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	serialID := (*string)(nil)
	if entry.SerialID != "" {
		serialID = &entry.SerialID
	}
	query := `
		INSERT INTO inventory_ledger (id, product_id, warehouse_id, transaction_type, transaction_id,
			movement_type, opening_quantity, quantity, closing_quantity, rate, amount,
			serial_id, performed_by, performed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING seq`
	err := r.q.QueryRow(context.Background(), query,
		entry.ID, entry.ProductID, entry.WarehouseID, entry.TransactionType, entry.TransactionID,
		entry.MovementType, entry.OpeningQuantity, entry.Quantity, entry.ClosingQuantity,
		entry.Rate, entry.Amount, serialID, entry.PerformedBy, entry.PerformedAt,
	).Scan(&entry.Seq)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// ListByStock lista los asientos de un (producto, bodega) en orden cronológico
// total (performed_at, seq). asOf nil = todos.
func (r *LedgerRepo) ListByStock(productID, warehouseID string, asOf *time.Time) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM inventory_ledger WHERE product_id = $1 AND warehouse_id = $2`
	args := []any{productID, warehouseID}
	if asOf != nil {
		query += " AND performed_at <= $3"
		args = append(args, *asOf)
	}
	query += " ORDER BY performed_at, seq"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger by stock: %w", err)
	}
	defer rows.Close()
	return scanLedgerEntries(rows)
}

// LastPerformedAt devuelve el performed_at del asiento más reciente del
// (producto, bodega). nil si el stock aún no tiene asientos.
func (r *LedgerRepo) LastPerformedAt(productID, warehouseID string) (*time.Time, error) {
	query := `
		SELECT performed_at FROM inventory_ledger
		WHERE product_id = $1 AND warehouse_id = $2
		ORDER BY performed_at DESC, seq DESC
		LIMIT 1`
	var t time.Time
	err := r.q.QueryRow(context.Background(), query, productID, warehouseID).Scan(&t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last ledger performed_at: %w", err)
	}
	return &t, nil
}

// ListByTransaction lista los asientos causados por un documento.
func (r *LedgerRepo) ListByTransaction(transactionType, transactionID string) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM inventory_ledger WHERE transaction_type = $1 AND transaction_id = $2
		ORDER BY performed_at, seq`
	rows, err := r.q.Query(context.Background(), query, transactionType, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list ledger by transaction: %w", err)
	}
	defer rows.Close()
	return scanLedgerEntries(rows)
}

func scanLedgerEntries(rows pgx.Rows) ([]*entity.LedgerEntry, error) {
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		var serialID *string
		if err := rows.Scan(
			&e.ID, &e.Seq, &e.ProductID, &e.WarehouseID, &e.TransactionType, &e.TransactionID,
			&e.MovementType, &e.OpeningQuantity, &e.Quantity, &e.ClosingQuantity, &e.Rate, &e.Amount,
			&serialID, &e.PerformedBy, &e.PerformedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if serialID != nil {
			e.SerialID = *serialID
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
