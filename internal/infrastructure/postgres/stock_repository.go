package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id, product_id, warehouse_id, quantity_on_hand, quantity_reserved,
		quantity_available, tracking_mode, min_stock_quantity, created_at, updated_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el agregado de un producto en una bodega. Devuelve nil si no existe.
func (r *StockRepo) Get(productID, warehouseID string) (*entity.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock WHERE product_id = $1 AND warehouse_id = $2`
	s, err := scanStock(r.q.QueryRow(context.Background(), query, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetOrCreateForUpdate crea la fila perezosamente (contadores en cero,
// tracking_mode copiado del producto) y la bloquea (SELECT FOR UPDATE).
// Debe usarse dentro de una transacción: el lock serializa las escrituras
// concurrentes sobre el mismo contador.
func (r *StockRepo) GetOrCreateForUpdate(product *entity.Product, warehouseID string) (*entity.Stock, error) {
	ctx := context.Background()
	insert := `
		INSERT INTO stock (id, product_id, warehouse_id, quantity_on_hand, quantity_reserved,
			quantity_available, tracking_mode, min_stock_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, 0, $4, $5, now(), now())
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`
	_, err := r.q.Exec(ctx, insert, uuid.New().String(), product.ID, warehouseID,
		product.TrackingMode, product.MinStockQuantity)
	if err != nil {
		return nil, fmt.Errorf("create stock: %w", err)
	}

	query := `
		SELECT ` + stockColumns + `
		FROM stock WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, product.ID, warehouseID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// Update persiste los contadores del agregado.
func (r *StockRepo) Update(stock *entity.Stock) error {
	query := `
		UPDATE stock
		SET quantity_on_hand = $2, quantity_reserved = $3, quantity_available = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		stock.ID, stock.QuantityOnHand, stock.QuantityReserved, stock.QuantityAvailable, stock.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	return nil
}

// List devuelve los agregados paginados (para auditoría/reconciliación).
func (r *StockRepo) List(limit, offset int) ([]*entity.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock ORDER BY product_id, warehouse_id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	return scanStocks(rows)
}

// ListBelowMinimum devuelve los agregados por debajo de su mínimo de reorden.
func (r *StockRepo) ListBelowMinimum() ([]*entity.Stock, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock
		WHERE min_stock_quantity > 0 AND quantity_on_hand < min_stock_quantity
		ORDER BY (min_stock_quantity - quantity_on_hand) DESC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list stock below minimum: %w", err)
	}
	defer rows.Close()
	return scanStocks(rows)
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	err := row.Scan(
		&s.ID, &s.ProductID, &s.WarehouseID, &s.QuantityOnHand, &s.QuantityReserved,
		&s.QuantityAvailable, &s.TrackingMode, &s.MinStockQuantity, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanStocks(rows pgx.Rows) ([]*entity.Stock, error) {
	var list []*entity.Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
