package repository

import (
	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar el agregado Stock.
// Las mutaciones solo ocurren dentro de transacciones (vía TxRunner).
type StockRepository interface {
	Get(productID, warehouseID string) (*entity.Stock, error)
	// GetOrCreateForUpdate crea la fila perezosamente (contadores en cero,
	// tracking_mode copiado del producto) si no existe y la bloquea para
	// update (SELECT FOR UPDATE). Solo tiene sentido dentro de una tx.
	GetOrCreateForUpdate(product *entity.Product, warehouseID string) (*entity.Stock, error)
	Update(stock *entity.Stock) error
	List(limit, offset int) ([]*entity.Stock, error)
	ListBelowMinimum() ([]*entity.Stock, error)
}
