package repository

import "github.com/jhoicas/inventario-core/internal/domain/entity"

// WarehouseRepository define el puerto de lectura del maestro de bodegas.
type WarehouseRepository interface {
	GetByID(id string) (*entity.Warehouse, error)
}
