package repository

import "github.com/jhoicas/inventario-core/internal/domain/entity"

// ProductRepository define el puerto de lectura del maestro de productos.
// El CRUD del maestro vive fuera del motor; aquí solo se consulta.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
}
