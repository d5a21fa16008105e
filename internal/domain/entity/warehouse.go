package entity

import "time"

// Warehouse representa una bodega o sucursal donde se almacena inventario
// (colaborador de solo lectura para el motor).
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
