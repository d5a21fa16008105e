package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product es el maestro de productos (colaborador de solo lectura para el
// motor: el CRUD vive fuera de este módulo).
type Product struct {
	ID               string
	SKU              string
	Name             string
	TrackingMode     string // LOT o SERIAL
	MinStockQuantity decimal.Decimal
	Cost             decimal.Decimal // costo usado como rate por defecto en salidas
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
