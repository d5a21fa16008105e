package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de seguimiento de inventario (copiados del producto al crear el Stock).
const (
	TrackingModeLot    = "LOT"    // cantidad a granel, sin identidad por unidad
	TrackingModeSerial = "SERIAL" // una unidad física = un serial
)

// Stock representa el agregado materializado de un producto en una bodega.
// Cache siempre reconstruible desde el ledger; QuantityAvailable es derivado
// (OnHand - Reserved) y se recalcula en cada escritura.
type Stock struct {
	ID                string
	ProductID         string
	WarehouseID       string
	QuantityOnHand    decimal.Decimal
	QuantityReserved  decimal.Decimal
	QuantityAvailable decimal.Decimal
	TrackingMode      string
	MinStockQuantity  decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RecalculateAvailable recalcula la cantidad disponible tras cambiar OnHand o Reserved.
func (s *Stock) RecalculateAvailable() {
	s.QuantityAvailable = s.QuantityOnHand.Sub(s.QuantityReserved)
}

// IsSerialTracked indica si el stock exige seriales por unidad.
func (s *Stock) IsSerialTracked() bool {
	return s.TrackingMode == TrackingModeSerial
}

// BelowMinimum indica si el stock quedó por debajo del mínimo de reorden (informativo).
func (s *Stock) BelowMinimum() bool {
	return s.MinStockQuantity.GreaterThan(decimal.Zero) && s.QuantityOnHand.LessThan(s.MinStockQuantity)
}
