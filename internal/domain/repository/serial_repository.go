package repository

import (
	"time"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// SerialRepository define el puerto del registro de seriales. Las transiciones
// de estado son updates condicionales (compare-and-set sobre el estado actual):
// de dos intentos concurrentes sobre el mismo serial gana exactamente uno.
type SerialRepository interface {
	// Create falla con domain.ErrSerialAlreadyExists si (serial, producto) ya existe.
	Create(serial *entity.StockSerial) error
	GetBySerialNumber(serialNumber, productID string) (*entity.StockSerial, error)
	// Claim transiciona AVAILABLE->ISSUED (o RESERVED->ISSUED si issuedAgainst
	// coincide con la reserva). Falla con domain.ErrSerialNotAvailable si el
	// serial no está en la bodega indicada o perdió la carrera.
	Claim(serialNumber, productID, warehouseID, issuedAgainst, referenceNumber string, outwardDate time.Time) (*entity.StockSerial, error)
	// Reserve transiciona AVAILABLE->RESERVED anotando el documento que reserva.
	Reserve(serialNumber, productID, warehouseID, issuedAgainst string) (*entity.StockSerial, error)
	// ReleaseReservation transiciona RESERVED->AVAILABLE.
	ReleaseReservation(serialNumber, productID, warehouseID string) (*entity.StockSerial, error)
	// Relocate mueve un serial a otra bodega/stock y lo deja AVAILABLE
	// (lado receptor de un traslado).
	Relocate(serialNumber, productID, warehouseID, stockID, sourceType, sourceID string) (*entity.StockSerial, error)
	// Reactivate transiciona ISSUED->AVAILABLE (solo tipos de reversa).
	Reactivate(serialNumber, productID, warehouseID, stockID, sourceType, sourceID string) (*entity.StockSerial, error)
	ListAvailable(productID, warehouseID string) ([]*entity.StockSerial, error)
}
