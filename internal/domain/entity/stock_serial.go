package entity

import "time"

// Estados del ciclo de vida de un serial.
// AVAILABLE -> RESERVED -> ISSUED es el camino normal de salida; RESERVED es
// un estado intermedio opcional. Una devolución explícita (SALES_RETURN)
// regresa ISSUED -> AVAILABLE; no existe un estado RETURNED aparte.
const (
	SerialStatusAvailable = "AVAILABLE"
	SerialStatusReserved  = "RESERVED"
	SerialStatusIssued    = "ISSUED"
)

// StockSerial es el registro de una unidad física de un producto serializado.
// Único por (SerialNumber, ProductID); WarehouseID y StockID reflejan su
// ubicación actual.
type StockSerial struct {
	ID              string
	SerialNumber    string
	ProductID       string
	WarehouseID     string
	StockID         string
	Status          string
	SourceType      string // qué lo creó o lo movió por última vez
	SourceID        string
	IssuedAgainst   string // documento consumidor (texto libre)
	ReferenceNumber string
	InwardDate      time.Time
	OutwardDate     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CanClaim indica si el serial puede transicionar fuera de AVAILABLE/RESERVED
// hacia ISSUED. Un serial RESERVED solo puede reclamarse por el mismo
// documento que lo reservó.
func (s *StockSerial) CanClaim(issuedAgainst string) bool {
	switch s.Status {
	case SerialStatusAvailable:
		return true
	case SerialStatusReserved:
		return s.IssuedAgainst == issuedAgainst
	}
	return false
}

// IsAvailable indica si el serial está libre en bodega.
func (s *StockSerial) IsAvailable() bool {
	return s.Status == SerialStatusAvailable
}
