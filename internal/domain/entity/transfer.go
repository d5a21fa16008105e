package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del workflow de traslado (maker-checker).
// DRAFT -> REQUESTED -> APPROVED -> RECEIVED (terminal)
// REQUESTED -> REJECTED (terminal)
const (
	TransferStatusDraft     = "DRAFT"
	TransferStatusRequested = "REQUESTED"
	TransferStatusApproved  = "APPROVED"
	TransferStatusReceived  = "RECEIVED"
	TransferStatusRejected  = "REJECTED"
)

// Transfer es el documento de traslado entre bodegas (cabecera + líneas).
type Transfer struct {
	ID          string
	Number      string
	Status      string
	RequestedBy string
	ApprovedBy  string
	Remarks     string
	Lines       []TransferLine
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RequestedAt *time.Time
	ApprovedAt  *time.Time
	ReceivedAt  *time.Time
}

// TransferLine es una línea del traslado. Para productos serializados la
// cantidad debe coincidir con el número de seriales listados.
type TransferLine struct {
	ID              string
	TransferID      string
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        decimal.Decimal
	SerialNumbers   []string
}

// CanRequest, CanApprove, CanReject y CanReceive son las guardas del workflow:
// fallan rápido ante llamadas fuera de secuencia en lugar de no-op silencioso.
func (t *Transfer) CanRequest() bool { return t.Status == TransferStatusDraft }
func (t *Transfer) CanApprove() bool { return t.Status == TransferStatusRequested }
func (t *Transfer) CanReject() bool  { return t.Status == TransferStatusRequested }
func (t *Transfer) CanReceive() bool { return t.Status == TransferStatusApproved }
