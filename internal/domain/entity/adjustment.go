package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del workflow de ajuste (maker-checker).
// DRAFT -> REQUESTED -> APPROVED -> POSTED (terminal)
// REQUESTED -> REJECTED (terminal)
const (
	AdjustmentStatusDraft     = "DRAFT"
	AdjustmentStatusRequested = "REQUESTED"
	AdjustmentStatusApproved  = "APPROVED"
	AdjustmentStatusPosted    = "POSTED"
	AdjustmentStatusRejected  = "REJECTED"
)

// Sentido del ajuste por línea.
const (
	AdjustmentTypeIncrease = "INCREASE"
	AdjustmentTypeDecrease = "DECREASE"
)

// Adjustment es el documento de ajuste de inventario (cabecera + líneas).
type Adjustment struct {
	ID          string
	Number      string
	Status      string
	Reason      string
	RequestedBy string
	ApprovedBy  string
	Lines       []AdjustmentLine
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RequestedAt *time.Time
	ApprovedAt  *time.Time
	PostedAt    *time.Time
}

// AdjustmentLine es una línea del ajuste.
type AdjustmentLine struct {
	ID             string
	AdjustmentID   string
	ProductID      string
	WarehouseID    string
	AdjustmentType string
	Quantity       decimal.Decimal
	Rate           decimal.Decimal
	SerialNumbers  []string
}

// Guardas del workflow.
func (a *Adjustment) CanRequest() bool { return a.Status == AdjustmentStatusDraft }
func (a *Adjustment) CanApprove() bool { return a.Status == AdjustmentStatusRequested }
func (a *Adjustment) CanReject() bool  { return a.Status == AdjustmentStatusRequested }
func (a *Adjustment) CanPost() bool    { return a.Status == AdjustmentStatusApproved }
