package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

func TestRecalculateAvailable(t *testing.T) {
	s := &entity.Stock{
		QuantityOnHand:   decimal.NewFromInt(10),
		QuantityReserved: decimal.NewFromInt(3),
	}
	s.RecalculateAvailable()
	assert.True(t, s.QuantityAvailable.Equal(decimal.NewFromInt(7)))

	// El disponible puede quedar negativo si la política autorizó sobregiro.
	s.QuantityOnHand = decimal.NewFromInt(-2)
	s.RecalculateAvailable()
	assert.True(t, s.QuantityAvailable.Equal(decimal.NewFromInt(-5)))
}

func TestBelowMinimum(t *testing.T) {
	s := &entity.Stock{
		QuantityOnHand:   decimal.NewFromInt(3),
		MinStockQuantity: decimal.NewFromInt(5),
	}
	assert.True(t, s.BelowMinimum())

	s.QuantityOnHand = decimal.NewFromInt(5)
	assert.False(t, s.BelowMinimum())

	// Sin mínimo configurado nunca alerta.
	s.MinStockQuantity = decimal.Zero
	s.QuantityOnHand = decimal.NewFromInt(-1)
	assert.False(t, s.BelowMinimum())
}

func TestGuardasDeWorkflow(t *testing.T) {
	tr := &entity.Transfer{Status: entity.TransferStatusDraft}
	assert.True(t, tr.CanRequest())
	assert.False(t, tr.CanApprove())

	tr.Status = entity.TransferStatusRequested
	assert.True(t, tr.CanApprove())
	assert.True(t, tr.CanReject())
	assert.False(t, tr.CanReceive())

	tr.Status = entity.TransferStatusApproved
	assert.True(t, tr.CanReceive())

	tr.Status = entity.TransferStatusReceived
	assert.False(t, tr.CanReceive(), "RECEIVED es terminal")

	a := &entity.Adjustment{Status: entity.AdjustmentStatusApproved}
	assert.True(t, a.CanPost())
	a.Status = entity.AdjustmentStatusPosted
	assert.False(t, a.CanPost(), "POSTED es terminal")
	a.Status = entity.AdjustmentStatusRejected
	assert.False(t, a.CanApprove())
}
