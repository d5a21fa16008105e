package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

func TestSignedQuantity(t *testing.T) {
	in := &entity.LedgerEntry{MovementType: entity.MovementTypeIN, Quantity: decimal.NewFromInt(5)}
	out := &entity.LedgerEntry{MovementType: entity.MovementTypeOUT, Quantity: decimal.NewFromInt(5)}

	assert.True(t, in.SignedQuantity().Equal(decimal.NewFromInt(5)))
	assert.True(t, out.SignedQuantity().Equal(decimal.NewFromInt(-5)))
}

func TestIsValidTransactionType(t *testing.T) {
	validos := []string{
		entity.TxnTypePOInward, entity.TxnTypeDeliveryOut, entity.TxnTypeB2BOut,
		entity.TxnTypeTransferOut, entity.TxnTypeTransferIn,
		entity.TxnTypeAdjustmentIn, entity.TxnTypeAdjustmentOut,
		entity.TxnTypeUsedInventoryImport, entity.TxnTypeSalesReturn,
	}
	for _, v := range validos {
		assert.True(t, entity.IsValidTransactionType(v), v)
	}
	assert.False(t, entity.IsValidTransactionType("MAGIC"))
	assert.False(t, entity.IsValidTransactionType(""))
}
