package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/inventory"
)

func TestDefaultPolicy(t *testing.T) {
	p := inventory.DefaultPolicy()

	assert.True(t, p.AllowsNegativeStock(entity.TxnTypeUsedInventoryImport),
		"la importación correctiva puede sobregirar por defecto")
	assert.False(t, p.AllowsNegativeStock(entity.TxnTypeDeliveryOut))
	assert.False(t, p.AllowsNegativeStock(entity.TxnTypeAdjustmentOut))
	assert.True(t, p.EnforceMakerChecker)
}

func TestPolicy_Personalizada(t *testing.T) {
	p := inventory.NewPolicy([]string{entity.TxnTypeDeliveryOut, entity.TxnTypeB2BOut}, false)

	assert.True(t, p.AllowsNegativeStock(entity.TxnTypeDeliveryOut))
	assert.True(t, p.AllowsNegativeStock(entity.TxnTypeB2BOut))
	assert.False(t, p.AllowsNegativeStock(entity.TxnTypeUsedInventoryImport))
	assert.False(t, p.EnforceMakerChecker)
}

func TestPolicy_Reversas(t *testing.T) {
	p := inventory.DefaultPolicy()

	assert.True(t, p.IsReversal(entity.TxnTypeSalesReturn))
	assert.False(t, p.IsReversal(entity.TxnTypePOInward))
	assert.False(t, p.IsReversal(entity.TxnTypeTransferIn))
}
