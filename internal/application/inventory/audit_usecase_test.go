package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/inventario-core/internal/application/inventory"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

func TestReconstruct_CoincideConStock(t *testing.T) {
	e := newEngine(nil)
	e.seedLotProduct("prod-1", 10)
	e.seedWarehouse("bodega-1")
	ctx := context.Background()

	_, err := e.movements.PostMovement(ctx, e.inward("prod-1", "bodega-1", 100))
	require.NoError(t, err)
	_, err = e.movements.PostMovement(ctx, e.outward("prod-1", "bodega-1", 30))
	require.NoError(t, err)
	_, err = e.movements.PostMovement(ctx, e.inward("prod-1", "bodega-1", 15))
	require.NoError(t, err)

	// El ledger reconstruye exactamente el contador materializado.
	qty, err := e.audit.Reconstruct(ctx, "prod-1", "bodega-1", nil)
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec(85)), "reconstrucción debe dar 85, dio %s", qty)

	report, err := e.audit.CheckDrift(ctx, "prod-1", "bodega-1")
	require.NoError(t, err)
	assert.False(t, report.HasDrift())
	assert.False(t, report.ChainBroken)
	assert.Equal(t, 3, report.EntryCount)
}

func TestReconstruct_AsOf(t *testing.T) {
	e := newEngine(nil)
	e.seedLotProduct("prod-1", 10)
	e.seedWarehouse("bodega-1")
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

	mover := func(input appinventory.MovementInput, offsetMin int) {
		input.PerformedAt = at(base, offsetMin)
		_, err := e.movements.PostMovement(ctx, input)
		require.NoError(t, err)
	}
	mover(e.inward("prod-1", "bodega-1", 100), 0)
	mover(e.outward("prod-1", "bodega-1", 30), 10)
	mover(e.inward("prod-1", "bodega-1", 15), 20)

	// Corte en t+10: incluye la entrada y la salida, excluye la última entrada.
	cutoff := at(base, 10)
	qty, err := e.audit.Reconstruct(ctx, "prod-1", "bodega-1", &cutoff)
	require.NoError(t, err)
	assert.True(t, qty.Equal(dec(70)), "al corte debe dar 70, dio %s", qty)
}

func TestCheckDrift_DetectaCorrupcion(t *testing.T) {
	e := newEngine(nil)
	e.seedLotProduct("prod-1", 10)
	e.seedWarehouse("bodega-1")
	ctx := context.Background()

	_, err := e.movements.PostMovement(ctx, e.inward("prod-1", "bodega-1", 50))
	require.NoError(t, err)

	// Simula una escritura que saltó el orquestador.
	e.store.CorruptStock("prod-1", "bodega-1", dec(47))

	report, err := e.audit.CheckDrift(ctx, "prod-1", "bodega-1")
	require.NoError(t, err)
	assert.True(t, report.HasDrift())
	assert.False(t, report.ChainBroken, "la cadena del ledger sigue sana; la deriva está en el contador")
	assert.True(t, report.LedgerQuantity.Equal(dec(50)))
	assert.True(t, report.StockQuantity.Equal(dec(47)))
}

func TestCheckDrift_StockSinMovimientos(t *testing.T) {
	e := newEngine(nil)

	report, err := e.audit.CheckDrift(context.Background(), "prod-x", "bodega-x")
	require.NoError(t, err)
	assert.False(t, report.HasDrift(), "sin fila y sin asientos: cero contra cero")
	assert.Equal(t, 0, report.EntryCount)
}

func TestCheckDrift_CadenaRota(t *testing.T) {
	e := newEngine(nil)
	e.seedLotProduct("prod-1", 10)
	e.seedWarehouse("bodega-1")
	ctx := context.Background()

	_, err := e.movements.PostMovement(ctx, e.inward("prod-1", "bodega-1", 50))
	require.NoError(t, err)

	// Un asiento inyectado con opening/closing inconsistentes rompe la cadena.
	err = e.store.Ledger().Append(&entity.LedgerEntry{
		ProductID:       "prod-1",
		WarehouseID:     "bodega-1",
		TransactionType: entity.TxnTypeAdjustmentIn,
		TransactionID:   "manual",
		MovementType:    entity.MovementTypeIN,
		OpeningQuantity: dec(99),
		Quantity:        dec(1),
		ClosingQuantity: dec(100),
		PerformedBy:     "intruso",
		PerformedAt:     time.Now(),
	})
	require.NoError(t, err)

	report, err := e.audit.CheckDrift(ctx, "prod-1", "bodega-1")
	require.NoError(t, err)
	assert.True(t, report.ChainBroken)
	assert.True(t, report.HasDrift())
}
