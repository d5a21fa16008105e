package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

func TestReserve_Y_Release(t *testing.T) {
	e := newEngine(nil)
	e.seedLotProduct("prod-1", 10)
	e.seedWarehouse("bodega-1")
	ctx := context.Background()

	_, err := e.movements.PostMovement(ctx, e.inward("prod-1", "bodega-1", 10))
	require.NoError(t, err)

	// Reservar no toca el on-hand ni escribe en el ledger.
	require.NoError(t, e.stocks.Reserve(ctx, "prod-1", "bodega-1", dec(4), "vendedor"))
	stock, err := e.stocks.GetStock(ctx, "prod-1", "bodega-1")
	require.NoError(t, err)
	assert.True(t, stock.QuantityOnHand.Equal(dec(10)))
	assert.True(t, stock.QuantityReserved.Equal(dec(4)))
	assert.True(t, stock.QuantityAvailable.Equal(dec(6)))

	entries, err := e.store.Ledger().ListByStock("prod-1", "bodega-1", nil)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "la reserva es un apartado blando, sin asientos")

	require.NoError(t, e.stocks.Release(ctx, "prod-1", "bodega-1", dec(4), "vendedor"))
	stock, err = e.stocks.GetStock(ctx, "prod-1", "bodega-1")
	require.NoError(t, err)
	assert.True(t, stock.QuantityReserved.Equal(dec(0)))
	assert.True(t, stock.QuantityAvailable.Equal(dec(10)))
}

func TestReserve_DisponibleInsuficiente(t *testing.T) {
	e := newEngine(nil)
	e.seedLotProduct("prod-1", 10)
	e.seedWarehouse("bodega-1")
	ctx := context.Background()

	_, err := e.movements.PostMovement(ctx, e.inward("prod-1", "bodega-1", 5))
	require.NoError(t, err)

	err = e.stocks.Reserve(ctx, "prod-1", "bodega-1", dec(6), "vendedor")
	assert.ErrorIs(t, err, domain.ErrInsufficientAvailable)

	// Liberar más de lo reservado es entrada inválida, no un saldo negativo.
	err = e.stocks.Release(ctx, "prod-1", "bodega-1", dec(1), "vendedor")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetStock_NoExiste(t *testing.T) {
	e := newEngine(nil)
	ctx := context.Background()

	_, err := e.stocks.GetStock(ctx, "prod-1", "bodega-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestValidateSerialAvailable(t *testing.T) {
	e := newEngine(nil)
	e.seedSerialProduct("radio-1", 800)
	e.seedWarehouse("bodega-1")
	e.seedWarehouse("bodega-2")
	ctx := context.Background()

	_, err := e.movements.PostMovement(ctx, e.inward("radio-1", "bodega-1", 1, "S1"))
	require.NoError(t, err)

	assert.NoError(t, e.stocks.ValidateSerialAvailable(ctx, "S1", "radio-1", "bodega-1"))
	assert.ErrorIs(t, e.stocks.ValidateSerialAvailable(ctx, "S1", "radio-1", "bodega-2"),
		domain.ErrSerialNotAvailable, "el serial está en otra bodega")
	assert.ErrorIs(t, e.stocks.ValidateSerialAvailable(ctx, "S9", "radio-1", "bodega-1"),
		domain.ErrNotFound)

	_, err = e.movements.PostMovement(ctx, e.outward("radio-1", "bodega-1", 1, "S1"))
	require.NoError(t, err)
	assert.ErrorIs(t, e.stocks.ValidateSerialAvailable(ctx, "S1", "radio-1", "bodega-1"),
		domain.ErrSerialNotAvailable, "un serial emitido ya no está disponible")
}

func TestReserveSerial_FlujoCompleto(t *testing.T) {
	e := newEngine(nil)
	e.seedSerialProduct("radio-1", 800)
	e.seedWarehouse("bodega-1")
	ctx := context.Background()

	_, err := e.movements.PostMovement(ctx, e.inward("radio-1", "bodega-1", 2, "S1", "S2"))
	require.NoError(t, err)

	serial, err := e.stocks.ReserveSerial(ctx, "S1", "radio-1", "bodega-1", "REM-001")
	require.NoError(t, err)
	assert.Equal(t, entity.SerialStatusReserved, serial.Status)
	assert.Equal(t, "REM-001", serial.IssuedAgainst)

	// Reservar dos veces o reservar un serial ya reservado falla.
	_, err = e.stocks.ReserveSerial(ctx, "S1", "radio-1", "bodega-1", "REM-002")
	assert.ErrorIs(t, err, domain.ErrSerialNotAvailable)

	// Otro documento no puede reclamar el serial reservado.
	otro := e.outward("radio-1", "bodega-1", 1, "S1")
	otro.IssuedAgainst = "REM-999"
	_, err = e.movements.PostMovement(ctx, otro)
	assert.ErrorIs(t, err, domain.ErrSerialNotAvailable)

	// El documento que reservó sí lo reclama (RESERVED -> ISSUED).
	_, err = e.movements.PostMovement(ctx, e.outward("radio-1", "bodega-1", 1, "S1"))
	require.NoError(t, err)

	serialDespues, err := e.store.Serials().GetBySerialNumber("S1", "radio-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SerialStatusIssued, serialDespues.Status)
}

func TestReleaseSerial(t *testing.T) {
	e := newEngine(nil)
	e.seedSerialProduct("radio-1", 800)
	e.seedWarehouse("bodega-1")
	ctx := context.Background()

	_, err := e.movements.PostMovement(ctx, e.inward("radio-1", "bodega-1", 1, "S1"))
	require.NoError(t, err)

	_, err = e.stocks.ReserveSerial(ctx, "S1", "radio-1", "bodega-1", "REM-001")
	require.NoError(t, err)

	serial, err := e.stocks.ReleaseSerial(ctx, "S1", "radio-1", "bodega-1")
	require.NoError(t, err)
	assert.Equal(t, entity.SerialStatusAvailable, serial.Status)
	assert.Empty(t, serial.IssuedAgainst)

	// Liberar un serial que no está reservado falla.
	_, err = e.stocks.ReleaseSerial(ctx, "S1", "radio-1", "bodega-1")
	assert.ErrorIs(t, err, domain.ErrSerialNotAvailable)
}

func TestListBelowMinimum(t *testing.T) {
	e := newEngine(nil)
	p := &entity.Product{
		ID:               "prod-min",
		SKU:              "SKU-min",
		Name:             "Producto con mínimo",
		TrackingMode:     entity.TrackingModeLot,
		MinStockQuantity: dec(5),
		Cost:             dec(10),
	}
	e.store.SeedProduct(p)
	e.seedWarehouse("bodega-1")
	ctx := context.Background()

	_, err := e.movements.PostMovement(ctx, e.inward("prod-min", "bodega-1", 3))
	require.NoError(t, err)

	low, err := e.stocks.ListBelowMinimum(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "prod-min", low[0].ProductID)

	_, err = e.movements.PostMovement(ctx, e.inward("prod-min", "bodega-1", 10))
	require.NoError(t, err)

	low, err = e.stocks.ListBelowMinimum(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)
}
