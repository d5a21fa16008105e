package transfer_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/inventario-core/internal/application/inventory"
	"github.com/jhoicas/inventario-core/internal/application/transfer"
	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	dominventory "github.com/jhoicas/inventario-core/internal/domain/inventory"
	"github.com/jhoicas/inventario-core/internal/infrastructure/memory"
)

type fixture struct {
	store     *memory.Store
	movements *appinventory.MovementUseCase
	transfers *transfer.UseCase
}

func newFixture(policy *dominventory.Policy) *fixture {
	store := memory.NewStore()
	movements := appinventory.NewMovementUseCase(store, store.Products(), store.Warehouses(), policy)
	return &fixture{
		store:     store,
		movements: movements,
		transfers: transfer.NewUseCase(store, movements, store.Transfers(),
			store.Products(), store.Warehouses(), policy),
	}
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func (f *fixture) seedMasters(tracking string) {
	f.store.SeedProduct(&entity.Product{
		ID:           "radio-1",
		SKU:          "SKU-radio",
		Name:         "Radio portátil",
		TrackingMode: tracking,
		Cost:         dec(800),
	})
	f.store.SeedWarehouse(&entity.Warehouse{ID: "bodega-a", Name: "Bodega A"})
	f.store.SeedWarehouse(&entity.Warehouse{ID: "bodega-b", Name: "Bodega B"})
}

func (f *fixture) inward(t *testing.T, warehouseID string, qty int64, serials ...string) {
	t.Helper()
	_, err := f.movements.PostMovement(context.Background(), appinventory.MovementInput{
		ProductID:       "radio-1",
		WarehouseID:     warehouseID,
		TransactionType: entity.TxnTypePOInward,
		MovementType:    entity.MovementTypeIN,
		Quantity:        dec(qty),
		SerialNumbers:   serials,
		PerformedBy:     "bodeguero",
	})
	require.NoError(t, err)
}

// readyTransfer crea, solicita y aprueba un traslado listo para recibir.
func (f *fixture) readyTransfer(t *testing.T, line transfer.LineInput) *entity.Transfer {
	t.Helper()
	ctx := context.Background()
	doc, err := f.transfers.Create(ctx, transfer.CreateInput{
		Number:      "TR-001",
		RequestedBy: "solicitante",
		Lines:       []transfer.LineInput{line},
	})
	require.NoError(t, err)
	require.NoError(t, f.transfers.Request(ctx, doc.ID))
	require.NoError(t, f.transfers.Approve(ctx, doc.ID, "aprobador"))
	return doc
}

func TestReceive_TrasladoSerial(t *testing.T) {
	f := newFixture(nil)
	f.seedMasters(entity.TrackingModeSerial)
	serials := []string{"S1", "S2", "S3", "S4", "S5"}
	f.inward(t, "bodega-a", 5, serials...)
	ctx := context.Background()

	doc := f.readyTransfer(t, transfer.LineInput{
		ProductID:       "radio-1",
		FromWarehouseID: "bodega-a",
		ToWarehouseID:   "bodega-b",
		Quantity:        dec(5),
		SerialNumbers:   serials,
	})
	require.NoError(t, f.transfers.Receive(ctx, doc.ID, "receptor"))

	got, err := f.transfers.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusReceived, got.Status)
	require.NotNil(t, got.ReceivedAt)

	// Cinco asientos OUT en origen y cinco IN en destino, mismo documento.
	outs, err := f.store.Ledger().ListByTransaction(entity.TxnTypeTransferOut, doc.ID)
	require.NoError(t, err)
	assert.Len(t, outs, 5)
	ins, err := f.store.Ledger().ListByTransaction(entity.TxnTypeTransferIn, doc.ID)
	require.NoError(t, err)
	assert.Len(t, ins, 5)

	// Los seriales quedan AVAILABLE en la bodega destino.
	for _, sn := range serials {
		serial, err := f.store.Serials().GetBySerialNumber(sn, "radio-1")
		require.NoError(t, err)
		require.NotNil(t, serial)
		assert.Equal(t, entity.SerialStatusAvailable, serial.Status)
		assert.Equal(t, "bodega-b", serial.WarehouseID)
	}

	origen, err := f.store.Stocks().Get("radio-1", "bodega-a")
	require.NoError(t, err)
	assert.True(t, origen.QuantityOnHand.Equal(dec(0)))
	destino, err := f.store.Stocks().Get("radio-1", "bodega-b")
	require.NoError(t, err)
	assert.True(t, destino.QuantityOnHand.Equal(dec(5)))
}

func TestReceive_Repetido(t *testing.T) {
	f := newFixture(nil)
	f.seedMasters(entity.TrackingModeLot)
	f.inward(t, "bodega-a", 10)
	ctx := context.Background()

	doc := f.readyTransfer(t, transfer.LineInput{
		ProductID:       "radio-1",
		FromWarehouseID: "bodega-a",
		ToWarehouseID:   "bodega-b",
		Quantity:        dec(4),
	})
	require.NoError(t, f.transfers.Receive(ctx, doc.ID, "receptor"))

	// La repetición falla por la guarda de estado y no duplica asientos.
	err := f.transfers.Receive(ctx, doc.ID, "receptor")
	require.ErrorIs(t, err, domain.ErrWorkflowState)

	outs, err := f.store.Ledger().ListByTransaction(entity.TxnTypeTransferOut, doc.ID)
	require.NoError(t, err)
	assert.Len(t, outs, 1)
	origen, err := f.store.Stocks().Get("radio-1", "bodega-a")
	require.NoError(t, err)
	assert.True(t, origen.QuantityOnHand.Equal(dec(6)))
}

func TestApprove_MakerChecker(t *testing.T) {
	f := newFixture(nil)
	f.seedMasters(entity.TrackingModeLot)
	f.inward(t, "bodega-a", 10)
	ctx := context.Background()

	doc, err := f.transfers.Create(ctx, transfer.CreateInput{
		RequestedBy: "solicitante",
		Lines: []transfer.LineInput{{
			ProductID:       "radio-1",
			FromWarehouseID: "bodega-a",
			ToWarehouseID:   "bodega-b",
			Quantity:        dec(2),
		}},
	})
	require.NoError(t, err)
	require.NoError(t, f.transfers.Request(ctx, doc.ID))

	// Quien solicita no puede aprobarse a sí mismo.
	err = f.transfers.Approve(ctx, doc.ID, "solicitante")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	require.NoError(t, f.transfers.Approve(ctx, doc.ID, "aprobador"))
}

func TestApprove_MakerCheckerDesactivado(t *testing.T) {
	policy := dominventory.NewPolicy(nil, false)
	f := newFixture(policy)
	f.seedMasters(entity.TrackingModeLot)
	f.inward(t, "bodega-a", 10)
	ctx := context.Background()

	doc, err := f.transfers.Create(ctx, transfer.CreateInput{
		RequestedBy: "solicitante",
		Lines: []transfer.LineInput{{
			ProductID:       "radio-1",
			FromWarehouseID: "bodega-a",
			ToWarehouseID:   "bodega-b",
			Quantity:        dec(2),
		}},
	})
	require.NoError(t, err)
	require.NoError(t, f.transfers.Request(ctx, doc.ID))
	assert.NoError(t, f.transfers.Approve(ctx, doc.ID, "solicitante"))
}

func TestReject_EsTerminal(t *testing.T) {
	f := newFixture(nil)
	f.seedMasters(entity.TrackingModeLot)
	f.inward(t, "bodega-a", 10)
	ctx := context.Background()

	doc, err := f.transfers.Create(ctx, transfer.CreateInput{
		RequestedBy: "solicitante",
		Lines: []transfer.LineInput{{
			ProductID:       "radio-1",
			FromWarehouseID: "bodega-a",
			ToWarehouseID:   "bodega-b",
			Quantity:        dec(2),
		}},
	})
	require.NoError(t, err)
	require.NoError(t, f.transfers.Request(ctx, doc.ID))
	require.NoError(t, f.transfers.Reject(ctx, doc.ID, "aprobador", "sin justificación"))

	got, err := f.transfers.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusRejected, got.Status)
	assert.Equal(t, "sin justificación", got.Remarks)

	assert.ErrorIs(t, f.transfers.Approve(ctx, doc.ID, "aprobador"), domain.ErrWorkflowState)
	assert.ErrorIs(t, f.transfers.Receive(ctx, doc.ID, "receptor"), domain.ErrWorkflowState)
}

func TestReceive_RollbackAtomico(t *testing.T) {
	// Si la salida en origen no alcanza, nada se aplica: ni marca de estado,
	// ni asientos, ni contadores. Una unidad jamás sale sin entrar.
	f := newFixture(nil)
	f.seedMasters(entity.TrackingModeLot)
	f.inward(t, "bodega-a", 3)
	ctx := context.Background()

	doc := f.readyTransfer(t, transfer.LineInput{
		ProductID:       "radio-1",
		FromWarehouseID: "bodega-a",
		ToWarehouseID:   "bodega-b",
		Quantity:        dec(5),
	})
	err := f.transfers.Receive(ctx, doc.ID, "receptor")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.transfers.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusApproved, got.Status, "la marca de recepción también se revierte")

	outs, err := f.store.Ledger().ListByTransaction(entity.TxnTypeTransferOut, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, outs)
	origen, err := f.store.Stocks().Get("radio-1", "bodega-a")
	require.NoError(t, err)
	assert.True(t, origen.QuantityOnHand.Equal(dec(3)))
	destino, err := f.store.Stocks().Get("radio-1", "bodega-b")
	require.NoError(t, err)
	if destino != nil {
		assert.True(t, destino.QuantityOnHand.Equal(dec(0)))
	}
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(nil)
	f.seedMasters(entity.TrackingModeSerial)
	ctx := context.Background()

	base := transfer.LineInput{
		ProductID:       "radio-1",
		FromWarehouseID: "bodega-a",
		ToWarehouseID:   "bodega-b",
		Quantity:        dec(1),
		SerialNumbers:   []string{"S1"},
	}

	casos := []struct {
		nombre string
		mutar  func(*transfer.LineInput)
		want   error
	}{
		{"misma bodega", func(l *transfer.LineInput) { l.ToWarehouseID = l.FromWarehouseID }, domain.ErrInvalidInput},
		{"cantidad cero", func(l *transfer.LineInput) { l.Quantity = dec(0); l.SerialNumbers = nil }, domain.ErrInvalidInput},
		{"seriales incompletos", func(l *transfer.LineInput) { l.Quantity = dec(2) }, domain.ErrInvalidInput},
		{"producto inexistente", func(l *transfer.LineInput) { l.ProductID = "fantasma" }, domain.ErrNotFound},
		{"bodega inexistente", func(l *transfer.LineInput) { l.ToWarehouseID = "fantasma" }, domain.ErrNotFound},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			line := base
			c.mutar(&line)
			_, err := f.transfers.Create(ctx, transfer.CreateInput{
				RequestedBy: "solicitante",
				Lines:       []transfer.LineInput{line},
			})
			assert.ErrorIs(t, err, c.want)
		})
	}

	_, err := f.transfers.Create(ctx, transfer.CreateInput{RequestedBy: "solicitante"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas no hay traslado")
}
