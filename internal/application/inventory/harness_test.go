package inventory_test

import (
	"time"

	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/inventario-core/internal/application/inventory"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	dominventory "github.com/jhoicas/inventario-core/internal/domain/inventory"
	"github.com/jhoicas/inventario-core/internal/infrastructure/memory"
)

// engine arma el motor completo sobre el Store en memoria: mismos casos de
// uso y misma semántica transaccional que en producción.
type engine struct {
	store     *memory.Store
	movements *appinventory.MovementUseCase
	stocks    *appinventory.StockUseCase
	audit     *appinventory.AuditUseCase
}

func newEngine(policy *dominventory.Policy) *engine {
	store := memory.NewStore()
	return &engine{
		store:     store,
		movements: appinventory.NewMovementUseCase(store, store.Products(), store.Warehouses(), policy),
		stocks:    appinventory.NewStockUseCase(store, store.Stocks(), store.Serials(), store.Products()),
		audit:     appinventory.NewAuditUseCase(store.Ledger(), store.Stocks()),
	}
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func (e *engine) seedLotProduct(id string, cost int64) *entity.Product {
	p := &entity.Product{
		ID:           id,
		SKU:          "SKU-" + id,
		Name:         "Producto " + id,
		TrackingMode: entity.TrackingModeLot,
		Cost:         dec(cost),
	}
	e.store.SeedProduct(p)
	return p
}

func (e *engine) seedSerialProduct(id string, cost int64) *entity.Product {
	p := &entity.Product{
		ID:           id,
		SKU:          "SKU-" + id,
		Name:         "Producto " + id,
		TrackingMode: entity.TrackingModeSerial,
		Cost:         dec(cost),
	}
	e.store.SeedProduct(p)
	return p
}

func (e *engine) seedWarehouse(id string) *entity.Warehouse {
	w := &entity.Warehouse{ID: id, Name: "Bodega " + id}
	e.store.SeedWarehouse(w)
	return w
}

// inward registra una recepción de compra para dejar stock inicial.
func (e *engine) inward(productID, warehouseID string, qty int64, serials ...string) appinventory.MovementInput {
	return appinventory.MovementInput{
		ProductID:       productID,
		WarehouseID:     warehouseID,
		TransactionType: entity.TxnTypePOInward,
		MovementType:    entity.MovementTypeIN,
		Quantity:        dec(qty),
		SerialNumbers:   serials,
		PerformedBy:     "bodeguero",
	}
}

func (e *engine) outward(productID, warehouseID string, qty int64, serials ...string) appinventory.MovementInput {
	return appinventory.MovementInput{
		ProductID:       productID,
		WarehouseID:     warehouseID,
		TransactionType: entity.TxnTypeDeliveryOut,
		MovementType:    entity.MovementTypeOUT,
		Quantity:        dec(qty),
		SerialNumbers:   serials,
		IssuedAgainst:   "REM-001",
		PerformedBy:     "despachador",
	}
}

func at(base time.Time, offsetMin int) time.Time {
	return base.Add(time.Duration(offsetMin) * time.Minute)
}
