package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// StockUseCase expone las operaciones del agregado Stock que no son
// movimientos: reservas (apartado blando que no toca on-hand ni el ledger)
// y consultas de stock y seriales.
type StockUseCase struct {
	txRunner    TxRunner
	stockRepo   repository.StockRepository
	serialRepo  repository.SerialRepository
	productRepo repository.ProductRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner TxRunner,
	stockRepo repository.StockRepository,
	serialRepo repository.SerialRepository,
	productRepo repository.ProductRepository,
) *StockUseCase {
	return &StockUseCase{
		txRunner:    txRunner,
		stockRepo:   stockRepo,
		serialRepo:  serialRepo,
		productRepo: productRepo,
	}
}

// Reserve aparta cantidad disponible sin mover stock físico ni escribir en el
// ledger. Falla con domain.ErrInsufficientAvailable si qty > disponible.
func (uc *StockUseCase) Reserve(ctx context.Context, productID, warehouseID string, qty decimal.Decimal, performedBy string) error {
	return uc.adjustReserved(ctx, productID, warehouseID, qty, performedBy, false)
}

// Release libera una reserva previa. Liberar más de lo reservado es entrada inválida.
func (uc *StockUseCase) Release(ctx context.Context, productID, warehouseID string, qty decimal.Decimal, performedBy string) error {
	return uc.adjustReserved(ctx, productID, warehouseID, qty, performedBy, true)
}

func (uc *StockUseCase) adjustReserved(ctx context.Context, productID, warehouseID string, qty decimal.Decimal, performedBy string, release bool) error {
	if productID == "" || warehouseID == "" || performedBy == "" || !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.txRunner.Run(ctx, func(
		_ repository.LedgerRepository,
		stockRepo repository.StockRepository,
		_ repository.SerialRepository,
	) error {
		stock, err := stockRepo.GetOrCreateForUpdate(product, warehouseID)
		if err != nil {
			return err
		}
		if release {
			if qty.GreaterThan(stock.QuantityReserved) {
				return domain.ErrInvalidInput
			}
			stock.QuantityReserved = stock.QuantityReserved.Sub(qty)
		} else {
			if qty.GreaterThan(stock.QuantityAvailable) {
				return domain.ErrInsufficientAvailable
			}
			stock.QuantityReserved = stock.QuantityReserved.Add(qty)
		}
		stock.RecalculateAvailable()
		stock.UpdatedAt = time.Now()
		return stockRepo.Update(stock)
	})
}

// GetStock devuelve el agregado de un (producto, bodega).
func (uc *StockUseCase) GetStock(ctx context.Context, productID, warehouseID string) (*entity.Stock, error) {
	stock, err := uc.stockRepo.Get(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return nil, domain.ErrNotFound
	}
	return stock, nil
}

// ListAvailableSerials lista los seriales libres de un producto en una bodega.
func (uc *StockUseCase) ListAvailableSerials(ctx context.Context, productID, warehouseID string) ([]*entity.StockSerial, error) {
	return uc.serialRepo.ListAvailable(productID, warehouseID)
}

// ValidateSerialAvailable verifica que un serial exista, esté en la bodega
// indicada y siga AVAILABLE. Útil para pre-validar documentos de salida.
func (uc *StockUseCase) ValidateSerialAvailable(ctx context.Context, serialNumber, productID, warehouseID string) error {
	serial, err := uc.serialRepo.GetBySerialNumber(serialNumber, productID)
	if err != nil {
		return err
	}
	if serial == nil {
		return domain.ErrNotFound
	}
	if serial.WarehouseID != warehouseID || !serial.IsAvailable() {
		return domain.ErrSerialNotAvailable
	}
	return nil
}

// ReserveSerial aparta un serial concreto (AVAILABLE -> RESERVED) a nombre de
// un documento. Solo ese documento podrá reclamarlo después.
func (uc *StockUseCase) ReserveSerial(ctx context.Context, serialNumber, productID, warehouseID, issuedAgainst string) (*entity.StockSerial, error) {
	if serialNumber == "" || productID == "" || warehouseID == "" || issuedAgainst == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.serialRepo.Reserve(serialNumber, productID, warehouseID, issuedAgainst)
}

// ReleaseSerial libera la reserva de un serial (RESERVED -> AVAILABLE).
func (uc *StockUseCase) ReleaseSerial(ctx context.Context, serialNumber, productID, warehouseID string) (*entity.StockSerial, error) {
	if serialNumber == "" || productID == "" || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.serialRepo.ReleaseReservation(serialNumber, productID, warehouseID)
}

// ListBelowMinimum lista los stocks bajo su mínimo de reorden (informativo).
func (uc *StockUseCase) ListBelowMinimum(ctx context.Context) ([]*entity.Stock, error) {
	return uc.stockRepo.ListBelowMinimum()
}
