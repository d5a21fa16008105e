package adjustment

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// TxRunner abstrae la transacción del workflow de ajuste.
type TxRunner interface {
	RunAdjustment(ctx context.Context, fn func(
		ledgerRepo repository.LedgerRepository,
		stockRepo repository.StockRepository,
		serialRepo repository.SerialRepository,
		adjustmentRepo repository.AdjustmentRepository,
	) error) error
}
