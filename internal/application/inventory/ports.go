package inventory

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// TxRunner abstrae la ejecución transaccional: corre fn con repositorios
// atados a una transacción y hace Commit/Rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledgerRepo repository.LedgerRepository,
		stockRepo repository.StockRepository,
		serialRepo repository.SerialRepository,
	) error) error
}
