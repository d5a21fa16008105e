package transfer

import (
	"context"

	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

// TxRunner abstrae la transacción del workflow de traslado: la transición
// terminal necesita los repos de movimiento y el del documento en la misma tx.
type TxRunner interface {
	RunTransfer(ctx context.Context, fn func(
		ledgerRepo repository.LedgerRepository,
		stockRepo repository.StockRepository,
		serialRepo repository.SerialRepository,
		transferRepo repository.TransferRepository,
	) error) error
}
