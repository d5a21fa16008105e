package repository

import (
	"time"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// TransferRepository define el puerto de persistencia del workflow de traslado.
// Las transiciones de estado son updates guardados por el estado previo
// esperado (WHERE status = ...): una repetición concurrente o fuera de
// secuencia falla con domain.ErrWorkflowState en lugar de aplicarse dos veces.
type TransferRepository interface {
	Create(transfer *entity.Transfer) error
	GetByID(id string) (*entity.Transfer, error)
	MarkRequested(id string, at time.Time) error
	MarkApproved(id, approvedBy string, at time.Time) error
	MarkRejected(id, approvedBy, reason string, at time.Time) error
	MarkReceived(id string, at time.Time) error
	ListByStatus(status string, limit, offset int) ([]*entity.Transfer, error)
}
