package repository

import (
	"time"

	"github.com/jhoicas/inventario-core/internal/domain/entity"
)

// AdjustmentRepository define el puerto de persistencia del workflow de ajuste.
// Mismas guardas de estado que TransferRepository.
type AdjustmentRepository interface {
	Create(adjustment *entity.Adjustment) error
	GetByID(id string) (*entity.Adjustment, error)
	MarkRequested(id string, at time.Time) error
	MarkApproved(id, approvedBy string, at time.Time) error
	MarkRejected(id, approvedBy, reason string, at time.Time) error
	MarkPosted(id string, at time.Time) error
	ListByStatus(status string, limit, offset int) ([]*entity.Adjustment, error)
}
