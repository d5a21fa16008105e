package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo implementación del workflow de ajuste sobre PostgreSQL.
// Mismas guardas de estado que TransferRepo.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

// Create persiste cabecera y líneas.
func (r *AdjustmentRepo) Create(a *entity.Adjustment) error {
	ctx := context.Background()
	header := `
		INSERT INTO adjustments (id, number, status, reason, requested_by, approved_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, header,
		a.ID, a.Number, a.Status, a.Reason, a.RequestedBy, a.ApprovedBy, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert adjustment: %w", err)
	}
	line := `
		INSERT INTO adjustment_lines (id, adjustment_id, product_id, warehouse_id, adjustment_type, quantity, rate, serial_numbers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, l := range a.Lines {
		_, err := r.q.Exec(ctx, line,
			l.ID, l.AdjustmentID, l.ProductID, l.WarehouseID, l.AdjustmentType, l.Quantity, l.Rate, l.SerialNumbers)
		if err != nil {
			return fmt.Errorf("insert adjustment line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene cabecera y líneas. nil si no existe.
func (r *AdjustmentRepo) GetByID(id string) (*entity.Adjustment, error) {
	ctx := context.Background()
	header := `
		SELECT id, number, status, reason, requested_by, approved_by,
		       created_at, updated_at, requested_at, approved_at, posted_at
		FROM adjustments WHERE id = $1`
	var a entity.Adjustment
	err := r.q.QueryRow(ctx, header, id).Scan(
		&a.ID, &a.Number, &a.Status, &a.Reason, &a.RequestedBy, &a.ApprovedBy,
		&a.CreatedAt, &a.UpdatedAt, &a.RequestedAt, &a.ApprovedAt, &a.PostedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get adjustment: %w", err)
	}

	lines := `
		SELECT id, adjustment_id, product_id, warehouse_id, adjustment_type, quantity, rate, serial_numbers
		FROM adjustment_lines WHERE adjustment_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, lines, id)
	if err != nil {
		return nil, fmt.Errorf("list adjustment lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.AdjustmentLine
		if err := rows.Scan(&l.ID, &l.AdjustmentID, &l.ProductID, &l.WarehouseID,
			&l.AdjustmentType, &l.Quantity, &l.Rate, &l.SerialNumbers); err != nil {
			return nil, fmt.Errorf("scan adjustment line: %w", err)
		}
		a.Lines = append(a.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &a, nil
}

// MarkRequested transiciona DRAFT -> REQUESTED.
func (r *AdjustmentRepo) MarkRequested(id string, at time.Time) error {
	query := `
		UPDATE adjustments SET status = $1, requested_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4`
	return r.guardedUpdate(id, query,
		entity.AdjustmentStatusRequested, at, id, entity.AdjustmentStatusDraft)
}

// MarkApproved transiciona REQUESTED -> APPROVED registrando el aprobador.
func (r *AdjustmentRepo) MarkApproved(id, approvedBy string, at time.Time) error {
	query := `
		UPDATE adjustments SET status = $1, approved_by = $2, approved_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5`
	return r.guardedUpdate(id, query,
		entity.AdjustmentStatusApproved, approvedBy, at, id, entity.AdjustmentStatusRequested)
}

// MarkRejected transiciona REQUESTED -> REJECTED.
func (r *AdjustmentRepo) MarkRejected(id, approvedBy, reason string, at time.Time) error {
	query := `
		UPDATE adjustments SET status = $1, approved_by = $2, reason = $3, approved_at = $4, updated_at = $4
		WHERE id = $5 AND status = $6`
	return r.guardedUpdate(id, query,
		entity.AdjustmentStatusRejected, approvedBy, reason, at, id, entity.AdjustmentStatusRequested)
}

// MarkPosted transiciona APPROVED -> POSTED dentro de la tx del Post.
func (r *AdjustmentRepo) MarkPosted(id string, at time.Time) error {
	query := `
		UPDATE adjustments SET status = $1, posted_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4`
	return r.guardedUpdate(id, query,
		entity.AdjustmentStatusPosted, at, id, entity.AdjustmentStatusApproved)
}

// ListByStatus lista cabeceras por estado (sin líneas).
func (r *AdjustmentRepo) ListByStatus(status string, limit, offset int) ([]*entity.Adjustment, error) {
	query := `
		SELECT id, number, status, reason, requested_by, approved_by,
		       created_at, updated_at, requested_at, approved_at, posted_at
		FROM adjustments WHERE status = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Adjustment
	for rows.Next() {
		var a entity.Adjustment
		if err := rows.Scan(&a.ID, &a.Number, &a.Status, &a.Reason, &a.RequestedBy, &a.ApprovedBy,
			&a.CreatedAt, &a.UpdatedAt, &a.RequestedAt, &a.ApprovedAt, &a.PostedAt); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

func (r *AdjustmentRepo) guardedUpdate(id, query string, args ...any) error {
	tag, err := r.q.Exec(context.Background(), query, args...)
	if err != nil {
		return fmt.Errorf("update adjustment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(context.Background(),
			`SELECT EXISTS(SELECT 1 FROM adjustments WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check adjustment exists: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrWorkflowState
	}
	return nil
}
