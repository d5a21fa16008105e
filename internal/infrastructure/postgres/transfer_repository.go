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

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación del workflow de traslado sobre PostgreSQL.
// Los cambios de estado son UPDATEs guardados por el estado previo esperado:
// cero filas afectadas significa llamada fuera de secuencia (ErrWorkflowState)
// o documento inexistente (ErrNotFound).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create persiste cabecera y líneas.
func (r *TransferRepo) Create(t *entity.Transfer) error {
	ctx := context.Background()
	header := `
		INSERT INTO transfers (id, number, status, requested_by, approved_by, remarks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, header,
		t.ID, t.Number, t.Status, t.RequestedBy, t.ApprovedBy, t.Remarks, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	line := `
		INSERT INTO transfer_lines (id, transfer_id, product_id, from_warehouse_id, to_warehouse_id, quantity, serial_numbers)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, l := range t.Lines {
		_, err := r.q.Exec(ctx, line,
			l.ID, l.TransferID, l.ProductID, l.FromWarehouseID, l.ToWarehouseID, l.Quantity, l.SerialNumbers)
		if err != nil {
			return fmt.Errorf("insert transfer line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene cabecera y líneas. nil si no existe.
func (r *TransferRepo) GetByID(id string) (*entity.Transfer, error) {
	ctx := context.Background()
	header := `
		SELECT id, number, status, requested_by, approved_by, remarks,
		       created_at, updated_at, requested_at, approved_at, received_at
		FROM transfers WHERE id = $1`
	var t entity.Transfer
	err := r.q.QueryRow(ctx, header, id).Scan(
		&t.ID, &t.Number, &t.Status, &t.RequestedBy, &t.ApprovedBy, &t.Remarks,
		&t.CreatedAt, &t.UpdatedAt, &t.RequestedAt, &t.ApprovedAt, &t.ReceivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}

	lines := `
		SELECT id, transfer_id, product_id, from_warehouse_id, to_warehouse_id, quantity, serial_numbers
		FROM transfer_lines WHERE transfer_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, lines, id)
	if err != nil {
		return nil, fmt.Errorf("list transfer lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.TransferLine
		if err := rows.Scan(&l.ID, &l.TransferID, &l.ProductID, &l.FromWarehouseID,
			&l.ToWarehouseID, &l.Quantity, &l.SerialNumbers); err != nil {
			return nil, fmt.Errorf("scan transfer line: %w", err)
		}
		t.Lines = append(t.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkRequested transiciona DRAFT -> REQUESTED.
func (r *TransferRepo) MarkRequested(id string, at time.Time) error {
	query := `
		UPDATE transfers SET status = $1, requested_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4`
	return r.guardedUpdate(id, query,
		entity.TransferStatusRequested, at, id, entity.TransferStatusDraft)
}

// MarkApproved transiciona REQUESTED -> APPROVED registrando el aprobador.
func (r *TransferRepo) MarkApproved(id, approvedBy string, at time.Time) error {
	query := `
		UPDATE transfers SET status = $1, approved_by = $2, approved_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5`
	return r.guardedUpdate(id, query,
		entity.TransferStatusApproved, approvedBy, at, id, entity.TransferStatusRequested)
}

// MarkRejected transiciona REQUESTED -> REJECTED.
func (r *TransferRepo) MarkRejected(id, approvedBy, reason string, at time.Time) error {
	query := `
		UPDATE transfers SET status = $1, approved_by = $2, remarks = $3, approved_at = $4, updated_at = $4
		WHERE id = $5 AND status = $6`
	return r.guardedUpdate(id, query,
		entity.TransferStatusRejected, approvedBy, reason, at, id, entity.TransferStatusRequested)
}

// MarkReceived transiciona APPROVED -> RECEIVED. Debe correr en la misma tx
// que los movimientos del Receive: la guarda de estado convierte un Receive
// repetido en ErrWorkflowState sin asientos adicionales.
func (r *TransferRepo) MarkReceived(id string, at time.Time) error {
	query := `
		UPDATE transfers SET status = $1, received_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4`
	return r.guardedUpdate(id, query,
		entity.TransferStatusReceived, at, id, entity.TransferStatusApproved)
}

// ListByStatus lista cabeceras por estado (sin líneas).
func (r *TransferRepo) ListByStatus(status string, limit, offset int) ([]*entity.Transfer, error) {
	query := `
		SELECT id, number, status, requested_by, approved_by, remarks,
		       created_at, updated_at, requested_at, approved_at, received_at
		FROM transfers WHERE status = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transfer
	for rows.Next() {
		var t entity.Transfer
		if err := rows.Scan(&t.ID, &t.Number, &t.Status, &t.RequestedBy, &t.ApprovedBy, &t.Remarks,
			&t.CreatedAt, &t.UpdatedAt, &t.RequestedAt, &t.ApprovedAt, &t.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// guardedUpdate ejecuta un update condicionado por estado y traduce cero filas
// afectadas al error tipado correcto.
func (r *TransferRepo) guardedUpdate(id, query string, args ...any) error {
	tag, err := r.q.Exec(context.Background(), query, args...)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(context.Background(),
			`SELECT EXISTS(SELECT 1 FROM transfers WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check transfer exists: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrWorkflowState
	}
	return nil
}
