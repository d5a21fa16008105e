package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-core/internal/domain"
	"github.com/jhoicas/inventario-core/internal/domain/entity"
	"github.com/jhoicas/inventario-core/internal/domain/repository"
)

var _ repository.SerialRepository = (*SerialRepo)(nil)

const serialColumns = `id, serial_number, product_id, warehouse_id, stock_id, status,
		source_type, source_id, issued_against, reference_number,
		inward_date, outward_date, created_at, updated_at`

// SerialRepo implementación del registro de seriales sobre PostgreSQL.
// Las transiciones son UPDATEs condicionales guardados por el estado actual
// (compare-and-set): si la fila no cumple la guarda, cero filas afectadas y el
// caller recibe el error tipado correspondiente. Así dos reclamos concurrentes
// del mismo serial compiten de forma segura.
type SerialRepo struct {
	q Querier
}

// NewSerialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSerialRepository(q Querier) *SerialRepo {
	return &SerialRepo{q: q}
}

// Create persiste un serial nuevo. Falla con ErrSerialAlreadyExists si
// (serial_number, product_id) ya existe.
func (r *SerialRepo) Create(serial *entity.StockSerial) error {
	if serial.ID == "" {
		serial.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_serials (id, serial_number, product_id, warehouse_id, stock_id, status,
			source_type, source_id, issued_against, reference_number, inward_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		serial.ID, serial.SerialNumber, serial.ProductID, serial.WarehouseID, serial.StockID,
		serial.Status, serial.SourceType, serial.SourceID, serial.IssuedAgainst,
		serial.ReferenceNumber, serial.InwardDate, serial.CreatedAt, serial.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSerialAlreadyExists
		}
		return fmt.Errorf("create stock serial: %w", err)
	}
	return nil
}

// GetBySerialNumber obtiene un serial por (serial_number, product_id). nil si no existe.
func (r *SerialRepo) GetBySerialNumber(serialNumber, productID string) (*entity.StockSerial, error) {
	query := `
		SELECT ` + serialColumns + `
		FROM stock_serials WHERE serial_number = $1 AND product_id = $2`
	s, err := scanSerial(r.q.QueryRow(context.Background(), query, serialNumber, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock serial: %w", err)
	}
	return s, nil
}

// Claim transiciona a ISSUED solo si el serial sigue AVAILABLE en la bodega
// indicada (o RESERVED por el mismo documento). De dos intentos concurrentes
// gana exactamente uno; el otro recibe ErrSerialNotAvailable.
func (r *SerialRepo) Claim(serialNumber, productID, warehouseID, issuedAgainst, referenceNumber string, outwardDate time.Time) (*entity.StockSerial, error) {
	query := `
		UPDATE stock_serials
		SET status = $1, issued_against = $2, reference_number = $3, outward_date = $4, updated_at = now()
		WHERE serial_number = $5 AND product_id = $6 AND warehouse_id = $7
		  AND (status = $8 OR (status = $9 AND issued_against = $2))
		RETURNING ` + serialColumns
	s, err := scanSerial(r.q.QueryRow(context.Background(), query,
		entity.SerialStatusIssued, issuedAgainst, referenceNumber, outwardDate,
		serialNumber, productID, warehouseID,
		entity.SerialStatusAvailable, entity.SerialStatusReserved,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSerialNotAvailable
		}
		return nil, fmt.Errorf("claim stock serial: %w", err)
	}
	return s, nil
}

// Reserve transiciona AVAILABLE -> RESERVED anotando el documento que aparta.
func (r *SerialRepo) Reserve(serialNumber, productID, warehouseID, issuedAgainst string) (*entity.StockSerial, error) {
	query := `
		UPDATE stock_serials
		SET status = $1, issued_against = $2, updated_at = now()
		WHERE serial_number = $3 AND product_id = $4 AND warehouse_id = $5 AND status = $6
		RETURNING ` + serialColumns
	s, err := scanSerial(r.q.QueryRow(context.Background(), query,
		entity.SerialStatusReserved, issuedAgainst,
		serialNumber, productID, warehouseID, entity.SerialStatusAvailable,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSerialNotAvailable
		}
		return nil, fmt.Errorf("reserve stock serial: %w", err)
	}
	return s, nil
}

// ReleaseReservation transiciona RESERVED -> AVAILABLE.
func (r *SerialRepo) ReleaseReservation(serialNumber, productID, warehouseID string) (*entity.StockSerial, error) {
	query := `
		UPDATE stock_serials
		SET status = $1, issued_against = '', updated_at = now()
		WHERE serial_number = $2 AND product_id = $3 AND warehouse_id = $4 AND status = $5
		RETURNING ` + serialColumns
	s, err := scanSerial(r.q.QueryRow(context.Background(), query,
		entity.SerialStatusAvailable,
		serialNumber, productID, warehouseID, entity.SerialStatusReserved,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSerialNotAvailable
		}
		return nil, fmt.Errorf("release stock serial: %w", err)
	}
	return s, nil
}

// Relocate mueve un serial ISSUED (reclamado por el lado emisor del traslado)
// a su nueva bodega/stock y lo deja AVAILABLE.
func (r *SerialRepo) Relocate(serialNumber, productID, warehouseID, stockID, sourceType, sourceID string) (*entity.StockSerial, error) {
	return r.reactivateAt(serialNumber, productID, warehouseID, stockID, sourceType, sourceID, "relocate")
}

// Reactivate regresa un serial ISSUED a AVAILABLE (devoluciones).
func (r *SerialRepo) Reactivate(serialNumber, productID, warehouseID, stockID, sourceType, sourceID string) (*entity.StockSerial, error) {
	return r.reactivateAt(serialNumber, productID, warehouseID, stockID, sourceType, sourceID, "reactivate")
}

func (r *SerialRepo) reactivateAt(serialNumber, productID, warehouseID, stockID, sourceType, sourceID, op string) (*entity.StockSerial, error) {
	query := `
		UPDATE stock_serials
		SET warehouse_id = $1, stock_id = $2, status = $3, source_type = $4, source_id = $5,
		    issued_against = '', outward_date = NULL, updated_at = now()
		WHERE serial_number = $6 AND product_id = $7 AND status = $8
		RETURNING ` + serialColumns
	s, err := scanSerial(r.q.QueryRow(context.Background(), query,
		warehouseID, stockID, entity.SerialStatusAvailable, sourceType, sourceID,
		serialNumber, productID, entity.SerialStatusIssued,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSerialNotAvailable
		}
		return nil, fmt.Errorf("%s stock serial: %w", op, err)
	}
	return s, nil
}

// ListAvailable lista los seriales AVAILABLE de un producto en una bodega.
func (r *SerialRepo) ListAvailable(productID, warehouseID string) ([]*entity.StockSerial, error) {
	query := `
		SELECT ` + serialColumns + `
		FROM stock_serials
		WHERE product_id = $1 AND warehouse_id = $2 AND status = $3
		ORDER BY serial_number`
	rows, err := r.q.Query(context.Background(), query, productID, warehouseID, entity.SerialStatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("list available serials: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockSerial
	for rows.Next() {
		s, err := scanSerial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock serial: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanSerial(row pgx.Row) (*entity.StockSerial, error) {
	var s entity.StockSerial
	err := row.Scan(
		&s.ID, &s.SerialNumber, &s.ProductID, &s.WarehouseID, &s.StockID, &s.Status,
		&s.SourceType, &s.SourceID, &s.IssuedAgainst, &s.ReferenceNumber,
		&s.InwardDate, &s.OutwardDate, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
