package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `
	id, medicine_id, batch_number, expiry_date, quantity, initial_quantity,
	purchase_price, selling_price, is_blocked, block_reason, created_at, updated_at`

// BatchRepo implementación del puerto BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de persistencia para lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste un nuevo lote.
func (r *BatchRepo) Create(batch *entity.Batch) error {
	query := `
		INSERT INTO batches (id, medicine_id, batch_number, expiry_date, quantity, initial_quantity,
			purchase_price, selling_price, is_blocked, block_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.MedicineID, batch.BatchNumber, batch.ExpiryDate,
		batch.Quantity, batch.InitialQuantity, batch.PurchasePrice, batch.SellingPrice,
		batch.IsBlocked, batch.BlockReason, batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// GetForUpdate obtiene un lote y bloquea la fila (SELECT FOR UPDATE).
// Solo tiene sentido dentro de una transacción.
func (r *BatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1 FOR UPDATE`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch for update: %w", err)
	}
	return b, nil
}

// GetByMedicineAndNumber obtiene un lote por medicamento y número de lote.
func (r *BatchRepo) GetByMedicineAndNumber(medicineID, batchNumber string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE medicine_id = $1 AND batch_number = $2`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, medicineID, batchNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch by number: %w", err)
	}
	return b, nil
}

// Update actualiza cantidad, precios y bloqueo de un lote. El número de lote,
// el medicamento y el vencimiento son inmutables.
func (r *BatchRepo) Update(batch *entity.Batch) error {
	query := `
		UPDATE batches SET quantity = $2, purchase_price = $3, selling_price = $4,
			is_blocked = $5, block_reason = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.Quantity, batch.PurchasePrice, batch.SellingPrice,
		batch.IsBlocked, batch.BlockReason, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

// ListByMedicine devuelve los lotes de un medicamento ordenados por
// vencimiento ascendente, empates por número de lote. Este orden es el que
// consume la selección FEFO en dominio.
func (r *BatchRepo) ListByMedicine(medicineID string) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches WHERE medicine_id = $1
		ORDER BY expiry_date ASC, batch_number ASC`
	return r.list(query, medicineID)
}

// ListExpiringBefore devuelve lotes con existencias que vencen en o antes del
// corte, incluidos los ya vencidos, ordenados del más urgente al menos.
func (r *BatchRepo) ListExpiringBefore(cutoff time.Time, limit, offset int) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches WHERE quantity > 0 AND expiry_date <= $1
		ORDER BY expiry_date ASC, batch_number ASC LIMIT $2 OFFSET $3`
	return r.list(query, cutoff, limit, offset)
}

// ListByStatusBlocked devuelve los lotes bloqueados, los más recientes primero.
func (r *BatchRepo) ListByStatusBlocked(limit, offset int) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + `
		FROM batches WHERE is_blocked = TRUE
		ORDER BY updated_at DESC LIMIT $1 OFFSET $2`
	return r.list(query, limit, offset)
}

func (r *BatchRepo) list(query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.MedicineID, &b.BatchNumber, &b.ExpiryDate, &b.Quantity,
		&b.InitialQuantity, &b.PurchasePrice, &b.SellingPrice, &b.IsBlocked,
		&b.BlockReason, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
