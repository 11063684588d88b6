package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

var _ repository.MedicineStockMovementRepository = (*MedicineStockMovementRepo)(nil)

const medicineMovementColumns = `
	id, medicine_id, batch_id, movement_type, quantity, previous_quantity, new_quantity,
	COALESCE(pharmacy_sale_id::text, ''), COALESCE(receiving_id::text, ''),
	reference, notes, created_by, created_at`

// MedicineStockMovementRepo implementación del puerto
// MedicineStockMovementRepository sobre PostgreSQL (usable con pool o tx).
// El libro es de solo inserción.
type MedicineStockMovementRepo struct {
	q Querier
}

// NewMedicineStockMovementRepository construye el adaptador del libro de movimientos de farmacia. Pasar pool o tx (Querier).
func NewMedicineStockMovementRepository(q Querier) *MedicineStockMovementRepo {
	return &MedicineStockMovementRepo{q: q}
}

// Create persiste un asiento del libro de farmacia.
func (r *MedicineStockMovementRepo) Create(movement *entity.MedicineStockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO medicine_stock_movements (id, medicine_id, batch_id, movement_type, quantity,
			previous_quantity, new_quantity, pharmacy_sale_id, receiving_id, reference, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.MedicineID, movement.BatchID, movement.MovementType,
		movement.Quantity, movement.PreviousQuantity, movement.NewQuantity,
		nullIfEmpty(movement.PharmacySaleID), nullIfEmpty(movement.ReceivingID),
		movement.Reference, movement.Notes, movement.CreatedBy, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert medicine movement: %w", err)
	}
	return nil
}

// ListByMedicine lista asientos de un medicamento en un rango de fechas, los más recientes primero.
func (r *MedicineStockMovementRepo) ListByMedicine(medicineID string, from, to *time.Time, limit, offset int) ([]*entity.MedicineStockMovement, error) {
	query := `SELECT ` + medicineMovementColumns + ` FROM medicine_stock_movements WHERE medicine_id = $1`
	args := []any{medicineID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args...)
}

// ListByBatch lista los asientos de un lote en orden de creación.
func (r *MedicineStockMovementRepo) ListByBatch(batchID string) ([]*entity.MedicineStockMovement, error) {
	query := `SELECT ` + medicineMovementColumns + `
		FROM medicine_stock_movements WHERE batch_id = $1 ORDER BY created_at ASC`
	return r.list(query, batchID)
}

// ListBySale lista los asientos generados por una dispensación, en orden de creación.
func (r *MedicineStockMovementRepo) ListBySale(pharmacySaleID string) ([]*entity.MedicineStockMovement, error) {
	query := `SELECT ` + medicineMovementColumns + `
		FROM medicine_stock_movements WHERE pharmacy_sale_id = $1 ORDER BY created_at ASC`
	return r.list(query, pharmacySaleID)
}

func (r *MedicineStockMovementRepo) list(query string, args ...any) ([]*entity.MedicineStockMovement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list medicine movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.MedicineStockMovement
	for rows.Next() {
		m, err := scanMedicineMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medicine movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMedicineMovement(row pgx.Row) (*entity.MedicineStockMovement, error) {
	var m entity.MedicineStockMovement
	err := row.Scan(
		&m.ID, &m.MedicineID, &m.BatchID, &m.MovementType, &m.Quantity,
		&m.PreviousQuantity, &m.NewQuantity, &m.PharmacySaleID, &m.ReceivingID,
		&m.Reference, &m.Notes, &m.CreatedBy, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
