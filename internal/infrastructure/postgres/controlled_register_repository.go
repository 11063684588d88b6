package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

var _ repository.ControlledRegisterRepository = (*ControlledRegisterRepo)(nil)

const registerColumns = `
	id, medicine_id, batch_id, transaction_type, quantity, balance,
	customer_name, prescription_number, prescriber_name,
	COALESCE(pharmacy_sale_id::text, ''), COALESCE(receiving_id::text, ''),
	COALESCE(dispensed_by::text, ''), COALESCE(witnessed_by::text, ''), notes, created_at`

// ControlledRegisterRepo implementación del puerto ControlledRegisterRepository
// sobre PostgreSQL (usable con pool o tx). El registro es de solo inserción:
// no hay Update ni Delete.
type ControlledRegisterRepo struct {
	q Querier
}

// NewControlledRegisterRepository construye el adaptador del registro de controlados. Pasar pool o tx (Querier).
func NewControlledRegisterRepository(q Querier) *ControlledRegisterRepo {
	return &ControlledRegisterRepo{q: q}
}

// Create persiste un asiento del registro de controlados.
func (r *ControlledRegisterRepo) Create(entry *entity.ControlledRegisterEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO controlled_register_entries (id, medicine_id, batch_id, transaction_type,
			quantity, balance, customer_name, prescription_number, prescriber_name,
			pharmacy_sale_id, receiving_id, dispensed_by, witnessed_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.MedicineID, entry.BatchID, entry.TransactionType,
		entry.Quantity, entry.Balance, entry.CustomerName, entry.PrescriptionNumber,
		entry.PrescriberName, nullIfEmpty(entry.PharmacySaleID), nullIfEmpty(entry.ReceivingID),
		nullIfEmpty(entry.DispensedByID), nullIfEmpty(entry.WitnessedByID),
		entry.Notes, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert register entry: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID.
func (r *ControlledRegisterRepo) GetByID(id string) (*entity.ControlledRegisterEntry, error) {
	query := `SELECT ` + registerColumns + ` FROM controlled_register_entries WHERE id = $1`
	e, err := scanRegisterEntry(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get register entry: %w", err)
	}
	return e, nil
}

// ListByMedicine lista asientos de un medicamento en un rango de fechas, en orden cronológico.
func (r *ControlledRegisterRepo) ListByMedicine(medicineID string, from, to *time.Time, limit, offset int) ([]*entity.ControlledRegisterEntry, error) {
	query := `SELECT ` + registerColumns + ` FROM controlled_register_entries WHERE medicine_id = $1`
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
	query += fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args...)
}

// ListByBatch lista los asientos de un lote en orden cronológico.
func (r *ControlledRegisterRepo) ListByBatch(batchID string) ([]*entity.ControlledRegisterEntry, error) {
	query := `SELECT ` + registerColumns + `
		FROM controlled_register_entries WHERE batch_id = $1 ORDER BY created_at ASC`
	return r.list(query, batchID)
}

// ListByPeriod devuelve el registro completo del período en orden cronológico,
// para la exportación regulatoria.
func (r *ControlledRegisterRepo) ListByPeriod(from, to time.Time) ([]*entity.ControlledRegisterEntry, error) {
	query := `SELECT ` + registerColumns + `
		FROM controlled_register_entries
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at ASC`
	return r.list(query, from, to)
}

func (r *ControlledRegisterRepo) list(query string, args ...any) ([]*entity.ControlledRegisterEntry, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list register entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.ControlledRegisterEntry
	for rows.Next() {
		e, err := scanRegisterEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan register entry: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanRegisterEntry(row pgx.Row) (*entity.ControlledRegisterEntry, error) {
	var e entity.ControlledRegisterEntry
	err := row.Scan(
		&e.ID, &e.MedicineID, &e.BatchID, &e.TransactionType, &e.Quantity,
		&e.Balance, &e.CustomerName, &e.PrescriptionNumber, &e.PrescriberName,
		&e.PharmacySaleID, &e.ReceivingID, &e.DispensedByID, &e.WitnessedByID,
		&e.Notes, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
