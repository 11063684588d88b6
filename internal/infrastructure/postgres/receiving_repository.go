package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

var _ repository.ReceivingRepository = (*ReceivingRepo)(nil)

const receivingColumns = `
	id, store_id, receiving_number, COALESCE(supplier_id::text, ''),
	supplier_invoice_number, total_cost, notes, received_by, created_at`

// ReceivingRepo implementación del puerto ReceivingRepository sobre PostgreSQL (usable con pool o tx).
type ReceivingRepo struct {
	q Querier
}

// NewReceivingRepository construye el adaptador de persistencia para recepciones. Pasar pool o tx (Querier).
func NewReceivingRepository(q Querier) *ReceivingRepo {
	return &ReceivingRepo{q: q}
}

// Create persiste la cabecera de la recepción.
func (r *ReceivingRepo) Create(receiving *entity.StockReceiving) error {
	query := `
		INSERT INTO stock_receivings (id, store_id, receiving_number, supplier_id,
			supplier_invoice_number, total_cost, notes, received_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		receiving.ID, receiving.StoreID, receiving.ReceivingNumber,
		nullIfEmpty(receiving.SupplierID), receiving.SupplierInvoiceNumber,
		receiving.TotalCost, receiving.Notes, receiving.ReceivedByID, receiving.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert receiving: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de recepción.
func (r *ReceivingRepo) CreateItem(item *entity.StockReceivingItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_receiving_items (id, receiving_id, medicine_id, batch_id,
			batch_number, expiry_date, quantity, purchase_price, selling_price, line_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.ReceivingID, item.MedicineID, item.BatchID, item.BatchNumber,
		item.ExpiryDate, item.Quantity, item.PurchasePrice, item.SellingPrice,
		item.LineCost, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert receiving item: %w", err)
	}
	return nil
}

// GetByID obtiene una recepción por ID.
func (r *ReceivingRepo) GetByID(id string) (*entity.StockReceiving, error) {
	query := `SELECT ` + receivingColumns + ` FROM stock_receivings WHERE id = $1`
	rec, err := scanReceiving(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receiving: %w", err)
	}
	return rec, nil
}

// GetByNumber obtiene una recepción por su número de documento.
func (r *ReceivingRepo) GetByNumber(receivingNumber string) (*entity.StockReceiving, error) {
	query := `SELECT ` + receivingColumns + ` FROM stock_receivings WHERE receiving_number = $1`
	rec, err := scanReceiving(r.q.QueryRow(context.Background(), query, receivingNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receiving by number: %w", err)
	}
	return rec, nil
}

// GetItemsByReceivingID obtiene todas las líneas de una recepción.
func (r *ReceivingRepo) GetItemsByReceivingID(receivingID string) ([]*entity.StockReceivingItem, error) {
	query := `
		SELECT id, receiving_id, medicine_id, batch_id, batch_number, expiry_date,
			quantity, purchase_price, selling_price, line_cost, created_at
		FROM stock_receiving_items WHERE receiving_id = $1 ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, receivingID)
	if err != nil {
		return nil, fmt.Errorf("list receiving items: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockReceivingItem
	for rows.Next() {
		var it entity.StockReceivingItem
		if err := rows.Scan(&it.ID, &it.ReceivingID, &it.MedicineID, &it.BatchID, &it.BatchNumber,
			&it.ExpiryDate, &it.Quantity, &it.PurchasePrice, &it.SellingPrice, &it.LineCost, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan receiving item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// List lista recepciones de una tienda con filtro opcional de fechas, las más recientes primero.
func (r *ReceivingRepo) List(storeID string, from, to *time.Time, limit, offset int) ([]*entity.StockReceiving, error) {
	query := `SELECT ` + receivingColumns + ` FROM stock_receivings WHERE store_id = $1`
	args := []any{storeID}
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

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list receivings: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockReceiving
	for rows.Next() {
		rec, err := scanReceiving(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receiving: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func scanReceiving(row pgx.Row) (*entity.StockReceiving, error) {
	var rec entity.StockReceiving
	err := row.Scan(
		&rec.ID, &rec.StoreID, &rec.ReceivingNumber, &rec.SupplierID,
		&rec.SupplierInvoiceNumber, &rec.TotalCost, &rec.Notes, &rec.ReceivedByID,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
