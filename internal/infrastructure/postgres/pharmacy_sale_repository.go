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

var _ repository.PharmacySaleRepository = (*PharmacySaleRepo)(nil)

const pharmacySaleColumns = `
	id, store_id, invoice_number, customer_name, customer_phone, has_prescription,
	prescription_number, prescriber_name, dispenser_id, subtotal, discount_amount,
	tax_amount, total, payment_method, amount_paid, change_amount, status,
	COALESCE(voided_by::text, ''), voided_at, void_reason, notes, created_at`

// PharmacySaleRepo implementación del puerto PharmacySaleRepository sobre PostgreSQL (usable con pool o tx).
type PharmacySaleRepo struct {
	q Querier
}

// NewPharmacySaleRepository construye el adaptador de persistencia para dispensaciones. Pasar pool o tx (Querier).
func NewPharmacySaleRepository(q Querier) *PharmacySaleRepo {
	return &PharmacySaleRepo{q: q}
}

// Create persiste la cabecera de la dispensación.
func (r *PharmacySaleRepo) Create(sale *entity.PharmacySale) error {
	query := `
		INSERT INTO pharmacy_sales (id, store_id, invoice_number, customer_name, customer_phone,
			has_prescription, prescription_number, prescriber_name, dispenser_id, subtotal,
			discount_amount, tax_amount, total, payment_method, amount_paid, change_amount,
			status, voided_by, voided_at, void_reason, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.StoreID, sale.InvoiceNumber, sale.CustomerName, sale.CustomerPhone,
		sale.HasPrescription, sale.PrescriptionNumber, sale.PrescriberName, sale.DispenserID,
		sale.Subtotal, sale.DiscountAmount, sale.TaxAmount, sale.Total, sale.PaymentMethod,
		sale.AmountPaid, sale.ChangeAmount, sale.Status, nullIfEmpty(sale.VoidedByID),
		sale.VoidedAt, sale.VoidReason, sale.Notes, sale.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert pharmacy sale: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de dispensación.
func (r *PharmacySaleRepo) CreateItem(item *entity.PharmacySaleItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO pharmacy_sale_items (id, sale_id, medicine_id, batch_id, medicine_name,
			batch_number, expiry_date, quantity, unit_price, discount_percent, subtotal,
			requires_prescription, prescription_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SaleID, item.MedicineID, item.BatchID, item.MedicineName,
		item.BatchNumber, item.ExpiryDate, item.Quantity, item.UnitPrice,
		item.DiscountPercent, item.Subtotal, item.RequiresPrescription,
		item.PrescriptionVerified, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pharmacy sale item: %w", err)
	}
	return nil
}

// GetByID obtiene una dispensación por ID.
func (r *PharmacySaleRepo) GetByID(id string) (*entity.PharmacySale, error) {
	query := `SELECT ` + pharmacySaleColumns + ` FROM pharmacy_sales WHERE id = $1`
	s, err := scanPharmacySale(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pharmacy sale: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene una dispensación y bloquea la fila (SELECT FOR UPDATE).
// Serializa anulaciones concurrentes de la misma venta.
func (r *PharmacySaleRepo) GetForUpdate(id string) (*entity.PharmacySale, error) {
	query := `SELECT ` + pharmacySaleColumns + ` FROM pharmacy_sales WHERE id = $1 FOR UPDATE`
	s, err := scanPharmacySale(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pharmacy sale for update: %w", err)
	}
	return s, nil
}

// GetByInvoiceNumber obtiene una dispensación por su número de comprobante.
func (r *PharmacySaleRepo) GetByInvoiceNumber(invoiceNumber string) (*entity.PharmacySale, error) {
	query := `SELECT ` + pharmacySaleColumns + ` FROM pharmacy_sales WHERE invoice_number = $1`
	s, err := scanPharmacySale(r.q.QueryRow(context.Background(), query, invoiceNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pharmacy sale by number: %w", err)
	}
	return s, nil
}

// GetItemsBySaleID obtiene todas las líneas de una dispensación.
func (r *PharmacySaleRepo) GetItemsBySaleID(saleID string) ([]*entity.PharmacySaleItem, error) {
	query := `
		SELECT id, sale_id, medicine_id, batch_id, medicine_name, batch_number,
			expiry_date, quantity, unit_price, discount_percent, subtotal,
			requires_prescription, prescription_verified, created_at
		FROM pharmacy_sale_items WHERE sale_id = $1 ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list pharmacy sale items: %w", err)
	}
	defer rows.Close()
	var list []*entity.PharmacySaleItem
	for rows.Next() {
		var it entity.PharmacySaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.MedicineID, &it.BatchID, &it.MedicineName,
			&it.BatchNumber, &it.ExpiryDate, &it.Quantity, &it.UnitPrice, &it.DiscountPercent,
			&it.Subtotal, &it.RequiresPrescription, &it.PrescriptionVerified, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pharmacy sale item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Update persiste la transición de anulación. El resto de la venta es inmutable.
func (r *PharmacySaleRepo) Update(sale *entity.PharmacySale) error {
	query := `
		UPDATE pharmacy_sales SET status = $2, voided_by = $3, voided_at = $4, void_reason = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.Status, nullIfEmpty(sale.VoidedByID), sale.VoidedAt, sale.VoidReason,
	)
	if err != nil {
		return fmt.Errorf("update pharmacy sale: %w", err)
	}
	return nil
}

// List lista dispensaciones de una tienda con filtros opcionales de fecha y estado.
func (r *PharmacySaleRepo) List(storeID string, from, to *time.Time, status string, limit, offset int) ([]*entity.PharmacySale, error) {
	query := `SELECT ` + pharmacySaleColumns + ` FROM pharmacy_sales WHERE store_id = $1`
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
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, status)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pharmacy sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.PharmacySale
	for rows.Next() {
		s, err := scanPharmacySale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pharmacy sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanPharmacySale(row pgx.Row) (*entity.PharmacySale, error) {
	var s entity.PharmacySale
	err := row.Scan(
		&s.ID, &s.StoreID, &s.InvoiceNumber, &s.CustomerName, &s.CustomerPhone,
		&s.HasPrescription, &s.PrescriptionNumber, &s.PrescriberName, &s.DispenserID,
		&s.Subtotal, &s.DiscountAmount, &s.TaxAmount, &s.Total, &s.PaymentMethod,
		&s.AmountPaid, &s.ChangeAmount, &s.Status, &s.VoidedByID, &s.VoidedAt,
		&s.VoidReason, &s.Notes, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
