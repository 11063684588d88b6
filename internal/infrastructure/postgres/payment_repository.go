package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación del puerto PaymentRepository sobre PostgreSQL (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador de persistencia para pagos. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create persiste un pago. Exactamente una de las dos referencias de venta va poblada.
func (r *PaymentRepo) Create(payment *entity.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	query := `
		INSERT INTO payments (id, sale_id, pharmacy_sale_id, method, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		payment.ID, nullIfEmpty(payment.SaleID), nullIfEmpty(payment.PharmacySaleID),
		payment.Method, payment.Amount, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ListBySale lista los pagos de una venta retail.
func (r *PaymentRepo) ListBySale(saleID string) ([]*entity.Payment, error) {
	query := `
		SELECT id, COALESCE(sale_id::text, ''), COALESCE(pharmacy_sale_id::text, ''), method, amount, created_at
		FROM payments WHERE sale_id = $1 ORDER BY created_at ASC`
	return r.list(query, saleID)
}

// ListByPharmacySale lista los pagos de una dispensación.
func (r *PaymentRepo) ListByPharmacySale(pharmacySaleID string) ([]*entity.Payment, error) {
	query := `
		SELECT id, COALESCE(sale_id::text, ''), COALESCE(pharmacy_sale_id::text, ''), method, amount, created_at
		FROM payments WHERE pharmacy_sale_id = $1 ORDER BY created_at ASC`
	return r.list(query, pharmacySaleID)
}

func (r *PaymentRepo) list(query string, args ...any) ([]*entity.Payment, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.PharmacySaleID, &p.Method, &p.Amount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
