package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes de ventas de ambos
// canales (retail y farmacia).
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes. Pasar pool o tx (Querier).
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// GetSalesSummary agrega las ventas completadas del período en ambos canales.
// Las anuladas solo aparecen en el conteo de anulaciones. Devuelve ceros si el
// período no tiene ventas.
func (r *ReportRepo) GetSalesSummary(
	ctx context.Context,
	storeID string,
	from, to time.Time,
) (*repository.SalesSummaryResult, error) {
	const query = `
	WITH retail AS (
	    SELECT COUNT(*) FILTER (WHERE status = 'completed')                           AS sold,
	           COUNT(*) FILTER (WHERE status = 'voided')                              AS voided,
	           COALESCE(SUM(total)           FILTER (WHERE status = 'completed'), 0)  AS total,
	           COALESCE(SUM(tax_amount)      FILTER (WHERE status = 'completed'), 0)  AS tax,
	           COALESCE(SUM(discount_amount) FILTER (WHERE status = 'completed'), 0)  AS discount
	    FROM sales
	    WHERE store_id = $1 AND created_at BETWEEN $2 AND $3
	),
	pharmacy AS (
	    SELECT COUNT(*) FILTER (WHERE status = 'completed')                           AS sold,
	           COUNT(*) FILTER (WHERE status = 'voided')                              AS voided,
	           COALESCE(SUM(total)           FILTER (WHERE status = 'completed'), 0)  AS total,
	           COALESCE(SUM(discount_amount) FILTER (WHERE status = 'completed'), 0)  AS discount
	    FROM pharmacy_sales
	    WHERE store_id = $1 AND created_at BETWEEN $2 AND $3
	)
	SELECT r.sold, r.total, r.tax, p.sold, p.total,
	       r.voided + p.voided                                                        AS voided,
	       r.discount + p.discount                                                    AS discount,
	       CASE WHEN r.sold + p.sold = 0 THEN 0
	            ELSE (r.total + p.total) / (r.sold + p.sold) END                      AS average_ticket
	FROM retail r, pharmacy p`

	var res repository.SalesSummaryResult
	err := r.q.QueryRow(ctx, query, storeID, from, to).Scan(
		&res.RetailCount,
		&res.RetailTotal,
		&res.RetailTax,
		&res.PharmacyCount,
		&res.PharmacyTotal,
		&res.VoidedCount,
		&res.DiscountTotal,
		&res.AverageTicket,
	)
	if err != nil {
		return nil, fmt.Errorf("reports.GetSalesSummary: %w", err)
	}
	return &res, nil
}

// GetTopProducts devuelve los productos retail más vendidos del período,
// por unidades vendidas, con el ingreso bruto como desempate.
func (r *ReportRepo) GetTopProducts(
	ctx context.Context,
	storeID string,
	from, to time.Time,
	limit int,
) ([]repository.TopItemResult, error) {
	const query = `
	SELECT si.product_id::text, p.name, p.sku,
	       SUM(si.quantity)  AS units_sold,
	       SUM(si.subtotal)  AS gross_revenue
	FROM sale_items si
	JOIN sales    s ON s.id = si.sale_id
	JOIN products p ON p.id = si.product_id
	WHERE s.store_id = $1
	  AND s.created_at BETWEEN $2 AND $3
	  AND s.status = 'completed'
	GROUP BY si.product_id, p.name, p.sku
	ORDER BY units_sold DESC, gross_revenue DESC
	LIMIT $4`

	return r.listTopItems(ctx, "reports.GetTopProducts", query, storeID, from, to, limit)
}

// GetTopMedicines devuelve los medicamentos más dispensados del período,
// por unidades, con el ingreso bruto como desempate.
func (r *ReportRepo) GetTopMedicines(
	ctx context.Context,
	storeID string,
	from, to time.Time,
	limit int,
) ([]repository.TopItemResult, error) {
	const query = `
	SELECT pi.medicine_id::text, m.brand_name, m.sku,
	       SUM(pi.quantity)  AS units_sold,
	       SUM(pi.subtotal)  AS gross_revenue
	FROM pharmacy_sale_items pi
	JOIN pharmacy_sales ps ON ps.id = pi.sale_id
	JOIN medicines      m  ON m.id  = pi.medicine_id
	WHERE ps.store_id = $1
	  AND ps.created_at BETWEEN $2 AND $3
	  AND ps.status = 'completed'
	GROUP BY pi.medicine_id, m.brand_name, m.sku
	ORDER BY units_sold DESC, gross_revenue DESC
	LIMIT $4`

	return r.listTopItems(ctx, "reports.GetTopMedicines", query, storeID, from, to, limit)
}

// GetPaymentBreakdown devuelve lo recaudado por medio de pago en el período,
// excluyendo ventas anuladas, de mayor a menor recaudo.
func (r *ReportRepo) GetPaymentBreakdown(
	ctx context.Context,
	storeID string,
	from, to time.Time,
) ([]repository.PaymentBreakdownResult, error) {
	const query = `
	SELECT pm.method, COUNT(*), COALESCE(SUM(pm.amount), 0) AS collected
	FROM payments pm
	LEFT JOIN sales          s  ON s.id  = pm.sale_id
	LEFT JOIN pharmacy_sales ps ON ps.id = pm.pharmacy_sale_id
	WHERE COALESCE(s.store_id, ps.store_id) = $1
	  AND pm.created_at BETWEEN $2 AND $3
	  AND COALESCE(s.status, ps.status) <> 'voided'
	GROUP BY pm.method
	ORDER BY collected DESC`

	rows, err := r.q.Query(ctx, query, storeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports.GetPaymentBreakdown: %w", err)
	}
	defer rows.Close()

	var results []repository.PaymentBreakdownResult
	for rows.Next() {
		var row repository.PaymentBreakdownResult
		if err := rows.Scan(&row.Method, &row.Count, &row.Total); err != nil {
			return nil, fmt.Errorf("reports.GetPaymentBreakdown scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

func (r *ReportRepo) listTopItems(ctx context.Context, label, query string, args ...any) ([]repository.TopItemResult, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	defer rows.Close()

	var results []repository.TopItemResult
	for rows.Next() {
		var row repository.TopItemResult
		if err := rows.Scan(
			&row.ItemID,
			&row.Name,
			&row.SKU,
			&row.UnitsSold,
			&row.GrossRevenue,
		); err != nil {
			return nil, fmt.Errorf("%s scan: %w", label, err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
