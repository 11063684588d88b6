package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// KPIs del día y del mes en curso más las alertas operativas de inventario.
type DashboardSummaryDTO struct {
	// Métricas del día actual (00:00 – 23:59)
	TodaySales decimal.Decimal `json:"today_sales"` // ingreso de hoy, ambos canales
	TodayCount int             `json:"today_count"` // ventas de hoy, ambos canales

	// Métricas del mes en curso (día 1 – hoy)
	MonthSales decimal.Decimal `json:"month_sales"`
	MonthCount int             `json:"month_count"`

	// Top 5 productos minoristas por ingreso del mes
	TopProducts []TopItemDTO `json:"top_products"`

	// Alertas de inventario al momento de la consulta
	LowStockCount      int `json:"low_stock_count"`      // productos en o bajo su mínimo
	ExpiringBatchCount int `json:"expiring_batch_count"` // lotes que vencen en 30 días o menos

	// Metadatos del período
	DateLabel string `json:"date_label"` // ej: "Agosto 2026"
}
