package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummaryResult resultado crudo del resumen de ventas de un período.
// Lo produce la DB; el use case lo convierte en DTO.
type SalesSummaryResult struct {
	RetailCount   int
	RetailTotal   decimal.Decimal
	RetailTax     decimal.Decimal
	PharmacyCount int
	PharmacyTotal decimal.Decimal
	VoidedCount   int
	DiscountTotal decimal.Decimal
	AverageTicket decimal.Decimal
}

// TopItemResult resultado crudo de los más vendidos (producto o medicamento).
type TopItemResult struct {
	ItemID       string
	Name         string
	SKU          string
	UnitsSold    decimal.Decimal
	GrossRevenue decimal.Decimal
}

// PaymentBreakdownResult total recaudado por medio de pago en el período.
type PaymentBreakdownResult struct {
	Method string
	Count  int
	Total  decimal.Decimal
}

// ReportRepository define las consultas de lectura para reportes de ventas.
// Las implementaciones son read-only (no modifican datos) y excluyen las
// ventas anuladas salvo en el conteo de anulaciones.
type ReportRepository interface {
	// GetSalesSummary agrega ventas minoristas y de farmacia del período.
	GetSalesSummary(
		ctx context.Context,
		storeID string,
		from, to time.Time,
	) (*SalesSummaryResult, error)

	// GetTopProducts devuelve los productos minoristas más vendidos del período.
	GetTopProducts(
		ctx context.Context,
		storeID string,
		from, to time.Time,
		limit int,
	) ([]TopItemResult, error)

	// GetTopMedicines devuelve los medicamentos más dispensados del período.
	GetTopMedicines(
		ctx context.Context,
		storeID string,
		from, to time.Time,
		limit int,
	) ([]TopItemResult, error)

	// GetPaymentBreakdown devuelve lo recaudado por medio de pago en el período.
	GetPaymentBreakdown(
		ctx context.Context,
		storeID string,
		from, to time.Time,
	) ([]PaymentBreakdownResult, error)
}
