package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummaryResponse resumen agregado de ventas de un período.
type SalesSummaryResponse struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	RetailCount   int             `json:"retail_count"`
	RetailTotal   decimal.Decimal `json:"retail_total"`
	RetailTax     decimal.Decimal `json:"retail_tax"`
	PharmacyCount int             `json:"pharmacy_count"`
	PharmacyTotal decimal.Decimal `json:"pharmacy_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	VoidedCount   int             `json:"voided_count"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// TopItemDTO producto o medicamento en el ranking de más vendidos.
type TopItemDTO struct {
	ItemID       string          `json:"item_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	UnitsSold    decimal.Decimal `json:"units_sold"`
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
}

// PaymentBreakdownDTO recaudo por medio de pago.
type PaymentBreakdownDTO struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// LowStockItemDTO producto bajo su mínimo, con el stock vendible real
// (derivado del padre cuando es producto hijo).
type LowStockItemDTO struct {
	ProductID      string          `json:"product_id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	ProductType    string          `json:"product_type"`
	EffectiveStock decimal.Decimal `json:"effective_stock"`
	MinStockLevel  decimal.Decimal `json:"min_stock_level"`
}

// ExpiringBatchDTO lote próximo a vencer o ya vencido.
type ExpiringBatchDTO struct {
	BatchID      string    `json:"batch_id"`
	MedicineID   string    `json:"medicine_id"`
	MedicineName string    `json:"medicine_name"`
	BatchNumber  string    `json:"batch_number"`
	ExpiryDate   time.Time `json:"expiry_date"`
	DaysToExpiry int       `json:"days_to_expiry"`
	Quantity     int64     `json:"quantity"`
	Status       string    `json:"status"`
}

// ImportResultResponse resultado de una importación de catálogo CSV.
type ImportResultResponse struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}
