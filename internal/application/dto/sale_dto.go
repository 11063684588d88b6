package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de una venta minorista. El precio sale del catálogo,
// nunca del cliente.
type SaleItemRequest struct {
	ProductID       string          `json:"product_id" validate:"required,uuid"`
	Quantity        decimal.Decimal `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// CreateSaleRequest entrada para registrar una venta minorista.
type CreateSaleRequest struct {
	StoreID       string            `json:"store_id" validate:"required,uuid"`
	CustomerName  string            `json:"customer_name"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card mobile insurance"`
	AmountPaid    decimal.Decimal   `json:"amount_paid"`
	Notes         string            `json:"notes"`
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleItemResponse línea de una venta confirmada.
type SaleItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductSKU      string          `json:"product_sku"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// SaleResponse salida de una venta minorista con sus líneas.
type SaleResponse struct {
	ID             string             `json:"id"`
	StoreID        string             `json:"store_id"`
	SaleNumber     string             `json:"sale_number"`
	CashierID      string             `json:"cashier_id"`
	CustomerName   string             `json:"customer_name,omitempty"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	Total          decimal.Decimal    `json:"total"`
	PaymentMethod  string             `json:"payment_method"`
	AmountPaid     decimal.Decimal    `json:"amount_paid"`
	ChangeAmount   decimal.Decimal    `json:"change_amount"`
	Status         string             `json:"status"`
	Notes          string             `json:"notes,omitempty"`
	VoidedByID     string             `json:"voided_by_id,omitempty"`
	VoidedAt       *time.Time         `json:"voided_at,omitempty"`
	VoidReason     string             `json:"void_reason,omitempty"`
	Items          []SaleItemResponse `json:"items"`
	CreatedAt      time.Time          `json:"created_at"`
}

// SaleListResponse lista paginada de ventas minoristas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// VoidSaleRequest entrada para anular una venta. El motivo es obligatorio.
type VoidSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}
