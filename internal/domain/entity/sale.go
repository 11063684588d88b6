package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. Una venta completada solo puede transicionar a voided.
const (
	SaleStatusCompleted = "completed"
	SaleStatusPending   = "pending"
	SaleStatusVoided    = "voided"
)

// Métodos de pago aceptados.
const (
	PaymentMethodCash      = "cash"
	PaymentMethodCard      = "card"
	PaymentMethodMobile    = "mobile" // pago móvil: exige nombre de cliente
	PaymentMethodInsurance = "insurance"
)

// ValidPaymentMethod indica si el método de pago es uno de los aceptados.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile, PaymentMethodInsurance:
		return true
	}
	return false
}

// Sale venta retail. Inmutable tras crearse salvo la transición de anulación.
// Invariantes: Total == Subtotal - DiscountAmount + TaxAmount (2 decimales),
// AmountPaid >= Total, ChangeAmount == AmountPaid - Total.
type Sale struct {
	ID             string
	StoreID        string
	SaleNumber     string // INV-YYYYMMDD-XXXXXXXX
	CashierID      string
	CustomerName   string
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	PaymentMethod  string
	AmountPaid     decimal.Decimal
	ChangeAmount   decimal.Decimal
	Status         string
	Notes          string
	VoidedByID     string
	VoidedAt       *time.Time
	VoidReason     string
	CreatedAt      time.Time
}

// SaleItem línea de venta retail con instantánea del producto al momento de vender.
type SaleItem struct {
	ID              string
	SaleID          string
	ProductID       string
	ProductName     string
	ProductSKU      string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	TaxRate         decimal.Decimal
	DiscountPercent decimal.Decimal
	Subtotal        decimal.Decimal // unit_price*qty - descuento, sin impuesto
	CreatedAt       time.Time
}
