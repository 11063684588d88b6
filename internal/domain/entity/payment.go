package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment registro de pago de una venta (retail o farmacia; exactamente uno por venta).
type Payment struct {
	ID             string
	SaleID         string // venta retail, vacío si es de farmacia
	PharmacySaleID string // venta de farmacia, vacío si es retail
	Method         string
	Amount         decimal.Decimal
	CreatedAt      time.Time
}
