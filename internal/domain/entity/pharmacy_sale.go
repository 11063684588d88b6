package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PharmacySale venta de farmacia con trazabilidad de receta.
// Sin impuesto por ítem: Total == Subtotal - DiscountAmount (TaxAmount siempre 0.00).
type PharmacySale struct {
	ID                 string
	StoreID            string
	InvoiceNumber      string // INV-YYYYMMDD-XXXXXXXX, único
	CustomerName       string
	CustomerPhone      string
	HasPrescription    bool
	PrescriptionNumber string
	PrescriberName     string
	DispenserID        string
	Subtotal           decimal.Decimal
	DiscountAmount     decimal.Decimal
	TaxAmount          decimal.Decimal // siempre 0.00; se persiste por simetría contable
	Total              decimal.Decimal
	PaymentMethod      string
	AmountPaid         decimal.Decimal
	ChangeAmount       decimal.Decimal
	Status             string
	VoidedByID         string
	VoidedAt           *time.Time
	VoidReason         string
	Notes              string
	CreatedAt          time.Time
}

// PharmacySaleItem línea de venta de farmacia, siempre atada a un lote concreto.
// Captura instantáneas (nombre, lote, vencimiento, precio) al momento de dispensar.
type PharmacySaleItem struct {
	ID                   string
	SaleID               string
	MedicineID           string
	BatchID              string
	MedicineName         string
	BatchNumber          string
	ExpiryDate           time.Time
	Quantity             int64
	UnitPrice            decimal.Decimal // precio de venta del lote, no del medicamento
	DiscountPercent      decimal.Decimal
	Subtotal             decimal.Decimal
	RequiresPrescription bool
	PrescriptionVerified bool
	CreatedAt            time.Time
}
