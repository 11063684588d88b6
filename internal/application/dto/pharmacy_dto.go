package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PharmacySaleItemRequest línea de una dispensación. BatchID vacío delega la
// elección del lote al asignador FEFO.
type PharmacySaleItemRequest struct {
	MedicineID           string          `json:"medicine_id" validate:"required,uuid"`
	BatchID              string          `json:"batch_id" validate:"omitempty,uuid"`
	Quantity             int64           `json:"quantity" validate:"required,min=1"`
	DiscountPercent      decimal.Decimal `json:"discount_percent"`
	PrescriptionVerified bool            `json:"prescription_verified"`
}

// CreatePharmacySaleRequest entrada para registrar una dispensación.
type CreatePharmacySaleRequest struct {
	StoreID            string                    `json:"store_id" validate:"required,uuid"`
	CustomerName       string                    `json:"customer_name"`
	CustomerPhone      string                    `json:"customer_phone"`
	HasPrescription    bool                      `json:"has_prescription"`
	PrescriptionNumber string                    `json:"prescription_number"`
	PrescriberName     string                    `json:"prescriber_name"`
	PaymentMethod      string                    `json:"payment_method" validate:"required,oneof=cash card mobile insurance"`
	AmountPaid         decimal.Decimal           `json:"amount_paid"`
	Notes              string                    `json:"notes"`
	Items              []PharmacySaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// PharmacySaleItemResponse línea de una dispensación confirmada.
type PharmacySaleItemResponse struct {
	ID                   string          `json:"id"`
	MedicineID           string          `json:"medicine_id"`
	BatchID              string          `json:"batch_id"`
	MedicineName         string          `json:"medicine_name"`
	BatchNumber          string          `json:"batch_number"`
	ExpiryDate           time.Time       `json:"expiry_date"`
	Quantity             int64           `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	DiscountPercent      decimal.Decimal `json:"discount_percent"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	RequiresPrescription bool            `json:"requires_prescription"`
	PrescriptionVerified bool            `json:"prescription_verified"`
}

// PharmacySaleResponse salida de una dispensación. Warnings lleva avisos no
// bloqueantes como vencimientos próximos de los lotes usados.
type PharmacySaleResponse struct {
	ID                 string                     `json:"id"`
	StoreID            string                     `json:"store_id"`
	InvoiceNumber      string                     `json:"invoice_number"`
	CustomerName       string                     `json:"customer_name,omitempty"`
	CustomerPhone      string                     `json:"customer_phone,omitempty"`
	HasPrescription    bool                       `json:"has_prescription"`
	PrescriptionNumber string                     `json:"prescription_number,omitempty"`
	PrescriberName     string                     `json:"prescriber_name,omitempty"`
	DispenserID        string                     `json:"dispenser_id"`
	Subtotal           decimal.Decimal            `json:"subtotal"`
	DiscountAmount     decimal.Decimal            `json:"discount_amount"`
	TaxAmount          decimal.Decimal            `json:"tax_amount"`
	Total              decimal.Decimal            `json:"total"`
	PaymentMethod      string                     `json:"payment_method"`
	AmountPaid         decimal.Decimal            `json:"amount_paid"`
	ChangeAmount       decimal.Decimal            `json:"change_amount"`
	Status             string                     `json:"status"`
	Notes              string                     `json:"notes,omitempty"`
	VoidedByID         string                     `json:"voided_by_id,omitempty"`
	VoidedAt           *time.Time                 `json:"voided_at,omitempty"`
	VoidReason         string                     `json:"void_reason,omitempty"`
	Items              []PharmacySaleItemResponse `json:"items"`
	Warnings           []string                   `json:"warnings,omitempty"`
	CreatedAt          time.Time                  `json:"created_at"`
}

// PharmacySaleListResponse lista paginada de dispensaciones.
type PharmacySaleListResponse struct {
	Items []PharmacySaleResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// RegisterEntryResponse asiento del libro de sustancias controladas.
type RegisterEntryResponse struct {
	ID                 string    `json:"id"`
	MedicineID         string    `json:"medicine_id"`
	BatchID            string    `json:"batch_id,omitempty"`
	TransactionType    string    `json:"transaction_type"`
	Quantity           int64     `json:"quantity"`
	Balance            int64     `json:"balance"`
	CustomerName       string    `json:"customer_name,omitempty"`
	PrescriptionNumber string    `json:"prescription_number,omitempty"`
	PrescriberName     string    `json:"prescriber_name,omitempty"`
	PharmacySaleID     string    `json:"pharmacy_sale_id,omitempty"`
	ReceivingID        string    `json:"receiving_id,omitempty"`
	DispensedByID      string    `json:"dispensed_by_id"`
	WitnessedByID      string    `json:"witnessed_by_id,omitempty"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// RegisterListResponse lista paginada del libro de controlados.
type RegisterListResponse struct {
	Items []RegisterEntryResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
