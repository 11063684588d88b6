package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceivingItemRequest línea de una recepción: crea o repone el lote indicado.
type ReceivingItemRequest struct {
	MedicineID    string          `json:"medicine_id" validate:"required,uuid"`
	BatchNumber   string          `json:"batch_number" validate:"required,min=1,max=100"`
	ExpiryDate    time.Time       `json:"expiry_date" validate:"required"`
	Quantity      int64           `json:"quantity" validate:"required,min=1"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
}

// CreateReceivingRequest entrada para registrar una recepción de mercancía.
type CreateReceivingRequest struct {
	StoreID               string                 `json:"store_id" validate:"required,uuid"`
	SupplierID            string                 `json:"supplier_id" validate:"omitempty,uuid"`
	SupplierInvoiceNumber string                 `json:"supplier_invoice_number"`
	Notes                 string                 `json:"notes"`
	Items                 []ReceivingItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ReceivingItemResponse línea de una recepción confirmada.
type ReceivingItemResponse struct {
	ID            string          `json:"id"`
	MedicineID    string          `json:"medicine_id"`
	BatchID       string          `json:"batch_id"`
	BatchNumber   string          `json:"batch_number"`
	ExpiryDate    time.Time       `json:"expiry_date"`
	Quantity      int64           `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	LineCost      decimal.Decimal `json:"line_cost"`
}

// ReceivingResponse salida de una recepción con sus líneas.
type ReceivingResponse struct {
	ID                    string                  `json:"id"`
	StoreID               string                  `json:"store_id"`
	ReceivingNumber       string                  `json:"receiving_number"`
	SupplierID            string                  `json:"supplier_id,omitempty"`
	SupplierInvoiceNumber string                  `json:"supplier_invoice_number,omitempty"`
	TotalCost             decimal.Decimal         `json:"total_cost"`
	Notes                 string                  `json:"notes,omitempty"`
	ReceivedByID          string                  `json:"received_by_id"`
	Items                 []ReceivingItemResponse `json:"items"`
	CreatedAt             time.Time               `json:"created_at"`
}

// ReceivingListResponse lista paginada de recepciones.
type ReceivingListResponse struct {
	Items []ReceivingResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
