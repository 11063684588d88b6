package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockReceiving recepción de mercancía de farmacia (crea o incrementa lotes).
type StockReceiving struct {
	ID                    string
	StoreID               string
	ReceivingNumber       string // RCV-YYYYMMDD-XXXXXX, único
	SupplierID            string
	SupplierInvoiceNumber string
	TotalCost             decimal.Decimal
	Notes                 string
	ReceivedByID          string
	CreatedAt             time.Time
}

// StockReceivingItem línea de recepción: un lote (nuevo o existente) de un medicamento.
type StockReceivingItem struct {
	ID            string
	ReceivingID   string
	MedicineID    string
	BatchID       string
	BatchNumber   string
	ExpiryDate    time.Time
	Quantity      int64
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	LineCost      decimal.Decimal // PurchasePrice * Quantity
	CreatedAt     time.Time
}
