package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra retail.
const (
	PurchaseOrderPending   = "pending"
	PurchaseOrderReceived  = "received"
	PurchaseOrderCancelled = "cancelled"
)

// PurchaseOrder orden de compra retail a un proveedor.
type PurchaseOrder struct {
	ID           string
	StoreID      string
	OrderNumber  string // PO-YYYYMMDD-XXXXXX, único
	SupplierID   string
	Status       string
	Subtotal     decimal.Decimal
	Notes        string
	CreatedByID  string
	ReceivedByID string
	ReceivedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PurchaseOrderItem línea de orden de compra con costo unitario congelado al crear.
type PurchaseOrderItem struct {
	ID              string
	PurchaseOrderID string
	ProductID       string
	ProductName     string
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal
	LineCost        decimal.Decimal // UnitCost * Quantity
	CreatedAt       time.Time
}
