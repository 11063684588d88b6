package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMedicineRequest entrada para crear un medicamento.
type CreateMedicineRequest struct {
	BrandName     string          `json:"brand_name" validate:"required,min=1,max=200"`
	GenericName   string          `json:"generic_name" validate:"required,min=1,max=200"`
	SKU           string          `json:"sku" validate:"required,min=1,max=100"`
	Barcode       string          `json:"barcode"`
	Schedule      string          `json:"schedule" validate:"required,oneof=otc prescription controlled"`
	MedicineType  string          `json:"medicine_type" validate:"omitempty,oneof=generic brand"`
	CategoryID    string          `json:"category_id" validate:"omitempty,uuid"`
	SupplierID    string          `json:"supplier_id" validate:"omitempty,uuid"`
	DosageForm    string          `json:"dosage_form"`
	Strength      string          `json:"strength"`
	Manufacturer  string          `json:"manufacturer"`
	BuyingPrice   decimal.Decimal `json:"buying_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	MinStockLevel int64           `json:"min_stock_level"`
	ReorderLevel  int64           `json:"reorder_level"`
}

// UpdateMedicineRequest entrada para actualizar un medicamento.
type UpdateMedicineRequest struct {
	BrandName     *string          `json:"brand_name" validate:"omitempty,min=1,max=200"`
	GenericName   *string          `json:"generic_name" validate:"omitempty,min=1,max=200"`
	Barcode       *string          `json:"barcode"`
	Schedule      *string          `json:"schedule" validate:"omitempty,oneof=otc prescription controlled"`
	MedicineType  *string          `json:"medicine_type" validate:"omitempty,oneof=generic brand"`
	CategoryID    *string          `json:"category_id" validate:"omitempty,uuid"`
	SupplierID    *string          `json:"supplier_id" validate:"omitempty,uuid"`
	DosageForm    *string          `json:"dosage_form"`
	Strength      *string          `json:"strength"`
	Manufacturer  *string          `json:"manufacturer"`
	BuyingPrice   *decimal.Decimal `json:"buying_price"`
	SellingPrice  *decimal.Decimal `json:"selling_price"`
	MinStockLevel *int64           `json:"min_stock_level"`
	ReorderLevel  *int64           `json:"reorder_level"`
	IsActive      *bool            `json:"is_active"`
}

// MedicineResponse salida de un medicamento. TotalStock suma los lotes
// dispensables (no vencidos ni bloqueados).
type MedicineResponse struct {
	ID                   string          `json:"id"`
	BrandName            string          `json:"brand_name"`
	GenericName          string          `json:"generic_name"`
	SKU                  string          `json:"sku"`
	Barcode              string          `json:"barcode,omitempty"`
	Schedule             string          `json:"schedule"`
	MedicineType         string          `json:"medicine_type"`
	CategoryID           string          `json:"category_id,omitempty"`
	SupplierID           string          `json:"supplier_id,omitempty"`
	DosageForm           string          `json:"dosage_form,omitempty"`
	Strength             string          `json:"strength,omitempty"`
	Manufacturer         string          `json:"manufacturer,omitempty"`
	BuyingPrice          decimal.Decimal `json:"buying_price"`
	SellingPrice         decimal.Decimal `json:"selling_price"`
	MinStockLevel        int64           `json:"min_stock_level"`
	ReorderLevel         int64           `json:"reorder_level"`
	TotalStock           int64           `json:"total_stock"`
	RequiresPrescription bool            `json:"requires_prescription"`
	IsControlled         bool            `json:"is_controlled"`
	IsActive             bool            `json:"is_active"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// MedicineListResponse lista paginada de medicamentos.
type MedicineListResponse struct {
	Items []MedicineResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BatchResponse salida de un lote con su estado derivado.
type BatchResponse struct {
	ID              string          `json:"id"`
	MedicineID      string          `json:"medicine_id"`
	BatchNumber     string          `json:"batch_number"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	Quantity        int64           `json:"quantity"`
	InitialQuantity int64           `json:"initial_quantity"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	Status          string          `json:"status"`
	DaysToExpiry    int             `json:"days_to_expiry"`
	IsBlocked       bool            `json:"is_blocked"`
	BlockReason     string          `json:"block_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// BatchListResponse lista de lotes de un medicamento.
type BatchListResponse struct {
	Items []BatchResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// AdjustBatchRequest entrada para un ajuste manual sobre un lote.
type AdjustBatchRequest struct {
	AdjustmentType string `json:"adjustment_type" validate:"required,oneof=add remove set"`
	Quantity       int64  `json:"quantity"`
	Reason         string `json:"reason" validate:"required,min=3"`
}

// BlockBatchRequest entrada para bloquear un lote manualmente.
type BlockBatchRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// WriteoffBatchRequest entrada para dar de baja un lote vencido.
type WriteoffBatchRequest struct {
	Reason string `json:"reason"`
}

// MedicineMovementResponse salida de un movimiento de inventario farmacéutico.
type MedicineMovementResponse struct {
	ID               string    `json:"id"`
	MedicineID       string    `json:"medicine_id"`
	BatchID          string    `json:"batch_id,omitempty"`
	MovementType     string    `json:"movement_type"`
	Quantity         int64     `json:"quantity"`
	PreviousQuantity int64     `json:"previous_quantity"`
	NewQuantity      int64     `json:"new_quantity"`
	PharmacySaleID   string    `json:"pharmacy_sale_id,omitempty"`
	ReceivingID      string    `json:"receiving_id,omitempty"`
	Reference        string    `json:"reference,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedBy        string    `json:"created_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// MedicineMovementListResponse lista paginada de movimientos farmacéuticos.
type MedicineMovementListResponse struct {
	Items []MedicineMovementResponse `json:"items"`
	Page  PageResponse               `json:"page"`
}
