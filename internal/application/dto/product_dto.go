package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	StoreID         string          `json:"store_id" validate:"required,uuid"`
	CategoryID      string          `json:"category_id" validate:"omitempty,uuid"`
	SKU             string          `json:"sku" validate:"required,min=1,max=100"`
	Barcode         string          `json:"barcode"`
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Description     string          `json:"description"`
	ProductType     string          `json:"product_type" validate:"required,oneof=simple parent child"`
	BaseUnit        string          `json:"base_unit" validate:"required"`
	UnitQuantity    decimal.Decimal `json:"unit_quantity"`
	ParentProductID string          `json:"parent_product_id" validate:"omitempty,uuid"`
	Price           decimal.Decimal `json:"price"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	StockQuantity   decimal.Decimal `json:"stock_quantity"`
	MinStockLevel   decimal.Decimal `json:"min_stock_level"`
}

// UpdateProductRequest entrada para actualizar un producto. El stock no se
// toca por aquí: solo el libro de movimientos muta existencias.
type UpdateProductRequest struct {
	CategoryID      *string          `json:"category_id" validate:"omitempty,uuid"`
	Barcode         *string          `json:"barcode"`
	Name            *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description     *string          `json:"description"`
	ProductType     *string          `json:"product_type" validate:"omitempty,oneof=simple parent child"`
	BaseUnit        *string          `json:"base_unit"`
	UnitQuantity    *decimal.Decimal `json:"unit_quantity"`
	ParentProductID *string          `json:"parent_product_id" validate:"omitempty,uuid"`
	Price           *decimal.Decimal `json:"price"`
	CostPrice       *decimal.Decimal `json:"cost_price"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
	MinStockLevel   *decimal.Decimal `json:"min_stock_level"`
	IsActive        *bool            `json:"is_active"`
}

// ProductResponse salida de un producto. EffectiveStock es el stock vendible:
// para hijos se deriva del padre, para el resto coincide con StockQuantity.
type ProductResponse struct {
	ID              string          `json:"id"`
	StoreID         string          `json:"store_id"`
	CategoryID      string          `json:"category_id,omitempty"`
	SKU             string          `json:"sku"`
	Barcode         string          `json:"barcode,omitempty"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	ProductType     string          `json:"product_type"`
	BaseUnit        string          `json:"base_unit"`
	UnitQuantity    decimal.Decimal `json:"unit_quantity"`
	ParentProductID string          `json:"parent_product_id,omitempty"`
	Price           decimal.Decimal `json:"price"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	StockQuantity   decimal.Decimal `json:"stock_quantity"`
	EffectiveStock  decimal.Decimal `json:"effective_stock"`
	MinStockLevel   decimal.Decimal `json:"min_stock_level"`
	IsLowStock      bool            `json:"is_low_stock"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// AdjustStockRequest entrada para un ajuste manual de inventario minorista.
type AdjustStockRequest struct {
	ProductID      string          `json:"product_id" validate:"required,uuid"`
	AdjustmentType string          `json:"adjustment_type" validate:"required,oneof=add remove set"`
	Quantity       decimal.Decimal `json:"quantity"`
	Reason         string          `json:"reason" validate:"required,min=3"`
}

// StockMovementResponse salida de un movimiento de inventario minorista.
type StockMovementResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	MovementType     string          `json:"movement_type"`
	Quantity         decimal.Decimal `json:"quantity"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	SaleID           string          `json:"sale_id,omitempty"`
	Reference        string          `json:"reference,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedBy        string          `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// StockMovementListResponse lista paginada de movimientos.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
