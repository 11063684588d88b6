package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de producto según su relación con el stock físico.
const (
	ProductTypeSimple = "simple" // stock propio, sin derivación
	ProductTypeParent = "parent" // unidad a granel: dueño del pool físico de stock
	ProductTypeChild  = "child"  // presentación al detal derivada del stock del padre
)

// Product representa un producto del catálogo retail.
// StockQuantity solo es real para simple/parent; para child se mantiene en 0
// y la cantidad vendible se deriva siempre del stock actual del padre.
type Product struct {
	ID               string
	StoreID          string
	CategoryID       string // vacío = sin categoría
	SKU              string // único por tienda
	Barcode          string // único si no está vacío
	Name             string
	Description      string
	ProductType      string          // simple, parent, child
	BaseUnit         string          // kg, g, L, ml, unidad
	UnitQuantity     decimal.Decimal // cantidad de BaseUnit que representa una unidad de stock
	ConversionFactor decimal.Decimal // UnitQuantity hijo / UnitQuantity padre (solo child)
	ParentProductID  string          // obligatorio para child; vacío en simple/parent
	Price            decimal.Decimal
	CostPrice        decimal.Decimal
	TaxRate          decimal.Decimal // porcentaje (19 = 19%)
	StockQuantity    decimal.Decimal
	MinStockLevel    decimal.Decimal
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsChild indica si el producto deriva su stock de un padre.
func (p *Product) IsChild() bool { return p.ProductType == ProductTypeChild }

// IsParent indica si el producto es la unidad a granel dueña del stock.
func (p *Product) IsParent() bool { return p.ProductType == ProductTypeParent }

// ValidProductType indica si el tipo es uno de los reconocidos.
func ValidProductType(t string) bool {
	switch t {
	case ProductTypeSimple, ProductTypeParent, ProductTypeChild:
		return true
	}
	return false
}
