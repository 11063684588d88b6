package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

// Resolutor de stock para productos bulk: calcula la cantidad vendible efectiva
// de un producto según su tipo. Para child el cálculo se rehace siempre sobre
// el stock actual del padre; el StockQuantity propio del child queda fijo en 0.

// EffectiveQuantity cantidad vendible efectiva del producto.
// parent solo es requerido (y usado) cuando el producto es child.
func EffectiveQuantity(p *entity.Product, parent *entity.Product) (decimal.Decimal, error) {
	if !p.IsChild() {
		return p.StockQuantity, nil
	}
	if parent == nil {
		return decimal.Zero, domain.NewValidationError("parent_product", "producto hijo sin padre cargado")
	}
	units, err := AvailableChildUnits(parent.StockQuantity, parent.UnitQuantity, p.UnitQuantity)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(units), nil
}

// CanSell indica si hay stock efectivo para vender qty unidades, y cuánto hay disponible.
func CanSell(p *entity.Product, parent *entity.Product, qty decimal.Decimal) (bool, decimal.Decimal, error) {
	available, err := EffectiveQuantity(p, parent)
	if err != nil {
		return false, decimal.Zero, err
	}
	return qty.LessThanOrEqual(available), available, nil
}

// IsLowStock indica si la cantidad efectiva está en o bajo el mínimo configurado.
func IsLowStock(p *entity.Product, parent *entity.Product) (bool, error) {
	available, err := EffectiveQuantity(p, parent)
	if err != nil {
		return false, err
	}
	return available.LessThanOrEqual(p.MinStockLevel), nil
}

// ValidateHierarchy valida la relación padre/hijo al guardar un producto:
//   - child sin padre: error
//   - parent con padre: error
//   - simple con padre: se limpia la referencia en lugar de fallar
func ValidateHierarchy(p *entity.Product) error {
	switch p.ProductType {
	case entity.ProductTypeChild:
		if p.ParentProductID == "" {
			return domain.NewValidationError("parent_product", "un producto hijo debe referenciar a su padre")
		}
		if p.UnitQuantity.LessThanOrEqual(decimal.Zero) {
			return domain.NewValidationError("unit_quantity", "la unidad del producto hijo debe ser mayor que cero")
		}
	case entity.ProductTypeParent:
		if p.ParentProductID != "" {
			return domain.NewValidationError("parent_product", "un producto padre no puede tener padre")
		}
		if p.UnitQuantity.LessThanOrEqual(decimal.Zero) {
			return domain.NewValidationError("unit_quantity", "la unidad del producto padre debe ser mayor que cero")
		}
	case entity.ProductTypeSimple:
		p.ParentProductID = ""
	default:
		return domain.NewValidationError("product_type", "tipo de producto desconocido: "+p.ProductType)
	}
	return nil
}
