package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmapos-api/internal/domain"
)

// Motor de conversión de unidades entre un producto a granel (parent) y sus
// presentaciones al detal (child). Toda la aritmética es decimal exacta:
// los resultados alimentan dinero y saldos legales de stock.

// AvailableChildUnits unidades vendibles del hijo derivadas del stock del padre.
// Unidades = floor(StockPadre * UnidadPadre / UnidadHijo). Nunca negativo.
// Una unidad de tamaño cero o negativo es un error, no un cero silencioso.
func AvailableChildUnits(parentStock, parentUnitQty, childUnitQty decimal.Decimal) (int64, error) {
	if childUnitQty.LessThanOrEqual(decimal.Zero) {
		return 0, domain.NewValidationError("unit_quantity", "la unidad del producto hijo debe ser mayor que cero")
	}
	if parentUnitQty.LessThanOrEqual(decimal.Zero) {
		return 0, domain.NewValidationError("unit_quantity", "la unidad del producto padre debe ser mayor que cero")
	}
	units := parentStock.Mul(parentUnitQty).Div(childUnitQty).Floor()
	if units.IsNegative() {
		return 0, nil
	}
	return units.IntPart(), nil
}

// ConsumedParentUnits unidades de stock del padre consumidas al vender el hijo.
// Consumo = CantVendida * UnidadHijo / UnidadPadre, acotado para que el stock
// del padre nunca quede negativo tras restarlo.
func ConsumedParentUnits(childQtySold, childUnitQty, parentUnitQty, parentStock decimal.Decimal) (decimal.Decimal, error) {
	if parentUnitQty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.NewValidationError("unit_quantity", "la unidad del producto padre debe ser mayor que cero")
	}
	if childUnitQty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.NewValidationError("unit_quantity", "la unidad del producto hijo debe ser mayor que cero")
	}
	consumed := childQtySold.Mul(childUnitQty).Div(parentUnitQty)
	if consumed.GreaterThan(parentStock) {
		consumed = parentStock
	}
	if consumed.IsNegative() {
		return decimal.Zero, nil
	}
	return consumed, nil
}
