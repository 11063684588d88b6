package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost recalcula el costo de un producto al entrar mercadería:
// promedio ponderado entre las existencias actuales a su costo y la cantidad
// entrante al costo de compra. Sin existencias previas el costo queda en el de
// la entrada; una entrada vacía deja el costo como está.
func WeightedAverageCost(currentStock, currentCost, incomingQty, incomingCost decimal.Decimal) decimal.Decimal {
	if !incomingQty.GreaterThan(decimal.Zero) {
		return currentCost
	}
	stock := currentStock
	if stock.IsNegative() {
		stock = decimal.Zero
	}
	total := stock.Add(incomingQty)
	return stock.Mul(currentCost).Add(incomingQty.Mul(incomingCost)).Div(total)
}
