package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de stock. Compartidos por retail y farmacia.
const (
	MovementTypeSale           = "sale"
	MovementTypeReceiving      = "receiving"
	MovementTypeAdjustment     = "adjustment"
	MovementTypeDamage         = "damage"
	MovementTypeExpiryWriteoff = "expiry_writeoff"
	MovementTypeReturn         = "return"
	MovementTypeTransfer       = "transfer"
)

// ValidMovementType indica si el tipo de movimiento es uno de los reconocidos.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeSale, MovementTypeReceiving, MovementTypeAdjustment,
		MovementTypeDamage, MovementTypeExpiryWriteoff, MovementTypeReturn,
		MovementTypeTransfer:
		return true
	}
	return false
}

// StockMovement asiento inmutable del libro de stock de productos retail.
// Invariante: NewQuantity == PreviousQuantity + Quantity.
// Para productos child el asiento es informativo: previous/new se expresan en
// unidades derivadas del padre; el asiento real del padre va en fila aparte.
type StockMovement struct {
	ID               string
	ProductID        string
	MovementType     string
	Quantity         decimal.Decimal // con signo: negativo en ventas, positivo en entradas
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	SaleID           string // vacío si no proviene de una venta
	Reference        string // número de documento (INV-..., VOID-..., PO-...)
	Notes            string
	CreatedBy        string // UserID
	CreatedAt        time.Time
}
