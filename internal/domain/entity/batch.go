package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados derivados de un lote. Exactamente uno aplica, evaluado en este orden.
const (
	BatchStatusExpired    = "expired"
	BatchStatusBlocked    = "blocked"
	BatchStatusNearExpiry = "near_expiry"
	BatchStatusDepleted   = "depleted"
	BatchStatusAvailable  = "available"
)

// Ventanas de vencimiento en días.
const (
	NearExpiryStatusDays  = 90 // estado near_expiry en consultas y tablero
	NearExpiryWarningDays = 30 // advertencia no bloqueante al dispensar
)

// AutoBlockReason motivo del bloqueo automático de lotes vencidos.
const AutoBlockReason = "Bloqueado automáticamente - vencido"

// Batch representa un lote recibido de un medicamento, con su propio
// vencimiento, cantidad y precios. BatchNumber es único por medicamento.
type Batch struct {
	ID              string
	MedicineID      string
	BatchNumber     string
	ExpiryDate      time.Time // solo fecha; la hora se ignora
	Quantity        int64     // unidades actuales, nunca negativa
	InitialQuantity int64     // instantánea inmutable del alta
	PurchasePrice   decimal.Decimal
	SellingPrice    decimal.Decimal
	IsBlocked       bool
	BlockReason     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// dateOf trunca un instante a su fecha local, anclada en UTC para aritmética de días exacta.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysToExpiry días civiles hasta el vencimiento (negativo si ya venció).
func (b *Batch) DaysToExpiry(now time.Time) int {
	return int(dateOf(b.ExpiryDate).Sub(dateOf(now)).Hours() / 24)
}

// IsExpired indica si el lote está vencido. El mismo día de vencimiento ya cuenta como vencido.
func (b *Batch) IsExpired(now time.Time) bool {
	return b.DaysToExpiry(now) <= 0
}

// IsNearExpiry indica si el lote vence dentro de la ventana dada (sin estar vencido).
func (b *Batch) IsNearExpiry(now time.Time, windowDays int) bool {
	d := b.DaysToExpiry(now)
	return d > 0 && d <= windowDays
}

// CanDispense indica si el lote puede usarse para dispensar.
func (b *Batch) CanDispense(now time.Time) bool {
	return !b.IsExpired(now) && !b.IsBlocked && b.Quantity > 0
}

// Status evalúa el estado derivado del lote en orden de prioridad:
// expired > blocked > near_expiry > depleted > available.
func (b *Batch) Status(now time.Time) string {
	switch {
	case b.IsExpired(now):
		return BatchStatusExpired
	case b.IsBlocked:
		return BatchStatusBlocked
	case b.IsNearExpiry(now, NearExpiryStatusDays):
		return BatchStatusNearExpiry
	case b.Quantity == 0:
		return BatchStatusDepleted
	default:
		return BatchStatusAvailable
	}
}

// EnsureAutoBlock bloquea el lote si ya venció y aún no está bloqueado.
// Se invoca en cada escritura sobre el lote; devuelve true si cambió algo.
func (b *Batch) EnsureAutoBlock(now time.Time) bool {
	if b.IsExpired(now) && !b.IsBlocked {
		b.IsBlocked = true
		b.BlockReason = AutoBlockReason
		return true
	}
	return false
}
