package entity

import "time"

// MedicineStockMovement asiento inmutable del libro de stock de farmacia,
// siempre a nivel de lote. Invariante: NewQuantity == PreviousQuantity + Quantity.
type MedicineStockMovement struct {
	ID               string
	MedicineID       string
	BatchID          string
	MovementType     string
	Quantity         int64 // con signo: negativo al dispensar, positivo al recibir
	PreviousQuantity int64
	NewQuantity      int64
	PharmacySaleID   string // vacío si no proviene de una venta
	ReceivingID      string // vacío si no proviene de una recepción
	Reference        string // INV-..., RCV-..., VOID-...
	Notes            string
	CreatedBy        string
	CreatedAt        time.Time
}
