package entity

import "time"

// Tipos de asiento del registro de sustancias controladas.
const (
	RegisterTypeReceiving  = "receiving"
	RegisterTypeDispensing = "dispensing"
	RegisterTypeAdjustment = "adjustment"
	RegisterTypeWriteoff   = "writeoff"
)

// ControlledRegisterEntry asiento del registro legal de sustancias controladas.
// Solo se inserta, nunca se corrige por mutación: los errores se enmiendan con
// un asiento posterior de tipo adjustment. Balance es el saldo del lote tras
// el asiento.
type ControlledRegisterEntry struct {
	ID                 string
	MedicineID         string
	BatchID            string
	TransactionType    string // receiving, dispensing, adjustment, writeoff
	Quantity           int64  // con signo
	Balance            int64
	CustomerName       string // solo dispensing
	PrescriptionNumber string
	PrescriberName     string
	PharmacySaleID     string
	ReceivingID        string
	DispensedByID      string
	WitnessedByID      string
	Notes              string
	CreatedAt          time.Time
}
