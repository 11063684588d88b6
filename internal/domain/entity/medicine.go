package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clasificación legal de dispensación de un medicamento.
const (
	ScheduleOTC          = "otc"          // venta libre
	SchedulePrescription = "prescription" // requiere receta
	ScheduleControlled   = "controlled"   // sustancia controlada: receta + registro legal
)

// Tipo comercial del medicamento.
const (
	MedicineTypeGeneric = "generic"
	MedicineTypeBrand   = "brand"
)

// Medicine representa un medicamento del catálogo de farmacia. El catálogo es
// único para toda la operación: la tienda viaja en la venta o recepción, no
// en el medicamento. El stock total nunca se almacena: es la suma de
// cantidades de sus lotes no vencidos y no bloqueados.
type Medicine struct {
	ID            string
	CategoryID    string
	SupplierID    string
	BrandName     string
	GenericName   string
	MedicineType  string // generic, brand
	SKU           string // único por tienda
	Barcode       string // único si no está vacío
	Schedule      string // otc, prescription, controlled
	DosageForm    string // tablet, syrup, injection...
	Strength      string // "500mg", "250mg/5ml"
	Manufacturer  string
	BuyingPrice   decimal.Decimal
	SellingPrice  decimal.Decimal
	MinStockLevel int64 // por defecto 10
	ReorderLevel  int64 // por defecto 20
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RequiresPrescription indica si dispensar exige receta verificada.
func (m *Medicine) RequiresPrescription() bool {
	return m.Schedule == SchedulePrescription || m.Schedule == ScheduleControlled
}

// IsControlled indica si el medicamento exige asiento en el registro de controlados.
func (m *Medicine) IsControlled() bool {
	return m.Schedule == ScheduleControlled
}

// ValidSchedule indica si la clasificación es una de las reconocidas.
func ValidSchedule(s string) bool {
	switch s {
	case ScheduleOTC, SchedulePrescription, ScheduleControlled:
		return true
	}
	return false
}
