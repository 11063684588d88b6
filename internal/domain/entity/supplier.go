package entity

import "time"

// Supplier representa un proveedor de medicamentos o mercancía.
type Supplier struct {
	ID            string
	StoreID       string
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
