package entity

import "time"

// Category representa una categoría del catálogo (nombre único por tienda).
type Category struct {
	ID          string
	StoreID     string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
