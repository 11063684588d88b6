package entity

import "time"

// Store representa una tienda o sucursal. Toda operación recibe la tienda como
// contexto explícito; IsDefault solo marca la sugerida para nuevos usuarios y
// al activarse desmarca las demás.
type Store struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
