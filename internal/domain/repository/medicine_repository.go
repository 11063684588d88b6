package repository

import "github.com/jhoicas/Farmapos-api/internal/domain/entity"

// MedicineRepository define el puerto de persistencia para Medicine (DIP).
type MedicineRepository interface {
	Create(medicine *entity.Medicine) error
	GetByID(id string) (*entity.Medicine, error)
	GetBySKU(sku string) (*entity.Medicine, error)
	GetByBarcode(barcode string) (*entity.Medicine, error)
	Update(medicine *entity.Medicine) error
	// List filtra por texto libre (marca, genérico, SKU) y/o clasificación.
	// Cadenas vacías desactivan el filtro correspondiente.
	List(search, schedule string, limit, offset int) ([]*entity.Medicine, error)
	Delete(id string) error
	IsReferenced(medicineID string) (bool, error)
}
