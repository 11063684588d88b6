package repository

import (
	"time"

	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas minoristas y
// sus líneas (DIP).
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateItem(item *entity.SaleItem) error
	GetByID(id string) (*entity.Sale, error)
	// GetForUpdate bloquea la venta para la anulación (evita doble void).
	GetForUpdate(id string) (*entity.Sale, error)
	GetByNumber(saleNumber string) (*entity.Sale, error)
	GetItemsBySaleID(saleID string) ([]*entity.SaleItem, error)
	// Update persiste cambios de estado y los campos de anulación.
	Update(sale *entity.Sale) error
	List(storeID string, from, to *time.Time, status string, limit, offset int) ([]*entity.Sale, error)
}
