package repository

import (
	"time"

	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

// PharmacySaleRepository define el puerto de persistencia para dispensaciones
// de farmacia y sus líneas (DIP).
type PharmacySaleRepository interface {
	Create(sale *entity.PharmacySale) error
	CreateItem(item *entity.PharmacySaleItem) error
	GetByID(id string) (*entity.PharmacySale, error)
	// GetForUpdate bloquea la venta para la anulación (evita doble void).
	GetForUpdate(id string) (*entity.PharmacySale, error)
	GetByInvoiceNumber(invoiceNumber string) (*entity.PharmacySale, error)
	GetItemsBySaleID(saleID string) ([]*entity.PharmacySaleItem, error)
	Update(sale *entity.PharmacySale) error
	List(storeID string, from, to *time.Time, status string, limit, offset int) ([]*entity.PharmacySale, error)
}
