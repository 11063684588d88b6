package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	// Solo tiene sentido dentro de una transacción.
	GetForUpdate(id string) (*entity.Product, error)
	GetByStoreAndSKU(storeID, sku string) (*entity.Product, error)
	GetByStoreAndBarcode(storeID, barcode string) (*entity.Product, error)
	Update(product *entity.Product) error
	// SetStock fija el stock en el valor dado; solo el libro de movimientos
	// debe llamarlo, nunca los handlers directamente.
	SetStock(productID string, quantity decimal.Decimal) error
	ListByStore(storeID string, limit, offset int) ([]*entity.Product, error)
	ListByCategory(categoryID string, limit, offset int) ([]*entity.Product, error)
	ListChildren(parentProductID string) ([]*entity.Product, error)
	SearchByStore(storeID, query string, limit int) ([]*entity.Product, error)
	Delete(id string) error
	// HasChildren y IsReferenced alimentan la decisión de borrado físico:
	// un producto con hijos, ventas o movimientos solo se desactiva.
	HasChildren(productID string) (bool, error)
	IsReferenced(productID string) (bool, error)
}
