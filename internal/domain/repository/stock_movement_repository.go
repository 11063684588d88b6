package repository

import (
	"time"

	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para movimientos
// de inventario minorista (DIP). El libro es de solo inserción: no hay
// Update ni Delete.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListBySale(saleID string) ([]*entity.StockMovement, error)
}
