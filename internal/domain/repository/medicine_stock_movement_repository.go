package repository

import (
	"time"

	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

// MedicineStockMovementRepository define el puerto de persistencia para
// movimientos de inventario farmacéutico (DIP). Solo inserción.
type MedicineStockMovementRepository interface {
	Create(movement *entity.MedicineStockMovement) error
	ListByMedicine(medicineID string, from, to *time.Time, limit, offset int) ([]*entity.MedicineStockMovement, error)
	ListByBatch(batchID string) ([]*entity.MedicineStockMovement, error)
	ListBySale(pharmacySaleID string) ([]*entity.MedicineStockMovement, error)
}
