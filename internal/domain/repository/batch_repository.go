package repository

import (
	"time"

	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para Batch (DIP).
// La selección FEFO se decide en dominio sobre ListByMedicine; el repositorio
// solo garantiza el orden por vencimiento y el bloqueo de fila al confirmar.
type BatchRepository interface {
	Create(batch *entity.Batch) error
	GetByID(id string) (*entity.Batch, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	// Solo tiene sentido dentro de una transacción.
	GetForUpdate(id string) (*entity.Batch, error)
	GetByMedicineAndNumber(medicineID, batchNumber string) (*entity.Batch, error)
	Update(batch *entity.Batch) error
	// ListByMedicine devuelve los lotes ordenados por vencimiento ascendente,
	// empates por número de lote.
	ListByMedicine(medicineID string) ([]*entity.Batch, error)
	// ListExpiringBefore devuelve lotes con existencias cuyo vencimiento es
	// anterior o igual al corte, incluidos los ya vencidos.
	ListExpiringBefore(cutoff time.Time, limit, offset int) ([]*entity.Batch, error)
	ListByStatusBlocked(limit, offset int) ([]*entity.Batch, error)
}
