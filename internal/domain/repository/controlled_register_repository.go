package repository

import (
	"time"

	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

// ControlledRegisterRepository define el puerto de persistencia para el libro
// de sustancias controladas (DIP). Registro de solo inserción: los ajustes se
// corrigen con asientos nuevos, nunca editando los existentes.
type ControlledRegisterRepository interface {
	Create(entry *entity.ControlledRegisterEntry) error
	GetByID(id string) (*entity.ControlledRegisterEntry, error)
	ListByMedicine(medicineID string, from, to *time.Time, limit, offset int) ([]*entity.ControlledRegisterEntry, error)
	ListByBatch(batchID string) ([]*entity.ControlledRegisterEntry, error)
	// ListByPeriod devuelve el libro completo del período ordenado por fecha,
	// para la exportación regulatoria.
	ListByPeriod(from, to time.Time) ([]*entity.ControlledRegisterEntry, error)
}
