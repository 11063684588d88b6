package pharmacy

import (
	"time"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// RegisterQueryUseCase lecturas del libro de sustancias controladas. El libro
// solo crece: los casos de uso de dispensación, recepción y ajuste insertan
// asientos y nadie los edita.
type RegisterQueryUseCase struct {
	registerRepo repository.ControlledRegisterRepository
	medicineRepo repository.MedicineRepository
}

// NewRegisterQueryUseCase construye el caso de uso.
func NewRegisterQueryUseCase(
	registerRepo repository.ControlledRegisterRepository,
	medicineRepo repository.MedicineRepository,
) *RegisterQueryUseCase {
	return &RegisterQueryUseCase{registerRepo: registerRepo, medicineRepo: medicineRepo}
}

// ListByMedicine devuelve el libro de un medicamento controlado.
func (uc *RegisterQueryUseCase) ListByMedicine(medicineID string, from, to *time.Time, page dto.PageRequest) (*dto.RegisterListResponse, error) {
	med, err := uc.medicineRepo.GetByID(medicineID)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, domain.ErrNotFound
	}
	if !med.IsControlled() {
		return nil, domain.NewValidationError("medicine_id", "el medicamento "+med.BrandName+" no es una sustancia controlada")
	}
	page.DefaultPage()
	entries, err := uc.registerRepo.ListByMedicine(medicineID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return &dto.RegisterListResponse{
		Items: toRegisterEntryResponses(entries),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListByBatch devuelve el libro de un lote concreto, completo y en orden.
func (uc *RegisterQueryUseCase) ListByBatch(batchID string) ([]dto.RegisterEntryResponse, error) {
	entries, err := uc.registerRepo.ListByBatch(batchID)
	if err != nil {
		return nil, err
	}
	return toRegisterEntryResponses(entries), nil
}

func toRegisterEntryResponses(entries []*entity.ControlledRegisterEntry) []dto.RegisterEntryResponse {
	out := make([]dto.RegisterEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.RegisterEntryResponse{
			ID:                 e.ID,
			MedicineID:         e.MedicineID,
			BatchID:            e.BatchID,
			TransactionType:    e.TransactionType,
			Quantity:           e.Quantity,
			Balance:            e.Balance,
			CustomerName:       e.CustomerName,
			PrescriptionNumber: e.PrescriptionNumber,
			PrescriberName:     e.PrescriberName,
			PharmacySaleID:     e.PharmacySaleID,
			ReceivingID:        e.ReceivingID,
			DispensedByID:      e.DispensedByID,
			WitnessedByID:      e.WitnessedByID,
			Notes:              e.Notes,
			CreatedAt:          e.CreatedAt,
		})
	}
	return out
}
