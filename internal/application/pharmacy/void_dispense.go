package pharmacy

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
	"github.com/jhoicas/Farmapos-api/pkg/docnum"
)

// VoidDispenseUseCase anula una dispensación: restituye cada lote con la
// cantidad exacta que se descontó y deja asientos de reverso en el registro
// de controlados. La anulación es de un solo sentido, no se reactiva.
type VoidDispenseUseCase struct {
	txRunner     PharmacyTxRunner
	ledger       BatchLedger
	saleRepo     repository.PharmacySaleRepository
	medicineRepo repository.MedicineRepository
}

// NewVoidDispenseUseCase construye el caso de uso.
func NewVoidDispenseUseCase(
	txRunner PharmacyTxRunner,
	ledger BatchLedger,
	saleRepo repository.PharmacySaleRepository,
	medicineRepo repository.MedicineRepository,
) *VoidDispenseUseCase {
	return &VoidDispenseUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		saleRepo:     saleRepo,
		medicineRepo: medicineRepo,
	}
}

// VoidDispense anula la venta saleID devolviendo el stock a sus lotes.
func (uc *VoidDispenseUseCase) VoidDispense(ctx context.Context, voiderID, saleID string, in dto.VoidSaleRequest) (*dto.PharmacySaleResponse, error) {
	if in.Reason == "" {
		return nil, domain.NewValidationError("reason", "la anulación exige un motivo")
	}

	// Las líneas son inmutables una vez creadas; se leen fuera de la
	// transacción junto con sus medicamentos.
	items, err := uc.saleRepo.GetItemsBySaleID(saleID)
	if err != nil {
		return nil, err
	}
	medsByID := make(map[string]*entity.Medicine, len(items))
	for _, it := range items {
		if _, ok := medsByID[it.MedicineID]; ok {
			continue
		}
		med, err := uc.medicineRepo.GetByID(it.MedicineID)
		if err != nil {
			return nil, err
		}
		if med == nil {
			return nil, domain.ErrNotFound
		}
		medsByID[it.MedicineID] = med
	}

	now := time.Now()
	notes := "Venta anulada: " + in.Reason
	var sale *entity.PharmacySale

	err = uc.txRunner.RunDispense(ctx, func(
		saleRepo repository.PharmacySaleRepository,
		batchRepo repository.BatchRepository,
		medMovRepo repository.MedicineStockMovementRepository,
		registerRepo repository.ControlledRegisterRepository,
		paymentRepo repository.PaymentRepository,
	) error {
		// El lock de la cabecera serializa anulaciones concurrentes: la
		// segunda ve el estado ya cambiado y se rechaza.
		locked, err := saleRepo.GetForUpdate(saleID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		if locked.Status == entity.SaleStatusVoided {
			return domain.NewInvalidStateError("venta "+locked.InvoiceNumber, "ya está anulada")
		}

		reference := docnum.VoidReference(locked.InvoiceNumber)
		for _, it := range items {
			_, batch, err := uc.ledger.ApplyDispenseReturnInTx(
				batchRepo, medMovRepo, it.BatchID, it.Quantity,
				saleID, reference, notes, voiderID, now,
			)
			if err != nil {
				return err
			}
			if medsByID[it.MedicineID].IsControlled() {
				entry := &entity.ControlledRegisterEntry{
					ID:              uuid.New().String(),
					MedicineID:      it.MedicineID,
					BatchID:         it.BatchID,
					TransactionType: entity.RegisterTypeAdjustment,
					Quantity:        it.Quantity,
					Balance:         batch.Quantity,
					PharmacySaleID:  saleID,
					DispensedByID:   voiderID,
					Notes:           notes,
					CreatedAt:       now,
				}
				if err := registerRepo.Create(entry); err != nil {
					return err
				}
			}
		}

		locked.Status = entity.SaleStatusVoided
		locked.VoidedByID = voiderID
		locked.VoidedAt = &now
		locked.VoidReason = in.Reason
		if err := saleRepo.Update(locked); err != nil {
			return err
		}
		sale = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toPharmacySaleResponse(sale, items), nil
}
