package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// BatchAdminUseCase operaciones administrativas sobre lotes: ajustes manuales,
// bloqueo/desbloqueo y baja de vencidos. Los medicamentos controlados dejan
// además su asiento en el libro de controlados.
type BatchAdminUseCase struct {
	txRunner     BatchTxRunner
	ledger       *BatchLedgerUseCase
	batchRepo    repository.BatchRepository
	medicineRepo repository.MedicineRepository
}

// NewBatchAdminUseCase construye el caso de uso.
func NewBatchAdminUseCase(
	txRunner BatchTxRunner,
	ledger *BatchLedgerUseCase,
	batchRepo repository.BatchRepository,
	medicineRepo repository.MedicineRepository,
) *BatchAdminUseCase {
	return &BatchAdminUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		batchRepo:    batchRepo,
		medicineRepo: medicineRepo,
	}
}

// AdjustBatch ajuste manual (add/remove/set) sobre un lote.
func (uc *BatchAdminUseCase) AdjustBatch(ctx context.Context, userID, batchID string, in dto.AdjustBatchRequest) (*dto.BatchResponse, error) {
	if in.Reason == "" {
		return nil, domain.NewValidationError("reason", "el motivo del ajuste es obligatorio")
	}
	switch in.AdjustmentType {
	case "add", "remove":
		if in.Quantity <= 0 {
			return nil, domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
		}
	case "set":
		if in.Quantity < 0 {
			return nil, domain.NewValidationError("quantity", "la cantidad objetivo no puede ser negativa")
		}
	default:
		return nil, domain.NewValidationError("adjustment_type", "tipo de ajuste desconocido: "+in.AdjustmentType)
	}

	med, err := uc.medicineForBatch(batchID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var updated *entity.Batch
	err = uc.txRunner.RunBatch(ctx, func(
		batchRepo repository.BatchRepository,
		medMovRepo repository.MedicineStockMovementRepository,
		registerRepo repository.ControlledRegisterRepository,
	) error {
		var mov *entity.MedicineStockMovement
		var txErr error
		switch in.AdjustmentType {
		case "add":
			mov, updated, txErr = uc.ledger.ApplyDeltaInTx(batchRepo, medMovRepo, BatchMovementInput{
				BatchID:      batchID,
				MovementType: entity.MovementTypeAdjustment,
				Delta:        in.Quantity,
				Notes:        in.Reason,
				UserID:       userID,
			}, now)
		case "remove":
			mov, updated, txErr = uc.ledger.ApplyDeltaInTx(batchRepo, medMovRepo, BatchMovementInput{
				BatchID:      batchID,
				MovementType: entity.MovementTypeAdjustment,
				Delta:        -in.Quantity,
				Notes:        in.Reason,
				UserID:       userID,
			}, now)
		case "set":
			mov, updated, txErr = uc.ledger.ApplyAbsoluteInTx(
				batchRepo, medMovRepo, batchID, in.Quantity,
				entity.MovementTypeAdjustment, "", in.Reason, userID, now,
			)
		}
		if txErr != nil {
			return txErr
		}
		if med.IsControlled() {
			return registerRepo.Create(&entity.ControlledRegisterEntry{
				ID:              uuid.New().String(),
				MedicineID:      med.ID,
				BatchID:         updated.ID,
				TransactionType: entity.RegisterTypeAdjustment,
				Quantity:        mov.Quantity,
				Balance:         updated.Quantity,
				DispensedByID:   userID,
				Notes:           in.Reason,
				CreatedAt:       now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toBatchResponse(updated, now)
	return &resp, nil
}

// BlockBatch bloquea el lote manualmente; no mueve existencias.
func (uc *BatchAdminUseCase) BlockBatch(ctx context.Context, batchID, reason string) (*dto.BatchResponse, error) {
	if reason == "" {
		return nil, domain.NewValidationError("reason", "el motivo del bloqueo es obligatorio")
	}
	now := time.Now()
	var updated *entity.Batch
	err := uc.txRunner.RunBatch(ctx, func(
		batchRepo repository.BatchRepository,
		_ repository.MedicineStockMovementRepository,
		_ repository.ControlledRegisterRepository,
	) error {
		batch, err := batchRepo.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		batch.IsBlocked = true
		batch.BlockReason = reason
		batch.UpdatedAt = now
		updated = batch
		return batchRepo.Update(batch)
	})
	if err != nil {
		return nil, err
	}
	resp := toBatchResponse(updated, now)
	return &resp, nil
}

// UnblockBatch levanta el bloqueo manual. Un lote vencido no se desbloquea.
func (uc *BatchAdminUseCase) UnblockBatch(ctx context.Context, batchID string) (*dto.BatchResponse, error) {
	now := time.Now()
	var updated *entity.Batch
	err := uc.txRunner.RunBatch(ctx, func(
		batchRepo repository.BatchRepository,
		_ repository.MedicineStockMovementRepository,
		_ repository.ControlledRegisterRepository,
	) error {
		batch, err := batchRepo.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		if batch.IsExpired(now) {
			return domain.NewInvalidStateError("lote "+batch.BatchNumber, "está vencido y no puede desbloquearse")
		}
		batch.IsBlocked = false
		batch.BlockReason = ""
		batch.UpdatedAt = now
		updated = batch
		return batchRepo.Update(batch)
	})
	if err != nil {
		return nil, err
	}
	resp := toBatchResponse(updated, now)
	return &resp, nil
}

// WriteoffExpired da de baja todas las existencias de un lote vencido.
func (uc *BatchAdminUseCase) WriteoffExpired(ctx context.Context, userID, batchID string, in dto.WriteoffBatchRequest) (*dto.BatchResponse, error) {
	reason := in.Reason
	if reason == "" {
		reason = "baja de inventario vencido"
	}
	med, err := uc.medicineForBatch(batchID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var updated *entity.Batch
	err = uc.txRunner.RunBatch(ctx, func(
		batchRepo repository.BatchRepository,
		medMovRepo repository.MedicineStockMovementRepository,
		registerRepo repository.ControlledRegisterRepository,
	) error {
		batch, err := batchRepo.GetForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		if !batch.IsExpired(now) {
			return domain.NewInvalidStateError("lote "+batch.BatchNumber, "solo los lotes vencidos se dan de baja por vencimiento")
		}
		if batch.Quantity <= 0 {
			return domain.NewValidationError("quantity", "el lote no tiene existencias para dar de baja")
		}

		mov, b, txErr := uc.ledger.ApplyAbsoluteInTx(
			batchRepo, medMovRepo, batchID, 0,
			entity.MovementTypeExpiryWriteoff, "", reason, userID, now,
		)
		if txErr != nil {
			return txErr
		}
		updated = b
		if med.IsControlled() {
			return registerRepo.Create(&entity.ControlledRegisterEntry{
				ID:              uuid.New().String(),
				MedicineID:      med.ID,
				BatchID:         b.ID,
				TransactionType: entity.RegisterTypeWriteoff,
				Quantity:        mov.Quantity,
				Balance:         b.Quantity,
				DispensedByID:   userID,
				Notes:           reason,
				CreatedAt:       now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toBatchResponse(updated, now)
	return &resp, nil
}

// GetBatch devuelve un lote con su estado derivado.
func (uc *BatchAdminUseCase) GetBatch(batchID string) (*dto.BatchResponse, error) {
	batch, err := uc.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	resp := toBatchResponse(batch, time.Now())
	return &resp, nil
}

// ListBatches devuelve los lotes de un medicamento en orden FEFO.
func (uc *BatchAdminUseCase) ListBatches(medicineID string) (*dto.BatchListResponse, error) {
	med, err := uc.medicineRepo.GetByID(medicineID)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, domain.ErrNotFound
	}
	batches, err := uc.batchRepo.ListByMedicine(medicineID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	items := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		items = append(items, toBatchResponse(b, now))
	}
	return &dto.BatchListResponse{Items: items}, nil
}

func (uc *BatchAdminUseCase) medicineForBatch(batchID string) (*entity.Medicine, error) {
	batch, err := uc.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	med, err := uc.medicineRepo.GetByID(batch.MedicineID)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, domain.ErrNotFound
	}
	return med, nil
}

func toBatchResponse(b *entity.Batch, now time.Time) dto.BatchResponse {
	return dto.BatchResponse{
		ID:              b.ID,
		MedicineID:      b.MedicineID,
		BatchNumber:     b.BatchNumber,
		ExpiryDate:      b.ExpiryDate,
		Quantity:        b.Quantity,
		InitialQuantity: b.InitialQuantity,
		PurchasePrice:   b.PurchasePrice,
		SellingPrice:    b.SellingPrice,
		Status:          b.Status(now),
		DaysToExpiry:    b.DaysToExpiry(now),
		IsBlocked:       b.IsBlocked,
		BlockReason:     b.BlockReason,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
