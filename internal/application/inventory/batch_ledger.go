package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// BatchLedgerUseCase es la única vía de mutación de lotes farmacéuticos.
// Cada escritura bloquea la fila del lote, deja un movimiento en la misma
// transacción y bloquea automáticamente el lote si está vencido.
type BatchLedgerUseCase struct {
	txRunner     BatchTxRunner
	batchRepo    repository.BatchRepository
	medicineRepo repository.MedicineRepository
	medMovRepo   repository.MedicineStockMovementRepository
}

// NewBatchLedgerUseCase construye el caso de uso.
func NewBatchLedgerUseCase(
	txRunner BatchTxRunner,
	batchRepo repository.BatchRepository,
	medicineRepo repository.MedicineRepository,
	medMovRepo repository.MedicineStockMovementRepository,
) *BatchLedgerUseCase {
	return &BatchLedgerUseCase{
		txRunner:     txRunner,
		batchRepo:    batchRepo,
		medicineRepo: medicineRepo,
		medMovRepo:   medMovRepo,
	}
}

// BatchMovementInput entrada interna para mutar un lote. Delta lleva signo.
// GrowInitial acumula el delta positivo en InitialQuantity (recepciones).
type BatchMovementInput struct {
	BatchID        string
	MovementType   string
	Delta          int64
	PharmacySaleID string
	ReceivingID    string
	Reference      string
	Notes          string
	UserID         string
	GrowInitial    bool
}

// ApplyDeltaInTx bloquea el lote, valida prev+delta >= 0, aplica el bloqueo
// automático por vencimiento y persiste lote y movimiento (misma transacción).
// Devuelve el movimiento y el lote ya actualizado, cuyo Quantity sirve de
// saldo para el libro de controlados.
func (uc *BatchLedgerUseCase) ApplyDeltaInTx(
	batchRepo repository.BatchRepository,
	medMovRepo repository.MedicineStockMovementRepository,
	in BatchMovementInput,
	now time.Time,
) (*entity.MedicineStockMovement, *entity.Batch, error) {
	if !entity.ValidMovementType(in.MovementType) {
		return nil, nil, domain.NewValidationError("movement_type", "tipo de movimiento desconocido: "+in.MovementType)
	}
	batch, err := batchRepo.GetForUpdate(in.BatchID)
	if err != nil {
		return nil, nil, err
	}
	if batch == nil {
		return nil, nil, domain.ErrNotFound
	}

	prev := batch.Quantity
	newQty := prev + in.Delta
	if newQty < 0 {
		return nil, nil, domain.NewInsufficientStockError(
			"lote "+batch.BatchNumber,
			decimal.NewFromInt(prev),
			decimal.NewFromInt(-in.Delta),
		)
	}
	batch.Quantity = newQty
	if in.GrowInitial && in.Delta > 0 {
		batch.InitialQuantity += in.Delta
	}
	batch.EnsureAutoBlock(now)
	batch.UpdatedAt = now
	if err := batchRepo.Update(batch); err != nil {
		return nil, nil, err
	}

	mov := &entity.MedicineStockMovement{
		ID:               uuid.New().String(),
		MedicineID:       batch.MedicineID,
		BatchID:          batch.ID,
		MovementType:     in.MovementType,
		Quantity:         in.Delta,
		PreviousQuantity: prev,
		NewQuantity:      newQty,
		PharmacySaleID:   in.PharmacySaleID,
		ReceivingID:      in.ReceivingID,
		Reference:        in.Reference,
		Notes:            in.Notes,
		CreatedBy:        in.UserID,
		CreatedAt:        now,
	}
	if err := medMovRepo.Create(mov); err != nil {
		return nil, nil, err
	}
	return mov, batch, nil
}

// ApplyAbsoluteInTx fija la cantidad del lote en target; el delta del
// movimiento es target - previo. Lo usan el ajuste tipo set y la baja de
// vencidos (target 0).
func (uc *BatchLedgerUseCase) ApplyAbsoluteInTx(
	batchRepo repository.BatchRepository,
	medMovRepo repository.MedicineStockMovementRepository,
	batchID string,
	target int64,
	movementType, reference, notes, userID string,
	now time.Time,
) (*entity.MedicineStockMovement, *entity.Batch, error) {
	if target < 0 {
		return nil, nil, domain.NewValidationError("quantity", "la cantidad objetivo no puede ser negativa")
	}
	if !entity.ValidMovementType(movementType) {
		return nil, nil, domain.NewValidationError("movement_type", "tipo de movimiento desconocido: "+movementType)
	}
	batch, err := batchRepo.GetForUpdate(batchID)
	if err != nil {
		return nil, nil, err
	}
	if batch == nil {
		return nil, nil, domain.ErrNotFound
	}

	prev := batch.Quantity
	batch.Quantity = target
	batch.EnsureAutoBlock(now)
	batch.UpdatedAt = now
	if err := batchRepo.Update(batch); err != nil {
		return nil, nil, err
	}

	mov := &entity.MedicineStockMovement{
		ID:               uuid.New().String(),
		MedicineID:       batch.MedicineID,
		BatchID:          batch.ID,
		MovementType:     movementType,
		Quantity:         target - prev,
		PreviousQuantity: prev,
		NewQuantity:      target,
		Reference:        reference,
		Notes:            notes,
		CreatedBy:        userID,
		CreatedAt:        now,
	}
	if err := medMovRepo.Create(mov); err != nil {
		return nil, nil, err
	}
	return mov, batch, nil
}

// ApplyDispenseOutInTx salida por dispensación: bloquea el lote y re-valida
// bajo el lock que siga dispensable y con cantidad suficiente. Una venta
// concurrente que ganó el lock puede dejar a esta sin stock aunque el
// pre-chequeo hubiera pasado.
func (uc *BatchLedgerUseCase) ApplyDispenseOutInTx(
	batchRepo repository.BatchRepository,
	medMovRepo repository.MedicineStockMovementRepository,
	batchID string,
	quantity int64,
	pharmacySaleID, reference, userID string,
	now time.Time,
) (*entity.MedicineStockMovement, *entity.Batch, error) {
	if quantity <= 0 {
		return nil, nil, domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
	}
	batch, err := batchRepo.GetForUpdate(batchID)
	if err != nil {
		return nil, nil, err
	}
	if batch == nil {
		return nil, nil, domain.ErrNotFound
	}
	if batch.IsExpired(now) {
		return nil, nil, domain.NewInvalidStateError("lote "+batch.BatchNumber, "está vencido y no puede dispensarse")
	}
	if batch.IsBlocked {
		return nil, nil, domain.NewInvalidStateError("lote "+batch.BatchNumber, "está bloqueado: "+batch.BlockReason)
	}
	if batch.Quantity < quantity {
		return nil, nil, domain.NewInsufficientStockError(
			"lote "+batch.BatchNumber,
			decimal.NewFromInt(batch.Quantity),
			decimal.NewFromInt(quantity),
		)
	}

	prev := batch.Quantity
	batch.Quantity = prev - quantity
	batch.UpdatedAt = now
	if err := batchRepo.Update(batch); err != nil {
		return nil, nil, err
	}
	mov := &entity.MedicineStockMovement{
		ID:               uuid.New().String(),
		MedicineID:       batch.MedicineID,
		BatchID:          batch.ID,
		MovementType:     entity.MovementTypeSale,
		Quantity:         -quantity,
		PreviousQuantity: prev,
		NewQuantity:      batch.Quantity,
		PharmacySaleID:   pharmacySaleID,
		Reference:        reference,
		CreatedBy:        userID,
		CreatedAt:        now,
	}
	if err := medMovRepo.Create(mov); err != nil {
		return nil, nil, err
	}
	return mov, batch, nil
}

// ApplyDispenseReturnInTx devolución al lote al anular una dispensación.
// Restaura aunque el lote haya vencido mientras tanto; el bloqueo automático
// lo deja marcado.
func (uc *BatchLedgerUseCase) ApplyDispenseReturnInTx(
	batchRepo repository.BatchRepository,
	medMovRepo repository.MedicineStockMovementRepository,
	batchID string,
	quantity int64,
	pharmacySaleID, reference, notes, userID string,
	now time.Time,
) (*entity.MedicineStockMovement, *entity.Batch, error) {
	if quantity <= 0 {
		return nil, nil, domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
	}
	return uc.ApplyDeltaInTx(batchRepo, medMovRepo, BatchMovementInput{
		BatchID:        batchID,
		MovementType:   entity.MovementTypeReturn,
		Delta:          quantity,
		PharmacySaleID: pharmacySaleID,
		Reference:      reference,
		Notes:          notes,
		UserID:         userID,
	}, now)
}

// ListByMedicine devuelve el historial de movimientos de un medicamento.
func (uc *BatchLedgerUseCase) ListByMedicine(medicineID string, from, to *time.Time, limit, offset int) ([]*entity.MedicineStockMovement, error) {
	med, err := uc.medicineRepo.GetByID(medicineID)
	if err != nil {
		return nil, err
	}
	if med == nil {
		return nil, domain.ErrNotFound
	}
	return uc.medMovRepo.ListByMedicine(medicineID, from, to, limit, offset)
}

// ListByBatch devuelve el historial de movimientos de un lote.
func (uc *BatchLedgerUseCase) ListByBatch(batchID string) ([]*entity.MedicineStockMovement, error) {
	batch, err := uc.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	return uc.medMovRepo.ListByBatch(batchID)
}
