package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Farmapos-api/internal/domain/inventory"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// StockLedgerUseCase es la única vía de mutación del stock minorista: toda
// escritura pasa por aquí, bloquea la fila del producto (SELECT FOR UPDATE) y
// deja exactamente un movimiento en la misma transacción.
type StockLedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
}

// NewStockLedgerUseCase construye el caso de uso.
func NewStockLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) *StockLedgerUseCase {
	return &StockLedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
	}
}

// MovementInput entrada interna para aplicar una mutación de stock.
// Delta lleva signo: positivo entra, negativo sale.
type MovementInput struct {
	ProductID    string
	MovementType string
	Delta        decimal.Decimal
	SaleID       string
	Reference    string
	Notes        string
	UserID       string
}

// ApplyDeltaInTx bloquea el producto, valida prev+delta >= 0 y persiste stock
// y movimiento con los repositorios del caller (misma transacción).
// Los productos hijos no llevan stock propio: mutarlos directamente es error.
func (uc *StockLedgerUseCase) ApplyDeltaInTx(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	in MovementInput,
	now time.Time,
) (*entity.StockMovement, error) {
	if !entity.ValidMovementType(in.MovementType) {
		return nil, domain.NewValidationError("movement_type", "tipo de movimiento desconocido: "+in.MovementType)
	}
	product, err := productRepo.GetForUpdate(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.IsChild() {
		return nil, domain.NewValidationError("product_id", "los productos hijos no llevan stock propio; el movimiento va por el padre")
	}

	prev := product.StockQuantity
	newQty := prev.Add(in.Delta)
	if newQty.IsNegative() {
		return nil, domain.NewInsufficientStockError(product.Name, prev, in.Delta.Neg())
	}
	if err := productRepo.SetStock(product.ID, newQty); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		ProductID:        product.ID,
		MovementType:     in.MovementType,
		Quantity:         in.Delta,
		PreviousQuantity: prev,
		NewQuantity:      newQty,
		SaleID:           in.SaleID,
		Reference:        in.Reference,
		Notes:            in.Notes,
		CreatedBy:        in.UserID,
		CreatedAt:        now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ApplyAbsoluteInTx fija el stock del producto en target (tipo set): el delta
// del movimiento es target - previo.
func (uc *StockLedgerUseCase) ApplyAbsoluteInTx(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	productID string,
	target decimal.Decimal,
	reference, notes, userID string,
	now time.Time,
) (*entity.StockMovement, error) {
	if target.IsNegative() {
		return nil, domain.NewValidationError("quantity", "el stock objetivo no puede ser negativo")
	}
	product, err := productRepo.GetForUpdate(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.IsChild() {
		return nil, domain.NewValidationError("product_id", "los productos hijos no llevan stock propio; el movimiento va por el padre")
	}

	prev := product.StockQuantity
	delta := target.Sub(prev)
	if err := productRepo.SetStock(product.ID, target); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		ProductID:        product.ID,
		MovementType:     entity.MovementTypeAdjustment,
		Quantity:         delta,
		PreviousQuantity: prev,
		NewQuantity:      target,
		Reference:        reference,
		Notes:            notes,
		CreatedBy:        userID,
		CreatedAt:        now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// RecordChildSaleInTx deja la fila informativa del hijo en unidades derivadas.
// No toca stock: el hijo vive del padre y su fila solo documenta la venta.
func (uc *StockLedgerUseCase) RecordChildSaleInTx(
	movRepo repository.StockMovementRepository,
	child *entity.Product,
	unitsSold, effectiveAfter int64,
	saleID, reference, userID string,
	now time.Time,
) (*entity.StockMovement, error) {
	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		ProductID:        child.ID,
		MovementType:     entity.MovementTypeSale,
		Quantity:         decimal.NewFromInt(-unitsSold),
		PreviousQuantity: decimal.NewFromInt(effectiveAfter + unitsSold),
		NewQuantity:      decimal.NewFromInt(effectiveAfter),
		SaleID:           saleID,
		Reference:        reference,
		Notes:            "unidades derivadas del stock del padre",
		CreatedBy:        userID,
		CreatedAt:        now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ApplySaleOutInTx salida por venta de un producto simple o padre, usando los
// repositorios del caller (misma transacción).
func (uc *StockLedgerUseCase) ApplySaleOutInTx(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	productID string,
	quantity decimal.Decimal,
	saleID, reference, userID string,
	now time.Time,
) (*entity.StockMovement, error) {
	return uc.ApplyDeltaInTx(productRepo, movRepo, MovementInput{
		ProductID:    productID,
		MovementType: entity.MovementTypeSale,
		Delta:        quantity.Neg(),
		SaleID:       saleID,
		Reference:    reference,
		UserID:       userID,
	}, now)
}

// ApplyReturnInTx devolución de stock al anular una venta (cantidad positiva).
func (uc *StockLedgerUseCase) ApplyReturnInTx(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	productID string,
	quantity decimal.Decimal,
	saleID, reference, notes, userID string,
	now time.Time,
) (*entity.StockMovement, error) {
	return uc.ApplyDeltaInTx(productRepo, movRepo, MovementInput{
		ProductID:    productID,
		MovementType: entity.MovementTypeReturn,
		Delta:        quantity,
		SaleID:       saleID,
		Reference:    reference,
		Notes:        notes,
		UserID:       userID,
	}, now)
}

// ApplyChildSaleInTx venta de un producto hijo: bloquea al padre, valida la
// disponibilidad derivada bajo el lock, descuenta el consumo exacto (decimal,
// acotado al stock del padre) y deja la fila del padre más la fila informativa
// del hijo. Devuelve ambas en ese orden.
func (uc *StockLedgerUseCase) ApplyChildSaleInTx(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	child *entity.Product,
	unitsSold int64,
	saleID, reference, userID string,
	now time.Time,
) (*entity.StockMovement, *entity.StockMovement, error) {
	if !child.IsChild() {
		return nil, nil, domain.NewValidationError("product_id", "el producto no es de tipo hijo")
	}
	if unitsSold <= 0 {
		return nil, nil, domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
	}
	if child.ParentProductID == "" {
		return nil, nil, domain.NewValidationError("parent_product_id", "el producto hijo "+child.Name+" no tiene padre asignado")
	}
	parent, err := productRepo.GetForUpdate(child.ParentProductID)
	if err != nil {
		return nil, nil, err
	}
	if parent == nil {
		return nil, nil, domain.NewValidationError("parent_product_id", "el padre del producto "+child.Name+" no existe")
	}

	available, err := domaininv.AvailableChildUnits(parent.StockQuantity, parent.UnitQuantity, child.UnitQuantity)
	if err != nil {
		return nil, nil, err
	}
	if available < unitsSold {
		return nil, nil, domain.NewInsufficientStockError(
			child.Name,
			decimal.NewFromInt(available),
			decimal.NewFromInt(unitsSold),
		)
	}

	consumed, err := domaininv.ConsumedParentUnits(
		decimal.NewFromInt(unitsSold), child.UnitQuantity, parent.UnitQuantity, parent.StockQuantity,
	)
	if err != nil {
		return nil, nil, err
	}
	prev := parent.StockQuantity
	newParent := prev.Sub(consumed)
	if err := productRepo.SetStock(parent.ID, newParent); err != nil {
		return nil, nil, err
	}
	parentMov := &entity.StockMovement{
		ID:               uuid.New().String(),
		ProductID:        parent.ID,
		MovementType:     entity.MovementTypeSale,
		Quantity:         consumed.Neg(),
		PreviousQuantity: prev,
		NewQuantity:      newParent,
		SaleID:           saleID,
		Reference:        reference,
		Notes:            "consumo por venta del hijo " + child.SKU,
		CreatedBy:        userID,
		CreatedAt:        now,
	}
	if err := movRepo.Create(parentMov); err != nil {
		return nil, nil, err
	}

	effectiveAfter, err := domaininv.AvailableChildUnits(newParent, parent.UnitQuantity, child.UnitQuantity)
	if err != nil {
		return nil, nil, err
	}
	childMov, err := uc.RecordChildSaleInTx(movRepo, child, unitsSold, effectiveAfter, saleID, reference, userID, now)
	if err != nil {
		return nil, nil, err
	}
	return parentMov, childMov, nil
}

// RecordChildReturnInTx fila informativa de devolución de un hijo tras
// restaurar el stock del padre. effectiveAfter son las unidades derivadas ya
// restauradas.
func (uc *StockLedgerUseCase) RecordChildReturnInTx(
	movRepo repository.StockMovementRepository,
	child *entity.Product,
	unitsReturned, effectiveAfter int64,
	saleID, reference, notes, userID string,
	now time.Time,
) (*entity.StockMovement, error) {
	mov := &entity.StockMovement{
		ID:               uuid.New().String(),
		ProductID:        child.ID,
		MovementType:     entity.MovementTypeReturn,
		Quantity:         decimal.NewFromInt(unitsReturned),
		PreviousQuantity: decimal.NewFromInt(effectiveAfter - unitsReturned),
		NewQuantity:      decimal.NewFromInt(effectiveAfter),
		SaleID:           saleID,
		Reference:        reference,
		Notes:            notes,
		CreatedBy:        userID,
		CreatedAt:        now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// AdjustStock ajuste manual de inventario (add/remove/set) en una transacción propia.
func (uc *StockLedgerUseCase) AdjustStock(ctx context.Context, userID string, in dto.AdjustStockRequest) (*dto.StockMovementResponse, error) {
	if in.Reason == "" {
		return nil, domain.NewValidationError("reason", "el motivo del ajuste es obligatorio")
	}
	switch in.AdjustmentType {
	case "add", "remove":
		if !in.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
		}
	case "set":
		if in.Quantity.IsNegative() {
			return nil, domain.NewValidationError("quantity", "el stock objetivo no puede ser negativo")
		}
	default:
		return nil, domain.NewValidationError("adjustment_type", "tipo de ajuste desconocido: "+in.AdjustmentType)
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if product.IsChild() {
		return nil, domain.NewValidationError("product_id", "los productos hijos no llevan stock propio; ajuste el padre")
	}

	now := time.Now()
	var mov *entity.StockMovement
	err = uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		var txErr error
		switch in.AdjustmentType {
		case "add":
			mov, txErr = uc.ApplyDeltaInTx(productRepo, movRepo, MovementInput{
				ProductID:    in.ProductID,
				MovementType: entity.MovementTypeAdjustment,
				Delta:        in.Quantity,
				Notes:        in.Reason,
				UserID:       userID,
			}, now)
		case "remove":
			mov, txErr = uc.ApplyDeltaInTx(productRepo, movRepo, MovementInput{
				ProductID:    in.ProductID,
				MovementType: entity.MovementTypeAdjustment,
				Delta:        in.Quantity.Neg(),
				Notes:        in.Reason,
				UserID:       userID,
			}, now)
		case "set":
			mov, txErr = uc.ApplyAbsoluteInTx(productRepo, movRepo, in.ProductID, in.Quantity, "", in.Reason, userID, now)
		}
		return txErr
	})
	if err != nil {
		return nil, err
	}
	resp := toStockMovementResponse(mov)
	return &resp, nil
}

// ListByProduct devuelve el historial de movimientos de un producto.
func (uc *StockLedgerUseCase) ListByProduct(productID string, from, to *time.Time, page dto.PageRequest) (*dto.StockMovementListResponse, error) {
	page.DefaultPage()
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	movs, err := uc.movRepo.ListByProduct(productID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(movs))
	for _, m := range movs {
		items = append(items, toStockMovementResponse(m))
	}
	return &dto.StockMovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toStockMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:               m.ID,
		ProductID:        m.ProductID,
		MovementType:     m.MovementType,
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		SaleID:           m.SaleID,
		Reference:        m.Reference,
		Notes:            m.Notes,
		CreatedBy:        m.CreatedBy,
		CreatedAt:        m.CreatedAt,
	}
}
