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
	"github.com/jhoicas/Farmapos-api/pkg/docnum"
)

// PurchaseOrderUseCase órdenes de compra minoristas: creación, recepción y
// cancelación. Al recibir, el stock entra por el libro de movimientos con la
// orden bloqueada, así una doble recepción concurrente se rechaza.
type PurchaseOrderUseCase struct {
	txRunner     PurchaseTxRunner
	ledger       *StockLedgerUseCase
	storeRepo    repository.StoreRepository
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.PurchaseOrderRepository
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(
	txRunner PurchaseTxRunner,
	ledger *StockLedgerUseCase,
	storeRepo repository.StoreRepository,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.PurchaseOrderRepository,
) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		storeRepo:    storeRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
	}
}

// CreatePurchaseOrder crea una orden pendiente con sus líneas en una
// transacción. El costo unitario queda congelado en la línea.
func (uc *PurchaseOrderUseCase) CreatePurchaseOrder(ctx context.Context, userID string, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "la orden necesita al menos una línea")
	}
	store, err := uc.storeRepo.GetByID(in.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}
	supplier, err := uc.supplierRepo.GetByID(in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.NewValidationError("supplier_id", "el proveedor no existe")
	}

	type poLine struct {
		product  *entity.Product
		quantity decimal.Decimal
		unitCost decimal.Decimal
	}
	lines := make([]poLine, 0, len(in.Items))
	subtotal := decimal.Zero
	for _, item := range in.Items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
		}
		if item.UnitCost.IsNegative() {
			return nil, domain.NewValidationError("unit_cost", "el costo unitario no puede ser negativo")
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		if product.StoreID != in.StoreID {
			return nil, domain.NewValidationError("product_id", "el producto "+product.Name+" no pertenece a la tienda")
		}
		if product.IsChild() {
			return nil, domain.NewValidationError("product_id", "los productos hijos no llevan stock propio; la compra va por el padre")
		}
		lines = append(lines, poLine{product: product, quantity: item.Quantity, unitCost: item.UnitCost})
		subtotal = subtotal.Add(item.UnitCost.Mul(item.Quantity))
	}

	now := time.Now()
	order := &entity.PurchaseOrder{
		ID:          uuid.New().String(),
		StoreID:     in.StoreID,
		OrderNumber: docnum.PurchaseOrder(now),
		SupplierID:  in.SupplierID,
		Status:      entity.PurchaseOrderPending,
		Subtotal:    subtotal.Round(2),
		Notes:       in.Notes,
		CreatedByID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var items []*entity.PurchaseOrderItem

	err = uc.txRunner.RunPurchase(ctx, func(
		orderRepo repository.PurchaseOrderRepository,
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		for _, l := range lines {
			item := &entity.PurchaseOrderItem{
				ID:              uuid.New().String(),
				PurchaseOrderID: order.ID,
				ProductID:       l.product.ID,
				ProductName:     l.product.Name,
				Quantity:        l.quantity,
				UnitCost:        l.unitCost,
				LineCost:        l.unitCost.Mul(l.quantity).Round(2),
				CreatedAt:       now,
			}
			if err := orderRepo.CreateItem(item); err != nil {
				return err
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(order, items), nil
}

// ReceivePurchaseOrder marca la orden como recibida e ingresa el stock de cada
// línea por el libro de movimientos, todo en una transacción.
func (uc *PurchaseOrderUseCase) ReceivePurchaseOrder(ctx context.Context, userID, orderID string) (*dto.PurchaseOrderResponse, error) {
	now := time.Now()
	var (
		order *entity.PurchaseOrder
		items []*entity.PurchaseOrderItem
	)
	err := uc.txRunner.RunPurchase(ctx, func(
		orderRepo repository.PurchaseOrderRepository,
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		locked, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		if locked.Status != entity.PurchaseOrderPending {
			return domain.NewInvalidStateError("orden "+locked.OrderNumber, "ya fue recibida o cancelada")
		}
		items, err = orderRepo.GetItemsByOrderID(orderID)
		if err != nil {
			return err
		}
		for _, it := range items {
			mov, err := uc.ledger.ApplyDeltaInTx(productRepo, movRepo, MovementInput{
				ProductID:    it.ProductID,
				MovementType: entity.MovementTypeReceiving,
				Delta:        it.Quantity,
				Reference:    locked.OrderNumber,
				Notes:        "recepción de orden de compra",
				UserID:       userID,
			}, now)
			if err != nil {
				return err
			}
			// Cada entrada de compra repondera el costo del producto.
			product, err := productRepo.GetByID(it.ProductID)
			if err != nil {
				return err
			}
			if product != nil {
				product.CostPrice = domaininv.WeightedAverageCost(
					mov.PreviousQuantity, product.CostPrice, it.Quantity, it.UnitCost,
				)
				product.UpdatedAt = now
				if err := productRepo.Update(product); err != nil {
					return err
				}
			}
		}
		locked.Status = entity.PurchaseOrderReceived
		locked.ReceivedByID = userID
		locked.ReceivedAt = &now
		locked.UpdatedAt = now
		if err := orderRepo.Update(locked); err != nil {
			return err
		}
		order = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(order, items), nil
}

// CancelPurchaseOrder cancela una orden pendiente. Una orden recibida no se cancela.
func (uc *PurchaseOrderUseCase) CancelPurchaseOrder(ctx context.Context, orderID string) (*dto.PurchaseOrderResponse, error) {
	now := time.Now()
	var (
		order *entity.PurchaseOrder
		items []*entity.PurchaseOrderItem
	)
	err := uc.txRunner.RunPurchase(ctx, func(
		orderRepo repository.PurchaseOrderRepository,
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		locked, err := orderRepo.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		if locked.Status != entity.PurchaseOrderPending {
			return domain.NewInvalidStateError("orden "+locked.OrderNumber, "solo las órdenes pendientes se cancelan")
		}
		items, err = orderRepo.GetItemsByOrderID(orderID)
		if err != nil {
			return err
		}
		locked.Status = entity.PurchaseOrderCancelled
		locked.UpdatedAt = now
		if err := orderRepo.Update(locked); err != nil {
			return err
		}
		order = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(order, items), nil
}

// GetPurchaseOrder devuelve una orden con sus líneas.
func (uc *PurchaseOrderUseCase) GetPurchaseOrder(orderID string) (*dto.PurchaseOrderResponse, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.orderRepo.GetItemsByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(order, items), nil
}

// ListPurchaseOrders lista órdenes por tienda y estado opcional.
func (uc *PurchaseOrderUseCase) ListPurchaseOrders(storeID, status string, page dto.PageRequest) (*dto.PurchaseOrderListResponse, error) {
	page.DefaultPage()
	orders, err := uc.orderRepo.List(storeID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseOrderResponse, 0, len(orders))
	for _, o := range orders {
		lines, err := uc.orderRepo.GetItemsByOrderID(o.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, *toPurchaseOrderResponse(o, lines))
	}
	return &dto.PurchaseOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toPurchaseOrderResponse(o *entity.PurchaseOrder, items []*entity.PurchaseOrderItem) *dto.PurchaseOrderResponse {
	lines := make([]dto.PurchaseOrderItemResponse, 0, len(items))
	for _, it := range items {
		lines = append(lines, dto.PurchaseOrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
			LineCost:    it.LineCost,
		})
	}
	return &dto.PurchaseOrderResponse{
		ID:           o.ID,
		StoreID:      o.StoreID,
		OrderNumber:  o.OrderNumber,
		SupplierID:   o.SupplierID,
		Status:       o.Status,
		Subtotal:     o.Subtotal,
		Notes:        o.Notes,
		CreatedByID:  o.CreatedByID,
		ReceivedByID: o.ReceivedByID,
		ReceivedAt:   o.ReceivedAt,
		Items:        lines,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}
