package repository

import "github.com/jhoicas/Farmapos-api/internal/domain/entity"

// PurchaseOrderRepository define el puerto de persistencia para órdenes de
// compra minoristas y sus líneas (DIP).
type PurchaseOrderRepository interface {
	Create(order *entity.PurchaseOrder) error
	CreateItem(item *entity.PurchaseOrderItem) error
	GetByID(id string) (*entity.PurchaseOrder, error)
	// GetForUpdate bloquea la orden durante la recepción (evita doble receive).
	GetForUpdate(id string) (*entity.PurchaseOrder, error)
	GetByNumber(orderNumber string) (*entity.PurchaseOrder, error)
	GetItemsByOrderID(orderID string) ([]*entity.PurchaseOrderItem, error)
	Update(order *entity.PurchaseOrder) error
	List(storeID, status string, limit, offset int) ([]*entity.PurchaseOrder, error)
}
