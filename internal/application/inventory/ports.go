package inventory

import (
	"context"

	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el libro de movimientos minorista.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// BatchTxRunner ejecuta una función dentro de una transacción que incluye los repos
// del inventario farmacéutico por lote y el libro de controlados.
type BatchTxRunner interface {
	RunBatch(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		medMovRepo repository.MedicineStockMovementRepository,
		registerRepo repository.ControlledRegisterRepository,
	) error) error
}

// ReceivingTxRunner ejecuta una función dentro de una transacción que cubre la
// recepción completa: cabecera, líneas, lotes, movimientos y libro de controlados.
type ReceivingTxRunner interface {
	RunReceiving(ctx context.Context, fn func(
		receivingRepo repository.ReceivingRepository,
		batchRepo repository.BatchRepository,
		medMovRepo repository.MedicineStockMovementRepository,
		registerRepo repository.ControlledRegisterRepository,
	) error) error
}

// PurchaseTxRunner ejecuta una función dentro de una transacción que cubre una
// orden de compra minorista y el stock que ingresa al recibirla.
type PurchaseTxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		orderRepo repository.PurchaseOrderRepository,
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}
