package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Farmapos-api/internal/application/inventory"
	"github.com/jhoicas/Farmapos-api/internal/application/pharmacy"
	"github.com/jhoicas/Farmapos-api/internal/application/sales"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// Ensure TxRunner implements every transaction port of the application layer.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ inventory.BatchTxRunner = (*TxRunner)(nil)
var _ inventory.ReceivingTxRunner = (*TxRunner)(nil)
var _ inventory.PurchaseTxRunner = (*TxRunner)(nil)
var _ sales.SaleTxRunner = (*TxRunner)(nil)
var _ pharmacy.PharmacyTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	productRepo := NewProductRepository(tx)
	movRepo := NewStockMovementRepository(tx)

	if err := fn(productRepo, movRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunBatch inicia una transacción con los repos del inventario por lote y el libro de controlados.
func (r *TxRunner) RunBatch(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	medMovRepo repository.MedicineStockMovementRepository,
	registerRepo repository.ControlledRegisterRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batchRepo := NewBatchRepository(tx)
	medMovRepo := NewMedicineStockMovementRepository(tx)
	registerRepo := NewControlledRegisterRepository(tx)

	if err := fn(batchRepo, medMovRepo, registerRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunReceiving inicia una transacción que cubre la recepción completa (para ReceiveShipment).
func (r *TxRunner) RunReceiving(ctx context.Context, fn func(
	receivingRepo repository.ReceivingRepository,
	batchRepo repository.BatchRepository,
	medMovRepo repository.MedicineStockMovementRepository,
	registerRepo repository.ControlledRegisterRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	receivingRepo := NewReceivingRepository(tx)
	batchRepo := NewBatchRepository(tx)
	medMovRepo := NewMedicineStockMovementRepository(tx)
	registerRepo := NewControlledRegisterRepository(tx)

	if err := fn(receivingRepo, batchRepo, medMovRepo, registerRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunPurchase inicia una transacción que cubre una orden de compra minorista y su recepción.
func (r *TxRunner) RunPurchase(ctx context.Context, fn func(
	orderRepo repository.PurchaseOrderRepository,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderRepo := NewPurchaseOrderRepository(tx)
	productRepo := NewProductRepository(tx)
	movRepo := NewStockMovementRepository(tx)

	if err := fn(orderRepo, productRepo, movRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunSale inicia una transacción que cubre la venta minorista completa (para CreateSale y VoidSale).
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	paymentRepo repository.PaymentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saleRepo := NewSaleRepository(tx)
	productRepo := NewProductRepository(tx)
	movRepo := NewStockMovementRepository(tx)
	paymentRepo := NewPaymentRepository(tx)

	if err := fn(saleRepo, productRepo, movRepo, paymentRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunDispense inicia una transacción que cubre la dispensación completa (para Dispense y VoidDispense).
func (r *TxRunner) RunDispense(ctx context.Context, fn func(
	saleRepo repository.PharmacySaleRepository,
	batchRepo repository.BatchRepository,
	medMovRepo repository.MedicineStockMovementRepository,
	registerRepo repository.ControlledRegisterRepository,
	paymentRepo repository.PaymentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saleRepo := NewPharmacySaleRepository(tx)
	batchRepo := NewBatchRepository(tx)
	medMovRepo := NewMedicineStockMovementRepository(tx)
	registerRepo := NewControlledRegisterRepository(tx)
	paymentRepo := NewPaymentRepository(tx)

	if err := fn(saleRepo, batchRepo, medMovRepo, registerRepo, paymentRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
