package apptest

import (
	"context"

	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// DB agrupa los repositorios en memoria y satisface los TxRunner de los casos
// de uso. Cada Run* toma una instantánea de los repos que esa transacción
// puede mutar y la restaura si fn falla, imitando el ROLLBACK real.
type DB struct {
	Stores        *StoreRepo
	Users         *UserRepo
	Suppliers     *SupplierRepo
	Products      *ProductRepo
	Movements     *MovementRepo
	Medicines     *MedicineRepo
	Batches       *BatchRepo
	MedMovements  *MedMovRepo
	Register      *RegisterRepo
	Receivings    *ReceivingRepo
	Orders        *OrderRepo
	Sales         *SaleRepo
	PharmacySales *PharmacySaleRepo
	Payments      *PaymentRepo
}

// NewDB construye un DB vacío listo para sembrar fixtures.
func NewDB() *DB {
	return &DB{
		Stores:        &StoreRepo{rows: map[string]*entity.Store{}},
		Users:         &UserRepo{rows: map[string]*entity.User{}},
		Suppliers:     &SupplierRepo{rows: map[string]*entity.Supplier{}},
		Products:      &ProductRepo{rows: map[string]*entity.Product{}, Referenced: map[string]bool{}},
		Movements:     &MovementRepo{},
		Medicines:     &MedicineRepo{rows: map[string]*entity.Medicine{}, Referenced: map[string]bool{}},
		Batches:       &BatchRepo{rows: map[string]*entity.Batch{}},
		MedMovements:  &MedMovRepo{},
		Register:      &RegisterRepo{},
		Receivings:    &ReceivingRepo{headers: map[string]*entity.StockReceiving{}},
		Orders:        &OrderRepo{orders: map[string]*entity.PurchaseOrder{}},
		Sales:         &SaleRepo{sales: map[string]*entity.Sale{}},
		PharmacySales: &PharmacySaleRepo{sales: map[string]*entity.PharmacySale{}},
		Payments:      &PaymentRepo{},
	}
}

// Run satisface inventory.TxRunner.
func (db *DB) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	products, movements := db.Products.snapshot(), db.Movements.snapshot()
	if err := fn(db.Products, db.Movements); err != nil {
		db.Products.restore(products)
		db.Movements.restore(movements)
		return err
	}
	return nil
}

// RunBatch satisface inventory.BatchTxRunner.
func (db *DB) RunBatch(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	medMovRepo repository.MedicineStockMovementRepository,
	registerRepo repository.ControlledRegisterRepository,
) error) error {
	batches, movements, register := db.Batches.snapshot(), db.MedMovements.snapshot(), db.Register.snapshot()
	if err := fn(db.Batches, db.MedMovements, db.Register); err != nil {
		db.Batches.restore(batches)
		db.MedMovements.restore(movements)
		db.Register.restore(register)
		return err
	}
	return nil
}

// RunReceiving satisface inventory.ReceivingTxRunner.
func (db *DB) RunReceiving(ctx context.Context, fn func(
	receivingRepo repository.ReceivingRepository,
	batchRepo repository.BatchRepository,
	medMovRepo repository.MedicineStockMovementRepository,
	registerRepo repository.ControlledRegisterRepository,
) error) error {
	receivings, batches := db.Receivings.snapshot(), db.Batches.snapshot()
	movements, register := db.MedMovements.snapshot(), db.Register.snapshot()
	if err := fn(db.Receivings, db.Batches, db.MedMovements, db.Register); err != nil {
		db.Receivings.restore(receivings)
		db.Batches.restore(batches)
		db.MedMovements.restore(movements)
		db.Register.restore(register)
		return err
	}
	return nil
}

// RunPurchase satisface inventory.PurchaseTxRunner.
func (db *DB) RunPurchase(ctx context.Context, fn func(
	orderRepo repository.PurchaseOrderRepository,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	orders, products, movements := db.Orders.snapshot(), db.Products.snapshot(), db.Movements.snapshot()
	if err := fn(db.Orders, db.Products, db.Movements); err != nil {
		db.Orders.restore(orders)
		db.Products.restore(products)
		db.Movements.restore(movements)
		return err
	}
	return nil
}

// RunSale satisface sales.SaleTxRunner.
func (db *DB) RunSale(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	paymentRepo repository.PaymentRepository,
) error) error {
	sales, products := db.Sales.snapshot(), db.Products.snapshot()
	movements, payments := db.Movements.snapshot(), db.Payments.snapshot()
	if err := fn(db.Sales, db.Products, db.Movements, db.Payments); err != nil {
		db.Sales.restore(sales)
		db.Products.restore(products)
		db.Movements.restore(movements)
		db.Payments.restore(payments)
		return err
	}
	return nil
}

// RunDispense satisface pharmacy.PharmacyTxRunner.
func (db *DB) RunDispense(ctx context.Context, fn func(
	saleRepo repository.PharmacySaleRepository,
	batchRepo repository.BatchRepository,
	medMovRepo repository.MedicineStockMovementRepository,
	registerRepo repository.ControlledRegisterRepository,
	paymentRepo repository.PaymentRepository,
) error) error {
	sales, batches := db.PharmacySales.snapshot(), db.Batches.snapshot()
	movements, register, payments := db.MedMovements.snapshot(), db.Register.snapshot(), db.Payments.snapshot()
	if err := fn(db.PharmacySales, db.Batches, db.MedMovements, db.Register, db.Payments); err != nil {
		db.PharmacySales.restore(sales)
		db.Batches.restore(batches)
		db.MedMovements.restore(movements)
		db.Register.restore(register)
		db.Payments.restore(payments)
		return err
	}
	return nil
}
