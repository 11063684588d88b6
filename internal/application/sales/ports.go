package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// SaleTxRunner ejecuta una función dentro de una transacción que cubre la
// venta minorista completa: cabecera, líneas, stock, movimientos y pago.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		paymentRepo repository.PaymentRepository,
	) error) error
}

// RetailLedger expone el libro de movimientos minorista dentro de la
// transacción del caller. Si retorna error (ej: stock insuficiente bajo el
// lock), el caller debe hacer rollback.
type RetailLedger interface {
	ApplySaleOutInTx(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		productID string,
		quantity decimal.Decimal,
		saleID, reference, userID string,
		now time.Time,
	) (*entity.StockMovement, error)

	ApplyReturnInTx(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		productID string,
		quantity decimal.Decimal,
		saleID, reference, notes, userID string,
		now time.Time,
	) (*entity.StockMovement, error)

	ApplyChildSaleInTx(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		child *entity.Product,
		unitsSold int64,
		saleID, reference, userID string,
		now time.Time,
	) (*entity.StockMovement, *entity.StockMovement, error)

	RecordChildReturnInTx(
		movRepo repository.StockMovementRepository,
		child *entity.Product,
		unitsReturned, effectiveAfter int64,
		saleID, reference, notes, userID string,
		now time.Time,
	) (*entity.StockMovement, error)
}

// SalePDFGenerator genera el comprobante PDF de una venta minorista.
type SalePDFGenerator interface {
	GenerateSalePDF(ctx context.Context, sale *entity.Sale, items []*entity.SaleItem, store *entity.Store) ([]byte, error)
}
