package sales

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

var cien = decimal.NewFromInt(100)

// CreateSaleUseCase registra ventas minoristas: valida todo sin tocar nada y
// después confirma la venta completa en una sola transacción con bloqueo de
// fila por producto.
type CreateSaleUseCase struct {
	txRunner    SaleTxRunner
	ledger      RetailLedger
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	txRunner SaleTxRunner,
	ledger RetailLedger,
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		storeRepo:   storeRepo,
		productRepo: productRepo,
	}
}

// saleLine precálculo de una línea validada, listo para la fase de commit.
type saleLine struct {
	product    *entity.Product
	quantity   decimal.Decimal
	unitPrice  decimal.Decimal
	discount   decimal.Decimal // pct 0-100
	lineGross  decimal.Decimal // precio x cantidad
	lineDisc   decimal.Decimal
	lineNet    decimal.Decimal // gross - disc
	lineTax    decimal.Decimal
	childUnits int64 // solo productos hijo
}

// CreateSale valida la venta sin mutar nada y la confirma atómicamente.
// La fase de validación no escribe; si algo falla la base queda intacta.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, cashierID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "la venta necesita al menos una línea")
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.NewValidationError("payment_method", "medio de pago desconocido: "+in.PaymentMethod)
	}
	if in.PaymentMethod == entity.PaymentMethodMobile && in.CustomerName == "" {
		return nil, domain.NewValidationError("customer_name", "el pago móvil requiere el nombre del cliente")
	}
	store, err := uc.storeRepo.GetByID(in.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}

	lines, err := uc.validateLines(in)
	if err != nil {
		return nil, err
	}

	subtotal, discount, tax := decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.lineGross)
		discount = discount.Add(l.lineDisc)
		tax = tax.Add(l.lineTax)
	}
	total := subtotal.Sub(discount).Add(tax).Round(2)
	if in.AmountPaid.LessThan(total) {
		return nil, domain.NewValidationError("amount_paid", "el monto pagado no cubre el total de la venta")
	}
	change := in.AmountPaid.Sub(total).Round(2)

	now := time.Now()
	saleID := uuid.New().String()
	saleNumber := docnum.Sale(now)

	sale := &entity.Sale{
		ID:             saleID,
		StoreID:        in.StoreID,
		SaleNumber:     saleNumber,
		CashierID:      cashierID,
		CustomerName:   in.CustomerName,
		Subtotal:       subtotal.Round(2),
		DiscountAmount: discount.Round(2),
		TaxAmount:      tax.Round(2),
		Total:          total,
		PaymentMethod:  in.PaymentMethod,
		AmountPaid:     in.AmountPaid.Round(2),
		ChangeAmount:   change,
		Status:         entity.SaleStatusCompleted,
		Notes:          in.Notes,
		CreatedAt:      now,
	}
	var items []*entity.SaleItem

	err = uc.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		paymentRepo repository.PaymentRepository,
	) error {
		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		for _, l := range lines {
			// Mutación de stock bajo lock; aquí puede aparecer el faltante
			// que el pre-chequeo no vio (venta concurrente).
			if l.product.IsChild() {
				if _, _, err := uc.ledger.ApplyChildSaleInTx(
					productRepo, movRepo, l.product, l.childUnits,
					saleID, saleNumber, cashierID, now,
				); err != nil {
					return err
				}
			} else {
				if _, err := uc.ledger.ApplySaleOutInTx(
					productRepo, movRepo, l.product.ID, l.quantity,
					saleID, saleNumber, cashierID, now,
				); err != nil {
					return err
				}
			}

			item := &entity.SaleItem{
				ID:              uuid.New().String(),
				SaleID:          saleID,
				ProductID:       l.product.ID,
				ProductName:     l.product.Name,
				ProductSKU:      l.product.SKU,
				Quantity:        l.quantity,
				UnitPrice:       l.unitPrice,
				TaxRate:         l.product.TaxRate,
				DiscountPercent: l.discount,
				Subtotal:        l.lineNet.Round(2),
				CreatedAt:       now,
			}
			if err := saleRepo.CreateItem(item); err != nil {
				return err
			}
			items = append(items, item)
		}
		return paymentRepo.Create(&entity.Payment{
			ID:        uuid.New().String(),
			SaleID:    saleID,
			Method:    in.PaymentMethod,
			Amount:    total,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, items), nil
}

// validateLines valida producto por producto y precalcula el dinero de cada
// línea. Solo lecturas.
func (uc *CreateSaleUseCase) validateLines(in dto.CreateSaleRequest) ([]saleLine, error) {
	lines := make([]saleLine, 0, len(in.Items))
	for _, item := range in.Items {
		if !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
		}
		if item.DiscountPercent.IsNegative() || item.DiscountPercent.GreaterThan(cien) {
			return nil, domain.NewValidationError("discount_percent", "el descuento debe estar entre 0 y 100")
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		if product.StoreID != in.StoreID {
			return nil, domain.NewValidationError("product_id", "el producto "+product.SKU+" no pertenece a la tienda")
		}
		if !product.IsActive {
			return nil, domain.NewValidationError("product_id", "el producto "+product.Name+" está inactivo")
		}

		var childUnits int64
		switch {
		case product.IsChild():
			if !item.Quantity.Equal(item.Quantity.Floor()) {
				return nil, domain.NewValidationError("quantity", "los productos hijos se venden en unidades enteras")
			}
			childUnits = item.Quantity.IntPart()
			parent, err := uc.parentOf(product)
			if err != nil {
				return nil, err
			}
			ok, available, err := domaininv.CanSell(product, parent, item.Quantity)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, domain.NewInsufficientStockError(product.Name, available, item.Quantity)
			}
		default:
			if product.StockQuantity.LessThan(item.Quantity) {
				return nil, domain.NewInsufficientStockError(product.Name, product.StockQuantity, item.Quantity)
			}
		}

		gross := product.Price.Mul(item.Quantity)
		disc := gross.Mul(item.DiscountPercent).Div(cien)
		net := gross.Sub(disc)
		lineTax := net.Mul(product.TaxRate).Div(cien)
		lines = append(lines, saleLine{
			product:    product,
			quantity:   item.Quantity,
			unitPrice:  product.Price,
			discount:   item.DiscountPercent,
			lineGross:  gross,
			lineDisc:   disc,
			lineNet:    net,
			lineTax:    lineTax,
			childUnits: childUnits,
		})
	}
	return lines, nil
}

func (uc *CreateSaleUseCase) parentOf(child *entity.Product) (*entity.Product, error) {
	if child.ParentProductID == "" {
		return nil, domain.NewValidationError("parent_product_id", "el producto hijo "+child.Name+" no tiene padre asignado")
	}
	parent, err := uc.productRepo.GetByID(child.ParentProductID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, domain.NewValidationError("parent_product_id", "el padre del producto "+child.Name+" no existe")
	}
	return parent, nil
}
