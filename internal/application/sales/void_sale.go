package sales

import (
	"context"
	"time"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Farmapos-api/internal/domain/inventory"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
	"github.com/jhoicas/Farmapos-api/pkg/docnum"
)

// VoidSaleUseCase anula ventas minoristas. La anulación es de una sola vía:
// restaura exactamente lo que el libro descontó, deja movimientos de
// devolución y marca la venta como anulada. Una venta anulada no revive.
type VoidSaleUseCase struct {
	txRunner SaleTxRunner
	ledger   RetailLedger
	saleRepo repository.SaleRepository
}

// NewVoidSaleUseCase construye el caso de uso.
func NewVoidSaleUseCase(txRunner SaleTxRunner, ledger RetailLedger, saleRepo repository.SaleRepository) *VoidSaleUseCase {
	return &VoidSaleUseCase{txRunner: txRunner, ledger: ledger, saleRepo: saleRepo}
}

// VoidSale anula la venta restaurando stock desde sus propios movimientos:
// cada fila de venta se reversa con una fila de devolución equivalente.
func (uc *VoidSaleUseCase) VoidSale(ctx context.Context, voiderID, saleID string, in dto.VoidSaleRequest) (*dto.SaleResponse, error) {
	if in.Reason == "" {
		return nil, domain.NewValidationError("reason", "el motivo de la anulación es obligatorio")
	}

	now := time.Now()
	var sale *entity.Sale
	var items []*entity.SaleItem

	err := uc.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		_ repository.PaymentRepository,
	) error {
		var err error
		// Lock de la venta: dos anulaciones concurrentes se serializan y la
		// segunda ve el estado ya anulado.
		sale, err = saleRepo.GetForUpdate(saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.Status == entity.SaleStatusVoided {
			return domain.NewInvalidStateError("venta "+sale.SaleNumber, "ya está anulada")
		}

		movs, err := movRepo.ListBySale(saleID)
		if err != nil {
			return err
		}
		reference := docnum.VoidReference(sale.SaleNumber)
		notes := "Venta anulada: " + in.Reason

		// Primero los productos con stock propio: su reversa restaura el
		// inventario real (incluido lo consumido por ventas de hijos).
		type childMov struct {
			child *entity.Product
			units int64
		}
		var childMovs []childMov
		for _, mov := range movs {
			if mov.MovementType != entity.MovementTypeSale {
				continue
			}
			product, err := productRepo.GetByID(mov.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			if product.IsChild() {
				childMovs = append(childMovs, childMov{child: product, units: mov.Quantity.Neg().IntPart()})
				continue
			}
			if _, err := uc.ledger.ApplyReturnInTx(
				productRepo, movRepo, product.ID, mov.Quantity.Neg(),
				saleID, reference, notes, voiderID, now,
			); err != nil {
				return err
			}
		}

		// Después las filas informativas de los hijos, con las unidades
		// derivadas ya restauradas en el padre.
		for _, cm := range childMovs {
			parent, err := productRepo.GetByID(cm.child.ParentProductID)
			if err != nil {
				return err
			}
			if parent == nil {
				return domain.NewValidationError("parent_product_id", "el padre del producto "+cm.child.Name+" no existe")
			}
			effective, err := domaininv.AvailableChildUnits(parent.StockQuantity, parent.UnitQuantity, cm.child.UnitQuantity)
			if err != nil {
				return err
			}
			if _, err := uc.ledger.RecordChildReturnInTx(
				movRepo, cm.child, cm.units, effective,
				saleID, reference, notes, voiderID, now,
			); err != nil {
				return err
			}
		}

		sale.Status = entity.SaleStatusVoided
		sale.VoidedByID = voiderID
		sale.VoidedAt = &now
		sale.VoidReason = in.Reason
		if err := saleRepo.Update(sale); err != nil {
			return err
		}
		items, err = saleRepo.GetItemsBySaleID(saleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, items), nil
}
