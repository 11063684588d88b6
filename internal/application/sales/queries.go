package sales

import (
	"time"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// SaleQueryUseCase lecturas de ventas minoristas.
type SaleQueryUseCase struct {
	saleRepo repository.SaleRepository
}

// NewSaleQueryUseCase construye el caso de uso.
func NewSaleQueryUseCase(saleRepo repository.SaleRepository) *SaleQueryUseCase {
	return &SaleQueryUseCase{saleRepo: saleRepo}
}

// GetSale devuelve una venta con sus líneas.
func (uc *SaleQueryUseCase) GetSale(id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.saleRepo.GetItemsBySaleID(id)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, items), nil
}

// ListSales devuelve las ventas de una tienda, opcionalmente filtradas por
// rango de fechas y estado.
func (uc *SaleQueryUseCase) ListSales(storeID string, from, to *time.Time, status string, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.DefaultPage()
	sales, err := uc.saleRepo.List(storeID, from, to, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		lines, err := uc.saleRepo.GetItemsBySaleID(s.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, *toSaleResponse(s, lines))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toSaleResponse(s *entity.Sale, items []*entity.SaleItem) *dto.SaleResponse {
	lines := make([]dto.SaleItemResponse, 0, len(items))
	for _, it := range items {
		lines = append(lines, dto.SaleItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			ProductSKU:      it.ProductSKU,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			TaxRate:         it.TaxRate,
			DiscountPercent: it.DiscountPercent,
			Subtotal:        it.Subtotal,
		})
	}
	return &dto.SaleResponse{
		ID:             s.ID,
		StoreID:        s.StoreID,
		SaleNumber:     s.SaleNumber,
		CashierID:      s.CashierID,
		CustomerName:   s.CustomerName,
		Subtotal:       s.Subtotal,
		DiscountAmount: s.DiscountAmount,
		TaxAmount:      s.TaxAmount,
		Total:          s.Total,
		PaymentMethod:  s.PaymentMethod,
		AmountPaid:     s.AmountPaid,
		ChangeAmount:   s.ChangeAmount,
		Status:         s.Status,
		Notes:          s.Notes,
		VoidedByID:     s.VoidedByID,
		VoidedAt:       s.VoidedAt,
		VoidReason:     s.VoidReason,
		Items:          lines,
		CreatedAt:      s.CreatedAt,
	}
}
