package pharmacy

import (
	"time"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// SaleQueryUseCase lecturas de dispensaciones de farmacia.
type SaleQueryUseCase struct {
	saleRepo repository.PharmacySaleRepository
}

// NewSaleQueryUseCase construye el caso de uso.
func NewSaleQueryUseCase(saleRepo repository.PharmacySaleRepository) *SaleQueryUseCase {
	return &SaleQueryUseCase{saleRepo: saleRepo}
}

// GetSale devuelve una dispensación con sus líneas.
func (uc *SaleQueryUseCase) GetSale(id string) (*dto.PharmacySaleResponse, error) {
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
	return toPharmacySaleResponse(sale, items), nil
}

// ListSales devuelve las dispensaciones de una tienda, opcionalmente
// filtradas por rango de fechas y estado.
func (uc *SaleQueryUseCase) ListSales(storeID string, from, to *time.Time, status string, page dto.PageRequest) (*dto.PharmacySaleListResponse, error) {
	page.DefaultPage()
	sales, err := uc.saleRepo.List(storeID, from, to, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PharmacySaleResponse, 0, len(sales))
	for _, s := range sales {
		lines, err := uc.saleRepo.GetItemsBySaleID(s.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, *toPharmacySaleResponse(s, lines))
	}
	return &dto.PharmacySaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toPharmacySaleResponse(s *entity.PharmacySale, items []*entity.PharmacySaleItem) *dto.PharmacySaleResponse {
	lines := make([]dto.PharmacySaleItemResponse, 0, len(items))
	for _, it := range items {
		lines = append(lines, dto.PharmacySaleItemResponse{
			ID:                   it.ID,
			MedicineID:           it.MedicineID,
			BatchID:              it.BatchID,
			MedicineName:         it.MedicineName,
			BatchNumber:          it.BatchNumber,
			ExpiryDate:           it.ExpiryDate,
			Quantity:             it.Quantity,
			UnitPrice:            it.UnitPrice,
			DiscountPercent:      it.DiscountPercent,
			Subtotal:             it.Subtotal,
			RequiresPrescription: it.RequiresPrescription,
			PrescriptionVerified: it.PrescriptionVerified,
		})
	}
	return &dto.PharmacySaleResponse{
		ID:                 s.ID,
		StoreID:            s.StoreID,
		InvoiceNumber:      s.InvoiceNumber,
		CustomerName:       s.CustomerName,
		CustomerPhone:      s.CustomerPhone,
		HasPrescription:    s.HasPrescription,
		PrescriptionNumber: s.PrescriptionNumber,
		PrescriberName:     s.PrescriberName,
		DispenserID:        s.DispenserID,
		Subtotal:           s.Subtotal,
		DiscountAmount:     s.DiscountAmount,
		TaxAmount:          s.TaxAmount,
		Total:              s.Total,
		PaymentMethod:      s.PaymentMethod,
		AmountPaid:         s.AmountPaid,
		ChangeAmount:       s.ChangeAmount,
		Status:             s.Status,
		Notes:              s.Notes,
		VoidedByID:         s.VoidedByID,
		VoidedAt:           s.VoidedAt,
		VoidReason:         s.VoidReason,
		Items:              lines,
		CreatedAt:          s.CreatedAt,
	}
}
