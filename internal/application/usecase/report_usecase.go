package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

const (
	defaultTopN = 10
	maxTopN     = 100
)

// ReportUseCase consultas de reporte sobre ventas e inventario. Solo lecturas;
// los agregados pesados los resuelve la DB vía ReportRepository.
type ReportUseCase struct {
	reportRepo   repository.ReportRepository
	batchRepo    repository.BatchRepository
	medicineRepo repository.MedicineRepository
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(
	reportRepo repository.ReportRepository,
	batchRepo repository.BatchRepository,
	medicineRepo repository.MedicineRepository,
) *ReportUseCase {
	return &ReportUseCase{
		reportRepo:   reportRepo,
		batchRepo:    batchRepo,
		medicineRepo: medicineRepo,
	}
}

// SalesSummary resumen agregado del período: ambos canales más el desglose.
func (uc *ReportUseCase) SalesSummary(ctx context.Context, storeID string, from, to time.Time) (*dto.SalesSummaryResponse, error) {
	if from.After(to) {
		return nil, domain.NewValidationError("from", "el inicio del período no puede ser posterior al fin")
	}
	res, err := uc.reportRepo.GetSalesSummary(ctx, storeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("resumen de ventas: %w", err)
	}
	return &dto.SalesSummaryResponse{
		From:          from,
		To:            to,
		RetailCount:   res.RetailCount,
		RetailTotal:   res.RetailTotal.Round(2),
		RetailTax:     res.RetailTax.Round(2),
		PharmacyCount: res.PharmacyCount,
		PharmacyTotal: res.PharmacyTotal.Round(2),
		GrandTotal:    res.RetailTotal.Add(res.PharmacyTotal).Round(2),
		VoidedCount:   res.VoidedCount,
		DiscountTotal: res.DiscountTotal.Round(2),
		AverageTicket: res.AverageTicket.Round(2),
	}, nil
}

// TopProducts productos minoristas más vendidos del período.
func (uc *ReportUseCase) TopProducts(ctx context.Context, storeID string, from, to time.Time, limit int) ([]dto.TopItemDTO, error) {
	rows, err := uc.reportRepo.GetTopProducts(ctx, storeID, from, to, clampTopN(limit))
	if err != nil {
		return nil, fmt.Errorf("top productos: %w", err)
	}
	return toTopItems(rows), nil
}

// TopMedicines medicamentos más dispensados del período.
func (uc *ReportUseCase) TopMedicines(ctx context.Context, storeID string, from, to time.Time, limit int) ([]dto.TopItemDTO, error) {
	rows, err := uc.reportRepo.GetTopMedicines(ctx, storeID, from, to, clampTopN(limit))
	if err != nil {
		return nil, fmt.Errorf("top medicamentos: %w", err)
	}
	return toTopItems(rows), nil
}

// PaymentBreakdown recaudo por medio de pago del período.
func (uc *ReportUseCase) PaymentBreakdown(ctx context.Context, storeID string, from, to time.Time) ([]dto.PaymentBreakdownDTO, error) {
	rows, err := uc.reportRepo.GetPaymentBreakdown(ctx, storeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("recaudo por medio de pago: %w", err)
	}
	out := make([]dto.PaymentBreakdownDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PaymentBreakdownDTO{
			Method: r.Method,
			Count:  r.Count,
			Total:  r.Total.Round(2),
		})
	}
	return out, nil
}

// ExpiringBatches lotes que vencen dentro de la ventana indicada (o ya
// vencidos), con el nombre del medicamento resuelto.
func (uc *ReportUseCase) ExpiringBatches(windowDays int, page dto.PageRequest) ([]dto.ExpiringBatchDTO, error) {
	if windowDays <= 0 {
		windowDays = entity.NearExpiryStatusDays
	}
	page.DefaultPage()
	now := time.Now()
	cutoff := now.AddDate(0, 0, windowDays)
	batches, err := uc.batchRepo.ListExpiringBefore(cutoff, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}

	medsByID := make(map[string]*entity.Medicine)
	out := make([]dto.ExpiringBatchDTO, 0, len(batches))
	for _, b := range batches {
		med, ok := medsByID[b.MedicineID]
		if !ok {
			med, err = uc.medicineRepo.GetByID(b.MedicineID)
			if err != nil {
				return nil, err
			}
			medsByID[b.MedicineID] = med
		}
		name := ""
		if med != nil {
			name = med.BrandName
		}
		out = append(out, dto.ExpiringBatchDTO{
			BatchID:      b.ID,
			MedicineID:   b.MedicineID,
			MedicineName: name,
			BatchNumber:  b.BatchNumber,
			ExpiryDate:   b.ExpiryDate,
			DaysToExpiry: b.DaysToExpiry(now),
			Quantity:     b.Quantity,
			Status:       b.Status(now),
		})
	}
	return out, nil
}

func clampTopN(limit int) int {
	if limit <= 0 {
		return defaultTopN
	}
	if limit > maxTopN {
		return maxTopN
	}
	return limit
}

func toTopItems(rows []repository.TopItemResult) []dto.TopItemDTO {
	out := make([]dto.TopItemDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopItemDTO{
			ItemID:       r.ItemID,
			Name:         r.Name,
			SKU:          r.SKU,
			UnitsSold:    r.UnitsSold,
			GrossRevenue: r.GrossRevenue.Round(2),
		})
	}
	return out
}
