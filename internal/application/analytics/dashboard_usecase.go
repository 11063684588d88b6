// Package analytics contiene el caso de uso del tablero operativo de la
// farmacia: KPIs de venta del día y del mes más alertas de inventario.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/application/inventory"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

const (
	dashboardTopProducts = 5     // productos en el widget del tablero
	dashboardScanLimit   = 10000 // techo para el conteo de lotes por vencer
)

// DashboardUseCase genera el resumen operativo del día y del mes en curso.
//
// Fuente de datos: ReportRepository (consultas read-only) más los listados de
// inventario para las alertas. No toca las tablas de venta directamente.
type DashboardUseCase struct {
	reportRepo repository.ReportRepository
	batchRepo  repository.BatchRepository
	lowStock   *inventory.LowStockUseCase
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	reportRepo repository.ReportRepository,
	batchRepo repository.BatchRepository,
	lowStock *inventory.LowStockUseCase,
) *DashboardUseCase {
	return &DashboardUseCase{
		reportRepo: reportRepo,
		batchRepo:  batchRepo,
		lowStock:   lowStock,
	}
}

// GetSummary construye el DashboardSummaryDTO para la tienda indicada.
//
// Tres llamadas en paralelo:
//  1. GetSalesSummary(hoy)         → TodaySales + TodayCount
//  2. GetSalesSummary(mes)         → MonthSales + MonthCount
//  3. GetTopProducts(mes, top 5)   → TopProducts
//
// Las alertas de inventario se resuelven después, en secuencia.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, storeID string) (*dto.DashboardSummaryDTO, error) {
	now := time.Now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	// Hoy: 00:00:00.000 – 23:59:59.999
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)

	// Mes en curso: día 1 a las 00:00 – hoy a las 23:59:59
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := todayEnd

	// ── Goroutines para paralelizar las 3 consultas DB ────────────────────────
	type summaryResult struct {
		res *repository.SalesSummaryResult
		err error
	}
	type topResult struct {
		rows []repository.TopItemResult
		err  error
	}

	todayCh := make(chan summaryResult, 1)
	monthCh := make(chan summaryResult, 1)
	topCh := make(chan topResult, 1)

	go func() {
		res, err := uc.reportRepo.GetSalesSummary(ctx, storeID, todayStart, todayEnd)
		todayCh <- summaryResult{res, err}
	}()
	go func() {
		res, err := uc.reportRepo.GetSalesSummary(ctx, storeID, monthStart, monthEnd)
		monthCh <- summaryResult{res, err}
	}()
	go func() {
		rows, err := uc.reportRepo.GetTopProducts(ctx, storeID, monthStart, monthEnd, dashboardTopProducts)
		topCh <- topResult{rows, err}
	}()

	today := <-todayCh
	month := <-monthCh
	top := <-topCh

	if today.err != nil {
		return nil, fmt.Errorf("tablero: métricas de hoy: %w", today.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("tablero: métricas del mes: %w", month.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("tablero: top productos: %w", top.err)
	}

	// ── Alertas de inventario ─────────────────────────────────────────────────
	lowItems, err := uc.lowStock.ListLowStock(storeID)
	if err != nil {
		return nil, fmt.Errorf("tablero: stock bajo: %w", err)
	}
	cutoff := now.AddDate(0, 0, entity.NearExpiryWarningDays)
	expiring, err := uc.batchRepo.ListExpiringBefore(cutoff, dashboardScanLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("tablero: lotes por vencer: %w", err)
	}

	topProducts := make([]dto.TopItemDTO, 0, len(top.rows))
	for _, r := range top.rows {
		topProducts = append(topProducts, dto.TopItemDTO{
			ItemID:       r.ItemID,
			Name:         r.Name,
			SKU:          r.SKU,
			UnitsSold:    r.UnitsSold,
			GrossRevenue: r.GrossRevenue.Round(2),
		})
	}

	// ── Construir DTO ──────────────────────────────────────────────────────────
	return &dto.DashboardSummaryDTO{
		TodaySales:         today.res.RetailTotal.Add(today.res.PharmacyTotal).Round(2),
		TodayCount:         today.res.RetailCount + today.res.PharmacyCount,
		MonthSales:         month.res.RetailTotal.Add(month.res.PharmacyTotal).Round(2),
		MonthCount:         month.res.RetailCount + month.res.PharmacyCount,
		TopProducts:        topProducts,
		LowStockCount:      len(lowItems),
		ExpiringBatchCount: len(expiring),
		DateLabel:          monthLabel(now),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Agosto 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
