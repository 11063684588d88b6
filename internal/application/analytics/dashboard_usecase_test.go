package analytics_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmapos-api/internal/application/analytics"
	"github.com/jhoicas/Farmapos-api/internal/application/apptest"
	"github.com/jhoicas/Farmapos-api/internal/application/inventory"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// reporteFijo responde las consultas de reportes con valores fijos; las dos
// llamadas al resumen (hoy y mes) reciben el mismo resultado.
type reporteFijo struct {
	resumen    *repository.SalesSummaryResult
	top        []repository.TopItemResult
	err        error
	ultimoTope int
}

func (r *reporteFijo) GetSalesSummary(ctx context.Context, storeID string, from, to time.Time) (*repository.SalesSummaryResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.resumen, nil
}

func (r *reporteFijo) GetTopProducts(ctx context.Context, storeID string, from, to time.Time, limit int) ([]repository.TopItemResult, error) {
	r.ultimoTope = limit
	return r.top, r.err
}

func (r *reporteFijo) GetTopMedicines(ctx context.Context, storeID string, from, to time.Time, limit int) ([]repository.TopItemResult, error) {
	return nil, r.err
}

func (r *reporteFijo) GetPaymentBreakdown(ctx context.Context, storeID string, from, to time.Time) ([]repository.PaymentBreakdownResult, error) {
	return nil, r.err
}

func newDashboard(repo *reporteFijo) (*apptest.DB, *analytics.DashboardUseCase) {
	db := apptest.NewDB()
	lowStock := inventory.NewLowStockUseCase(db.Products)
	return db, analytics.NewDashboardUseCase(repo, db.Batches, lowStock)
}

func TestGetSummary_ArmaElTableroCompleto(t *testing.T) {
	repo := &reporteFijo{
		resumen: &repository.SalesSummaryResult{
			RetailCount:   14,
			RetailTotal:   dec("1200.4567"),
			PharmacyCount: 6,
			PharmacyTotal: dec("300.10"),
		},
		top: []repository.TopItemResult{
			{ItemID: "prod-cafe", Name: "Café 500g", SKU: "CAF-500", UnitsSold: dec("120"), GrossRevenue: dec("99.999")},
			{ItemID: "prod-agua", Name: "Agua 600ml", SKU: "AGU-600", UnitsSold: dec("85"), GrossRevenue: dec("42.50")},
		},
	}
	db, uc := newDashboard(repo)

	// Un producto bajo mínimo y otro con stock de sobra.
	db.Products.Add(&entity.Product{
		ID: "prod-agua", StoreID: "store-1", SKU: "AGU-600", Name: "Agua 600ml",
		ProductType: entity.ProductTypeSimple,
		StockQuantity: dec("2"), MinStockLevel: dec("5"), IsActive: true,
	})
	db.Products.Add(&entity.Product{
		ID: "prod-cafe", StoreID: "store-1", SKU: "CAF-500", Name: "Café 500g",
		ProductType: entity.ProductTypeSimple,
		StockQuantity: dec("50"), MinStockLevel: dec("5"), IsActive: true,
	})

	// Solo el lote dentro de los 30 días y con unidades cuenta como alerta.
	db.Medicines.Add(&entity.Medicine{ID: "med-amox", SKU: "AMX-500", BrandName: "Amoxil 500"})
	ahora := time.Now()
	db.Batches.Add(&entity.Batch{ID: "lote-cerca", MedicineID: "med-amox", BatchNumber: "C-001", ExpiryDate: ahora.AddDate(0, 0, 10), Quantity: 8})
	db.Batches.Add(&entity.Batch{ID: "lote-lejos", MedicineID: "med-amox", BatchNumber: "L-002", ExpiryDate: ahora.AddDate(0, 0, 60), Quantity: 30})
	db.Batches.Add(&entity.Batch{ID: "lote-agotado", MedicineID: "med-amox", BatchNumber: "A-003", ExpiryDate: ahora.AddDate(0, 0, 5), Quantity: 0})

	resumen, err := uc.GetSummary(context.Background(), "store-1")

	require.NoError(t, err)
	assert.True(t, resumen.TodaySales.Equal(dec("1500.56")))
	assert.Equal(t, 20, resumen.TodayCount)
	assert.True(t, resumen.MonthSales.Equal(dec("1500.56")))
	assert.Equal(t, 20, resumen.MonthCount)

	require.Len(t, resumen.TopProducts, 2)
	assert.Equal(t, 5, repo.ultimoTope)
	assert.Equal(t, "prod-cafe", resumen.TopProducts[0].ItemID)
	assert.True(t, resumen.TopProducts[0].GrossRevenue.Equal(dec("100.00")))
	assert.True(t, resumen.TopProducts[1].GrossRevenue.Equal(dec("42.50")))

	assert.Equal(t, 1, resumen.LowStockCount)
	assert.Equal(t, 1, resumen.ExpiringBatchCount)

	meses := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	assert.Equal(t, fmt.Sprintf("%s %d", meses[ahora.Month()-1], ahora.Year()), resumen.DateLabel)
}

func TestGetSummary_PropagaElErrorDeLasMetricas(t *testing.T) {
	fallo := errors.New("conexión perdida")
	_, uc := newDashboard(&reporteFijo{err: fallo})

	_, err := uc.GetSummary(context.Background(), "store-1")

	require.ErrorIs(t, err, fallo)
	assert.Contains(t, err.Error(), "tablero")
}
