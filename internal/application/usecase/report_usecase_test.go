package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmapos-api/internal/application/apptest"
	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/application/usecase"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// reporteFijo implementa repository.ReportRepository con resultados en
// memoria y registra el límite recibido para verificar el recorte.
type reporteFijo struct {
	resumen    *repository.SalesSummaryResult
	top        []repository.TopItemResult
	pagos      []repository.PaymentBreakdownResult
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
	r.ultimoTope = limit
	return r.top, r.err
}

func (r *reporteFijo) GetPaymentBreakdown(ctx context.Context, storeID string, from, to time.Time) ([]repository.PaymentBreakdownResult, error) {
	return r.pagos, r.err
}

func newReport(repo *reporteFijo) (*apptest.DB, *usecase.ReportUseCase) {
	db := apptest.NewDB()
	return db, usecase.NewReportUseCase(repo, db.Batches, db.Medicines)
}

func TestSalesSummary_RedondeaYCalculaElTotal(t *testing.T) {
	repo := &reporteFijo{resumen: &repository.SalesSummaryResult{
		RetailCount:   12,
		RetailTotal:   dec("1500.4567"),
		RetailTax:     dec("239.1149"),
		PharmacyCount: 4,
		PharmacyTotal: dec("820.1234"),
		VoidedCount:   1,
		DiscountTotal: dec("35.999"),
		AverageTicket: dec("145.0394"),
	}}
	_, uc := newReport(repo)
	desde := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	hasta := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)

	resumen, err := uc.SalesSummary(context.Background(), "store-1", desde, hasta)

	require.NoError(t, err)
	assert.Equal(t, 12, resumen.RetailCount)
	assert.Equal(t, 4, resumen.PharmacyCount)
	assert.Equal(t, 1, resumen.VoidedCount)
	assert.True(t, resumen.RetailTotal.Equal(dec("1500.46")))
	assert.True(t, resumen.RetailTax.Equal(dec("239.11")))
	assert.True(t, resumen.PharmacyTotal.Equal(dec("820.12")))
	assert.True(t, resumen.DiscountTotal.Equal(dec("36.00")))
	assert.True(t, resumen.AverageTicket.Equal(dec("145.04")))
	// El total general suma antes de redondear: 1500.4567 + 820.1234 = 2320.5801.
	assert.True(t, resumen.GrandTotal.Equal(dec("2320.58")))
	assert.Equal(t, desde, resumen.From)
	assert.Equal(t, hasta, resumen.To)
}

func TestSalesSummary_PeriodoInvertido(t *testing.T) {
	_, uc := newReport(&reporteFijo{})
	desde := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	hasta := desde.AddDate(0, -1, 0)

	_, err := uc.SalesSummary(context.Background(), "store-1", desde, hasta)

	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestSalesSummary_PropagaElErrorDelRepositorio(t *testing.T) {
	fallo := errors.New("conexión perdida")
	_, uc := newReport(&reporteFijo{err: fallo})

	_, err := uc.SalesSummary(context.Background(), "store-1", time.Now().AddDate(0, 0, -7), time.Now())

	require.ErrorIs(t, err, fallo)
}

func TestTopProducts_RecortaElLimiteAlRango(t *testing.T) {
	casos := []struct {
		nombre   string
		limite   int
		esperado int
	}{
		{nombre: "cero usa el tope por defecto", limite: 0, esperado: 10},
		{nombre: "negativo usa el tope por defecto", limite: -5, esperado: 10},
		{nombre: "dentro del rango pasa tal cual", limite: 7, esperado: 7},
		{nombre: "excesivo se recorta al máximo", limite: 1000, esperado: 100},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			repo := &reporteFijo{}
			_, uc := newReport(repo)

			_, err := uc.TopProducts(context.Background(), "store-1", time.Now().AddDate(0, -1, 0), time.Now(), c.limite)

			require.NoError(t, err)
			assert.Equal(t, c.esperado, repo.ultimoTope)
		})
	}
}

func TestTopMedicines_MapeaYRedondeaLosResultados(t *testing.T) {
	repo := &reporteFijo{top: []repository.TopItemResult{
		{ItemID: "med-amox", Name: "Amoxil 500", SKU: "AMX-500", UnitsSold: dec("48"), GrossRevenue: dec("408.555")},
		{ItemID: "med-ibu", Name: "Ibuprofeno 400", SKU: "IBU-400", UnitsSold: dec("31"), GrossRevenue: dec("155.0049")},
	}}
	_, uc := newReport(repo)

	items, err := uc.TopMedicines(context.Background(), "store-1", time.Now().AddDate(0, -1, 0), time.Now(), 5)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 5, repo.ultimoTope)
	assert.Equal(t, "med-amox", items[0].ItemID)
	assert.Equal(t, "AMX-500", items[0].SKU)
	assert.True(t, items[0].UnitsSold.Equal(dec("48")))
	assert.True(t, items[0].GrossRevenue.Equal(dec("408.56")))
	assert.True(t, items[1].GrossRevenue.Equal(dec("155.00")))
}

func TestPaymentBreakdown_RedondeaLosTotales(t *testing.T) {
	repo := &reporteFijo{pagos: []repository.PaymentBreakdownResult{
		{Method: "cash", Count: 9, Total: dec("412.335")},
		{Method: "card", Count: 3, Total: dec("180.10")},
	}}
	_, uc := newReport(repo)

	pagos, err := uc.PaymentBreakdown(context.Background(), "store-1", time.Now().AddDate(0, 0, -7), time.Now())

	require.NoError(t, err)
	require.Len(t, pagos, 2)
	assert.Equal(t, "cash", pagos[0].Method)
	assert.Equal(t, 9, pagos[0].Count)
	assert.True(t, pagos[0].Total.Equal(dec("412.34")))
	assert.True(t, pagos[1].Total.Equal(dec("180.10")))
}

func TestExpiringBatches_VentanaPorDefecto(t *testing.T) {
	db, uc := newReport(&reporteFijo{})
	db.Medicines.Add(&entity.Medicine{ID: "med-amox", SKU: "AMX-500", BrandName: "Amoxil 500"})
	ahora := time.Now()
	db.Batches.Add(&entity.Batch{ID: "lote-vencido", MedicineID: "med-amox", BatchNumber: "V-001", ExpiryDate: ahora.AddDate(0, 0, -3), Quantity: 10})
	db.Batches.Add(&entity.Batch{ID: "lote-proximo", MedicineID: "med-amox", BatchNumber: "P-002", ExpiryDate: ahora.AddDate(0, 0, 5), Quantity: 40})
	db.Batches.Add(&entity.Batch{ID: "lote-lejano", MedicineID: "med-amox", BatchNumber: "L-003", ExpiryDate: ahora.AddDate(0, 0, 200), Quantity: 25})
	db.Batches.Add(&entity.Batch{ID: "lote-agotado", MedicineID: "med-amox", BatchNumber: "A-004", ExpiryDate: ahora.AddDate(0, 0, 1), Quantity: 0})

	lotes, err := uc.ExpiringBatches(0, dto.PageRequest{})

	require.NoError(t, err)
	// El lejano queda fuera de la ventana de 90 días y el agotado no se lista.
	require.Len(t, lotes, 2)
	assert.Equal(t, "lote-vencido", lotes[0].BatchID)
	assert.Equal(t, "Amoxil 500", lotes[0].MedicineName)
	assert.Equal(t, -3, lotes[0].DaysToExpiry)
	assert.Equal(t, entity.BatchStatusExpired, lotes[0].Status)
	assert.Equal(t, "lote-proximo", lotes[1].BatchID)
	assert.Equal(t, 5, lotes[1].DaysToExpiry)
	assert.Equal(t, entity.BatchStatusNearExpiry, lotes[1].Status)
	assert.Equal(t, int64(40), lotes[1].Quantity)
}

func TestExpiringBatches_VentanaYPaginaExplicitas(t *testing.T) {
	db, uc := newReport(&reporteFijo{})
	db.Medicines.Add(&entity.Medicine{ID: "med-ibu", SKU: "IBU-400", BrandName: "Ibuprofeno 400"})
	ahora := time.Now()
	db.Batches.Add(&entity.Batch{ID: "lote-a", MedicineID: "med-ibu", BatchNumber: "A-001", ExpiryDate: ahora.AddDate(0, 0, 2), Quantity: 5})
	db.Batches.Add(&entity.Batch{ID: "lote-b", MedicineID: "med-ibu", BatchNumber: "B-002", ExpiryDate: ahora.AddDate(0, 0, 8), Quantity: 5})
	db.Batches.Add(&entity.Batch{ID: "lote-c", MedicineID: "med-ibu", BatchNumber: "C-003", ExpiryDate: ahora.AddDate(0, 0, 45), Quantity: 5})

	lotes, err := uc.ExpiringBatches(10, dto.PageRequest{Limit: 1})

	require.NoError(t, err)
	require.Len(t, lotes, 1)
	assert.Equal(t, "lote-a", lotes[0].BatchID)

	lotes, err = uc.ExpiringBatches(10, dto.PageRequest{Limit: 1, Offset: 1})

	require.NoError(t, err)
	require.Len(t, lotes, 1)
	assert.Equal(t, "lote-b", lotes[0].BatchID)
}
