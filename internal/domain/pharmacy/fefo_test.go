package pharmacy_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/pharmacy"
)

// ─────────────────────────────────────────────
// Fixtures: amoxicilina con tres lotes
// ─────────────────────────────────────────────

var ahora = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func amoxicilina() *entity.Medicine {
	return &entity.Medicine{
		ID:        "med-amoxi",
		BrandName: "Amoxil 500mg",
		Schedule:  entity.SchedulePrescription,
	}
}

func lote(num string, vence time.Time, cantidad int64) *entity.Batch {
	return &entity.Batch{
		ID:          "batch-" + num,
		MedicineID:  "med-amoxi",
		BatchNumber: num,
		ExpiryDate:  vence,
		Quantity:    cantidad,
	}
}

func lotesAmoxi() []*entity.Batch {
	return []*entity.Batch{
		lote("AMX-003", ahora.AddDate(1, 0, 0), 200),
		lote("AMX-001", ahora.AddDate(0, 2, 0), 80),
		lote("AMX-002", ahora.AddDate(0, 6, 0), 150),
	}
}

// ─────────────────────────────────────────────
// SelectBatchFEFO
// ─────────────────────────────────────────────

func TestSelectBatchFEFO_EligeElVencimientoMasProximo(t *testing.T) {
	sel, err := pharmacy.SelectBatchFEFO(amoxicilina(), lotesAmoxi(), 50, ahora)

	require.NoError(t, err)
	assert.Equal(t, "AMX-001", sel.Batch.BatchNumber)
	assert.Empty(t, sel.Warning)
}

func TestSelectBatchFEFO_SaltaLotesQueNoCubrenLaLineaCompleta(t *testing.T) {
	// AMX-001 vence primero pero solo tiene 80: una línea de 100 no se parte.
	sel, err := pharmacy.SelectBatchFEFO(amoxicilina(), lotesAmoxi(), 100, ahora)

	require.NoError(t, err)
	assert.Equal(t, "AMX-002", sel.Batch.BatchNumber)
}

func TestSelectBatchFEFO_IgnoraVencidosYBloqueados(t *testing.T) {
	vencido := lote("AMX-OLD", ahora.AddDate(0, 0, -1), 500)
	bloqueado := lote("AMX-BLK", ahora.AddDate(1, 0, 0), 500)
	bloqueado.IsBlocked = true
	batches := append([]*entity.Batch{vencido, bloqueado}, lotesAmoxi()...)

	sel, err := pharmacy.SelectBatchFEFO(amoxicilina(), batches, 50, ahora)

	require.NoError(t, err)
	assert.Equal(t, "AMX-001", sel.Batch.BatchNumber)
}

func TestSelectBatchFEFO_DesempataPorNumeroDeLote(t *testing.T) {
	mismoDia := ahora.AddDate(0, 3, 0)
	batches := []*entity.Batch{
		lote("AMX-B", mismoDia, 100),
		lote("AMX-A", mismoDia, 100),
	}

	sel, err := pharmacy.SelectBatchFEFO(amoxicilina(), batches, 50, ahora)

	require.NoError(t, err)
	assert.Equal(t, "AMX-A", sel.Batch.BatchNumber)
}

func TestSelectBatchFEFO_SinLoteSuficiente_ReportaDisponibleVsSolicitado(t *testing.T) {
	_, err := pharmacy.SelectBatchFEFO(amoxicilina(), lotesAmoxi(), 300, ahora)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(200)))
	assert.True(t, stockErr.Requested.Equal(decimal.NewFromInt(300)))
}

func TestSelectBatchFEFO_SinLotes_DisponibleCero(t *testing.T) {
	_, err := pharmacy.SelectBatchFEFO(amoxicilina(), nil, 10, ahora)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.IsZero())
}

func TestSelectBatchFEFO_CantidadInvalida(t *testing.T) {
	_, err := pharmacy.SelectBatchFEFO(amoxicilina(), lotesAmoxi(), 0, ahora)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSelectBatchFEFO_AdvierteVencimientoProximo(t *testing.T) {
	batches := []*entity.Batch{lote("AMX-NEAR", ahora.AddDate(0, 0, 15), 100)}

	sel, err := pharmacy.SelectBatchFEFO(amoxicilina(), batches, 10, ahora)

	require.NoError(t, err)
	assert.Equal(t, "el lote AMX-NEAR vence en 15 días", sel.Warning)
}

// ─────────────────────────────────────────────
// ValidateExplicitBatch
// ─────────────────────────────────────────────

func TestValidateExplicitBatch_AceptaLoteDelMedicamento(t *testing.T) {
	b := lote("AMX-001", ahora.AddDate(0, 2, 0), 80)

	sel, err := pharmacy.ValidateExplicitBatch(amoxicilina(), b, 80, ahora)

	require.NoError(t, err)
	assert.Equal(t, b, sel.Batch)
}

func TestValidateExplicitBatch_RechazaLoteDeOtroMedicamento(t *testing.T) {
	ajeno := lote("IBU-001", ahora.AddDate(0, 2, 0), 80)
	ajeno.MedicineID = "med-ibuprofeno"

	_, err := pharmacy.ValidateExplicitBatch(amoxicilina(), ajeno, 10, ahora)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestValidateExplicitBatch_RechazaVencido(t *testing.T) {
	b := lote("AMX-OLD", ahora.AddDate(0, 0, -30), 80)

	_, err := pharmacy.ValidateExplicitBatch(amoxicilina(), b, 10, ahora)

	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestValidateExplicitBatch_RechazaBloqueado(t *testing.T) {
	b := lote("AMX-001", ahora.AddDate(0, 2, 0), 80)
	b.IsBlocked = true
	b.BlockReason = "retiro sanitario"

	_, err := pharmacy.ValidateExplicitBatch(amoxicilina(), b, 10, ahora)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Contains(t, err.Error(), "retiro sanitario")
}

func TestValidateExplicitBatch_RechazaCantidadInsuficiente(t *testing.T) {
	b := lote("AMX-001", ahora.AddDate(0, 2, 0), 80)

	_, err := pharmacy.ValidateExplicitBatch(amoxicilina(), b, 81, ahora)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(80)))
}

// ─────────────────────────────────────────────
// CheckPrescriptionGate
// ─────────────────────────────────────────────

func TestCheckPrescriptionGate_BloqueaSinReceta(t *testing.T) {
	err := pharmacy.CheckPrescriptionGate(amoxicilina(), false, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPrescriptionRequired)

	var presErr *domain.PrescriptionRequiredError
	require.ErrorAs(t, err, &presErr)
	assert.Equal(t, "Amoxil 500mg", presErr.MedicineName)
}

func TestCheckPrescriptionGate_PasaConLineaVerificada(t *testing.T) {
	assert.NoError(t, pharmacy.CheckPrescriptionGate(amoxicilina(), true, false))
}

func TestCheckPrescriptionGate_PasaConRecetaDeclaradaEnLaVenta(t *testing.T) {
	assert.NoError(t, pharmacy.CheckPrescriptionGate(amoxicilina(), false, true))
}

func TestCheckPrescriptionGate_VentaLibreNoExigeReceta(t *testing.T) {
	otc := &entity.Medicine{ID: "med-aspirina", BrandName: "Aspirina", Schedule: entity.ScheduleOTC}

	assert.NoError(t, pharmacy.CheckPrescriptionGate(otc, false, false))
}
