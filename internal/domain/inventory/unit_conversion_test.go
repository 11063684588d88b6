package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Motor de conversión de unidades: derivación de stock hijo y consumo del padre.
//
// Escenario de referencia: arroz a granel en bultos de 50kg vendido en bolsas
// de 1kg. UnidadPadre=50, UnidadHijo=1.
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAvailableChildUnits_EscenarioArroz(t *testing.T) {
	// 10 bultos de 50kg en bolsas de 1kg = 500 bolsas
	units, err := inventory.AvailableChildUnits(dec("10"), dec("50"), dec("1"))
	require.NoError(t, err)
	assert.Equal(t, int64(500), units)
}

func TestAvailableChildUnits_AplicaFloor(t *testing.T) {
	// 1 bulto de 50kg en bolsas de 7kg = floor(50/7) = 7 bolsas
	units, err := inventory.AvailableChildUnits(dec("1"), dec("50"), dec("7"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), units)

	// Stock fraccionario del padre: 2.5 bultos * 50 / 20 = 6.25 -> 6
	units, err = inventory.AvailableChildUnits(dec("2.5"), dec("50"), dec("20"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), units)
}

func TestAvailableChildUnits_ExactitudDecimal(t *testing.T) {
	// 0.3 * 0.1 / 0.01 = 3 exacto; con float64 el producto 0.3*0.1 no es exacto.
	units, err := inventory.AvailableChildUnits(dec("0.3"), dec("0.1"), dec("0.01"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), units)
}

func TestAvailableChildUnits_UnidadCeroEsError(t *testing.T) {
	_, err := inventory.AvailableChildUnits(dec("10"), dec("50"), decimal.Zero)
	require.Error(t, err, "unidad hijo cero debe ser error, no cero silencioso")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = inventory.AvailableChildUnits(dec("10"), decimal.Zero, dec("1"))
	require.Error(t, err, "unidad padre cero debe ser error")
}

func TestAvailableChildUnits_NuncaNegativo(t *testing.T) {
	units, err := inventory.AvailableChildUnits(dec("-3"), dec("50"), dec("1"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), units)
}

func TestConsumedParentUnits_EscenarioArroz(t *testing.T) {
	// Vender 100 bolsas de 1kg consume 100*1/50 = 2 bultos exactos
	consumed, err := inventory.ConsumedParentUnits(dec("100"), dec("1"), dec("50"), dec("10"))
	require.NoError(t, err)
	assert.True(t, consumed.Equal(dec("2")), "consumido: %s", consumed)
}

func TestConsumedParentUnits_ConsumoFraccionario(t *testing.T) {
	// 30 bolsas de 1kg sobre bultos de 50kg = 0.6 bultos
	consumed, err := inventory.ConsumedParentUnits(dec("30"), dec("1"), dec("50"), dec("10"))
	require.NoError(t, err)
	assert.True(t, consumed.Equal(dec("0.6")), "consumido: %s", consumed)
}

func TestConsumedParentUnits_AcotadoAlStockDelPadre(t *testing.T) {
	// El consumo calculado (3 bultos) excede el stock (2): se acota a 2 para
	// que el stock del padre nunca quede negativo.
	consumed, err := inventory.ConsumedParentUnits(dec("150"), dec("1"), dec("50"), dec("2"))
	require.NoError(t, err)
	assert.True(t, consumed.Equal(dec("2")), "consumido: %s", consumed)
}

func TestConsumedParentUnits_UnidadCeroEsError(t *testing.T) {
	_, err := inventory.ConsumedParentUnits(dec("10"), dec("1"), decimal.Zero, dec("5"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
