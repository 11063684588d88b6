package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Farmapos-api/internal/domain/inventory"
)

func TestWeightedAverageCost(t *testing.T) {
	casos := []struct {
		nombre       string
		stock        string
		costo        string
		entrada      string
		costoEntrada string
		esperado     string
	}{
		{"pondera stock y entrada", "30", "1.00", "20", "2.50", "1.6"},
		{"sin existencias toma el costo de la entrada", "0", "1.00", "10", "3.40", "3.4"},
		{"misma proporción mantiene el costo", "10", "2.00", "10", "2.00", "2"},
		{"entrada vacía no cambia el costo", "30", "1.00", "0", "9.99", "1.00"},
		{"stock negativo cuenta como cero", "-5", "1.00", "10", "3.40", "3.4"},
	}

	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			got := inventory.WeightedAverageCost(
				decimal.RequireFromString(tc.stock),
				decimal.RequireFromString(tc.costo),
				decimal.RequireFromString(tc.entrada),
				decimal.RequireFromString(tc.costoEntrada),
			)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.esperado)),
				"esperado %s, devolvió %s", tc.esperado, got)
		})
	}
}
