package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/inventory"
)

func arrozBulto() *entity.Product {
	return &entity.Product{
		ID:            "parent-1",
		Name:          "Arroz bulto 50kg",
		ProductType:   entity.ProductTypeParent,
		UnitQuantity:  dec("50"),
		StockQuantity: dec("10"),
		MinStockLevel: dec("2"),
	}
}

func arrozBolsa() *entity.Product {
	return &entity.Product{
		ID:              "child-1",
		Name:            "Arroz bolsa 1kg",
		ProductType:     entity.ProductTypeChild,
		ParentProductID: "parent-1",
		UnitQuantity:    dec("1"),
		StockQuantity:   decimal.Zero, // siempre 0 para child
		MinStockLevel:   dec("20"),
	}
}

func TestEffectiveQuantity_SimpleYParentUsanStockPropio(t *testing.T) {
	simple := &entity.Product{ProductType: entity.ProductTypeSimple, StockQuantity: dec("7")}
	q, err := inventory.EffectiveQuantity(simple, nil)
	require.NoError(t, err)
	assert.True(t, q.Equal(dec("7")))

	parent := arrozBulto()
	q, err = inventory.EffectiveQuantity(parent, nil)
	require.NoError(t, err)
	assert.True(t, q.Equal(dec("10")))
}

func TestEffectiveQuantity_ChildDerivaDelPadre(t *testing.T) {
	q, err := inventory.EffectiveQuantity(arrozBolsa(), arrozBulto())
	require.NoError(t, err)
	assert.True(t, q.Equal(dec("500")), "10 bultos de 50kg = 500 bolsas de 1kg, obtuvo %s", q)
}

func TestEffectiveQuantity_ChildSinPadreCargadoEsError(t *testing.T) {
	_, err := inventory.EffectiveQuantity(arrozBolsa(), nil)
	assert.Error(t, err)
}

func TestCanSell_Child(t *testing.T) {
	ok, available, err := inventory.CanSell(arrozBolsa(), arrozBulto(), dec("500"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, available.Equal(dec("500")))

	ok, _, err = inventory.CanSell(arrozBolsa(), arrozBulto(), dec("501"))
	require.NoError(t, err)
	assert.False(t, ok, "501 bolsas excede las 500 derivables")
}

func TestIsLowStock(t *testing.T) {
	parent := arrozBulto()
	parent.StockQuantity = dec("2") // == MinStockLevel
	low, err := inventory.IsLowStock(parent, nil)
	require.NoError(t, err)
	assert.True(t, low)

	// Child: 2 bultos -> 100 bolsas > mínimo de 20
	low, err = inventory.IsLowStock(arrozBolsa(), parent)
	require.NoError(t, err)
	assert.False(t, low)
}

func TestValidateHierarchy(t *testing.T) {
	child := arrozBolsa()
	child.ParentProductID = ""
	assert.Error(t, inventory.ValidateHierarchy(child), "child sin padre debe rechazarse")

	parent := arrozBulto()
	parent.ParentProductID = "otro"
	assert.Error(t, inventory.ValidateHierarchy(parent), "parent con padre debe rechazarse")

	simple := &entity.Product{
		ProductType:     entity.ProductTypeSimple,
		ParentProductID: "colado-por-error",
	}
	require.NoError(t, inventory.ValidateHierarchy(simple), "simple con padre se corrige, no falla")
	assert.Empty(t, simple.ParentProductID, "la referencia al padre debe limpiarse")

	assert.Error(t, inventory.ValidateHierarchy(&entity.Product{ProductType: "combo"}),
		"tipo desconocido debe rechazarse")
}
