package usecase_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmapos-api/internal/application/apptest"
	"github.com/jhoicas/Farmapos-api/internal/application/usecase"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newImport() (*apptest.DB, *usecase.ImportUseCase) {
	db := apptest.NewDB()
	return db, usecase.NewImportUseCase(db.Products, db.Medicines)
}

func TestImportProductsCSV_CreaYLuegoActualizaPorSKU(t *testing.T) {
	db, uc := newImport()
	csv := "sku,name,price,tax_rate,stock_quantity\n" +
		"GAS-350,Gaseosa 350ml,2.50,19,50\n" +
		"JUG-500,Jugo 500ml,3.10,19,30\n"

	resultado, err := uc.ImportProductsCSV("store-1", strings.NewReader(csv), false)

	require.NoError(t, err)
	assert.Equal(t, 2, resultado.Created)
	assert.Zero(t, resultado.Updated)
	assert.Empty(t, resultado.Errors)

	creado, err := db.Products.GetByStoreAndSKU("store-1", "GAS-350")
	require.NoError(t, err)
	require.NotNil(t, creado)
	assert.True(t, creado.Price.Equal(dec("2.50")))
	assert.True(t, creado.StockQuantity.Equal(dec("50")))

	// Reimportar con otro nombre y otro stock: actualiza el catálogo pero el
	// stock sigue siendo del libro de movimientos.
	csv2 := "sku,name,price,tax_rate,stock_quantity\n" +
		"GAS-350,Gaseosa 350ml retornable,2.80,19,99\n"
	resultado, err = uc.ImportProductsCSV("store-1", strings.NewReader(csv2), false)

	require.NoError(t, err)
	assert.Equal(t, 1, resultado.Updated)
	actualizado, err := db.Products.GetByStoreAndSKU("store-1", "GAS-350")
	require.NoError(t, err)
	assert.Equal(t, "Gaseosa 350ml retornable", actualizado.Name)
	assert.True(t, actualizado.Price.Equal(dec("2.80")))
	assert.True(t, actualizado.StockQuantity.Equal(dec("50")), "el reimport no pisa el stock")
}

func TestImportProductsCSV_ElHijoPuedeVenirAntesQueElPadre(t *testing.T) {
	db, uc := newImport()
	csv := "sku,name,product_type,parent_sku,unit_quantity,price\n" +
		"HAR-500G,Harina bolsa 500g,child,HAR-25KG,0.5,3\n" +
		"HAR-25KG,Harina bulto 25kg,parent,,25,90\n"

	resultado, err := uc.ImportProductsCSV("store-1", strings.NewReader(csv), false)

	require.NoError(t, err)
	assert.Equal(t, 2, resultado.Created)
	assert.Empty(t, resultado.Errors)

	padre, err := db.Products.GetByStoreAndSKU("store-1", "HAR-25KG")
	require.NoError(t, err)
	hijo, err := db.Products.GetByStoreAndSKU("store-1", "HAR-500G")
	require.NoError(t, err)
	assert.Equal(t, padre.ID, hijo.ParentProductID)
	assert.True(t, hijo.StockQuantity.IsZero(), "los hijos entran sin stock propio")
}

func TestImportProductsCSV_LasFilasMalasSeSaltanYSeReportan(t *testing.T) {
	_, uc := newImport()
	csv := "sku,name,product_type,parent_sku,price\n" +
		"GAS-350,Gaseosa 350ml,simple,,2.50\n" +
		"SIN-NOMBRE,,simple,,1\n" +
		"MAL-PRECIO,Producto caro,simple,,abc\n" +
		"HUERFANO,Bolsa sin padre,child,NO-EXISTE,1\n"

	resultado, err := uc.ImportProductsCSV("store-1", strings.NewReader(csv), false)

	require.NoError(t, err, "las filas con error no abortan la importación")
	assert.Equal(t, 1, resultado.Created)
	assert.Equal(t, 3, resultado.Skipped)
	require.Len(t, resultado.Errors, 3)
	assert.Contains(t, resultado.Errors[0], "fila 3")
	assert.Contains(t, resultado.Errors[0], "sku y name son obligatorios")
	assert.Contains(t, resultado.Errors[1], "price inválido")
	assert.Contains(t, resultado.Errors[2], "no existe el padre con SKU NO-EXISTE")
}

func TestImportProductsCSV_SinColumnaSKU(t *testing.T) {
	_, uc := newImport()

	_, err := uc.ImportProductsCSV("store-1", strings.NewReader("name,price\nGaseosa,2.50\n"), false)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestImportProductsCSV_DecodificaLatin1(t *testing.T) {
	db, uc := newImport()
	// "Jabón líquido" tal como lo exporta un POS viejo en ISO-8859-1.
	csv := []byte("sku,name\nJAB-1,Jab\xf3n l\xedquido\n")

	resultado, err := uc.ImportProductsCSV("store-1", strings.NewReader(string(csv)), true)

	require.NoError(t, err)
	assert.Equal(t, 1, resultado.Created)
	creado, err := db.Products.GetByStoreAndSKU("store-1", "JAB-1")
	require.NoError(t, err)
	assert.Equal(t, "Jabón líquido", creado.Name)
}

func TestImportMedicinesCSV_CreaConComaDecimalYDefaults(t *testing.T) {
	db, uc := newImport()
	csv := "sku,brand_name,generic_name,schedule,selling_price\n" +
		"MOR-10,Morfina 10mg,Sulfato de morfina,controlled,\"8,50\"\n" +
		"IBU-400,Ibuprofeno 400mg,Ibuprofeno,,\"1,20\"\n"

	resultado, err := uc.ImportMedicinesCSV(strings.NewReader(csv), false)

	require.NoError(t, err)
	assert.Equal(t, 2, resultado.Created)
	assert.Empty(t, resultado.Errors)

	mor, err := db.Medicines.GetBySKU("MOR-10")
	require.NoError(t, err)
	require.NotNil(t, mor)
	assert.Equal(t, entity.ScheduleControlled, mor.Schedule)
	assert.True(t, mor.SellingPrice.Equal(dec("8.50")), "la coma decimal de los exports viejos se acepta")
	assert.EqualValues(t, 10, mor.MinStockLevel, "mínimo por defecto")
	assert.EqualValues(t, 20, mor.ReorderLevel, "reorden por defecto")

	ibu, err := db.Medicines.GetBySKU("IBU-400")
	require.NoError(t, err)
	assert.Equal(t, entity.ScheduleOTC, ibu.Schedule, "sin clasificación queda como venta libre")
}

func TestImportMedicinesCSV_ActualizaPorSKU(t *testing.T) {
	db, uc := newImport()
	csv := "sku,brand_name,schedule,selling_price\nIBU-400,Ibuprofeno 400mg,otc,1.20\n"
	_, err := uc.ImportMedicinesCSV(strings.NewReader(csv), false)
	require.NoError(t, err)

	csv2 := "sku,brand_name,schedule,selling_price\nIBU-400,Ibuprofeno forte 400mg,otc,1.35\n"
	resultado, err := uc.ImportMedicinesCSV(strings.NewReader(csv2), false)

	require.NoError(t, err)
	assert.Equal(t, 1, resultado.Updated)
	med, err := db.Medicines.GetBySKU("IBU-400")
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofeno forte 400mg", med.BrandName)
	assert.True(t, med.SellingPrice.Equal(dec("1.35")))
}

func TestImportMedicinesCSV_ClasificacionDesconocida(t *testing.T) {
	_, uc := newImport()
	csv := "sku,brand_name,schedule\nXYZ-1,Misterioso,experimental\n"

	resultado, err := uc.ImportMedicinesCSV(strings.NewReader(csv), false)

	require.NoError(t, err)
	assert.Zero(t, resultado.Created)
	assert.Equal(t, 1, resultado.Skipped)
	require.Len(t, resultado.Errors, 1)
	assert.Contains(t, resultado.Errors[0], "clasificación desconocida")
}
