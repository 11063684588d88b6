package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmapos-api/internal/application/apptest"
	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/application/inventory"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// ─────────────────────────────────────────────
// Fixtures compartidos del paquete: una tienda,
// un producto simple y la jerarquía bulto/bolsa.
// ─────────────────────────────────────────────

var ahora = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func tienda() *entity.Store {
	return &entity.Store{ID: "store-1", Name: "Farmacia Central", IsDefault: true}
}

func proveedor() *entity.Supplier {
	return &entity.Supplier{ID: "sup-1", StoreID: "store-1", Name: "Droguería Nacional", IsActive: true}
}

func gaseosa() *entity.Product {
	return &entity.Product{
		ID:            "prod-gaseosa",
		StoreID:       "store-1",
		SKU:           "GAS-350",
		Name:          "Gaseosa 350ml",
		ProductType:   entity.ProductTypeSimple,
		BaseUnit:      "unidad",
		UnitQuantity:  dec("1"),
		Price:         dec("2.50"),
		TaxRate:       dec("19"),
		StockQuantity: dec("50"),
		IsActive:      true,
	}
}

// harinaBulto padre a granel: 10 bultos de 25kg en stock.
func harinaBulto() *entity.Product {
	return &entity.Product{
		ID:            "prod-harina-bulto",
		StoreID:       "store-1",
		SKU:           "HAR-25KG",
		Name:          "Harina bulto 25kg",
		ProductType:   entity.ProductTypeParent,
		BaseUnit:      "kg",
		UnitQuantity:  dec("25"),
		Price:         dec("90"),
		StockQuantity: dec("10"),
		IsActive:      true,
	}
}

// harinaBolsa hijo al detal: bolsa de 0.5kg derivada del bulto.
func harinaBolsa() *entity.Product {
	return &entity.Product{
		ID:               "prod-harina-bolsa",
		StoreID:          "store-1",
		SKU:              "HAR-500G",
		Name:             "Harina bolsa 500g",
		ProductType:      entity.ProductTypeChild,
		BaseUnit:         "kg",
		UnitQuantity:     dec("0.5"),
		ConversionFactor: dec("0.02"),
		ParentProductID:  "prod-harina-bulto",
		Price:            dec("3"),
		StockQuantity:    decimal.Zero,
		IsActive:         true,
	}
}

func newRetailLedger(products ...*entity.Product) (*apptest.DB, *inventory.StockLedgerUseCase) {
	db := apptest.NewDB()
	for _, p := range products {
		db.Products.Add(p)
	}
	return db, inventory.NewStockLedgerUseCase(db, db.Products, db.Movements)
}

// ─────────────────────────────────────────────
// AdjustStock
// ─────────────────────────────────────────────

func TestAdjustStock_AddActualizaStockYDejaUnAsiento(t *testing.T) {
	db, ledger := newRetailLedger(gaseosa())

	resp, err := ledger.AdjustStock(context.Background(), "user-1", dto.AdjustStockRequest{
		ProductID:      "prod-gaseosa",
		AdjustmentType: "add",
		Quantity:       dec("10"),
		Reason:         "conteo físico",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeAdjustment, resp.MovementType)
	assert.True(t, resp.PreviousQuantity.Equal(dec("50")))
	assert.True(t, resp.Quantity.Equal(dec("10")))
	assert.True(t, resp.NewQuantity.Equal(dec("60")))
	assert.True(t, db.Products.Get("prod-gaseosa").StockQuantity.Equal(dec("60")))

	movs := db.Movements.All()
	require.Len(t, movs, 1, "exactamente un asiento por mutación")
	assert.True(t, movs[0].NewQuantity.Equal(movs[0].PreviousQuantity.Add(movs[0].Quantity)),
		"el asiento cumple nuevo = previo + delta")
	assert.Equal(t, "conteo físico", movs[0].Notes)
	assert.Equal(t, "user-1", movs[0].CreatedBy)
}

func TestAdjustStock_RemoveDescuenta(t *testing.T) {
	db, ledger := newRetailLedger(gaseosa())

	resp, err := ledger.AdjustStock(context.Background(), "user-1", dto.AdjustStockRequest{
		ProductID:      "prod-gaseosa",
		AdjustmentType: "remove",
		Quantity:       dec("20"),
		Reason:         "producto dañado",
	})

	require.NoError(t, err)
	assert.True(t, resp.Quantity.Equal(dec("-20")))
	assert.True(t, resp.NewQuantity.Equal(dec("30")))
	assert.True(t, db.Products.Get("prod-gaseosa").StockQuantity.Equal(dec("30")))
}

func TestAdjustStock_SetRegistraLaDiferencia(t *testing.T) {
	db, ledger := newRetailLedger(gaseosa())

	resp, err := ledger.AdjustStock(context.Background(), "user-1", dto.AdjustStockRequest{
		ProductID:      "prod-gaseosa",
		AdjustmentType: "set",
		Quantity:       dec("45"),
		Reason:         "inventario anual",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeAdjustment, resp.MovementType)
	assert.True(t, resp.Quantity.Equal(dec("-5")), "set 45 sobre 50 deja delta -5")
	assert.True(t, resp.NewQuantity.Equal(dec("45")))
	assert.True(t, db.Products.Get("prod-gaseosa").StockQuantity.Equal(dec("45")))
}

func TestAdjustStock_RemoveSinStockSuficiente_NadaPersiste(t *testing.T) {
	db, ledger := newRetailLedger(gaseosa())

	_, err := ledger.AdjustStock(context.Background(), "user-1", dto.AdjustStockRequest{
		ProductID:      "prod-gaseosa",
		AdjustmentType: "remove",
		Quantity:       dec("80"),
		Reason:         "merma",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(dec("50")))
	assert.True(t, stockErr.Requested.Equal(dec("80")))

	assert.True(t, db.Products.Get("prod-gaseosa").StockQuantity.Equal(dec("50")), "el stock no debe cambiar")
	assert.Empty(t, db.Movements.All(), "sin asientos cuando la transacción falla")
}

func TestAdjustStock_EntradasInvalidas(t *testing.T) {
	casos := []struct {
		nombre string
		in     dto.AdjustStockRequest
	}{
		{"sin motivo", dto.AdjustStockRequest{
			ProductID: "prod-gaseosa", AdjustmentType: "add", Quantity: dec("5"),
		}},
		{"cantidad cero en add", dto.AdjustStockRequest{
			ProductID: "prod-gaseosa", AdjustmentType: "add", Quantity: decimal.Zero, Reason: "x",
		}},
		{"cantidad negativa en remove", dto.AdjustStockRequest{
			ProductID: "prod-gaseosa", AdjustmentType: "remove", Quantity: dec("-3"), Reason: "x",
		}},
		{"objetivo negativo en set", dto.AdjustStockRequest{
			ProductID: "prod-gaseosa", AdjustmentType: "set", Quantity: dec("-1"), Reason: "x",
		}},
		{"tipo desconocido", dto.AdjustStockRequest{
			ProductID: "prod-gaseosa", AdjustmentType: "increment", Quantity: dec("5"), Reason: "x",
		}},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, ledger := newRetailLedger(gaseosa())

			_, err := ledger.AdjustStock(context.Background(), "user-1", c.in)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestAdjustStock_ProductoInexistente(t *testing.T) {
	_, ledger := newRetailLedger()

	_, err := ledger.AdjustStock(context.Background(), "user-1", dto.AdjustStockRequest{
		ProductID:      "prod-fantasma",
		AdjustmentType: "add",
		Quantity:       dec("5"),
		Reason:         "x",
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStock_ProductoHijoSeAjustaPorElPadre(t *testing.T) {
	_, ledger := newRetailLedger(harinaBulto(), harinaBolsa())

	_, err := ledger.AdjustStock(context.Background(), "user-1", dto.AdjustStockRequest{
		ProductID:      "prod-harina-bolsa",
		AdjustmentType: "add",
		Quantity:       dec("5"),
		Reason:         "conteo",
	})

	assert.ErrorIs(t, err, domain.ErrValidation,
		"el hijo no lleva stock propio; el ajuste va por el padre")
}

// ─────────────────────────────────────────────
// Venta de hijos: consumo derivado del padre
// ─────────────────────────────────────────────

func TestApplyChildSale_DescuentaDelPadreYDejaDosAsientos(t *testing.T) {
	db, ledger := newRetailLedger(harinaBulto(), harinaBolsa())

	var parentMov, childMov *entity.StockMovement
	err := db.Run(context.Background(), func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		var txErr error
		parentMov, childMov, txErr = ledger.ApplyChildSaleInTx(
			productRepo, movRepo, harinaBolsa(), 3, "sale-1", "SAL-20250310-ABC123", "user-1", ahora,
		)
		return txErr
	})
	require.NoError(t, err)

	// Padre: 3 bolsas de 0.5kg = 1.5kg = 0.06 bultos de 25kg.
	assert.True(t, parentMov.Quantity.Equal(dec("-0.06")))
	assert.True(t, db.Products.Get("prod-harina-bulto").StockQuantity.Equal(dec("9.94")))

	// Hijo: fila informativa en unidades derivadas; su stock propio sigue en 0.
	assert.True(t, childMov.Quantity.Equal(dec("-3")))
	assert.True(t, childMov.PreviousQuantity.Equal(dec("500")))
	assert.True(t, childMov.NewQuantity.Equal(dec("497")))
	assert.True(t, db.Products.Get("prod-harina-bolsa").StockQuantity.IsZero())

	require.Len(t, db.Movements.All(), 2)
}

func TestApplyChildSale_SinDerivablesSuficientes_NadaPersiste(t *testing.T) {
	padre := harinaBulto()
	padre.StockQuantity = dec("0.01") // 0.25kg: ni una bolsa completa
	db, ledger := newRetailLedger(padre, harinaBolsa())

	err := db.Run(context.Background(), func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		_, _, txErr := ledger.ApplyChildSaleInTx(
			productRepo, movRepo, harinaBolsa(), 1, "sale-1", "SAL-20250310-ABC124", "user-1", ahora,
		)
		return txErr
	})

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.IsZero())
	assert.True(t, stockErr.Requested.Equal(dec("1")))

	assert.True(t, db.Products.Get("prod-harina-bulto").StockQuantity.Equal(dec("0.01")))
	assert.Empty(t, db.Movements.All())
}

func TestApplyChildSale_HijoSinPadreAsignado(t *testing.T) {
	huerfano := harinaBolsa()
	huerfano.ParentProductID = ""
	db, ledger := newRetailLedger(huerfano)

	err := db.Run(context.Background(), func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		_, _, txErr := ledger.ApplyChildSaleInTx(
			productRepo, movRepo, huerfano, 1, "sale-1", "SAL-X", "user-1", ahora,
		)
		return txErr
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ─────────────────────────────────────────────
// Historial
// ─────────────────────────────────────────────

func TestListByProduct_ProductoInexistente(t *testing.T) {
	_, ledger := newRetailLedger()

	_, err := ledger.ListByProduct("prod-fantasma", nil, nil, dto.PageRequest{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListByProduct_DevuelveLosAsientosDelProducto(t *testing.T) {
	db, ledger := newRetailLedger(gaseosa())

	for _, ajuste := range []string{"add", "remove"} {
		_, err := ledger.AdjustStock(context.Background(), "user-1", dto.AdjustStockRequest{
			ProductID:      "prod-gaseosa",
			AdjustmentType: ajuste,
			Quantity:       dec("5"),
			Reason:         "ciclo de prueba",
		})
		require.NoError(t, err)
	}

	resp, err := ledger.ListByProduct("prod-gaseosa", nil, nil, dto.PageRequest{})

	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.True(t, db.Products.Get("prod-gaseosa").StockQuantity.Equal(dec("50")),
		"add y remove de la misma cantidad se cancelan")
}
