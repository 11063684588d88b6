package inventory_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmapos-api/internal/application/apptest"
	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/application/inventory"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

func newPurchase(products ...*entity.Product) (*apptest.DB, *inventory.PurchaseOrderUseCase) {
	db := apptest.NewDB()
	db.Stores.Add(tienda())
	db.Suppliers.Add(proveedor())
	for _, p := range products {
		db.Products.Add(p)
	}
	ledger := inventory.NewStockLedgerUseCase(db, db.Products, db.Movements)
	return db, inventory.NewPurchaseOrderUseCase(db, ledger, db.Stores, db.Suppliers, db.Products, db.Orders)
}

func ordenGaseosa(t *testing.T, uc *inventory.PurchaseOrderUseCase) *dto.PurchaseOrderResponse {
	t.Helper()
	resp, err := uc.CreatePurchaseOrder(context.Background(), "user-1", dto.CreatePurchaseOrderRequest{
		StoreID:    "store-1",
		SupplierID: "sup-1",
		Items: []dto.PurchaseOrderItemRequest{
			{ProductID: "prod-gaseosa", Quantity: dec("24"), UnitCost: dec("1.10")},
		},
	})
	require.NoError(t, err)
	return resp
}

func TestCreatePurchaseOrder_CreaPendienteSinMoverStock(t *testing.T) {
	db, uc := newPurchase(gaseosa())

	resp := ordenGaseosa(t, uc)

	assert.True(t, strings.HasPrefix(resp.OrderNumber, "PO-"), resp.OrderNumber)
	assert.Equal(t, entity.PurchaseOrderPending, resp.Status)
	assert.True(t, resp.Subtotal.Equal(dec("26.40")))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Gaseosa 350ml", resp.Items[0].ProductName)
	assert.True(t, resp.Items[0].LineCost.Equal(dec("26.40")))

	assert.True(t, db.Products.Get("prod-gaseosa").StockQuantity.Equal(dec("50")), "crear la orden no toca el stock")
	assert.Empty(t, db.Movements.All())
}

func TestCreatePurchaseOrder_Validaciones(t *testing.T) {
	otraTienda := gaseosa()
	otraTienda.ID = "prod-ajeno"
	otraTienda.StoreID = "store-2"

	casos := []struct {
		nombre   string
		req      dto.CreatePurchaseOrderRequest
		sentinel error
	}{
		{
			"sin líneas",
			dto.CreatePurchaseOrderRequest{StoreID: "store-1", SupplierID: "sup-1"},
			domain.ErrValidation,
		},
		{
			"tienda inexistente",
			dto.CreatePurchaseOrderRequest{StoreID: "store-fantasma", SupplierID: "sup-1",
				Items: []dto.PurchaseOrderItemRequest{{ProductID: "prod-gaseosa", Quantity: dec("1"), UnitCost: dec("1")}}},
			domain.ErrNotFound,
		},
		{
			"proveedor inexistente",
			dto.CreatePurchaseOrderRequest{StoreID: "store-1", SupplierID: "sup-fantasma",
				Items: []dto.PurchaseOrderItemRequest{{ProductID: "prod-gaseosa", Quantity: dec("1"), UnitCost: dec("1")}}},
			domain.ErrValidation,
		},
		{
			"cantidad cero",
			dto.CreatePurchaseOrderRequest{StoreID: "store-1", SupplierID: "sup-1",
				Items: []dto.PurchaseOrderItemRequest{{ProductID: "prod-gaseosa", Quantity: dec("0"), UnitCost: dec("1")}}},
			domain.ErrValidation,
		},
		{
			"costo negativo",
			dto.CreatePurchaseOrderRequest{StoreID: "store-1", SupplierID: "sup-1",
				Items: []dto.PurchaseOrderItemRequest{{ProductID: "prod-gaseosa", Quantity: dec("1"), UnitCost: dec("-1")}}},
			domain.ErrValidation,
		},
		{
			"producto inexistente",
			dto.CreatePurchaseOrderRequest{StoreID: "store-1", SupplierID: "sup-1",
				Items: []dto.PurchaseOrderItemRequest{{ProductID: "prod-fantasma", Quantity: dec("1"), UnitCost: dec("1")}}},
			domain.ErrNotFound,
		},
		{
			"producto de otra tienda",
			dto.CreatePurchaseOrderRequest{StoreID: "store-1", SupplierID: "sup-1",
				Items: []dto.PurchaseOrderItemRequest{{ProductID: "prod-ajeno", Quantity: dec("1"), UnitCost: dec("1")}}},
			domain.ErrValidation,
		},
		{
			"producto hijo",
			dto.CreatePurchaseOrderRequest{StoreID: "store-1", SupplierID: "sup-1",
				Items: []dto.PurchaseOrderItemRequest{{ProductID: "prod-harina-bolsa", Quantity: dec("1"), UnitCost: dec("1")}}},
			domain.ErrValidation,
		},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, uc := newPurchase(gaseosa(), harinaBulto(), harinaBolsa(), otraTienda)

			_, err := uc.CreatePurchaseOrder(context.Background(), "user-1", c.req)

			assert.ErrorIs(t, err, c.sentinel)
		})
	}
}

func TestReceivePurchaseOrder_IngresaElStockPorElLibro(t *testing.T) {
	db, uc := newPurchase(gaseosa())
	orden := ordenGaseosa(t, uc)

	resp, err := uc.ReceivePurchaseOrder(context.Background(), "user-2", orden.ID)

	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderReceived, resp.Status)
	assert.Equal(t, "user-2", resp.ReceivedByID)
	require.NotNil(t, resp.ReceivedAt)

	assert.True(t, db.Products.Get("prod-gaseosa").StockQuantity.Equal(dec("74")))
	movs := db.Movements.All()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeReceiving, movs[0].MovementType)
	assert.True(t, movs[0].Quantity.Equal(dec("24")))
	assert.True(t, movs[0].PreviousQuantity.Equal(dec("50")))
	assert.True(t, movs[0].NewQuantity.Equal(dec("74")))
	assert.Equal(t, orden.OrderNumber, movs[0].Reference)
}

func TestReceivePurchaseOrder_LaSegundaRecepcionFalla(t *testing.T) {
	db, uc := newPurchase(gaseosa())
	orden := ordenGaseosa(t, uc)
	_, err := uc.ReceivePurchaseOrder(context.Background(), "user-2", orden.ID)
	require.NoError(t, err)

	_, err = uc.ReceivePurchaseOrder(context.Background(), "user-2", orden.ID)

	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Reason, "ya fue recibida o cancelada")
	assert.True(t, db.Products.Get("prod-gaseosa").StockQuantity.Equal(dec("74")), "el stock no entra dos veces")
	assert.Len(t, db.Movements.All(), 1)
}

func TestReceivePurchaseOrder_FallaEnUnaLinea_NadaPersiste(t *testing.T) {
	segundo := gaseosa()
	segundo.ID = "prod-jugo"
	segundo.SKU = "JUG-500"
	segundo.Name = "Jugo 500ml"
	db, uc := newPurchase(gaseosa(), segundo)

	orden, err := uc.CreatePurchaseOrder(context.Background(), "user-1", dto.CreatePurchaseOrderRequest{
		StoreID:    "store-1",
		SupplierID: "sup-1",
		Items: []dto.PurchaseOrderItemRequest{
			{ProductID: "prod-gaseosa", Quantity: dec("10"), UnitCost: dec("1")},
			{ProductID: "prod-jugo", Quantity: dec("5"), UnitCost: dec("2")},
		},
	})
	require.NoError(t, err)

	// El segundo producto desaparece antes de recibir; la primera línea ya
	// había entrado dentro de la transacción y debe revertirse con ella.
	require.NoError(t, db.Products.Delete("prod-jugo"))

	_, err = uc.ReceivePurchaseOrder(context.Background(), "user-2", orden.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, db.Products.Get("prod-gaseosa").StockQuantity.Equal(dec("50")), "la primera línea se revierte")
	assert.Empty(t, db.Movements.All())
	quedada, getErr := uc.GetPurchaseOrder(orden.ID)
	require.NoError(t, getErr)
	assert.Equal(t, entity.PurchaseOrderPending, quedada.Status)
}

func TestCancelPurchaseOrder_SoloLasPendientes(t *testing.T) {
	_, uc := newPurchase(gaseosa())
	orden := ordenGaseosa(t, uc)

	resp, err := uc.CancelPurchaseOrder(context.Background(), orden.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderCancelled, resp.Status)

	_, err = uc.ReceivePurchaseOrder(context.Background(), "user-2", orden.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "una orden cancelada no se recibe")

	otra := ordenGaseosa(t, uc)
	_, err = uc.ReceivePurchaseOrder(context.Background(), "user-2", otra.ID)
	require.NoError(t, err)
	_, err = uc.CancelPurchaseOrder(context.Background(), otra.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "una orden recibida no se cancela")
}

func TestListPurchaseOrders_FiltraPorEstado(t *testing.T) {
	_, uc := newPurchase(gaseosa())
	primera := ordenGaseosa(t, uc)
	segunda := ordenGaseosa(t, uc)
	_, err := uc.ReceivePurchaseOrder(context.Background(), "user-2", primera.ID)
	require.NoError(t, err)

	pendientes, err := uc.ListPurchaseOrders("store-1", entity.PurchaseOrderPending, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, pendientes.Items, 1)
	assert.Equal(t, segunda.ID, pendientes.Items[0].ID)

	todas, err := uc.ListPurchaseOrders("store-1", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, todas.Items, 2)
}

func TestReceivePurchaseOrder_ReponderaElCostoPromedio(t *testing.T) {
	cafe := gaseosa()
	cafe.ID = "prod-cafe"
	cafe.SKU = "CAF-500"
	cafe.Name = "Café molido 500g"
	cafe.StockQuantity = dec("30")
	cafe.CostPrice = dec("1.00")
	db, uc := newPurchase(cafe)

	orden, err := uc.CreatePurchaseOrder(context.Background(), "user-1", dto.CreatePurchaseOrderRequest{
		StoreID:    "store-1",
		SupplierID: "sup-1",
		Items: []dto.PurchaseOrderItemRequest{
			{ProductID: "prod-cafe", Quantity: dec("20"), UnitCost: dec("2.50")},
		},
	})
	require.NoError(t, err)

	_, err = uc.ReceivePurchaseOrder(context.Background(), "user-2", orden.ID)
	require.NoError(t, err)

	recibido := db.Products.Get("prod-cafe")
	assert.True(t, recibido.StockQuantity.Equal(dec("50")))
	assert.True(t, recibido.CostPrice.Equal(dec("1.60")),
		"promedio ponderado de 30 a 1.00 más 20 a 2.50, devolvió %s", recibido.CostPrice)
}
