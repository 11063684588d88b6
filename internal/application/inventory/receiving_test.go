package inventory_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmapos-api/internal/application/apptest"
	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/application/inventory"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

func newReceiving(db *apptest.DB) *inventory.ReceivingUseCase {
	ledger := inventory.NewBatchLedgerUseCase(db, db.Batches, db.Medicines, db.MedMovements)
	return inventory.NewReceivingUseCase(db, ledger, db.Stores, db.Suppliers, db.Medicines, db.Receivings)
}

func dbFarmacia(meds ...*entity.Medicine) *apptest.DB {
	db := apptest.NewDB()
	db.Stores.Add(tienda())
	db.Suppliers.Add(proveedor())
	for _, m := range meds {
		db.Medicines.Add(m)
	}
	return db
}

func lineaRecepcion(medID, batchNumber string, cantidad int64) dto.ReceivingItemRequest {
	return dto.ReceivingItemRequest{
		MedicineID:    medID,
		BatchNumber:   batchNumber,
		ExpiryDate:    time.Now().AddDate(1, 0, 0),
		Quantity:      cantidad,
		PurchasePrice: dec("0.55"),
		SellingPrice:  dec("1.20"),
	}
}

func TestCreateReceiving_CreaLoteNuevoConSuMovimiento(t *testing.T) {
	db := dbFarmacia(ibuprofeno())
	uc := newReceiving(db)

	resp, err := uc.CreateReceiving(context.Background(), "user-1", dto.CreateReceivingRequest{
		StoreID:               "store-1",
		SupplierID:            "sup-1",
		SupplierInvoiceNumber: "FAC-9901",
		Items:                 []dto.ReceivingItemRequest{lineaRecepcion("med-ibu", "IBU-001", 100)},
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.ReceivingNumber, "RCV-"), resp.ReceivingNumber)
	assert.True(t, resp.TotalCost.Equal(dec("55.00")))
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].LineCost.Equal(dec("55.00")))

	lot, err := db.Batches.GetByMedicineAndNumber("med-ibu", "IBU-001")
	require.NoError(t, err)
	require.NotNil(t, lot)
	assert.EqualValues(t, 100, lot.Quantity)
	assert.EqualValues(t, 100, lot.InitialQuantity)
	assert.True(t, lot.PurchasePrice.Equal(dec("0.55")))
	assert.True(t, lot.SellingPrice.Equal(dec("1.20")))

	movs := db.MedMovements.All()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeReceiving, movs[0].MovementType)
	assert.EqualValues(t, 100, movs[0].Quantity)
	assert.Equal(t, resp.ID, movs[0].ReceivingID)
	assert.Equal(t, resp.ReceivingNumber, movs[0].Reference)

	assert.Empty(t, db.Register.All(), "los OTC no pasan por el libro de controlados")
}

func TestCreateReceiving_ReponeUnLoteExistente(t *testing.T) {
	db := dbFarmacia(ibuprofeno())
	existente := lote("med-ibu", "IBU-001", time.Now().AddDate(1, 0, 0), 40)
	db.Batches.Add(existente)
	uc := newReceiving(db)

	_, err := uc.CreateReceiving(context.Background(), "user-1", dto.CreateReceivingRequest{
		StoreID: "store-1",
		Items:   []dto.ReceivingItemRequest{lineaRecepcion("med-ibu", "IBU-001", 60)},
	})

	require.NoError(t, err)
	lotes, err := db.Batches.ListByMedicine("med-ibu")
	require.NoError(t, err)
	require.Len(t, lotes, 1, "la recepción repone el lote, no crea otro")
	assert.EqualValues(t, 100, lotes[0].Quantity)
	assert.EqualValues(t, 100, lotes[0].InitialQuantity)
}

func TestCreateReceiving_ControladoAsientaEnElRegistro(t *testing.T) {
	db := dbFarmacia(morfina())
	uc := newReceiving(db)

	resp, err := uc.CreateReceiving(context.Background(), "user-2", dto.CreateReceivingRequest{
		StoreID: "store-1",
		Items:   []dto.ReceivingItemRequest{lineaRecepcion("med-morfina", "MOR-A1", 25)},
	})

	require.NoError(t, err)
	entries := db.Register.All()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.RegisterTypeReceiving, entries[0].TransactionType)
	assert.EqualValues(t, 25, entries[0].Quantity)
	assert.EqualValues(t, 25, entries[0].Balance)
	assert.Equal(t, resp.ID, entries[0].ReceivingID)
	assert.Equal(t, "user-2", entries[0].DispensedByID)
	assert.Equal(t, resp.Items[0].BatchID, entries[0].BatchID)
}

func TestCreateReceiving_Validaciones(t *testing.T) {
	casos := []struct {
		nombre string
		mutar  func(*dto.CreateReceivingRequest)
	}{
		{"sin líneas", func(r *dto.CreateReceivingRequest) { r.Items = nil }},
		{"cantidad cero", func(r *dto.CreateReceivingRequest) { r.Items[0].Quantity = 0 }},
		{"sin número de lote", func(r *dto.CreateReceivingRequest) { r.Items[0].BatchNumber = "" }},
		{"sin vencimiento", func(r *dto.CreateReceivingRequest) { r.Items[0].ExpiryDate = time.Time{} }},
		{"precio negativo", func(r *dto.CreateReceivingRequest) { r.Items[0].PurchasePrice = dec("-1") }},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			db := dbFarmacia(ibuprofeno())
			uc := newReceiving(db)
			req := dto.CreateReceivingRequest{
				StoreID: "store-1",
				Items:   []dto.ReceivingItemRequest{lineaRecepcion("med-ibu", "IBU-001", 10)},
			}
			c.mutar(&req)

			_, err := uc.CreateReceiving(context.Background(), "user-1", req)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, db.MedMovements.All())
		})
	}
}

func TestCreateReceiving_ReferenciasInexistentes(t *testing.T) {
	db := dbFarmacia(ibuprofeno())
	uc := newReceiving(db)
	linea := []dto.ReceivingItemRequest{lineaRecepcion("med-ibu", "IBU-001", 10)}

	_, err := uc.CreateReceiving(context.Background(), "user-1", dto.CreateReceivingRequest{
		StoreID: "store-fantasma", Items: linea,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "tienda inexistente")

	_, err = uc.CreateReceiving(context.Background(), "user-1", dto.CreateReceivingRequest{
		StoreID: "store-1", SupplierID: "sup-fantasma", Items: linea,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "proveedor inexistente")

	_, err = uc.CreateReceiving(context.Background(), "user-1", dto.CreateReceivingRequest{
		StoreID: "store-1", Items: []dto.ReceivingItemRequest{lineaRecepcion("med-fantasma", "X-1", 10)},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "medicamento inexistente")
}

func TestCreateReceiving_ElProveedorEsOpcional(t *testing.T) {
	db := dbFarmacia(ibuprofeno())
	uc := newReceiving(db)

	_, err := uc.CreateReceiving(context.Background(), "user-1", dto.CreateReceivingRequest{
		StoreID: "store-1",
		Items:   []dto.ReceivingItemRequest{lineaRecepcion("med-ibu", "IBU-001", 10)},
	})

	assert.NoError(t, err)
}

func TestCreateReceiving_MedicamentoInactivo(t *testing.T) {
	inactivo := ibuprofeno()
	inactivo.IsActive = false
	db := dbFarmacia(inactivo)
	uc := newReceiving(db)

	_, err := uc.CreateReceiving(context.Background(), "user-1", dto.CreateReceivingRequest{
		StoreID: "store-1",
		Items:   []dto.ReceivingItemRequest{lineaRecepcion("med-ibu", "IBU-001", 10)},
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	headers, listErr := db.Receivings.List("store-1", nil, nil, 10, 0)
	require.NoError(t, listErr)
	assert.Empty(t, headers)
}

func TestGetReceiving_DevuelveLaCabeceraConSusLineas(t *testing.T) {
	db := dbFarmacia(ibuprofeno())
	uc := newReceiving(db)
	resp, err := uc.CreateReceiving(context.Background(), "user-1", dto.CreateReceivingRequest{
		StoreID: "store-1",
		Items:   []dto.ReceivingItemRequest{lineaRecepcion("med-ibu", "IBU-001", 10)},
	})
	require.NoError(t, err)

	got, err := uc.GetReceiving(resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ReceivingNumber, got.ReceivingNumber)
	assert.Len(t, got.Items, 1)

	_, err = uc.GetReceiving("rcv-fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
