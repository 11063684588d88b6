package pharmacy_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmapos-api/internal/application/apptest"
	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/application/inventory"
	"github.com/jhoicas/Farmapos-api/internal/application/pharmacy"
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

func tienda() *entity.Store {
	return &entity.Store{ID: "store-1", Name: "Farmacia Central", IsDefault: true}
}

func ibuprofeno() *entity.Medicine {
	return &entity.Medicine{
		ID:           "med-ibu",
		BrandName:    "Ibuprofeno 400mg",
		GenericName:  "Ibuprofeno",
		SKU:          "IBU-400",
		Schedule:     entity.ScheduleOTC,
		SellingPrice: dec("1.20"),
		IsActive:     true,
	}
}

func amoxicilina() *entity.Medicine {
	return &entity.Medicine{
		ID:           "med-amoxi",
		BrandName:    "Amoxicilina 500mg",
		GenericName:  "Amoxicilina",
		SKU:          "AMX-500",
		Schedule:     entity.SchedulePrescription,
		SellingPrice: dec("2.30"),
		IsActive:     true,
	}
}

func morfina() *entity.Medicine {
	return &entity.Medicine{
		ID:           "med-morfina",
		BrandName:    "Morfina 10mg",
		GenericName:  "Sulfato de morfina",
		SKU:          "MOR-10",
		Schedule:     entity.ScheduleControlled,
		SellingPrice: dec("8.00"),
		IsActive:     true,
	}
}

func lote(medID, num string, vence time.Time, cantidad int64) *entity.Batch {
	return &entity.Batch{
		ID:              "batch-" + num,
		MedicineID:      medID,
		BatchNumber:     num,
		ExpiryDate:      vence,
		Quantity:        cantidad,
		InitialQuantity: cantidad,
		PurchasePrice:   dec("0.55"),
		SellingPrice:    dec("1.20"),
	}
}

func newFarmacia(meds []*entity.Medicine, lotes []*entity.Batch) (*apptest.DB, *pharmacy.DispenseUseCase, *pharmacy.VoidDispenseUseCase) {
	db := apptest.NewDB()
	db.Stores.Add(tienda())
	for _, m := range meds {
		db.Medicines.Add(m)
	}
	for _, b := range lotes {
		db.Batches.Add(b)
	}
	ledger := inventory.NewBatchLedgerUseCase(db, db.Batches, db.Medicines, db.MedMovements)
	dispensar := pharmacy.NewDispenseUseCase(db, ledger, db.Stores, db.Medicines, db.Batches)
	anular := pharmacy.NewVoidDispenseUseCase(db, ledger, db.PharmacySales, db.Medicines)
	return db, dispensar, anular
}

func ventaIbu(cantidad int64) dto.CreatePharmacySaleRequest {
	return dto.CreatePharmacySaleRequest{
		StoreID:       "store-1",
		PaymentMethod: entity.PaymentMethodCash,
		AmountPaid:    dec("500"),
		Items:         []dto.PharmacySaleItemRequest{{MedicineID: "med-ibu", Quantity: cantidad}},
	}
}

// ─────────────────────────────────────────────
// Dispensación con asignación FEFO
// ─────────────────────────────────────────────

func TestDispense_EligeElLoteDeVencimientoMasProximo(t *testing.T) {
	db, dispensar, _ := newFarmacia(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{
			lote("med-ibu", "IBU-TARDE", time.Now().AddDate(2, 0, 0), 100),
			lote("med-ibu", "IBU-PRONTO", time.Now().AddDate(0, 6, 0), 100),
		},
	)

	resp, err := dispensar.Dispense(context.Background(), "qf-1", ventaIbu(20))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.InvoiceNumber, "INV-"), resp.InvoiceNumber)
	assert.Equal(t, entity.SaleStatusCompleted, resp.Status)
	assert.True(t, resp.Total.Equal(dec("24.00")))
	assert.True(t, resp.TaxAmount.IsZero(), "las dispensaciones no llevan impuesto")
	assert.Empty(t, resp.Warnings)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, "IBU-PRONTO", resp.Items[0].BatchNumber)
	assert.True(t, resp.Items[0].UnitPrice.Equal(dec("1.20")), "el precio sale del lote")

	assert.EqualValues(t, 80, db.Batches.Get("batch-IBU-PRONTO").Quantity)
	assert.EqualValues(t, 100, db.Batches.Get("batch-IBU-TARDE").Quantity, "el lote lejano no se toca")

	movs := db.MedMovements.All()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeSale, movs[0].MovementType)
	assert.EqualValues(t, -20, movs[0].Quantity)
	assert.Equal(t, resp.ID, movs[0].PharmacySaleID)

	pagos := db.Payments.All()
	require.Len(t, pagos, 1)
	assert.Equal(t, resp.ID, pagos[0].PharmacySaleID)
	assert.True(t, pagos[0].Amount.Equal(dec("24.00")))

	assert.Empty(t, db.Register.All(), "los OTC no asientan en el libro de controlados")
}

func TestDispense_UnSoloLoteDebeCubrirLaLinea(t *testing.T) {
	_, dispensar, _ := newFarmacia(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{
			lote("med-ibu", "IBU-CHICO", time.Now().AddDate(0, 3, 0), 30),
			lote("med-ibu", "IBU-GRANDE", time.Now().AddDate(1, 0, 0), 80),
		},
	)

	resp, err := dispensar.Dispense(context.Background(), "qf-1", ventaIbu(50))

	require.NoError(t, err)
	assert.Equal(t, "IBU-GRANDE", resp.Items[0].BatchNumber,
		"el lote más próximo no alcanza; la línea va entera al siguiente")
}

func TestDispense_NingunLoteCubre_NadaPersiste(t *testing.T) {
	db, dispensar, _ := newFarmacia(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{
			lote("med-ibu", "IBU-A", time.Now().AddDate(0, 3, 0), 30),
			lote("med-ibu", "IBU-B", time.Now().AddDate(1, 0, 0), 40),
		},
	)

	_, err := dispensar.Dispense(context.Background(), "qf-1", ventaIbu(50))

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Ibuprofeno 400mg", stockErr.Subject)
	assert.True(t, stockErr.Available.Equal(dec("40")), "lo máximo dispensable en un solo lote")
	assert.True(t, stockErr.Requested.Equal(dec("50")))

	ventas, listErr := db.PharmacySales.List("store-1", nil, nil, "", 10, 0)
	require.NoError(t, listErr)
	assert.Empty(t, ventas)
	assert.Empty(t, db.MedMovements.All())
	assert.Empty(t, db.Payments.All())
	assert.EqualValues(t, 30, db.Batches.Get("batch-IBU-A").Quantity)
	assert.EqualValues(t, 40, db.Batches.Get("batch-IBU-B").Quantity)
}

func TestDispense_IgnoraLotesVencidosYBloqueados(t *testing.T) {
	bloqueado := lote("med-ibu", "IBU-BLK", time.Now().AddDate(0, 2, 0), 100)
	bloqueado.IsBlocked = true
	bloqueado.BlockReason = "retiro sanitario"
	_, dispensar, _ := newFarmacia(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{
			lote("med-ibu", "IBU-OLD", time.Now().AddDate(0, 0, -3), 100),
			bloqueado,
			lote("med-ibu", "IBU-OK", time.Now().AddDate(1, 0, 0), 100),
		},
	)

	resp, err := dispensar.Dispense(context.Background(), "qf-1", ventaIbu(20))

	require.NoError(t, err)
	assert.Equal(t, "IBU-OK", resp.Items[0].BatchNumber)
}

// ─────────────────────────────────────────────
// Puerta de receta
// ─────────────────────────────────────────────

func TestDispense_LaRecetaSeExigeAntesDeAsignarStock(t *testing.T) {
	// Sin lotes a propósito: si la puerta corriera después de la asignación el
	// error sería de stock, no de receta.
	db, dispensar, _ := newFarmacia([]*entity.Medicine{amoxicilina()}, nil)

	_, err := dispensar.Dispense(context.Background(), "qf-1", dto.CreatePharmacySaleRequest{
		StoreID:       "store-1",
		PaymentMethod: entity.PaymentMethodCash,
		AmountPaid:    dec("100"),
		Items:         []dto.PharmacySaleItemRequest{{MedicineID: "med-amoxi", Quantity: 10}},
	})

	var rxErr *domain.PrescriptionRequiredError
	require.ErrorAs(t, err, &rxErr)
	assert.Equal(t, "Amoxicilina 500mg", rxErr.MedicineName)
	assert.ErrorIs(t, err, domain.ErrPrescriptionRequired)
	assert.Empty(t, db.MedMovements.All())
}

func TestDispense_RecetaVerificadaEnLaLinea(t *testing.T) {
	_, dispensar, _ := newFarmacia(
		[]*entity.Medicine{amoxicilina()},
		[]*entity.Batch{lote("med-amoxi", "AMX-001", time.Now().AddDate(1, 0, 0), 60)},
	)

	resp, err := dispensar.Dispense(context.Background(), "qf-1", dto.CreatePharmacySaleRequest{
		StoreID:       "store-1",
		PaymentMethod: entity.PaymentMethodCash,
		AmountPaid:    dec("100"),
		Items: []dto.PharmacySaleItemRequest{
			{MedicineID: "med-amoxi", Quantity: 10, PrescriptionVerified: true},
		},
	})

	require.NoError(t, err)
	assert.True(t, resp.Items[0].RequiresPrescription)
	assert.True(t, resp.Items[0].PrescriptionVerified)
}

func TestDispense_RecetaDeclaradaEnLaVenta(t *testing.T) {
	_, dispensar, _ := newFarmacia(
		[]*entity.Medicine{amoxicilina()},
		[]*entity.Batch{lote("med-amoxi", "AMX-001", time.Now().AddDate(1, 0, 0), 60)},
	)

	_, err := dispensar.Dispense(context.Background(), "qf-1", dto.CreatePharmacySaleRequest{
		StoreID:            "store-1",
		HasPrescription:    true,
		PrescriptionNumber: "RX-2291",
		PrescriberName:     "Dra. Ruiz",
		PaymentMethod:      entity.PaymentMethodCash,
		AmountPaid:         dec("100"),
		Items:              []dto.PharmacySaleItemRequest{{MedicineID: "med-amoxi", Quantity: 10}},
	})

	assert.NoError(t, err)
}

// ─────────────────────────────────────────────
// Controlados y advertencias
// ─────────────────────────────────────────────

func TestDispense_ControladoAsientaEnElRegistro(t *testing.T) {
	mor := lote("med-morfina", "MOR-A1", time.Now().AddDate(1, 0, 0), 50)
	mor.SellingPrice = dec("8.00")
	db, dispensar, _ := newFarmacia([]*entity.Medicine{morfina()}, []*entity.Batch{mor})

	resp, err := dispensar.Dispense(context.Background(), "qf-1", dto.CreatePharmacySaleRequest{
		StoreID:            "store-1",
		CustomerName:       "Carlos Gómez",
		HasPrescription:    true,
		PrescriptionNumber: "RX-4417",
		PrescriberName:     "Dra. Ruiz",
		PaymentMethod:      entity.PaymentMethodCash,
		AmountPaid:         dec("80"),
		Items:              []dto.PharmacySaleItemRequest{{MedicineID: "med-morfina", Quantity: 10}},
	})

	require.NoError(t, err)
	entries := db.Register.All()
	require.Len(t, entries, 1)
	asiento := entries[0]
	assert.Equal(t, entity.RegisterTypeDispensing, asiento.TransactionType)
	assert.EqualValues(t, 10, asiento.Quantity)
	assert.EqualValues(t, 40, asiento.Balance, "el saldo es el del lote ya descontado")
	assert.Equal(t, "Carlos Gómez", asiento.CustomerName)
	assert.Equal(t, "RX-4417", asiento.PrescriptionNumber)
	assert.Equal(t, "Dra. Ruiz", asiento.PrescriberName)
	assert.Equal(t, resp.ID, asiento.PharmacySaleID)
	assert.Equal(t, "qf-1", asiento.DispensedByID)
}

func TestDispense_AdviertePorVencimientoProximo(t *testing.T) {
	_, dispensar, _ := newFarmacia(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-PRONTO", time.Now().AddDate(0, 0, 20), 100)},
	)

	resp, err := dispensar.Dispense(context.Background(), "qf-1", ventaIbu(10))

	require.NoError(t, err, "la advertencia no bloquea la venta")
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "IBU-PRONTO")
	assert.Contains(t, resp.Warnings[0], "vence en")
}

func TestDispense_DescuentoPorLinea(t *testing.T) {
	mor := lote("med-morfina", "MOR-A1", time.Now().AddDate(1, 0, 0), 50)
	mor.SellingPrice = dec("8.00")
	_, dispensar, _ := newFarmacia([]*entity.Medicine{morfina()}, []*entity.Batch{mor})

	resp, err := dispensar.Dispense(context.Background(), "qf-1", dto.CreatePharmacySaleRequest{
		StoreID:         "store-1",
		CustomerName:    "Carlos Gómez",
		HasPrescription: true,
		PaymentMethod:   entity.PaymentMethodCard,
		AmountPaid:      dec("60"),
		Items: []dto.PharmacySaleItemRequest{
			{MedicineID: "med-morfina", Quantity: 10, DiscountPercent: dec("25")},
		},
	})

	require.NoError(t, err)
	assert.True(t, resp.Subtotal.Equal(dec("80.00")))
	assert.True(t, resp.DiscountAmount.Equal(dec("20.00")))
	assert.True(t, resp.Total.Equal(dec("60.00")))
}

// ─────────────────────────────────────────────
// Lote explícito
// ─────────────────────────────────────────────

func TestDispense_LoteExplicitoSaltaElFEFO(t *testing.T) {
	db, dispensar, _ := newFarmacia(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{
			lote("med-ibu", "IBU-PRONTO", time.Now().AddDate(0, 6, 0), 100),
			lote("med-ibu", "IBU-TARDE", time.Now().AddDate(2, 0, 0), 100),
		},
	)

	req := ventaIbu(20)
	req.Items[0].BatchID = "batch-IBU-TARDE"
	resp, err := dispensar.Dispense(context.Background(), "qf-1", req)

	require.NoError(t, err)
	assert.Equal(t, "IBU-TARDE", resp.Items[0].BatchNumber)
	assert.EqualValues(t, 80, db.Batches.Get("batch-IBU-TARDE").Quantity)
	assert.EqualValues(t, 100, db.Batches.Get("batch-IBU-PRONTO").Quantity)
}

func TestDispense_LoteExplicitoInvalido(t *testing.T) {
	vencido := lote("med-ibu", "IBU-OLD", time.Now().AddDate(0, 0, -3), 100)
	bloqueado := lote("med-ibu", "IBU-BLK", time.Now().AddDate(1, 0, 0), 100)
	bloqueado.IsBlocked = true
	bloqueado.BlockReason = "retiro sanitario"
	chico := lote("med-ibu", "IBU-CHICO", time.Now().AddDate(1, 0, 0), 5)
	ajeno := lote("med-amoxi", "AMX-001", time.Now().AddDate(1, 0, 0), 100)

	casos := []struct {
		nombre   string
		batchID  string
		sentinel error
	}{
		{"lote vencido", "batch-IBU-OLD", domain.ErrInvalidState},
		{"lote bloqueado", "batch-IBU-BLK", domain.ErrInvalidState},
		{"lote sin cantidad suficiente", "batch-IBU-CHICO", domain.ErrInsufficientStock},
		{"lote de otro medicamento", "batch-AMX-001", domain.ErrNotFound},
		{"lote inexistente", "batch-fantasma", domain.ErrNotFound},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, dispensar, _ := newFarmacia(
				[]*entity.Medicine{ibuprofeno(), amoxicilina()},
				[]*entity.Batch{vencido, bloqueado, chico, ajeno},
			)

			req := ventaIbu(20)
			req.Items[0].BatchID = c.batchID
			_, err := dispensar.Dispense(context.Background(), "qf-1", req)

			assert.ErrorIs(t, err, c.sentinel)
		})
	}
}

// ─────────────────────────────────────────────
// Validaciones generales
// ─────────────────────────────────────────────

func TestDispense_Validaciones(t *testing.T) {
	inactivo := ibuprofeno()
	inactivo.ID = "med-inactivo"
	inactivo.IsActive = false

	casos := []struct {
		nombre   string
		req      dto.CreatePharmacySaleRequest
		sentinel error
	}{
		{
			"sin líneas",
			dto.CreatePharmacySaleRequest{StoreID: "store-1", PaymentMethod: "cash", AmountPaid: dec("1")},
			domain.ErrValidation,
		},
		{
			"medio de pago desconocido",
			dto.CreatePharmacySaleRequest{StoreID: "store-1", PaymentMethod: "trueque", AmountPaid: dec("1"),
				Items: []dto.PharmacySaleItemRequest{{MedicineID: "med-ibu", Quantity: 1}}},
			domain.ErrValidation,
		},
		{
			"tienda inexistente",
			dto.CreatePharmacySaleRequest{StoreID: "store-fantasma", PaymentMethod: "cash", AmountPaid: dec("1"),
				Items: []dto.PharmacySaleItemRequest{{MedicineID: "med-ibu", Quantity: 1}}},
			domain.ErrNotFound,
		},
		{
			"cantidad cero",
			dto.CreatePharmacySaleRequest{StoreID: "store-1", PaymentMethod: "cash", AmountPaid: dec("1"),
				Items: []dto.PharmacySaleItemRequest{{MedicineID: "med-ibu", Quantity: 0}}},
			domain.ErrValidation,
		},
		{
			"descuento fuera de rango",
			dto.CreatePharmacySaleRequest{StoreID: "store-1", PaymentMethod: "cash", AmountPaid: dec("1"),
				Items: []dto.PharmacySaleItemRequest{{MedicineID: "med-ibu", Quantity: 1, DiscountPercent: dec("101")}}},
			domain.ErrValidation,
		},
		{
			"medicamento inexistente",
			dto.CreatePharmacySaleRequest{StoreID: "store-1", PaymentMethod: "cash", AmountPaid: dec("1"),
				Items: []dto.PharmacySaleItemRequest{{MedicineID: "med-fantasma", Quantity: 1}}},
			domain.ErrNotFound,
		},
		{
			"medicamento inactivo",
			dto.CreatePharmacySaleRequest{StoreID: "store-1", PaymentMethod: "cash", AmountPaid: dec("1"),
				Items: []dto.PharmacySaleItemRequest{{MedicineID: "med-inactivo", Quantity: 1}}},
			domain.ErrValidation,
		},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			_, dispensar, _ := newFarmacia(
				[]*entity.Medicine{ibuprofeno(), inactivo},
				[]*entity.Batch{lote("med-ibu", "IBU-001", time.Now().AddDate(1, 0, 0), 100)},
			)

			_, err := dispensar.Dispense(context.Background(), "qf-1", c.req)

			assert.ErrorIs(t, err, c.sentinel)
		})
	}
}

func TestDispense_PagoInsuficiente(t *testing.T) {
	db, dispensar, _ := newFarmacia(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-001", time.Now().AddDate(1, 0, 0), 100)},
	)

	req := ventaIbu(20)
	req.AmountPaid = dec("10")
	_, err := dispensar.Dispense(context.Background(), "qf-1", req)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.EqualValues(t, 100, db.Batches.Get("batch-IBU-001").Quantity)
}
