package pharmacy_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/application/pharmacy"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

func TestVoidDispense_RestauraElLoteYMarcaLaVenta(t *testing.T) {
	db, dispensar, anular := newFarmacia(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-001", time.Now().AddDate(1, 0, 0), 100)},
	)
	venta, err := dispensar.Dispense(context.Background(), "qf-1", ventaIbu(20))
	require.NoError(t, err)
	require.EqualValues(t, 80, db.Batches.Get("batch-IBU-001").Quantity)

	resp, err := anular.VoidDispense(context.Background(), "supervisor-1", venta.ID, dto.VoidSaleRequest{
		Reason: "error de digitación",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusVoided, resp.Status)
	assert.Equal(t, "supervisor-1", resp.VoidedByID)
	require.NotNil(t, resp.VoidedAt)
	assert.Equal(t, "error de digitación", resp.VoidReason)

	assert.EqualValues(t, 100, db.Batches.Get("batch-IBU-001").Quantity)

	movs := db.MedMovements.All()
	require.Len(t, movs, 2)
	devolucion := movs[1]
	assert.Equal(t, entity.MovementTypeReturn, devolucion.MovementType)
	assert.EqualValues(t, 20, devolucion.Quantity)
	assert.Equal(t, "VOID-"+venta.InvoiceNumber, devolucion.Reference)
	assert.Equal(t, "Venta anulada: error de digitación", devolucion.Notes)
	assert.Equal(t, venta.ID, devolucion.PharmacySaleID)
}

func TestVoidDispense_ControladoDejaAsientoDeReverso(t *testing.T) {
	mor := lote("med-morfina", "MOR-A1", time.Now().AddDate(1, 0, 0), 50)
	mor.SellingPrice = dec("8.00")
	db, dispensar, anular := newFarmacia([]*entity.Medicine{morfina()}, []*entity.Batch{mor})

	venta, err := dispensar.Dispense(context.Background(), "qf-1", dto.CreatePharmacySaleRequest{
		StoreID:            "store-1",
		CustomerName:       "Carlos Gómez",
		HasPrescription:    true,
		PrescriptionNumber: "RX-4417",
		PaymentMethod:      entity.PaymentMethodCash,
		AmountPaid:         dec("80"),
		Items:              []dto.PharmacySaleItemRequest{{MedicineID: "med-morfina", Quantity: 10}},
	})
	require.NoError(t, err)

	_, err = anular.VoidDispense(context.Background(), "supervisor-1", venta.ID, dto.VoidSaleRequest{
		Reason: "receta rechazada en auditoría",
	})

	require.NoError(t, err)
	entries := db.Register.All()
	require.Len(t, entries, 2, "la anulación no borra el asiento original, agrega el reverso")

	reverso := entries[1]
	assert.Equal(t, entity.RegisterTypeAdjustment, reverso.TransactionType)
	assert.EqualValues(t, 10, reverso.Quantity)
	assert.EqualValues(t, 50, reverso.Balance, "el saldo vuelve al del lote restaurado")
	assert.Equal(t, venta.ID, reverso.PharmacySaleID)
	assert.Equal(t, "supervisor-1", reverso.DispensedByID)
	assert.Equal(t, "Venta anulada: receta rechazada en auditoría", reverso.Notes)
}

func TestVoidDispense_RestauraAunqueElLoteYaVencio(t *testing.T) {
	db, dispensar, anular := newFarmacia(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-001", time.Now().AddDate(1, 0, 0), 100)},
	)
	venta, err := dispensar.Dispense(context.Background(), "qf-1", ventaIbu(20))
	require.NoError(t, err)

	// El lote vence entre la venta y la anulación.
	caducado := db.Batches.Get("batch-IBU-001")
	caducado.ExpiryDate = time.Now().AddDate(0, 0, -1)
	require.NoError(t, db.Batches.Update(caducado))

	_, err = anular.VoidDispense(context.Background(), "supervisor-1", venta.ID, dto.VoidSaleRequest{
		Reason: "producto no entregado",
	})

	require.NoError(t, err, "la devolución entra aunque el lote esté vencido")
	restaurado := db.Batches.Get("batch-IBU-001")
	assert.EqualValues(t, 100, restaurado.Quantity)
	assert.True(t, restaurado.IsBlocked, "el bloqueo automático lo deja fuera de dispensación")
	assert.Equal(t, entity.AutoBlockReason, restaurado.BlockReason)
}

func TestVoidDispense_LaSegundaAnulacionFalla(t *testing.T) {
	db, dispensar, anular := newFarmacia(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-001", time.Now().AddDate(1, 0, 0), 100)},
	)
	venta, err := dispensar.Dispense(context.Background(), "qf-1", ventaIbu(20))
	require.NoError(t, err)
	_, err = anular.VoidDispense(context.Background(), "supervisor-1", venta.ID, dto.VoidSaleRequest{Reason: "error"})
	require.NoError(t, err)

	_, err = anular.VoidDispense(context.Background(), "supervisor-1", venta.ID, dto.VoidSaleRequest{Reason: "error"})

	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Contains(t, stateErr.Reason, "ya está anulada")
	assert.EqualValues(t, 100, db.Batches.Get("batch-IBU-001").Quantity, "el stock no vuelve dos veces")
	assert.Len(t, db.MedMovements.All(), 2)
}

func TestVoidDispense_SinMotivo(t *testing.T) {
	_, dispensar, anular := newFarmacia(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-001", time.Now().AddDate(1, 0, 0), 100)},
	)
	venta, err := dispensar.Dispense(context.Background(), "qf-1", ventaIbu(20))
	require.NoError(t, err)

	_, err = anular.VoidDispense(context.Background(), "supervisor-1", venta.ID, dto.VoidSaleRequest{})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestVoidDispense_VentaInexistente(t *testing.T) {
	_, _, anular := newFarmacia([]*entity.Medicine{ibuprofeno()}, nil)

	_, err := anular.VoidDispense(context.Background(), "supervisor-1", "venta-fantasma", dto.VoidSaleRequest{Reason: "x"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─────────────────────────────────────────────
// Lecturas: ventas y libro de controlados
// ─────────────────────────────────────────────

func TestPharmacyQueries_VentasYRegistro(t *testing.T) {
	mor := lote("med-morfina", "MOR-A1", time.Now().AddDate(1, 0, 0), 50)
	db, dispensar, _ := newFarmacia([]*entity.Medicine{morfina(), ibuprofeno()}, []*entity.Batch{mor})
	consultas := pharmacy.NewSaleQueryUseCase(db.PharmacySales)
	registro := pharmacy.NewRegisterQueryUseCase(db.Register, db.Medicines)

	venta, err := dispensar.Dispense(context.Background(), "qf-1", dto.CreatePharmacySaleRequest{
		StoreID:         "store-1",
		CustomerName:    "Carlos Gómez",
		HasPrescription: true,
		PaymentMethod:   entity.PaymentMethodCash,
		AmountPaid:      dec("100"),
		Items:           []dto.PharmacySaleItemRequest{{MedicineID: "med-morfina", Quantity: 5}},
	})
	require.NoError(t, err)

	got, err := consultas.GetSale(venta.ID)
	require.NoError(t, err)
	assert.Equal(t, venta.InvoiceNumber, got.InvoiceNumber)
	assert.Len(t, got.Items, 1)

	_, err = consultas.GetSale("venta-fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	libro, err := registro.ListByMedicine("med-morfina", nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, libro.Items, 1)
	assert.Equal(t, entity.RegisterTypeDispensing, libro.Items[0].TransactionType)

	_, err = registro.ListByMedicine("med-ibu", nil, nil, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation, "el libro solo aplica a sustancias controladas")

	_, err = registro.ListByMedicine("med-fantasma", nil, nil, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
