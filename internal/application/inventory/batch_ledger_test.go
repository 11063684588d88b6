package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmapos-api/internal/application/apptest"
	"github.com/jhoicas/Farmapos-api/internal/application/inventory"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// ─────────────────────────────────────────────
// Fixtures de farmacia: un OTC y un controlado
// ─────────────────────────────────────────────

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

func newBatchLedger(meds []*entity.Medicine, batches []*entity.Batch) (*apptest.DB, *inventory.BatchLedgerUseCase) {
	db := apptest.NewDB()
	for _, m := range meds {
		db.Medicines.Add(m)
	}
	for _, b := range batches {
		db.Batches.Add(b)
	}
	return db, inventory.NewBatchLedgerUseCase(db, db.Batches, db.Medicines, db.MedMovements)
}

// enTxLote ejecuta fn dentro de una transacción simulada de lotes.
func enTxLote(t *testing.T, db *apptest.DB, fn func(
	batchRepo repository.BatchRepository,
	medMovRepo repository.MedicineStockMovementRepository,
) error) error {
	t.Helper()
	return db.RunBatch(context.Background(), func(
		batchRepo repository.BatchRepository,
		medMovRepo repository.MedicineStockMovementRepository,
		_ repository.ControlledRegisterRepository,
	) error {
		return fn(batchRepo, medMovRepo)
	})
}

// ─────────────────────────────────────────────
// ApplyDeltaInTx / ApplyAbsoluteInTx
// ─────────────────────────────────────────────

func TestBatchLedger_RecepcionConGrowInitial(t *testing.T) {
	db, ledger := newBatchLedger(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-001", ahora.AddDate(1, 0, 0), 50)},
	)

	var mov *entity.MedicineStockMovement
	err := enTxLote(t, db, func(br repository.BatchRepository, mm repository.MedicineStockMovementRepository) error {
		var txErr error
		mov, _, txErr = ledger.ApplyDeltaInTx(br, mm, inventory.BatchMovementInput{
			BatchID:      "batch-IBU-001",
			MovementType: entity.MovementTypeReceiving,
			Delta:        100,
			ReceivingID:  "rcv-1",
			Reference:    "RCV-20250310-AAAAAA",
			UserID:       "user-1",
			GrowInitial:  true,
		}, ahora)
		return txErr
	})

	require.NoError(t, err)
	assert.EqualValues(t, 50, mov.PreviousQuantity)
	assert.EqualValues(t, 100, mov.Quantity)
	assert.EqualValues(t, 150, mov.NewQuantity)
	assert.Equal(t, "rcv-1", mov.ReceivingID)

	got := db.Batches.Get("batch-IBU-001")
	assert.EqualValues(t, 150, got.Quantity)
	assert.EqualValues(t, 150, got.InitialQuantity, "GrowInitial acumula la entrada en InitialQuantity")
}

func TestBatchLedger_SalidaQueDejaNegativo_NadaPersiste(t *testing.T) {
	db, ledger := newBatchLedger(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-001", ahora.AddDate(1, 0, 0), 50)},
	)

	err := enTxLote(t, db, func(br repository.BatchRepository, mm repository.MedicineStockMovementRepository) error {
		_, _, txErr := ledger.ApplyDeltaInTx(br, mm, inventory.BatchMovementInput{
			BatchID:      "batch-IBU-001",
			MovementType: entity.MovementTypeAdjustment,
			Delta:        -60,
			UserID:       "user-1",
		}, ahora)
		return txErr
	})

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "lote IBU-001", stockErr.Subject)
	assert.True(t, stockErr.Available.Equal(dec("50")))
	assert.True(t, stockErr.Requested.Equal(dec("60")))

	assert.EqualValues(t, 50, db.Batches.Get("batch-IBU-001").Quantity)
	assert.Empty(t, db.MedMovements.All())
}

func TestBatchLedger_EscrituraSobreVencidoLoBloqueaAutomaticamente(t *testing.T) {
	db, ledger := newBatchLedger(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-OLD", ahora.AddDate(0, 0, -5), 30)},
	)

	// Una devolución sobre un lote ya vencido entra igual; el lote queda marcado.
	err := enTxLote(t, db, func(br repository.BatchRepository, mm repository.MedicineStockMovementRepository) error {
		_, _, txErr := ledger.ApplyDeltaInTx(br, mm, inventory.BatchMovementInput{
			BatchID:      "batch-IBU-OLD",
			MovementType: entity.MovementTypeReturn,
			Delta:        10,
			UserID:       "user-1",
		}, ahora)
		return txErr
	})

	require.NoError(t, err)
	got := db.Batches.Get("batch-IBU-OLD")
	assert.EqualValues(t, 40, got.Quantity)
	assert.True(t, got.IsBlocked)
	assert.Equal(t, entity.AutoBlockReason, got.BlockReason)
	assert.Equal(t, entity.BatchStatusExpired, got.Status(ahora))
}

func TestBatchLedger_ApplyAbsolute_ElDeltaEsLaDiferencia(t *testing.T) {
	db, ledger := newBatchLedger(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-001", ahora.AddDate(1, 0, 0), 80)},
	)

	var mov *entity.MedicineStockMovement
	err := enTxLote(t, db, func(br repository.BatchRepository, mm repository.MedicineStockMovementRepository) error {
		var txErr error
		mov, _, txErr = ledger.ApplyAbsoluteInTx(br, mm, "batch-IBU-001", 0,
			entity.MovementTypeExpiryWriteoff, "", "baja total", "user-1", ahora)
		return txErr
	})

	require.NoError(t, err)
	assert.EqualValues(t, -80, mov.Quantity)
	assert.EqualValues(t, 80, mov.PreviousQuantity)
	assert.EqualValues(t, 0, mov.NewQuantity)
	assert.EqualValues(t, 0, db.Batches.Get("batch-IBU-001").Quantity)
}

func TestBatchLedger_ObjetivoNegativoRechazado(t *testing.T) {
	db, ledger := newBatchLedger(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-001", ahora.AddDate(1, 0, 0), 80)},
	)

	err := enTxLote(t, db, func(br repository.BatchRepository, mm repository.MedicineStockMovementRepository) error {
		_, _, txErr := ledger.ApplyAbsoluteInTx(br, mm, "batch-IBU-001", -1,
			entity.MovementTypeAdjustment, "", "", "user-1", ahora)
		return txErr
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBatchLedger_LoteInexistente(t *testing.T) {
	db, ledger := newBatchLedger([]*entity.Medicine{ibuprofeno()}, nil)

	err := enTxLote(t, db, func(br repository.BatchRepository, mm repository.MedicineStockMovementRepository) error {
		_, _, txErr := ledger.ApplyDeltaInTx(br, mm, inventory.BatchMovementInput{
			BatchID:      "batch-fantasma",
			MovementType: entity.MovementTypeAdjustment,
			Delta:        1,
		}, ahora)
		return txErr
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─────────────────────────────────────────────
// Dispensación y devolución
// ─────────────────────────────────────────────

func TestDispenseOut_DescuentaYAtaElMovimientoALaVenta(t *testing.T) {
	db, ledger := newBatchLedger(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-001", ahora.AddDate(1, 0, 0), 50)},
	)

	var mov *entity.MedicineStockMovement
	var lot *entity.Batch
	err := enTxLote(t, db, func(br repository.BatchRepository, mm repository.MedicineStockMovementRepository) error {
		var txErr error
		mov, lot, txErr = ledger.ApplyDispenseOutInTx(br, mm, "batch-IBU-001", 20,
			"psale-1", "INV-20250310-AAAAAAAA", "user-1", ahora)
		return txErr
	})

	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeSale, mov.MovementType)
	assert.EqualValues(t, -20, mov.Quantity)
	assert.Equal(t, "psale-1", mov.PharmacySaleID)
	assert.EqualValues(t, 30, lot.Quantity)
	assert.EqualValues(t, 30, db.Batches.Get("batch-IBU-001").Quantity)
}

func TestDispenseOut_RechazaLoteVencido(t *testing.T) {
	db, ledger := newBatchLedger(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-OLD", ahora.AddDate(0, 0, -1), 50)},
	)

	err := enTxLote(t, db, func(br repository.BatchRepository, mm repository.MedicineStockMovementRepository) error {
		_, _, txErr := ledger.ApplyDispenseOutInTx(br, mm, "batch-IBU-OLD", 5,
			"psale-1", "INV-X", "user-1", ahora)
		return txErr
	})

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.EqualValues(t, 50, db.Batches.Get("batch-IBU-OLD").Quantity)
}

func TestDispenseOut_RechazaLoteBloqueado(t *testing.T) {
	bloqueado := lote("med-ibu", "IBU-BLK", ahora.AddDate(1, 0, 0), 50)
	bloqueado.IsBlocked = true
	bloqueado.BlockReason = "retiro sanitario"
	db, ledger := newBatchLedger([]*entity.Medicine{ibuprofeno()}, []*entity.Batch{bloqueado})

	err := enTxLote(t, db, func(br repository.BatchRepository, mm repository.MedicineStockMovementRepository) error {
		_, _, txErr := ledger.ApplyDispenseOutInTx(br, mm, "batch-IBU-BLK", 5,
			"psale-1", "INV-X", "user-1", ahora)
		return txErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Contains(t, err.Error(), "retiro sanitario")
}

func TestDispenseOut_RechazaCantidadInsuficiente(t *testing.T) {
	db, ledger := newBatchLedger(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-001", ahora.AddDate(1, 0, 0), 10)},
	)

	err := enTxLote(t, db, func(br repository.BatchRepository, mm repository.MedicineStockMovementRepository) error {
		_, _, txErr := ledger.ApplyDispenseOutInTx(br, mm, "batch-IBU-001", 11,
			"psale-1", "INV-X", "user-1", ahora)
		return txErr
	})

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(dec("10")))
	assert.True(t, stockErr.Requested.Equal(dec("11")))
}

func TestDispenseReturn_RestauraInclusoSiElLoteYaVencio(t *testing.T) {
	// La venta salió de un lote vigente; al anularla el lote ya venció. Las
	// unidades vuelven de todas formas y el bloqueo automático lo deja marcado.
	db, ledger := newBatchLedger(
		[]*entity.Medicine{ibuprofeno()},
		[]*entity.Batch{lote("med-ibu", "IBU-OLD", ahora.AddDate(0, 0, -1), 0)},
	)

	err := enTxLote(t, db, func(br repository.BatchRepository, mm repository.MedicineStockMovementRepository) error {
		_, _, txErr := ledger.ApplyDispenseReturnInTx(br, mm, "batch-IBU-OLD", 20,
			"psale-1", "VOID-INV-20250310-AAAAAAAA", "Venta anulada: error de digitación", "user-1", ahora)
		return txErr
	})

	require.NoError(t, err)
	got := db.Batches.Get("batch-IBU-OLD")
	assert.EqualValues(t, 20, got.Quantity)
	assert.True(t, got.IsBlocked, "restaurado pero inutilizable para dispensar")
	assert.Equal(t, entity.AutoBlockReason, got.BlockReason)

	movs := db.MedMovements.All()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeReturn, movs[0].MovementType)
	assert.EqualValues(t, 20, movs[0].Quantity)
}

// ─────────────────────────────────────────────
// Historial
// ─────────────────────────────────────────────

func TestBatchLedger_HistorialDePadresInexistentes(t *testing.T) {
	_, ledger := newBatchLedger(nil, nil)

	_, err := ledger.ListByMedicine("med-fantasma", nil, nil, 20, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = ledger.ListByBatch("batch-fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
