package inventory_test

import (
	"context"
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

func newBatchAdmin(db *apptest.DB) *inventory.BatchAdminUseCase {
	ledger := inventory.NewBatchLedgerUseCase(db, db.Batches, db.Medicines, db.MedMovements)
	return inventory.NewBatchAdminUseCase(db, ledger, db.Batches, db.Medicines)
}

func TestAdjustBatch_AddYRemoveMuevenElLote(t *testing.T) {
	db := dbFarmacia(ibuprofeno())
	db.Batches.Add(lote("med-ibu", "IBU-001", time.Now().AddDate(1, 0, 0), 50))
	uc := newBatchAdmin(db)

	resp, err := uc.AdjustBatch(context.Background(), "user-1", "batch-IBU-001", dto.AdjustBatchRequest{
		AdjustmentType: "add", Quantity: 10, Reason: "conteo físico",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 60, resp.Quantity)

	resp, err = uc.AdjustBatch(context.Background(), "user-1", "batch-IBU-001", dto.AdjustBatchRequest{
		AdjustmentType: "remove", Quantity: 20, Reason: "merma por rotura",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 40, resp.Quantity)

	movs := db.MedMovements.All()
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeAdjustment, movs[0].MovementType)
	assert.EqualValues(t, 10, movs[0].Quantity)
	assert.Equal(t, "conteo físico", movs[0].Notes)
	assert.EqualValues(t, -20, movs[1].Quantity)
}

func TestAdjustBatch_SetRegistraLaDiferencia(t *testing.T) {
	db := dbFarmacia(ibuprofeno())
	db.Batches.Add(lote("med-ibu", "IBU-001", time.Now().AddDate(1, 0, 0), 50))
	uc := newBatchAdmin(db)

	resp, err := uc.AdjustBatch(context.Background(), "user-1", "batch-IBU-001", dto.AdjustBatchRequest{
		AdjustmentType: "set", Quantity: 30, Reason: "inventario anual",
	})

	require.NoError(t, err)
	assert.EqualValues(t, 30, resp.Quantity)
	movs := db.MedMovements.All()
	require.Len(t, movs, 1)
	assert.EqualValues(t, -20, movs[0].Quantity)
	assert.EqualValues(t, 50, movs[0].PreviousQuantity)
	assert.EqualValues(t, 30, movs[0].NewQuantity)
}

func TestAdjustBatch_ControladoDejaAsientoEnElRegistro(t *testing.T) {
	db := dbFarmacia(morfina())
	db.Batches.Add(lote("med-morfina", "MOR-A1", time.Now().AddDate(1, 0, 0), 50))
	uc := newBatchAdmin(db)

	_, err := uc.AdjustBatch(context.Background(), "user-2", "batch-MOR-A1", dto.AdjustBatchRequest{
		AdjustmentType: "add", Quantity: 5, Reason: "conteo físico",
	})

	require.NoError(t, err)
	entries := db.Register.All()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.RegisterTypeAdjustment, entries[0].TransactionType)
	assert.EqualValues(t, 5, entries[0].Quantity)
	assert.EqualValues(t, 55, entries[0].Balance)
	assert.Equal(t, "user-2", entries[0].DispensedByID)
	assert.Equal(t, "conteo físico", entries[0].Notes)
}

func TestAdjustBatch_EntradasInvalidas(t *testing.T) {
	casos := []struct {
		nombre string
		in     dto.AdjustBatchRequest
	}{
		{"sin motivo", dto.AdjustBatchRequest{AdjustmentType: "add", Quantity: 1}},
		{"cantidad cero en add", dto.AdjustBatchRequest{AdjustmentType: "add", Quantity: 0, Reason: "x"}},
		{"cantidad cero en remove", dto.AdjustBatchRequest{AdjustmentType: "remove", Quantity: 0, Reason: "x"}},
		{"objetivo negativo en set", dto.AdjustBatchRequest{AdjustmentType: "set", Quantity: -1, Reason: "x"}},
		{"tipo desconocido", dto.AdjustBatchRequest{AdjustmentType: "subir", Quantity: 1, Reason: "x"}},
	}
	for _, c := range casos {
		t.Run(c.nombre, func(t *testing.T) {
			db := dbFarmacia(ibuprofeno())
			db.Batches.Add(lote("med-ibu", "IBU-001", time.Now().AddDate(1, 0, 0), 50))
			uc := newBatchAdmin(db)

			_, err := uc.AdjustBatch(context.Background(), "user-1", "batch-IBU-001", c.in)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, db.MedMovements.All())
		})
	}
}

func TestAdjustBatch_RemoveInsuficiente_NadaPersiste(t *testing.T) {
	db := dbFarmacia(morfina())
	db.Batches.Add(lote("med-morfina", "MOR-A1", time.Now().AddDate(1, 0, 0), 10))
	uc := newBatchAdmin(db)

	_, err := uc.AdjustBatch(context.Background(), "user-1", "batch-MOR-A1", dto.AdjustBatchRequest{
		AdjustmentType: "remove", Quantity: 30, Reason: "merma",
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.EqualValues(t, 10, db.Batches.Get("batch-MOR-A1").Quantity)
	assert.Empty(t, db.MedMovements.All())
	assert.Empty(t, db.Register.All())
}

func TestAdjustBatch_LoteInexistente(t *testing.T) {
	db := dbFarmacia(ibuprofeno())
	uc := newBatchAdmin(db)

	_, err := uc.AdjustBatch(context.Background(), "user-1", "batch-fantasma", dto.AdjustBatchRequest{
		AdjustmentType: "add", Quantity: 1, Reason: "x",
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlockBatch_YUnblock_CicloCompleto(t *testing.T) {
	db := dbFarmacia(ibuprofeno())
	db.Batches.Add(lote("med-ibu", "IBU-001", time.Now().AddDate(1, 0, 0), 50))
	uc := newBatchAdmin(db)

	resp, err := uc.BlockBatch(context.Background(), "batch-IBU-001", "sospecha de falsificación")
	require.NoError(t, err)
	assert.True(t, resp.IsBlocked)
	assert.Equal(t, "sospecha de falsificación", resp.BlockReason)
	assert.Equal(t, entity.BatchStatusBlocked, resp.Status)

	resp, err = uc.UnblockBatch(context.Background(), "batch-IBU-001")
	require.NoError(t, err)
	assert.False(t, resp.IsBlocked)
	assert.Empty(t, resp.BlockReason)
	assert.Equal(t, entity.BatchStatusAvailable, resp.Status)

	assert.Empty(t, db.MedMovements.All(), "bloquear no mueve existencias")
}

func TestBlockBatch_SinMotivo(t *testing.T) {
	db := dbFarmacia(ibuprofeno())
	db.Batches.Add(lote("med-ibu", "IBU-001", time.Now().AddDate(1, 0, 0), 50))
	uc := newBatchAdmin(db)

	_, err := uc.BlockBatch(context.Background(), "batch-IBU-001", "")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, db.Batches.Get("batch-IBU-001").IsBlocked)
}

func TestUnblockBatch_VencidoNoSeDesbloquea(t *testing.T) {
	vencido := lote("med-ibu", "IBU-OLD", time.Now().AddDate(0, 0, -5), 30)
	vencido.IsBlocked = true
	vencido.BlockReason = entity.AutoBlockReason
	db := dbFarmacia(ibuprofeno())
	db.Batches.Add(vencido)
	uc := newBatchAdmin(db)

	_, err := uc.UnblockBatch(context.Background(), "batch-IBU-OLD")

	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "lote IBU-OLD", stateErr.Subject)
	assert.True(t, db.Batches.Get("batch-IBU-OLD").IsBlocked)
}

func TestWriteoffExpired_DejaElLoteEnCeroYAsienta(t *testing.T) {
	db := dbFarmacia(morfina())
	db.Batches.Add(lote("med-morfina", "MOR-OLD", time.Now().AddDate(0, 0, -10), 30))
	uc := newBatchAdmin(db)

	resp, err := uc.WriteoffExpired(context.Background(), "user-1", "batch-MOR-OLD", dto.WriteoffBatchRequest{})

	require.NoError(t, err)
	assert.EqualValues(t, 0, resp.Quantity)
	assert.True(t, resp.IsBlocked, "el lote vencido queda bloqueado automáticamente")
	assert.Equal(t, entity.BatchStatusExpired, resp.Status)

	movs := db.MedMovements.All()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeExpiryWriteoff, movs[0].MovementType)
	assert.EqualValues(t, -30, movs[0].Quantity)
	assert.Equal(t, "baja de inventario vencido", movs[0].Notes)

	entries := db.Register.All()
	require.Len(t, entries, 1)
	assert.Equal(t, entity.RegisterTypeWriteoff, entries[0].TransactionType)
	assert.EqualValues(t, -30, entries[0].Quantity)
	assert.EqualValues(t, 0, entries[0].Balance)
}

func TestWriteoffExpired_RechazaLoteVigente(t *testing.T) {
	db := dbFarmacia(ibuprofeno())
	db.Batches.Add(lote("med-ibu", "IBU-001", time.Now().AddDate(1, 0, 0), 30))
	uc := newBatchAdmin(db)

	_, err := uc.WriteoffExpired(context.Background(), "user-1", "batch-IBU-001", dto.WriteoffBatchRequest{})

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.EqualValues(t, 30, db.Batches.Get("batch-IBU-001").Quantity)
}

func TestWriteoffExpired_SinExistencias(t *testing.T) {
	db := dbFarmacia(ibuprofeno())
	db.Batches.Add(lote("med-ibu", "IBU-OLD", time.Now().AddDate(0, 0, -5), 0))
	uc := newBatchAdmin(db)

	_, err := uc.WriteoffExpired(context.Background(), "user-1", "batch-IBU-OLD", dto.WriteoffBatchRequest{})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListBatches_EnOrdenDeVencimiento(t *testing.T) {
	db := dbFarmacia(ibuprofeno())
	db.Batches.Add(lote("med-ibu", "IBU-LEJANO", time.Now().AddDate(2, 0, 0), 10))
	db.Batches.Add(lote("med-ibu", "IBU-CERCANO", time.Now().AddDate(0, 1, 0), 10))
	uc := newBatchAdmin(db)

	resp, err := uc.ListBatches("med-ibu")

	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "IBU-CERCANO", resp.Items[0].BatchNumber)
	assert.Equal(t, "IBU-LEJANO", resp.Items[1].BatchNumber)

	_, err = uc.ListBatches("med-fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
