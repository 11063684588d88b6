package pharmacy

import (
	"context"
	"time"

	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// PharmacyTxRunner ejecuta una función dentro de una transacción que cubre la
// dispensación completa: cabecera, líneas, lotes, movimientos, libro de
// controlados y pago.
type PharmacyTxRunner interface {
	RunDispense(ctx context.Context, fn func(
		saleRepo repository.PharmacySaleRepository,
		batchRepo repository.BatchRepository,
		medMovRepo repository.MedicineStockMovementRepository,
		registerRepo repository.ControlledRegisterRepository,
		paymentRepo repository.PaymentRepository,
	) error) error
}

// BatchLedger expone el libro de lotes dentro de la transacción del caller.
// Si retorna error (lote bloqueado, vencido o sin stock bajo el lock), el
// caller debe hacer rollback.
type BatchLedger interface {
	ApplyDispenseOutInTx(
		batchRepo repository.BatchRepository,
		medMovRepo repository.MedicineStockMovementRepository,
		batchID string,
		quantity int64,
		pharmacySaleID, reference, userID string,
		now time.Time,
	) (*entity.MedicineStockMovement, *entity.Batch, error)

	ApplyDispenseReturnInTx(
		batchRepo repository.BatchRepository,
		medMovRepo repository.MedicineStockMovementRepository,
		batchID string,
		quantity int64,
		pharmacySaleID, reference, notes, userID string,
		now time.Time,
	) (*entity.MedicineStockMovement, *entity.Batch, error)
}

// ExportEntry asiento del libro de controlados enriquecido para la
// exportación regulatoria.
type ExportEntry struct {
	Entry        *entity.ControlledRegisterEntry
	MedicineName string
	GenericName  string
	BatchNumber  string
}

// RegisterExporter construye y firma el documento XML del libro de
// controlados de un período.
type RegisterExporter interface {
	BuildAndSign(ctx context.Context, from, to time.Time, entries []ExportEntry) ([]byte, error)
}
