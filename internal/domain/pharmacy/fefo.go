package pharmacy

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

// Asignador de lotes FEFO (First-Expiry-First-Out): entre los lotes elegibles
// (no vencidos, no bloqueados, con cantidad suficiente) se dispensa siempre el
// de vencimiento más próximo. Un solo lote debe cubrir la línea completa: no
// se parte una línea entre lotes.

// Selection lote elegido para una línea de venta, con advertencia opcional
// (no bloqueante) de vencimiento próximo.
type Selection struct {
	Batch   *entity.Batch
	Warning string
}

// SelectBatchFEFO elige el lote para dispensar requested unidades del medicamento.
// Elegibles: no vencido, no bloqueado, Quantity >= requested. Orden: ExpiryDate
// ascendente, empates por BatchNumber. Si ningún lote cubre la cantidad completa
// la asignación falla con el máximo dispensable en un solo lote como disponible.
func SelectBatchFEFO(med *entity.Medicine, batches []*entity.Batch, requested int64, now time.Time) (*Selection, error) {
	if requested <= 0 {
		return nil, domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
	}

	var eligible []*entity.Batch
	var maxAvailable int64
	for _, b := range batches {
		if b.IsExpired(now) || b.IsBlocked {
			continue
		}
		if b.Quantity > maxAvailable {
			maxAvailable = b.Quantity
		}
		if b.Quantity >= requested {
			eligible = append(eligible, b)
		}
	}
	if len(eligible) == 0 {
		return nil, domain.NewInsufficientStockError(
			med.BrandName,
			decimal.NewFromInt(maxAvailable),
			decimal.NewFromInt(requested),
		)
	}

	sort.Slice(eligible, func(i, j int) bool {
		ei, ej := eligible[i].ExpiryDate, eligible[j].ExpiryDate
		if !ei.Equal(ej) {
			return ei.Before(ej)
		}
		return eligible[i].BatchNumber < eligible[j].BatchNumber
	})

	chosen := eligible[0]
	return &Selection{Batch: chosen, Warning: NearExpiryWarning(chosen, now)}, nil
}

// ValidateExplicitBatch aplica a un lote elegido a mano los mismos chequeos que
// el flujo FEFO: pertenencia al medicamento, vencimiento, bloqueo y cantidad.
func ValidateExplicitBatch(med *entity.Medicine, batch *entity.Batch, requested int64, now time.Time) (*Selection, error) {
	if requested <= 0 {
		return nil, domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
	}
	if batch == nil || batch.MedicineID != med.ID {
		return nil, fmt.Errorf("lote para %s: %w", med.BrandName, domain.ErrNotFound)
	}
	if batch.IsExpired(now) {
		return nil, domain.NewInvalidStateError("lote "+batch.BatchNumber, "está vencido y no puede dispensarse")
	}
	if batch.IsBlocked {
		return nil, domain.NewInvalidStateError("lote "+batch.BatchNumber, "está bloqueado: "+batch.BlockReason)
	}
	if batch.Quantity < requested {
		return nil, domain.NewInsufficientStockError(
			"lote "+batch.BatchNumber,
			decimal.NewFromInt(batch.Quantity),
			decimal.NewFromInt(requested),
		)
	}
	return &Selection{Batch: batch, Warning: NearExpiryWarning(batch, now)}, nil
}

// CheckPrescriptionGate rechaza la línea antes de tocar stock si el medicamento
// exige receta y ni la línea está verificada ni la venta declara receta.
func CheckPrescriptionGate(med *entity.Medicine, prescriptionVerified, saleHasPrescription bool) error {
	if med.RequiresPrescription() && !prescriptionVerified && !saleHasPrescription {
		return &domain.PrescriptionRequiredError{MedicineName: med.BrandName}
	}
	return nil
}

// NearExpiryWarning advertencia no bloqueante si el lote vence dentro de la
// ventana de dispensación (30 días). Vacío si no aplica.
func NearExpiryWarning(batch *entity.Batch, now time.Time) string {
	if batch.IsNearExpiry(now, entity.NearExpiryWarningDays) {
		return fmt.Sprintf("el lote %s vence en %d días", batch.BatchNumber, batch.DaysToExpiry(now))
	}
	return ""
}
