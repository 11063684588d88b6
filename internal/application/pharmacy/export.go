package pharmacy

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// RegulatoryExportUseCase arma el libro de controlados de un período como
// documento XML firmado, listo para presentarse ante la autoridad sanitaria.
type RegulatoryExportUseCase struct {
	registerRepo repository.ControlledRegisterRepository
	medicineRepo repository.MedicineRepository
	batchRepo    repository.BatchRepository
	exporter     RegisterExporter
}

// NewRegulatoryExportUseCase construye el caso de uso.
func NewRegulatoryExportUseCase(
	registerRepo repository.ControlledRegisterRepository,
	medicineRepo repository.MedicineRepository,
	batchRepo repository.BatchRepository,
	exporter RegisterExporter,
) *RegulatoryExportUseCase {
	return &RegulatoryExportUseCase{
		registerRepo: registerRepo,
		medicineRepo: medicineRepo,
		batchRepo:    batchRepo,
		exporter:     exporter,
	}
}

// ExportRegisterXML genera el XML firmado del período [from, to].
func (uc *RegulatoryExportUseCase) ExportRegisterXML(ctx context.Context, from, to time.Time) ([]byte, string, error) {
	if from.After(to) {
		return nil, "", domain.NewValidationError("from", "el inicio del período no puede ser posterior al fin")
	}

	raw, err := uc.registerRepo.ListByPeriod(from, to)
	if err != nil {
		return nil, "", fmt.Errorf("listando el libro del período: %w", err)
	}

	medsByID := make(map[string]*entity.Medicine)
	batchesByID := make(map[string]*entity.Batch)
	entries := make([]ExportEntry, 0, len(raw))
	for _, e := range raw {
		med, ok := medsByID[e.MedicineID]
		if !ok {
			med, err = uc.medicineRepo.GetByID(e.MedicineID)
			if err != nil {
				return nil, "", err
			}
			medsByID[e.MedicineID] = med
		}
		exp := ExportEntry{Entry: e}
		if med != nil {
			exp.MedicineName = med.BrandName
			exp.GenericName = med.GenericName
		}
		if e.BatchID != "" {
			batch, ok := batchesByID[e.BatchID]
			if !ok {
				batch, err = uc.batchRepo.GetByID(e.BatchID)
				if err != nil {
					return nil, "", err
				}
				batchesByID[e.BatchID] = batch
			}
			if batch != nil {
				exp.BatchNumber = batch.BatchNumber
			}
		}
		entries = append(entries, exp)
	}

	xml, err := uc.exporter.BuildAndSign(ctx, from, to, entries)
	if err != nil {
		return nil, "", fmt.Errorf("firmando el libro de controlados: %w", err)
	}

	filename := fmt.Sprintf("registro_controlados_%s_%s.xml", from.Format("20060102"), to.Format("20060102"))
	return xml, filename, nil
}
