package pharmacy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	domainpharma "github.com/jhoicas/Farmapos-api/internal/domain/pharmacy"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
	"github.com/jhoicas/Farmapos-api/pkg/docnum"
)

var cien = decimal.NewFromInt(100)

// DispenseUseCase registra dispensaciones de farmacia: verifica la receta
// antes de tocar stock, asigna lotes por FEFO (o valida el lote explícito) y
// confirma la venta completa en una sola transacción con bloqueo por lote.
type DispenseUseCase struct {
	txRunner     PharmacyTxRunner
	ledger       BatchLedger
	storeRepo    repository.StoreRepository
	medicineRepo repository.MedicineRepository
	batchRepo    repository.BatchRepository
}

// NewDispenseUseCase construye el caso de uso.
func NewDispenseUseCase(
	txRunner PharmacyTxRunner,
	ledger BatchLedger,
	storeRepo repository.StoreRepository,
	medicineRepo repository.MedicineRepository,
	batchRepo repository.BatchRepository,
) *DispenseUseCase {
	return &DispenseUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		storeRepo:    storeRepo,
		medicineRepo: medicineRepo,
		batchRepo:    batchRepo,
	}
}

// dispenseLine línea validada con su lote ya asignado.
type dispenseLine struct {
	medicine  *entity.Medicine
	selection *domainpharma.Selection
	quantity  int64
	discount  decimal.Decimal
	unitPrice decimal.Decimal
	lineGross decimal.Decimal
	lineDisc  decimal.Decimal
	lineNet   decimal.Decimal
	verified  bool
}

// Dispense valida la dispensación sin mutar nada y la confirma atómicamente.
// La puerta de receta corre antes de cualquier asignación de stock.
func (uc *DispenseUseCase) Dispense(ctx context.Context, dispenserID string, in dto.CreatePharmacySaleRequest) (*dto.PharmacySaleResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "la dispensación necesita al menos una línea")
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.NewValidationError("payment_method", "medio de pago desconocido: "+in.PaymentMethod)
	}
	store, err := uc.storeRepo.GetByID(in.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	lines, warnings, err := uc.validateLines(in, now)
	if err != nil {
		return nil, err
	}

	subtotal, discount := decimal.Zero, decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.lineGross)
		discount = discount.Add(l.lineDisc)
	}
	// Las dispensaciones no llevan impuesto.
	total := subtotal.Sub(discount).Round(2)
	if in.AmountPaid.LessThan(total) {
		return nil, domain.NewValidationError("amount_paid", "el monto pagado no cubre el total de la venta")
	}
	change := in.AmountPaid.Sub(total).Round(2)

	saleID := uuid.New().String()
	invoiceNumber := docnum.Invoice(now)

	sale := &entity.PharmacySale{
		ID:                 saleID,
		StoreID:            in.StoreID,
		InvoiceNumber:      invoiceNumber,
		CustomerName:       in.CustomerName,
		CustomerPhone:      in.CustomerPhone,
		HasPrescription:    in.HasPrescription,
		PrescriptionNumber: in.PrescriptionNumber,
		PrescriberName:     in.PrescriberName,
		DispenserID:        dispenserID,
		Subtotal:           subtotal.Round(2),
		DiscountAmount:     discount.Round(2),
		TaxAmount:          decimal.Zero.Round(2),
		Total:              total,
		PaymentMethod:      in.PaymentMethod,
		AmountPaid:         in.AmountPaid.Round(2),
		ChangeAmount:       change,
		Status:             entity.SaleStatusCompleted,
		Notes:              in.Notes,
		CreatedAt:          now,
	}
	var items []*entity.PharmacySaleItem

	err = uc.txRunner.RunDispense(ctx, func(
		saleRepo repository.PharmacySaleRepository,
		batchRepo repository.BatchRepository,
		medMovRepo repository.MedicineStockMovementRepository,
		registerRepo repository.ControlledRegisterRepository,
		paymentRepo repository.PaymentRepository,
	) error {
		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		for _, l := range lines {
			batch := l.selection.Batch
			// Bajo el lock se re-valida vencimiento, bloqueo y cantidad: si
			// una venta concurrente ganó el último stock, esta falla completa.
			_, locked, err := uc.ledger.ApplyDispenseOutInTx(
				batchRepo, medMovRepo, batch.ID, l.quantity,
				saleID, invoiceNumber, dispenserID, now,
			)
			if err != nil {
				return err
			}

			if l.medicine.IsControlled() {
				entry := &entity.ControlledRegisterEntry{
					ID:                 uuid.New().String(),
					MedicineID:         l.medicine.ID,
					BatchID:            locked.ID,
					TransactionType:    entity.RegisterTypeDispensing,
					Quantity:           l.quantity,
					Balance:            locked.Quantity,
					CustomerName:       in.CustomerName,
					PrescriptionNumber: in.PrescriptionNumber,
					PrescriberName:     in.PrescriberName,
					PharmacySaleID:     saleID,
					DispensedByID:      dispenserID,
					CreatedAt:          now,
				}
				if err := registerRepo.Create(entry); err != nil {
					return err
				}
			}

			item := &entity.PharmacySaleItem{
				ID:                   uuid.New().String(),
				SaleID:               saleID,
				MedicineID:           l.medicine.ID,
				BatchID:              locked.ID,
				MedicineName:         l.medicine.BrandName,
				BatchNumber:          locked.BatchNumber,
				ExpiryDate:           locked.ExpiryDate,
				Quantity:             l.quantity,
				UnitPrice:            l.unitPrice,
				DiscountPercent:      l.discount,
				Subtotal:             l.lineNet.Round(2),
				RequiresPrescription: l.medicine.RequiresPrescription(),
				PrescriptionVerified: l.verified,
				CreatedAt:            now,
			}
			if err := saleRepo.CreateItem(item); err != nil {
				return err
			}
			items = append(items, item)
		}
		return paymentRepo.Create(&entity.Payment{
			ID:             uuid.New().String(),
			PharmacySaleID: saleID,
			Method:         in.PaymentMethod,
			Amount:         total,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := toPharmacySaleResponse(sale, items)
	resp.Warnings = warnings
	return resp, nil
}

// validateLines corre la puerta de receta y la asignación de lotes por línea.
// Solo lecturas: ninguna línea toca stock hasta la fase de commit.
func (uc *DispenseUseCase) validateLines(in dto.CreatePharmacySaleRequest, now time.Time) ([]dispenseLine, []string, error) {
	lines := make([]dispenseLine, 0, len(in.Items))
	var warnings []string
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, nil, domain.NewValidationError("quantity", "la cantidad debe ser mayor que cero")
		}
		if item.DiscountPercent.IsNegative() || item.DiscountPercent.GreaterThan(cien) {
			return nil, nil, domain.NewValidationError("discount_percent", "el descuento debe estar entre 0 y 100")
		}
		med, err := uc.medicineRepo.GetByID(item.MedicineID)
		if err != nil {
			return nil, nil, err
		}
		if med == nil {
			return nil, nil, domain.ErrNotFound
		}
		if !med.IsActive {
			return nil, nil, domain.NewValidationError("medicine_id", "el medicamento "+med.BrandName+" está inactivo")
		}

		// Puerta de receta: se rechaza antes de asignar stock.
		if err := domainpharma.CheckPrescriptionGate(med, item.PrescriptionVerified, in.HasPrescription); err != nil {
			return nil, nil, err
		}

		var sel *domainpharma.Selection
		if item.BatchID != "" {
			batch, err := uc.batchRepo.GetByID(item.BatchID)
			if err != nil {
				return nil, nil, err
			}
			sel, err = domainpharma.ValidateExplicitBatch(med, batch, item.Quantity, now)
			if err != nil {
				return nil, nil, err
			}
		} else {
			batches, err := uc.batchRepo.ListByMedicine(med.ID)
			if err != nil {
				return nil, nil, err
			}
			sel, err = domainpharma.SelectBatchFEFO(med, batches, item.Quantity, now)
			if err != nil {
				return nil, nil, err
			}
		}
		if sel.Warning != "" {
			warnings = append(warnings, sel.Warning)
		}

		unitPrice := sel.Batch.SellingPrice
		qty := decimal.NewFromInt(item.Quantity)
		gross := unitPrice.Mul(qty)
		disc := gross.Mul(item.DiscountPercent).Div(cien)
		lines = append(lines, dispenseLine{
			medicine:  med,
			selection: sel,
			quantity:  item.Quantity,
			discount:  item.DiscountPercent,
			unitPrice: unitPrice,
			lineGross: gross,
			lineDisc:  disc,
			lineNet:   gross.Sub(disc),
			verified:  item.PrescriptionVerified,
		})
	}
	return lines, warnings, nil
}
