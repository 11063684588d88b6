package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
	"github.com/jhoicas/Farmapos-api/pkg/docnum"
)

// ReceivingUseCase registra recepciones de mercancía farmacéutica: crea o
// repone lotes, deja los movimientos de entrada y asienta los medicamentos
// controlados, todo en una sola transacción.
type ReceivingUseCase struct {
	txRunner      ReceivingTxRunner
	ledger        *BatchLedgerUseCase
	storeRepo     repository.StoreRepository
	supplierRepo  repository.SupplierRepository
	medicineRepo  repository.MedicineRepository
	receivingRepo repository.ReceivingRepository
}

// NewReceivingUseCase construye el caso de uso.
func NewReceivingUseCase(
	txRunner ReceivingTxRunner,
	ledger *BatchLedgerUseCase,
	storeRepo repository.StoreRepository,
	supplierRepo repository.SupplierRepository,
	medicineRepo repository.MedicineRepository,
	receivingRepo repository.ReceivingRepository,
) *ReceivingUseCase {
	return &ReceivingUseCase{
		txRunner:      txRunner,
		ledger:        ledger,
		storeRepo:     storeRepo,
		supplierRepo:  supplierRepo,
		medicineRepo:  medicineRepo,
		receivingRepo: receivingRepo,
	}
}

// CreateReceiving valida y confirma una recepción completa.
func (uc *ReceivingUseCase) CreateReceiving(ctx context.Context, userID string, in dto.CreateReceivingRequest) (*dto.ReceivingResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "la recepción necesita al menos una línea")
	}
	store, err := uc.storeRepo.GetByID(in.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrNotFound
	}
	if in.SupplierID != "" {
		supplier, err := uc.supplierRepo.GetByID(in.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, domain.ErrNotFound
		}
	}

	// Medicamentos fuera de la tx, solo lectura.
	medsByID := make(map[string]*entity.Medicine)
	for i := range in.Items {
		item := &in.Items[i]
		if item.Quantity <= 0 {
			return nil, domain.NewValidationError("quantity", "la cantidad recibida debe ser mayor que cero")
		}
		if item.BatchNumber == "" {
			return nil, domain.NewValidationError("batch_number", "el número de lote es obligatorio")
		}
		if item.ExpiryDate.IsZero() {
			return nil, domain.NewValidationError("expiry_date", "la fecha de vencimiento es obligatoria")
		}
		if item.PurchasePrice.IsNegative() || item.SellingPrice.IsNegative() {
			return nil, domain.NewValidationError("price", "los precios no pueden ser negativos")
		}
		if _, ok := medsByID[item.MedicineID]; ok {
			continue
		}
		med, err := uc.medicineRepo.GetByID(item.MedicineID)
		if err != nil {
			return nil, err
		}
		if med == nil {
			return nil, domain.ErrNotFound
		}
		if !med.IsActive {
			return nil, domain.NewValidationError("medicine_id", "el medicamento "+med.BrandName+" está inactivo")
		}
		medsByID[item.MedicineID] = med
	}

	now := time.Now()
	receivingID := uuid.New().String()
	number := docnum.Receiving(now)

	var header *entity.StockReceiving
	var lines []*entity.StockReceivingItem

	err = uc.txRunner.RunReceiving(ctx, func(
		receivingRepo repository.ReceivingRepository,
		batchRepo repository.BatchRepository,
		medMovRepo repository.MedicineStockMovementRepository,
		registerRepo repository.ControlledRegisterRepository,
	) error {
		totalCost := decimal.Zero
		for _, item := range in.Items {
			totalCost = totalCost.Add(item.PurchasePrice.Mul(decimal.NewFromInt(item.Quantity)))
		}
		header = &entity.StockReceiving{
			ID:                    receivingID,
			StoreID:               in.StoreID,
			ReceivingNumber:       number,
			SupplierID:            in.SupplierID,
			SupplierInvoiceNumber: in.SupplierInvoiceNumber,
			TotalCost:             totalCost.Round(2),
			Notes:                 in.Notes,
			ReceivedByID:          userID,
			CreatedAt:             now,
		}
		if err := receivingRepo.Create(header); err != nil {
			return err
		}

		for _, item := range in.Items {
			med := medsByID[item.MedicineID]
			batch, err := batchRepo.GetByMedicineAndNumber(item.MedicineID, item.BatchNumber)
			if err != nil {
				return err
			}
			if batch == nil {
				batch = &entity.Batch{
					ID:            uuid.New().String(),
					MedicineID:    item.MedicineID,
					BatchNumber:   item.BatchNumber,
					ExpiryDate:    item.ExpiryDate,
					PurchasePrice: item.PurchasePrice,
					SellingPrice:  item.SellingPrice,
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				if err := batchRepo.Create(batch); err != nil {
					return err
				}
			}

			mov, updated, err := uc.ledger.ApplyDeltaInTx(batchRepo, medMovRepo, BatchMovementInput{
				BatchID:      batch.ID,
				MovementType: entity.MovementTypeReceiving,
				Delta:        item.Quantity,
				ReceivingID:  receivingID,
				Reference:    number,
				UserID:       userID,
				GrowInitial:  true,
			}, now)
			if err != nil {
				return err
			}

			line := &entity.StockReceivingItem{
				ID:            uuid.New().String(),
				ReceivingID:   receivingID,
				MedicineID:    item.MedicineID,
				BatchID:       updated.ID,
				BatchNumber:   updated.BatchNumber,
				ExpiryDate:    updated.ExpiryDate,
				Quantity:      item.Quantity,
				PurchasePrice: item.PurchasePrice,
				SellingPrice:  item.SellingPrice,
				LineCost:      item.PurchasePrice.Mul(decimal.NewFromInt(item.Quantity)).Round(2),
				CreatedAt:     now,
			}
			if err := receivingRepo.CreateItem(line); err != nil {
				return err
			}
			lines = append(lines, line)

			if med.IsControlled() {
				entry := &entity.ControlledRegisterEntry{
					ID:              uuid.New().String(),
					MedicineID:      med.ID,
					BatchID:         updated.ID,
					TransactionType: entity.RegisterTypeReceiving,
					Quantity:        mov.Quantity,
					Balance:         updated.Quantity,
					ReceivingID:     receivingID,
					DispensedByID:   userID,
					CreatedAt:       now,
				}
				if err := registerRepo.Create(entry); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toReceivingResponse(header, lines), nil
}

// GetReceiving devuelve una recepción con sus líneas.
func (uc *ReceivingUseCase) GetReceiving(id string) (*dto.ReceivingResponse, error) {
	header, err := uc.receivingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.receivingRepo.GetItemsByReceivingID(id)
	if err != nil {
		return nil, err
	}
	return toReceivingResponse(header, lines), nil
}

// ListReceivings devuelve las recepciones de una tienda.
func (uc *ReceivingUseCase) ListReceivings(storeID string, from, to *time.Time, page dto.PageRequest) (*dto.ReceivingListResponse, error) {
	page.DefaultPage()
	headers, err := uc.receivingRepo.List(storeID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReceivingResponse, 0, len(headers))
	for _, h := range headers {
		lines, err := uc.receivingRepo.GetItemsByReceivingID(h.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, *toReceivingResponse(h, lines))
	}
	return &dto.ReceivingListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toReceivingResponse(h *entity.StockReceiving, lines []*entity.StockReceivingItem) *dto.ReceivingResponse {
	items := make([]dto.ReceivingItemResponse, 0, len(lines))
	for _, l := range lines {
		items = append(items, dto.ReceivingItemResponse{
			ID:            l.ID,
			MedicineID:    l.MedicineID,
			BatchID:       l.BatchID,
			BatchNumber:   l.BatchNumber,
			ExpiryDate:    l.ExpiryDate,
			Quantity:      l.Quantity,
			PurchasePrice: l.PurchasePrice,
			SellingPrice:  l.SellingPrice,
			LineCost:      l.LineCost,
		})
	}
	return &dto.ReceivingResponse{
		ID:                    h.ID,
		StoreID:               h.StoreID,
		ReceivingNumber:       h.ReceivingNumber,
		SupplierID:            h.SupplierID,
		SupplierInvoiceNumber: h.SupplierInvoiceNumber,
		TotalCost:             h.TotalCost,
		Notes:                 h.Notes,
		ReceivedByID:          h.ReceivedByID,
		Items:                 items,
		CreatedAt:             h.CreatedAt,
	}
}
