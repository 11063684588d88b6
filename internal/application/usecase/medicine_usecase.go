package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// MedicineUseCase casos de uso CRUD para el catálogo de farmacia. El catálogo
// no guarda existencias: TotalStock se deriva de los lotes dispensables y el
// stock solo cambia vía el libro de lotes.
type MedicineUseCase struct {
	repo         repository.MedicineRepository
	batchRepo    repository.BatchRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
}

// NewMedicineUseCase construye el caso de uso.
func NewMedicineUseCase(
	repo repository.MedicineRepository,
	batchRepo repository.BatchRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
) *MedicineUseCase {
	return &MedicineUseCase{
		repo:         repo,
		batchRepo:    batchRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
	}
}

// Create crea un medicamento. SKU y barcode son únicos en todo el catálogo.
func (uc *MedicineUseCase) Create(in dto.CreateMedicineRequest) (*dto.MedicineResponse, error) {
	existing, _ := uc.repo.GetBySKU(in.SKU)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.Barcode != "" {
		if existing, _ := uc.repo.GetByBarcode(in.Barcode); existing != nil {
			return nil, domain.ErrDuplicate
		}
	}
	if !entity.ValidSchedule(in.Schedule) {
		return nil, domain.NewValidationError("schedule", "clasificación desconocida: "+in.Schedule)
	}
	if in.BuyingPrice.IsNegative() || in.SellingPrice.IsNegative() {
		return nil, domain.NewValidationError("selling_price", "los precios no pueden ser negativos")
	}
	if err := uc.checkRefs(in.CategoryID, in.SupplierID); err != nil {
		return nil, err
	}

	medicineType := in.MedicineType
	if medicineType == "" {
		medicineType = entity.MedicineTypeGeneric
	}
	minStock := in.MinStockLevel
	if minStock == 0 {
		minStock = 10
	}
	reorder := in.ReorderLevel
	if reorder == 0 {
		reorder = 20
	}
	now := time.Now()
	medicine := &entity.Medicine{
		ID:            uuid.New().String(),
		CategoryID:    in.CategoryID,
		SupplierID:    in.SupplierID,
		BrandName:     in.BrandName,
		GenericName:   in.GenericName,
		MedicineType:  medicineType,
		SKU:           in.SKU,
		Barcode:       in.Barcode,
		Schedule:      in.Schedule,
		DosageForm:    in.DosageForm,
		Strength:      in.Strength,
		Manufacturer:  in.Manufacturer,
		BuyingPrice:   in.BuyingPrice,
		SellingPrice:  in.SellingPrice,
		MinStockLevel: minStock,
		ReorderLevel:  reorder,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(medicine); err != nil {
		return nil, err
	}
	// Recién creado no tiene lotes, el stock es 0.
	return toMedicineResponse(medicine, 0), nil
}

// GetByID obtiene un medicamento con su stock total derivado de los lotes.
func (uc *MedicineUseCase) GetByID(id string) (*dto.MedicineResponse, error) {
	medicine, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, domain.ErrNotFound
	}
	total, err := uc.totalStock(id, time.Now())
	if err != nil {
		return nil, err
	}
	return toMedicineResponse(medicine, total), nil
}

// GetByBarcode busca un medicamento por código de barras (escáner del mostrador).
func (uc *MedicineUseCase) GetByBarcode(barcode string) (*dto.MedicineResponse, error) {
	medicine, err := uc.repo.GetByBarcode(barcode)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, domain.ErrNotFound
	}
	total, err := uc.totalStock(medicine.ID, time.Now())
	if err != nil {
		return nil, err
	}
	return toMedicineResponse(medicine, total), nil
}

// Update actualiza un medicamento. SKU inmutable; el stock nunca se toca aquí.
func (uc *MedicineUseCase) Update(id string, in dto.UpdateMedicineRequest) (*dto.MedicineResponse, error) {
	medicine, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, domain.ErrNotFound
	}
	if in.Barcode != nil && *in.Barcode != medicine.Barcode {
		if *in.Barcode != "" {
			if existing, _ := uc.repo.GetByBarcode(*in.Barcode); existing != nil {
				return nil, domain.ErrDuplicate
			}
		}
		medicine.Barcode = *in.Barcode
	}
	if in.BrandName != nil {
		medicine.BrandName = *in.BrandName
	}
	if in.GenericName != nil {
		medicine.GenericName = *in.GenericName
	}
	if in.Schedule != nil {
		if !entity.ValidSchedule(*in.Schedule) {
			return nil, domain.NewValidationError("schedule", "clasificación desconocida: "+*in.Schedule)
		}
		medicine.Schedule = *in.Schedule
	}
	if in.MedicineType != nil {
		medicine.MedicineType = *in.MedicineType
	}
	if in.CategoryID != nil || in.SupplierID != nil {
		categoryID, supplierID := medicine.CategoryID, medicine.SupplierID
		if in.CategoryID != nil {
			categoryID = *in.CategoryID
		}
		if in.SupplierID != nil {
			supplierID = *in.SupplierID
		}
		if err := uc.checkRefs(categoryID, supplierID); err != nil {
			return nil, err
		}
		medicine.CategoryID, medicine.SupplierID = categoryID, supplierID
	}
	if in.DosageForm != nil {
		medicine.DosageForm = *in.DosageForm
	}
	if in.Strength != nil {
		medicine.Strength = *in.Strength
	}
	if in.Manufacturer != nil {
		medicine.Manufacturer = *in.Manufacturer
	}
	if in.BuyingPrice != nil {
		if in.BuyingPrice.IsNegative() {
			return nil, domain.NewValidationError("buying_price", "los precios no pueden ser negativos")
		}
		medicine.BuyingPrice = *in.BuyingPrice
	}
	if in.SellingPrice != nil {
		if in.SellingPrice.IsNegative() {
			return nil, domain.NewValidationError("selling_price", "los precios no pueden ser negativos")
		}
		medicine.SellingPrice = *in.SellingPrice
	}
	if in.MinStockLevel != nil {
		medicine.MinStockLevel = *in.MinStockLevel
	}
	if in.ReorderLevel != nil {
		medicine.ReorderLevel = *in.ReorderLevel
	}
	if in.IsActive != nil {
		medicine.IsActive = *in.IsActive
	}
	medicine.UpdatedAt = time.Now()
	if err := uc.repo.Update(medicine); err != nil {
		return nil, err
	}
	total, err := uc.totalStock(id, time.Now())
	if err != nil {
		return nil, err
	}
	return toMedicineResponse(medicine, total), nil
}

// List lista medicamentos filtrando por texto libre y/o clasificación.
func (uc *MedicineUseCase) List(search, schedule string, page dto.PageRequest) (*dto.MedicineListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(search, schedule, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	items := make([]dto.MedicineResponse, 0, len(list))
	for _, m := range list {
		total, err := uc.totalStock(m.ID, now)
		if err != nil {
			return nil, err
		}
		items = append(items, *toMedicineResponse(m, total))
	}
	return &dto.MedicineListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete aplica la política de borrado explícita: con historial de ventas,
// recepciones o lotes el medicamento solo se desactiva.
func (uc *MedicineUseCase) Delete(id string) (*dto.MessageResponse, error) {
	medicine, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, domain.ErrNotFound
	}
	referenced, err := uc.repo.IsReferenced(id)
	if err != nil {
		return nil, err
	}
	if referenced {
		medicine.IsActive = false
		medicine.UpdatedAt = time.Now()
		if err := uc.repo.Update(medicine); err != nil {
			return nil, err
		}
		return &dto.MessageResponse{Message: "medicamento desactivado: tiene lotes o historial"}, nil
	}
	if err := uc.repo.Delete(id); err != nil {
		return nil, err
	}
	return &dto.MessageResponse{Message: "medicamento eliminado"}, nil
}

// totalStock suma las cantidades de los lotes dispensables del medicamento.
func (uc *MedicineUseCase) totalStock(medicineID string, now time.Time) (int64, error) {
	batches, err := uc.batchRepo.ListByMedicine(medicineID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, b := range batches {
		if b.CanDispense(now) {
			total += b.Quantity
		}
	}
	return total, nil
}

// checkRefs valida que categoría y proveedor existan cuando vienen.
func (uc *MedicineUseCase) checkRefs(categoryID, supplierID string) error {
	if categoryID != "" {
		category, err := uc.categoryRepo.GetByID(categoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return domain.NewValidationError("category_id", "la categoría no existe")
		}
	}
	if supplierID != "" {
		supplier, err := uc.supplierRepo.GetByID(supplierID)
		if err != nil {
			return err
		}
		if supplier == nil {
			return domain.NewValidationError("supplier_id", "el proveedor no existe")
		}
	}
	return nil
}

func toMedicineResponse(m *entity.Medicine, totalStock int64) *dto.MedicineResponse {
	if m == nil {
		return nil
	}
	return &dto.MedicineResponse{
		ID:                   m.ID,
		BrandName:            m.BrandName,
		GenericName:          m.GenericName,
		SKU:                  m.SKU,
		Barcode:              m.Barcode,
		Schedule:             m.Schedule,
		MedicineType:         m.MedicineType,
		CategoryID:           m.CategoryID,
		SupplierID:           m.SupplierID,
		DosageForm:           m.DosageForm,
		Strength:             m.Strength,
		Manufacturer:         m.Manufacturer,
		BuyingPrice:          m.BuyingPrice,
		SellingPrice:         m.SellingPrice,
		MinStockLevel:        m.MinStockLevel,
		ReorderLevel:         m.ReorderLevel,
		TotalStock:           totalStock,
		RequiresPrescription: m.RequiresPrescription(),
		IsControlled:         m.IsControlled(),
		IsActive:             m.IsActive,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
