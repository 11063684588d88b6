package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Farmapos-api/internal/domain/inventory"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

var cien = decimal.NewFromInt(100)

// ProductUseCase casos de uso CRUD para productos del catálogo retail.
// El stock no se toca por aquí: solo el libro de movimientos muta existencias,
// con la única excepción del stock inicial al crear.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo}
}

// Create crea un producto validando unicidad de SKU y barcode por tienda y la
// jerarquía padre/hijo. El stock de un hijo queda anclado en 0.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	existing, _ := uc.repo.GetByStoreAndSKU(in.StoreID, in.SKU)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.Barcode != "" {
		if existing, _ := uc.repo.GetByStoreAndBarcode(in.StoreID, in.Barcode); existing != nil {
			return nil, domain.ErrDuplicate
		}
	}
	if err := uc.checkCategory(in.StoreID, in.CategoryID); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() || in.CostPrice.IsNegative() {
		return nil, domain.NewValidationError("price", "los precios no pueden ser negativos")
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(cien) {
		return nil, domain.NewValidationError("tax_rate", "la tasa de impuesto debe estar entre 0 y 100")
	}
	if in.StockQuantity.IsNegative() {
		return nil, domain.NewValidationError("stock_quantity", "el stock inicial no puede ser negativo")
	}

	unitQty := in.UnitQuantity
	if in.ProductType == entity.ProductTypeSimple && unitQty.IsZero() {
		unitQty = decimal.NewFromInt(1)
	}
	now := time.Now()
	product := &entity.Product{
		ID:              uuid.New().String(),
		StoreID:         in.StoreID,
		CategoryID:      in.CategoryID,
		SKU:             in.SKU,
		Barcode:         in.Barcode,
		Name:            in.Name,
		Description:     in.Description,
		ProductType:     in.ProductType,
		BaseUnit:        in.BaseUnit,
		UnitQuantity:    unitQty,
		ParentProductID: in.ParentProductID,
		Price:           in.Price,
		CostPrice:       in.CostPrice,
		TaxRate:         in.TaxRate,
		StockQuantity:   in.StockQuantity,
		MinStockLevel:   in.MinStockLevel,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	parent, err := uc.resolveHierarchy(product)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	return toProductResponse(product, parent), nil
}

// GetByID obtiene un producto con su stock efectivo calculado.
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product, uc.parentOf(product)), nil
}

// Update actualiza un producto. SKU y stock son inmutables por esta vía; la
// jerarquía se revalida completa si cambia el tipo o el padre.
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Barcode != nil && *in.Barcode != product.Barcode {
		if *in.Barcode != "" {
			if existing, _ := uc.repo.GetByStoreAndBarcode(product.StoreID, *in.Barcode); existing != nil {
				return nil, domain.ErrDuplicate
			}
		}
		product.Barcode = *in.Barcode
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(product.StoreID, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.ProductType != nil && *in.ProductType != product.ProductType {
		if product.IsParent() {
			hasChildren, err := uc.repo.HasChildren(product.ID)
			if err != nil {
				return nil, err
			}
			if hasChildren {
				return nil, domain.NewInvalidStateError("producto "+product.Name, "tiene presentaciones hijas que derivan su stock")
			}
		}
		product.ProductType = *in.ProductType
	}
	if in.BaseUnit != nil {
		product.BaseUnit = *in.BaseUnit
	}
	if in.UnitQuantity != nil {
		product.UnitQuantity = *in.UnitQuantity
	}
	if in.ParentProductID != nil {
		product.ParentProductID = *in.ParentProductID
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.NewValidationError("price", "los precios no pueden ser negativos")
		}
		product.Price = *in.Price
	}
	if in.CostPrice != nil {
		if in.CostPrice.IsNegative() {
			return nil, domain.NewValidationError("cost_price", "los precios no pueden ser negativos")
		}
		product.CostPrice = *in.CostPrice
	}
	if in.TaxRate != nil {
		if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(cien) {
			return nil, domain.NewValidationError("tax_rate", "la tasa de impuesto debe estar entre 0 y 100")
		}
		product.TaxRate = *in.TaxRate
	}
	if in.MinStockLevel != nil {
		product.MinStockLevel = *in.MinStockLevel
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}

	parent, err := uc.resolveHierarchy(product)
	if err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product, parent), nil
}

// List lista productos por tienda; search filtra por nombre, SKU o barcode y
// categoryID restringe a una categoría.
func (uc *ProductUseCase) List(storeID, search, categoryID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	var (
		list []*entity.Product
		err  error
	)
	switch {
	case search != "":
		list, err = uc.repo.SearchByStore(storeID, search, page.Limit)
	case categoryID != "":
		list, err = uc.repo.ListByCategory(categoryID, page.Limit, page.Offset)
	default:
		list, err = uc.repo.ListByStore(storeID, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entity.Product, len(list))
	for _, p := range list {
		byID[p.ID] = p
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		var parent *entity.Product
		if p.IsChild() {
			parent = byID[p.ParentProductID]
			if parent == nil {
				parent, _ = uc.repo.GetByID(p.ParentProductID)
			}
		}
		items = append(items, *toProductResponse(p, parent))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListChildren lista las presentaciones hijas de un producto a granel.
func (uc *ProductUseCase) ListChildren(parentID string) ([]dto.ProductResponse, error) {
	parent, err := uc.repo.GetByID(parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, domain.ErrNotFound
	}
	children, err := uc.repo.ListChildren(parentID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(children))
	for _, c := range children {
		items = append(items, *toProductResponse(c, parent))
	}
	return items, nil
}

// Delete aplica la política de borrado explícita: un producto con hijos no se
// borra; uno con historial de ventas o movimientos solo se desactiva; el
// resto se elimina físicamente.
func (uc *ProductUseCase) Delete(id string) (*dto.MessageResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	hasChildren, err := uc.repo.HasChildren(id)
	if err != nil {
		return nil, err
	}
	if hasChildren {
		return nil, domain.NewInvalidStateError("producto "+product.Name, "tiene presentaciones hijas que derivan su stock")
	}
	referenced, err := uc.repo.IsReferenced(id)
	if err != nil {
		return nil, err
	}
	if referenced {
		product.IsActive = false
		product.UpdatedAt = time.Now()
		if err := uc.repo.Update(product); err != nil {
			return nil, err
		}
		return &dto.MessageResponse{Message: "producto desactivado: tiene historial de ventas o movimientos"}, nil
	}
	if err := uc.repo.Delete(id); err != nil {
		return nil, err
	}
	return &dto.MessageResponse{Message: "producto eliminado"}, nil
}

// checkCategory valida que la categoría exista y pertenezca a la tienda.
func (uc *ProductUseCase) checkCategory(storeID, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	category, err := uc.categoryRepo.GetByID(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return domain.NewValidationError("category_id", "la categoría no existe")
	}
	if category.StoreID != storeID {
		return domain.NewValidationError("category_id", "la categoría no pertenece a la tienda")
	}
	return nil
}

// resolveHierarchy valida la relación padre/hijo del producto y devuelve el
// padre cargado cuando aplica. Un hijo queda con stock propio anclado en 0.
func (uc *ProductUseCase) resolveHierarchy(p *entity.Product) (*entity.Product, error) {
	var parent *entity.Product
	if p.ProductType == entity.ProductTypeChild {
		if p.ParentProductID == p.ID {
			return nil, domain.NewValidationError("parent_product_id", "un producto no puede ser su propio padre")
		}
		if p.ParentProductID != "" {
			loaded, err := uc.repo.GetByID(p.ParentProductID)
			if err != nil {
				return nil, err
			}
			if loaded == nil {
				return nil, domain.NewValidationError("parent_product_id", "el producto padre no existe")
			}
			if loaded.StoreID != p.StoreID {
				return nil, domain.NewValidationError("parent_product_id", "el padre no pertenece a la tienda")
			}
			if !loaded.IsParent() {
				return nil, domain.NewValidationError("parent_product_id", "el padre debe ser un producto a granel")
			}
			parent = loaded
		}
	}
	if err := domaininv.ValidateHierarchy(p); err != nil {
		return nil, err
	}
	if p.IsChild() {
		p.StockQuantity = decimal.Zero
	}
	return parent, nil
}

// parentOf carga el padre de un hijo; nil para simple/parent.
func (uc *ProductUseCase) parentOf(p *entity.Product) *entity.Product {
	if !p.IsChild() || p.ParentProductID == "" {
		return nil
	}
	parent, _ := uc.repo.GetByID(p.ParentProductID)
	return parent
}

func toProductResponse(p *entity.Product, parent *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	effective, err := domaininv.EffectiveQuantity(p, parent)
	if err != nil {
		// Jerarquía rota: se reporta sin stock para que el problema se vea.
		effective = decimal.Zero
	}
	return &dto.ProductResponse{
		ID:              p.ID,
		StoreID:         p.StoreID,
		CategoryID:      p.CategoryID,
		SKU:             p.SKU,
		Barcode:         p.Barcode,
		Name:            p.Name,
		Description:     p.Description,
		ProductType:     p.ProductType,
		BaseUnit:        p.BaseUnit,
		UnitQuantity:    p.UnitQuantity,
		ParentProductID: p.ParentProductID,
		Price:           p.Price,
		CostPrice:       p.CostPrice,
		TaxRate:         p.TaxRate,
		StockQuantity:   p.StockQuantity,
		EffectiveStock:  effective,
		MinStockLevel:   p.MinStockLevel,
		IsLowStock:      effective.LessThanOrEqual(p.MinStockLevel),
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
