package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Farmapos-api/internal/domain/inventory"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// listAllLimit tope de productos considerados para el reporte de mínimos.
const listAllLimit = 10000

// LowStockUseCase lista los productos bajo su stock mínimo usando el stock
// vendible real: los hijos se evalúan contra las unidades derivadas del padre.
type LowStockUseCase struct {
	productRepo repository.ProductRepository
}

// NewLowStockUseCase construye el caso de uso.
func NewLowStockUseCase(productRepo repository.ProductRepository) *LowStockUseCase {
	return &LowStockUseCase{productRepo: productRepo}
}

// ListLowStock devuelve los productos activos bajo su mínimo, los más
// deficitarios primero. Un hijo con jerarquía rota cuenta como stock cero
// para que el problema salga en el reporte en vez de esconderse.
func (uc *LowStockUseCase) ListLowStock(storeID string) ([]dto.LowStockItemDTO, error) {
	products, err := uc.productRepo.ListByStore(storeID, listAllLimit, 0)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]dto.LowStockItemDTO, 0)
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		var parent *entity.Product
		if p.IsChild() {
			parent = byID[p.ParentProductID]
			if parent == nil && p.ParentProductID != "" {
				parent, err = uc.productRepo.GetByID(p.ParentProductID)
				if err != nil {
					return nil, err
				}
			}
		}
		effective, effErr := domaininv.EffectiveQuantity(p, parent)
		if effErr != nil {
			effective = decimal.Zero
		}
		if effective.GreaterThan(p.MinStockLevel) {
			continue
		}
		items = append(items, dto.LowStockItemDTO{
			ProductID:      p.ID,
			SKU:            p.SKU,
			Name:           p.Name,
			ProductType:    p.ProductType,
			EffectiveStock: effective,
			MinStockLevel:  p.MinStockLevel,
		})
	}

	// Mayor déficit primero.
	sort.SliceStable(items, func(i, j int) bool {
		defI := items[i].MinStockLevel.Sub(items[i].EffectiveStock)
		defJ := items[j].MinStockLevel.Sub(items[j].EffectiveStock)
		return defI.GreaterThan(defJ)
	})
	return items, nil
}
