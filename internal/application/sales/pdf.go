package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// PDFUseCase genera el comprobante PDF de una venta minorista.
type PDFUseCase struct {
	saleRepo  repository.SaleRepository
	storeRepo repository.StoreRepository
	generator SalePDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	saleRepo repository.SaleRepository,
	storeRepo repository.StoreRepository,
	generator SalePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{saleRepo: saleRepo, storeRepo: storeRepo, generator: generator}
}

// DownloadSalePDF recupera la venta completa y genera su comprobante.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si la venta no existe.
func (uc *PDFUseCase) DownloadSalePDF(ctx context.Context, saleID string) (pdfBytes []byte, filename string, err error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, "", domain.ErrNotFound
	}
	items, err := uc.saleRepo.GetItemsBySaleID(saleID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener líneas: %w", err)
	}
	store, err := uc.storeRepo.GetByID(sale.StoreID)
	if err != nil || store == nil {
		return nil, "", fmt.Errorf("pdf: obtener tienda: %w", err)
	}

	pdfBytes, err = uc.generator.GenerateSalePDF(ctx, sale, items, store)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("venta_%s.pdf", sale.SaleNumber)
	return pdfBytes, filename, nil
}
