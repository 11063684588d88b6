package usecase

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Farmapos-api/internal/application/dto"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Farmapos-api/internal/domain/inventory"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

// ImportUseCase importa catálogos desde CSV. Los archivos exportados por los
// sistemas POS viejos suelen venir en ISO-8859-1, por eso el decodificador es
// opcional por bandera. Las filas con error se saltan y se reportan, nunca
// abortan la importación completa.
type ImportUseCase struct {
	productRepo  repository.ProductRepository
	medicineRepo repository.MedicineRepository
}

// NewImportUseCase construye el caso de uso.
func NewImportUseCase(productRepo repository.ProductRepository, medicineRepo repository.MedicineRepository) *ImportUseCase {
	return &ImportUseCase{productRepo: productRepo, medicineRepo: medicineRepo}
}

// csvTable lee un CSV completo con cabecera y acceso por nombre de columna.
type csvTable struct {
	cols map[string]int
	rows [][]string
}

func readCSV(r io.Reader, latin1 bool) (*csvTable, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, domain.NewValidationError("csv", "no se pudo leer la cabecera: "+err.Error())
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domain.NewValidationError("csv", "archivo malformado: "+err.Error())
		}
		rows = append(rows, row)
	}
	return &csvTable{cols: cols, rows: rows}, nil
}

// cell devuelve la celda de la columna nombrada, vacía si no existe.
func (t *csvTable) cell(row []string, name string) string {
	i, ok := t.cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	// Los exports viejos usan coma decimal.
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

// ImportProductsCSV importa productos para una tienda, con upsert por SKU.
// Columnas: sku, name, description, product_type, base_unit, unit_quantity,
// parent_sku, price, cost_price, tax_rate, stock_quantity, min_stock_level,
// barcode. Los hijos se procesan al final para que el padre exista aunque
// venga después en el archivo.
func (uc *ImportUseCase) ImportProductsCSV(storeID string, r io.Reader, latin1 bool) (*dto.ImportResultResponse, error) {
	table, err := readCSV(r, latin1)
	if err != nil {
		return nil, err
	}
	if _, ok := table.cols["sku"]; !ok {
		return nil, domain.NewValidationError("csv", "falta la columna sku")
	}

	result := &dto.ImportResultResponse{}
	type pendingRow struct {
		row []string
		n   int
	}
	var children []pendingRow
	for i, row := range table.rows {
		if table.cell(row, "product_type") == entity.ProductTypeChild {
			children = append(children, pendingRow{row: row, n: i + 2})
			continue
		}
		uc.importProductRow(storeID, table, row, i+2, result)
	}
	for _, p := range children {
		uc.importProductRow(storeID, table, p.row, p.n, result)
	}
	return result, nil
}

func (uc *ImportUseCase) importProductRow(storeID string, table *csvTable, row []string, line int, result *dto.ImportResultResponse) {
	fail := func(reason string) {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("fila %d: %s", line, reason))
	}

	sku := table.cell(row, "sku")
	name := table.cell(row, "name")
	if sku == "" || name == "" {
		fail("sku y name son obligatorios")
		return
	}
	price, err := parseDecimal(table.cell(row, "price"))
	if err != nil {
		fail("price inválido: " + table.cell(row, "price"))
		return
	}
	cost, err := parseDecimal(table.cell(row, "cost_price"))
	if err != nil {
		fail("cost_price inválido: " + table.cell(row, "cost_price"))
		return
	}
	taxRate, err := parseDecimal(table.cell(row, "tax_rate"))
	if err != nil {
		fail("tax_rate inválido: " + table.cell(row, "tax_rate"))
		return
	}
	stock, err := parseDecimal(table.cell(row, "stock_quantity"))
	if err != nil {
		fail("stock_quantity inválido: " + table.cell(row, "stock_quantity"))
		return
	}
	minStock, err := parseDecimal(table.cell(row, "min_stock_level"))
	if err != nil {
		fail("min_stock_level inválido: " + table.cell(row, "min_stock_level"))
		return
	}
	unitQty, err := parseDecimal(table.cell(row, "unit_quantity"))
	if err != nil {
		fail("unit_quantity inválido: " + table.cell(row, "unit_quantity"))
		return
	}
	if unitQty.IsZero() {
		unitQty = decimal.NewFromInt(1)
	}

	productType := table.cell(row, "product_type")
	if productType == "" {
		productType = entity.ProductTypeSimple
	}
	if !entity.ValidProductType(productType) {
		fail("tipo de producto desconocido: " + productType)
		return
	}
	parentID := ""
	if productType == entity.ProductTypeChild {
		parentSKU := table.cell(row, "parent_sku")
		if parentSKU == "" {
			fail("un producto hijo necesita parent_sku")
			return
		}
		parent, err := uc.productRepo.GetByStoreAndSKU(storeID, parentSKU)
		if err != nil || parent == nil {
			fail("no existe el padre con SKU " + parentSKU)
			return
		}
		parentID = parent.ID
	}

	now := time.Now()
	existing, err := uc.productRepo.GetByStoreAndSKU(storeID, sku)
	if err != nil {
		fail(err.Error())
		return
	}
	if existing != nil {
		existing.Name = name
		existing.Description = table.cell(row, "description")
		existing.Barcode = table.cell(row, "barcode")
		existing.Price = price
		existing.CostPrice = cost
		existing.TaxRate = taxRate
		existing.MinStockLevel = minStock
		existing.UpdatedAt = now
		// El stock existente no se pisa: eso es del libro de movimientos.
		if err := uc.productRepo.Update(existing); err != nil {
			fail(err.Error())
			return
		}
		result.Updated++
		return
	}

	product := &entity.Product{
		ID:              uuid.New().String(),
		StoreID:         storeID,
		SKU:             sku,
		Barcode:         table.cell(row, "barcode"),
		Name:            name,
		Description:     table.cell(row, "description"),
		ProductType:     productType,
		BaseUnit:        table.cell(row, "base_unit"),
		UnitQuantity:    unitQty,
		ParentProductID: parentID,
		Price:           price,
		CostPrice:       cost,
		TaxRate:         taxRate,
		StockQuantity:   stock,
		MinStockLevel:   minStock,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := domaininv.ValidateHierarchy(product); err != nil {
		fail(err.Error())
		return
	}
	if product.IsChild() {
		product.StockQuantity = decimal.Zero
	}
	if err := uc.productRepo.Create(product); err != nil {
		fail(err.Error())
		return
	}
	result.Created++
}

// ImportMedicinesCSV importa el catálogo de farmacia, con upsert por SKU.
// Columnas: sku, brand_name, generic_name, schedule, medicine_type,
// dosage_form, strength, manufacturer, buying_price, selling_price,
// min_stock_level, reorder_level, barcode.
func (uc *ImportUseCase) ImportMedicinesCSV(r io.Reader, latin1 bool) (*dto.ImportResultResponse, error) {
	table, err := readCSV(r, latin1)
	if err != nil {
		return nil, err
	}
	if _, ok := table.cols["sku"]; !ok {
		return nil, domain.NewValidationError("csv", "falta la columna sku")
	}

	result := &dto.ImportResultResponse{}
	for i, row := range table.rows {
		uc.importMedicineRow(table, row, i+2, result)
	}
	return result, nil
}

func (uc *ImportUseCase) importMedicineRow(table *csvTable, row []string, line int, result *dto.ImportResultResponse) {
	fail := func(reason string) {
		result.Skipped++
		result.Errors = append(result.Errors, fmt.Sprintf("fila %d: %s", line, reason))
	}

	sku := table.cell(row, "sku")
	brand := table.cell(row, "brand_name")
	generic := table.cell(row, "generic_name")
	if sku == "" || brand == "" {
		fail("sku y brand_name son obligatorios")
		return
	}
	schedule := table.cell(row, "schedule")
	if schedule == "" {
		schedule = entity.ScheduleOTC
	}
	if !entity.ValidSchedule(schedule) {
		fail("clasificación desconocida: " + schedule)
		return
	}
	buying, err := parseDecimal(table.cell(row, "buying_price"))
	if err != nil {
		fail("buying_price inválido: " + table.cell(row, "buying_price"))
		return
	}
	selling, err := parseDecimal(table.cell(row, "selling_price"))
	if err != nil {
		fail("selling_price inválido: " + table.cell(row, "selling_price"))
		return
	}
	minStock, err := parseDecimal(table.cell(row, "min_stock_level"))
	if err != nil {
		fail("min_stock_level inválido")
		return
	}
	reorder, err := parseDecimal(table.cell(row, "reorder_level"))
	if err != nil {
		fail("reorder_level inválido")
		return
	}

	now := time.Now()
	existing, err := uc.medicineRepo.GetBySKU(sku)
	if err != nil {
		fail(err.Error())
		return
	}
	if existing != nil {
		existing.BrandName = brand
		if generic != "" {
			existing.GenericName = generic
		}
		existing.Schedule = schedule
		existing.Barcode = table.cell(row, "barcode")
		existing.DosageForm = table.cell(row, "dosage_form")
		existing.Strength = table.cell(row, "strength")
		existing.Manufacturer = table.cell(row, "manufacturer")
		existing.BuyingPrice = buying
		existing.SellingPrice = selling
		existing.UpdatedAt = now
		if err := uc.medicineRepo.Update(existing); err != nil {
			fail(err.Error())
			return
		}
		result.Updated++
		return
	}

	medicineType := table.cell(row, "medicine_type")
	if medicineType == "" {
		medicineType = entity.MedicineTypeGeneric
	}
	medicine := &entity.Medicine{
		ID:            uuid.New().String(),
		BrandName:     brand,
		GenericName:   generic,
		MedicineType:  medicineType,
		SKU:           sku,
		Barcode:       table.cell(row, "barcode"),
		Schedule:      schedule,
		DosageForm:    table.cell(row, "dosage_form"),
		Strength:      table.cell(row, "strength"),
		Manufacturer:  table.cell(row, "manufacturer"),
		BuyingPrice:   buying,
		SellingPrice:  selling,
		MinStockLevel: minStock.IntPart(),
		ReorderLevel:  reorder.IntPart(),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if medicine.MinStockLevel == 0 {
		medicine.MinStockLevel = 10
	}
	if medicine.ReorderLevel == 0 {
		medicine.ReorderLevel = 20
	}
	if err := uc.medicineRepo.Create(medicine); err != nil {
		fail(err.Error())
		return
	}
	result.Created++
}
