package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

var _ repository.MedicineRepository = (*MedicineRepo)(nil)

// Columnas de medicines en el orden que scanMedicine espera.
const medicineColumns = `
	id, COALESCE(category_id::text, ''), COALESCE(supplier_id::text, ''),
	brand_name, generic_name, medicine_type, sku, COALESCE(barcode, ''),
	schedule, dosage_form, strength, manufacturer, buying_price, selling_price,
	min_stock_level, reorder_level, is_active, created_at, updated_at`

// MedicineRepo implementación del puerto MedicineRepository sobre PostgreSQL (usable con pool o tx).
type MedicineRepo struct {
	q Querier
}

// NewMedicineRepository construye el adaptador de persistencia para medicamentos. Pasar pool o tx (Querier).
func NewMedicineRepository(q Querier) *MedicineRepo {
	return &MedicineRepo{q: q}
}

// Create persiste un nuevo medicamento.
func (r *MedicineRepo) Create(medicine *entity.Medicine) error {
	query := `
		INSERT INTO medicines (id, category_id, supplier_id, brand_name, generic_name,
			medicine_type, sku, barcode, schedule, dosage_form, strength, manufacturer,
			buying_price, selling_price, min_stock_level, reorder_level, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(context.Background(), query,
		medicine.ID, nullIfEmpty(medicine.CategoryID), nullIfEmpty(medicine.SupplierID),
		medicine.BrandName, medicine.GenericName, medicine.MedicineType, medicine.SKU,
		nullIfEmpty(medicine.Barcode), medicine.Schedule, medicine.DosageForm,
		medicine.Strength, medicine.Manufacturer, medicine.BuyingPrice, medicine.SellingPrice,
		medicine.MinStockLevel, medicine.ReorderLevel, medicine.IsActive,
		medicine.CreatedAt, medicine.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert medicine: %w", err)
	}
	return nil
}

// GetByID obtiene un medicamento por ID.
func (r *MedicineRepo) GetByID(id string) (*entity.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1`
	m, err := scanMedicine(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get medicine: %w", err)
	}
	return m, nil
}

// GetBySKU obtiene un medicamento por SKU.
func (r *MedicineRepo) GetBySKU(sku string) (*entity.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE sku = $1`
	m, err := scanMedicine(r.q.QueryRow(context.Background(), query, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get medicine by sku: %w", err)
	}
	return m, nil
}

// GetByBarcode obtiene un medicamento por código de barras.
func (r *MedicineRepo) GetByBarcode(barcode string) (*entity.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE barcode = $1`
	m, err := scanMedicine(r.q.QueryRow(context.Background(), query, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get medicine by barcode: %w", err)
	}
	return m, nil
}

// Update actualiza un medicamento. El SKU no se modifica.
func (r *MedicineRepo) Update(medicine *entity.Medicine) error {
	query := `
		UPDATE medicines SET category_id = $2, supplier_id = $3, brand_name = $4,
			generic_name = $5, medicine_type = $6, barcode = $7, schedule = $8,
			dosage_form = $9, strength = $10, manufacturer = $11, buying_price = $12,
			selling_price = $13, min_stock_level = $14, reorder_level = $15,
			is_active = $16, updated_at = $17
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		medicine.ID, nullIfEmpty(medicine.CategoryID), nullIfEmpty(medicine.SupplierID),
		medicine.BrandName, medicine.GenericName, medicine.MedicineType,
		nullIfEmpty(medicine.Barcode), medicine.Schedule, medicine.DosageForm,
		medicine.Strength, medicine.Manufacturer, medicine.BuyingPrice, medicine.SellingPrice,
		medicine.MinStockLevel, medicine.ReorderLevel, medicine.IsActive, medicine.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update medicine: %w", err)
	}
	return nil
}

// List filtra medicamentos por texto libre y/o clasificación, con paginación.
// Cadenas vacías desactivan el filtro correspondiente.
func (r *MedicineRepo) List(search, schedule string, limit, offset int) ([]*entity.Medicine, error) {
	query := `SELECT ` + medicineColumns + `
		FROM medicines
		WHERE ($1 = '' OR brand_name ILIKE '%' || $1 || '%' OR generic_name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR schedule = $2)
		ORDER BY brand_name ASC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, search, schedule, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()
	var list []*entity.Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Delete elimina un medicamento por ID. El caso de uso decide antes si procede
// el borrado físico o solo la desactivación.
func (r *MedicineRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM medicines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete medicine: %w", err)
	}
	return nil
}

// IsReferenced indica si el medicamento tiene lotes, ventas o movimientos.
func (r *MedicineRepo) IsReferenced(medicineID string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM batches WHERE medicine_id = $1)
		    OR EXISTS (SELECT 1 FROM pharmacy_sale_items WHERE medicine_id = $1)
		    OR EXISTS (SELECT 1 FROM medicine_stock_movements WHERE medicine_id = $1)`
	var referenced bool
	if err := r.q.QueryRow(context.Background(), query, medicineID).Scan(&referenced); err != nil {
		return false, fmt.Errorf("check medicine references: %w", err)
	}
	return referenced, nil
}

func scanMedicine(row pgx.Row) (*entity.Medicine, error) {
	var m entity.Medicine
	err := row.Scan(
		&m.ID, &m.CategoryID, &m.SupplierID, &m.BrandName, &m.GenericName,
		&m.MedicineType, &m.SKU, &m.Barcode, &m.Schedule, &m.DosageForm,
		&m.Strength, &m.Manufacturer, &m.BuyingPrice, &m.SellingPrice,
		&m.MinStockLevel, &m.ReorderLevel, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
