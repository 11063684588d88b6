package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// Columnas de products en el orden que scanProduct espera. Los tres campos
// opcionales (categoría, barcode, padre) se guardan como NULL y se leen como ''.
const productColumns = `
	id, store_id, COALESCE(category_id::text, ''), sku, COALESCE(barcode, ''),
	name, description, product_type, base_unit, unit_quantity, conversion_factor,
	COALESCE(parent_product_id::text, ''), price, cost_price, tax_rate,
	stock_quantity, min_stock_level, is_active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto con su stock inicial.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (id, store_id, category_id, sku, barcode, name, description,
			product_type, base_unit, unit_quantity, conversion_factor, parent_product_id,
			price, cost_price, tax_rate, stock_quantity, min_stock_level, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.StoreID, nullIfEmpty(product.CategoryID), product.SKU,
		nullIfEmpty(product.Barcode), product.Name, product.Description,
		product.ProductType, product.BaseUnit, product.UnitQuantity, product.ConversionFactor,
		nullIfEmpty(product.ParentProductID), product.Price, product.CostPrice, product.TaxRate,
		product.StockQuantity, product.MinStockLevel, product.IsActive,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetForUpdate obtiene un producto y bloquea la fila (SELECT FOR UPDATE).
// Solo tiene sentido dentro de una transacción.
func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

// GetByStoreAndSKU obtiene un producto por tienda y SKU.
func (r *ProductRepo) GetByStoreAndSKU(storeID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE store_id = $1 AND sku = $2`
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, storeID, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// GetByStoreAndBarcode obtiene un producto por tienda y código de barras.
func (r *ProductRepo) GetByStoreAndBarcode(storeID, barcode string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE store_id = $1 AND barcode = $2`
	p, err := scanProduct(r.q.QueryRow(context.Background(), query, storeID, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by barcode: %w", err)
	}
	return p, nil
}

// Update actualiza un producto. No toca SKU ni stock_quantity: el stock se
// mueve solo vía SetStock desde el libro de movimientos.
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products SET category_id = $2, barcode = $3, name = $4, description = $5,
			product_type = $6, base_unit = $7, unit_quantity = $8, conversion_factor = $9,
			parent_product_id = $10, price = $11, cost_price = $12, tax_rate = $13,
			min_stock_level = $14, is_active = $15, updated_at = $16
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, nullIfEmpty(product.CategoryID), nullIfEmpty(product.Barcode),
		product.Name, product.Description, product.ProductType, product.BaseUnit,
		product.UnitQuantity, product.ConversionFactor, nullIfEmpty(product.ParentProductID),
		product.Price, product.CostPrice, product.TaxRate, product.MinStockLevel,
		product.IsActive, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// SetStock fija el stock del producto en el valor dado. Lo llama únicamente
// el libro de movimientos, dentro de la misma transacción que el asiento.
func (r *ProductRepo) SetStock(productID string, quantity decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE products SET stock_quantity = $2, updated_at = now() WHERE id = $1`,
		productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("set product stock: %w", err)
	}
	return nil
}

// ListByStore lista productos de una tienda con paginación.
func (r *ProductRepo) ListByStore(storeID string, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products WHERE store_id = $1 ORDER BY name ASC LIMIT $2 OFFSET $3`
	return r.list(query, storeID, limit, offset)
}

// ListByCategory lista productos de una categoría con paginación.
func (r *ProductRepo) ListByCategory(categoryID string, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products WHERE category_id = $1 ORDER BY name ASC LIMIT $2 OFFSET $3`
	return r.list(query, categoryID, limit, offset)
}

// ListChildren lista las presentaciones hijas de un producto a granel.
func (r *ProductRepo) ListChildren(parentProductID string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products WHERE parent_product_id = $1 ORDER BY name ASC`
	return r.list(query, parentProductID)
}

// SearchByStore busca productos activos por nombre, SKU o código de barras.
func (r *ProductRepo) SearchByStore(storeID, search string, limit int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE store_id = $1 AND is_active = TRUE
		  AND (name ILIKE '%' || $2 || '%' OR sku ILIKE '%' || $2 || '%' OR barcode ILIKE '%' || $2 || '%')
		ORDER BY name ASC LIMIT $3`
	return r.list(query, storeID, search, limit)
}

// Delete elimina un producto por ID. El caso de uso decide antes si procede
// el borrado físico o solo la desactivación.
func (r *ProductRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// HasChildren indica si el producto tiene presentaciones hijas.
func (r *ProductRepo) HasChildren(productID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM products WHERE parent_product_id = $1)`, productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product children: %w", err)
	}
	return exists, nil
}

// IsReferenced indica si el producto aparece en ventas, movimientos u órdenes
// de compra. Un producto referenciado no se borra físicamente.
func (r *ProductRepo) IsReferenced(productID string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM sale_items WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM stock_movements WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM purchase_order_items WHERE product_id = $1)`
	var referenced bool
	if err := r.q.QueryRow(context.Background(), query, productID).Scan(&referenced); err != nil {
		return false, fmt.Errorf("check product references: %w", err)
	}
	return referenced, nil
}

func (r *ProductRepo) list(query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.StoreID, &p.CategoryID, &p.SKU, &p.Barcode,
		&p.Name, &p.Description, &p.ProductType, &p.BaseUnit, &p.UnitQuantity,
		&p.ConversionFactor, &p.ParentProductID, &p.Price, &p.CostPrice, &p.TaxRate,
		&p.StockQuantity, &p.MinStockLevel, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
