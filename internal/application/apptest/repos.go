// Package apptest provee repositorios en memoria para probar los casos de uso
// sin base de datos. Cada repositorio guarda copias (semántica de fila
// persistida: mutar el puntero devuelto no toca el almacén) y el DB simula el
// rollback restaurando una instantánea cuando la función transaccional falla.
package apptest

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Farmapos-api/internal/domain"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// ─────────────────────────────────────────────
// Tiendas, usuarios y proveedores
// ─────────────────────────────────────────────

// StoreRepo implementación en memoria de repository.StoreRepository.
type StoreRepo struct {
	rows map[string]*entity.Store
}

// Add inserta una copia de la tienda.
func (r *StoreRepo) Add(s *entity.Store) { c := *s; r.rows[s.ID] = &c }

// Get devuelve una copia de la fila o nil si no existe.
func (r *StoreRepo) Get(id string) *entity.Store {
	s, ok := r.rows[id]
	if !ok {
		return nil
	}
	c := *s
	return &c
}

func (r *StoreRepo) Create(s *entity.Store) error            { r.Add(s); return nil }
func (r *StoreRepo) GetByID(id string) (*entity.Store, error) { return r.Get(id), nil }

func (r *StoreRepo) GetDefault() (*entity.Store, error) {
	for _, s := range r.rows {
		if s.IsDefault {
			return r.Get(s.ID), nil
		}
	}
	return nil, nil
}

func (r *StoreRepo) Update(s *entity.Store) error { r.Add(s); return nil }

func (r *StoreRepo) List(limit, offset int) ([]*entity.Store, error) {
	var out []*entity.Store
	for _, s := range r.rows {
		out = append(out, r.Get(s.ID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

// UserRepo implementación en memoria de repository.UserRepository.
type UserRepo struct {
	rows map[string]*entity.User
}

// Add inserta una copia del usuario.
func (r *UserRepo) Add(u *entity.User) { c := *u; r.rows[u.ID] = &c }

// Get devuelve una copia de la fila o nil si no existe.
func (r *UserRepo) Get(id string) *entity.User {
	u, ok := r.rows[id]
	if !ok {
		return nil
	}
	c := *u
	return &c
}

func (r *UserRepo) Create(u *entity.User) error             { r.Add(u); return nil }
func (r *UserRepo) GetByID(id string) (*entity.User, error) { return r.Get(id), nil }

func (r *UserRepo) GetByUsername(username string) (*entity.User, error) {
	for _, u := range r.rows {
		if u.Username == username {
			return r.Get(u.ID), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range r.rows {
		if u.Email == email {
			return r.Get(u.ID), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(u *entity.User) error { r.Add(u); return nil }

func (r *UserRepo) ListByStore(storeID string, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.rows {
		if u.StoreID == storeID {
			out = append(out, r.Get(u.ID))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return page(out, limit, offset), nil
}

func (r *UserRepo) Delete(id string) error { delete(r.rows, id); return nil }

// SupplierRepo implementación en memoria de repository.SupplierRepository.
type SupplierRepo struct {
	rows map[string]*entity.Supplier
}

// Add inserta una copia del proveedor.
func (r *SupplierRepo) Add(s *entity.Supplier) { c := *s; r.rows[s.ID] = &c }

// Get devuelve una copia de la fila o nil si no existe.
func (r *SupplierRepo) Get(id string) *entity.Supplier {
	s, ok := r.rows[id]
	if !ok {
		return nil
	}
	c := *s
	return &c
}

func (r *SupplierRepo) Create(s *entity.Supplier) error            { r.Add(s); return nil }
func (r *SupplierRepo) GetByID(id string) (*entity.Supplier, error) { return r.Get(id), nil }
func (r *SupplierRepo) Update(s *entity.Supplier) error            { r.Add(s); return nil }

func (r *SupplierRepo) ListByStore(storeID string, limit, offset int) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	for _, s := range r.rows {
		if s.StoreID == storeID {
			out = append(out, r.Get(s.ID))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *SupplierRepo) Delete(id string) error { delete(r.rows, id); return nil }

// ─────────────────────────────────────────────
// Catálogo retail y libro de movimientos
// ─────────────────────────────────────────────

// ProductRepo implementación en memoria de repository.ProductRepository.
// Referenced marca productos con ventas o movimientos históricos para las
// pruebas del borrado físico vs desactivación.
type ProductRepo struct {
	rows       map[string]*entity.Product
	Referenced map[string]bool
}

// Add inserta una copia del producto.
func (r *ProductRepo) Add(p *entity.Product) { c := *p; r.rows[p.ID] = &c }

// Get devuelve una copia de la fila o nil si no existe.
func (r *ProductRepo) Get(id string) *entity.Product {
	p, ok := r.rows[id]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func (r *ProductRepo) Create(p *entity.Product) error              { r.Add(p); return nil }
func (r *ProductRepo) GetByID(id string) (*entity.Product, error)  { return r.Get(id), nil }
func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) { return r.Get(id), nil }

func (r *ProductRepo) GetByStoreAndSKU(storeID, sku string) (*entity.Product, error) {
	for _, p := range r.rows {
		if p.StoreID == storeID && p.SKU == sku {
			return r.Get(p.ID), nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) GetByStoreAndBarcode(storeID, barcode string) (*entity.Product, error) {
	if barcode == "" {
		return nil, nil
	}
	for _, p := range r.rows {
		if p.StoreID == storeID && p.Barcode == barcode {
			return r.Get(p.ID), nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) Update(p *entity.Product) error { r.Add(p); return nil }

func (r *ProductRepo) SetStock(productID string, quantity decimal.Decimal) error {
	p, ok := r.rows[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.StockQuantity = quantity
	return nil
}

func (r *ProductRepo) ListByStore(storeID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.rows {
		if p.StoreID == storeID {
			out = append(out, r.Get(p.ID))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *ProductRepo) ListByCategory(categoryID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.rows {
		if p.CategoryID == categoryID {
			out = append(out, r.Get(p.ID))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *ProductRepo) ListChildren(parentProductID string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.rows {
		if p.ParentProductID == parentProductID {
			out = append(out, r.Get(p.ID))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProductRepo) SearchByStore(storeID, query string, limit int) ([]*entity.Product, error) {
	q := strings.ToLower(query)
	var out []*entity.Product
	for _, p := range r.rows {
		if p.StoreID != storeID {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.SKU), q) {
			out = append(out, r.Get(p.ID))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, 0), nil
}

func (r *ProductRepo) Delete(id string) error { delete(r.rows, id); return nil }

func (r *ProductRepo) HasChildren(productID string) (bool, error) {
	for _, p := range r.rows {
		if p.ParentProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ProductRepo) IsReferenced(productID string) (bool, error) {
	return r.Referenced[productID], nil
}

func (r *ProductRepo) snapshot() map[string]entity.Product {
	snap := make(map[string]entity.Product, len(r.rows))
	for k, v := range r.rows {
		snap[k] = *v
	}
	return snap
}

func (r *ProductRepo) restore(snap map[string]entity.Product) {
	r.rows = make(map[string]*entity.Product, len(snap))
	for k, v := range snap {
		c := v
		r.rows[k] = &c
	}
}

// MovementRepo implementación en memoria de repository.StockMovementRepository.
// Solo inserción, como el libro real.
type MovementRepo struct {
	rows []*entity.StockMovement
}

func (r *MovementRepo) Create(m *entity.StockMovement) error {
	c := *m
	r.rows = append(r.rows, &c)
	return nil
}

func (r *MovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range r.rows {
		if m.ID == id {
			c := *m
			return &c, nil
		}
	}
	return nil, nil
}

func (r *MovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.rows {
		if m.ProductID == productID && inRange(m.CreatedAt, from, to) {
			c := *m
			out = append(out, &c)
		}
	}
	return page(out, limit, offset), nil
}

func (r *MovementRepo) ListBySale(saleID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.rows {
		if m.SaleID == saleID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

// All devuelve los asientos en orden de inserción; solo lectura.
func (r *MovementRepo) All() []*entity.StockMovement { return r.rows }

func (r *MovementRepo) snapshot() int { return len(r.rows) }
func (r *MovementRepo) restore(n int) { r.rows = r.rows[:n] }

// ─────────────────────────────────────────────
// Farmacia: medicamentos, lotes y movimientos
// ─────────────────────────────────────────────

// MedicineRepo implementación en memoria de repository.MedicineRepository.
type MedicineRepo struct {
	rows       map[string]*entity.Medicine
	Referenced map[string]bool
}

// Add inserta una copia del medicamento.
func (r *MedicineRepo) Add(m *entity.Medicine) { c := *m; r.rows[m.ID] = &c }

// Get devuelve una copia de la fila o nil si no existe.
func (r *MedicineRepo) Get(id string) *entity.Medicine {
	m, ok := r.rows[id]
	if !ok {
		return nil
	}
	c := *m
	return &c
}

func (r *MedicineRepo) Create(m *entity.Medicine) error             { r.Add(m); return nil }
func (r *MedicineRepo) GetByID(id string) (*entity.Medicine, error) { return r.Get(id), nil }

func (r *MedicineRepo) GetBySKU(sku string) (*entity.Medicine, error) {
	for _, m := range r.rows {
		if m.SKU == sku {
			return r.Get(m.ID), nil
		}
	}
	return nil, nil
}

func (r *MedicineRepo) GetByBarcode(barcode string) (*entity.Medicine, error) {
	if barcode == "" {
		return nil, nil
	}
	for _, m := range r.rows {
		if m.Barcode == barcode {
			return r.Get(m.ID), nil
		}
	}
	return nil, nil
}

func (r *MedicineRepo) Update(m *entity.Medicine) error { r.Add(m); return nil }

func (r *MedicineRepo) List(search, schedule string, limit, offset int) ([]*entity.Medicine, error) {
	q := strings.ToLower(search)
	var out []*entity.Medicine
	for _, m := range r.rows {
		if schedule != "" && m.Schedule != schedule {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(m.BrandName), q) &&
			!strings.Contains(strings.ToLower(m.GenericName), q) &&
			!strings.Contains(strings.ToLower(m.SKU), q) {
			continue
		}
		out = append(out, r.Get(m.ID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BrandName < out[j].BrandName })
	return page(out, limit, offset), nil
}

func (r *MedicineRepo) Delete(id string) error { delete(r.rows, id); return nil }

func (r *MedicineRepo) IsReferenced(medicineID string) (bool, error) {
	return r.Referenced[medicineID], nil
}

// BatchRepo implementación en memoria de repository.BatchRepository.
type BatchRepo struct {
	rows map[string]*entity.Batch
}

// Add inserta una copia del lote.
func (r *BatchRepo) Add(b *entity.Batch) { c := *b; r.rows[b.ID] = &c }

// Get devuelve una copia de la fila o nil si no existe.
func (r *BatchRepo) Get(id string) *entity.Batch {
	b, ok := r.rows[id]
	if !ok {
		return nil
	}
	c := *b
	return &c
}

func (r *BatchRepo) Create(b *entity.Batch) error              { r.Add(b); return nil }
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error)  { return r.Get(id), nil }
func (r *BatchRepo) GetForUpdate(id string) (*entity.Batch, error) { return r.Get(id), nil }

func (r *BatchRepo) GetByMedicineAndNumber(medicineID, batchNumber string) (*entity.Batch, error) {
	for _, b := range r.rows {
		if b.MedicineID == medicineID && b.BatchNumber == batchNumber {
			return r.Get(b.ID), nil
		}
	}
	return nil, nil
}

func (r *BatchRepo) Update(b *entity.Batch) error { r.Add(b); return nil }

func (r *BatchRepo) ListByMedicine(medicineID string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.rows {
		if b.MedicineID == medicineID {
			out = append(out, r.Get(b.ID))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpiryDate.Equal(out[j].ExpiryDate) {
			return out[i].ExpiryDate.Before(out[j].ExpiryDate)
		}
		return out[i].BatchNumber < out[j].BatchNumber
	})
	return out, nil
}

func (r *BatchRepo) ListExpiringBefore(cutoff time.Time, limit, offset int) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.rows {
		if b.Quantity > 0 && !b.ExpiryDate.After(cutoff) {
			out = append(out, r.Get(b.ID))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return page(out, limit, offset), nil
}

func (r *BatchRepo) ListByStatusBlocked(limit, offset int) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.rows {
		if b.IsBlocked {
			out = append(out, r.Get(b.ID))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BatchNumber < out[j].BatchNumber })
	return page(out, limit, offset), nil
}

func (r *BatchRepo) snapshot() map[string]entity.Batch {
	snap := make(map[string]entity.Batch, len(r.rows))
	for k, v := range r.rows {
		snap[k] = *v
	}
	return snap
}

func (r *BatchRepo) restore(snap map[string]entity.Batch) {
	r.rows = make(map[string]*entity.Batch, len(snap))
	for k, v := range snap {
		c := v
		r.rows[k] = &c
	}
}

// MedMovRepo implementación en memoria de repository.MedicineStockMovementRepository.
type MedMovRepo struct {
	rows []*entity.MedicineStockMovement
}

func (r *MedMovRepo) Create(m *entity.MedicineStockMovement) error {
	c := *m
	r.rows = append(r.rows, &c)
	return nil
}

func (r *MedMovRepo) ListByMedicine(medicineID string, from, to *time.Time, limit, offset int) ([]*entity.MedicineStockMovement, error) {
	var out []*entity.MedicineStockMovement
	for _, m := range r.rows {
		if m.MedicineID == medicineID && inRange(m.CreatedAt, from, to) {
			c := *m
			out = append(out, &c)
		}
	}
	return page(out, limit, offset), nil
}

func (r *MedMovRepo) ListByBatch(batchID string) ([]*entity.MedicineStockMovement, error) {
	var out []*entity.MedicineStockMovement
	for _, m := range r.rows {
		if m.BatchID == batchID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *MedMovRepo) ListBySale(pharmacySaleID string) ([]*entity.MedicineStockMovement, error) {
	var out []*entity.MedicineStockMovement
	for _, m := range r.rows {
		if m.PharmacySaleID == pharmacySaleID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

// All devuelve los asientos en orden de inserción; solo lectura.
func (r *MedMovRepo) All() []*entity.MedicineStockMovement { return r.rows }

func (r *MedMovRepo) snapshot() int { return len(r.rows) }
func (r *MedMovRepo) restore(n int) { r.rows = r.rows[:n] }

// RegisterRepo implementación en memoria de repository.ControlledRegisterRepository.
type RegisterRepo struct {
	rows []*entity.ControlledRegisterEntry
}

func (r *RegisterRepo) Create(e *entity.ControlledRegisterEntry) error {
	c := *e
	r.rows = append(r.rows, &c)
	return nil
}

func (r *RegisterRepo) GetByID(id string) (*entity.ControlledRegisterEntry, error) {
	for _, e := range r.rows {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, nil
}

func (r *RegisterRepo) ListByMedicine(medicineID string, from, to *time.Time, limit, offset int) ([]*entity.ControlledRegisterEntry, error) {
	var out []*entity.ControlledRegisterEntry
	for _, e := range r.rows {
		if e.MedicineID == medicineID && inRange(e.CreatedAt, from, to) {
			c := *e
			out = append(out, &c)
		}
	}
	return page(out, limit, offset), nil
}

func (r *RegisterRepo) ListByBatch(batchID string) ([]*entity.ControlledRegisterEntry, error) {
	var out []*entity.ControlledRegisterEntry
	for _, e := range r.rows {
		if e.BatchID == batchID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *RegisterRepo) ListByPeriod(from, to time.Time) ([]*entity.ControlledRegisterEntry, error) {
	var out []*entity.ControlledRegisterEntry
	for _, e := range r.rows {
		if !e.CreatedAt.Before(from) && !e.CreatedAt.After(to) {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// All devuelve los asientos en orden de inserción; solo lectura.
func (r *RegisterRepo) All() []*entity.ControlledRegisterEntry { return r.rows }

func (r *RegisterRepo) snapshot() int { return len(r.rows) }
func (r *RegisterRepo) restore(n int) { r.rows = r.rows[:n] }

// ─────────────────────────────────────────────
// Documentos: recepciones, órdenes, ventas y pagos
// ─────────────────────────────────────────────

// ReceivingRepo implementación en memoria de repository.ReceivingRepository.
type ReceivingRepo struct {
	headers map[string]*entity.StockReceiving
	items   []*entity.StockReceivingItem
}

func (r *ReceivingRepo) Create(h *entity.StockReceiving) error {
	c := *h
	r.headers[h.ID] = &c
	return nil
}

func (r *ReceivingRepo) CreateItem(it *entity.StockReceivingItem) error {
	c := *it
	r.items = append(r.items, &c)
	return nil
}

func (r *ReceivingRepo) GetByID(id string) (*entity.StockReceiving, error) {
	h, ok := r.headers[id]
	if !ok {
		return nil, nil
	}
	c := *h
	return &c, nil
}

func (r *ReceivingRepo) GetByNumber(receivingNumber string) (*entity.StockReceiving, error) {
	for _, h := range r.headers {
		if h.ReceivingNumber == receivingNumber {
			c := *h
			return &c, nil
		}
	}
	return nil, nil
}

func (r *ReceivingRepo) GetItemsByReceivingID(receivingID string) ([]*entity.StockReceivingItem, error) {
	var out []*entity.StockReceivingItem
	for _, it := range r.items {
		if it.ReceivingID == receivingID {
			c := *it
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *ReceivingRepo) List(storeID string, from, to *time.Time, limit, offset int) ([]*entity.StockReceiving, error) {
	var out []*entity.StockReceiving
	for _, h := range r.headers {
		if h.StoreID == storeID && inRange(h.CreatedAt, from, to) {
			c := *h
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

// All devuelve las cabeceras registradas.
func (r *ReceivingRepo) All() []*entity.StockReceiving {
	var out []*entity.StockReceiving
	for _, h := range r.headers {
		out = append(out, h)
	}
	return out
}

type receivingSnap struct {
	headers map[string]entity.StockReceiving
	items   int
}

func (r *ReceivingRepo) snapshot() receivingSnap {
	snap := receivingSnap{headers: make(map[string]entity.StockReceiving, len(r.headers)), items: len(r.items)}
	for k, v := range r.headers {
		snap.headers[k] = *v
	}
	return snap
}

func (r *ReceivingRepo) restore(snap receivingSnap) {
	r.headers = make(map[string]*entity.StockReceiving, len(snap.headers))
	for k, v := range snap.headers {
		c := v
		r.headers[k] = &c
	}
	r.items = r.items[:snap.items]
}

// OrderRepo implementación en memoria de repository.PurchaseOrderRepository.
type OrderRepo struct {
	orders map[string]*entity.PurchaseOrder
	items  []*entity.PurchaseOrderItem
}

// Get devuelve una copia de la orden o nil si no existe.
func (r *OrderRepo) Get(id string) *entity.PurchaseOrder {
	o, ok := r.orders[id]
	if !ok {
		return nil
	}
	c := *o
	return &c
}

func (r *OrderRepo) Create(o *entity.PurchaseOrder) error {
	c := *o
	r.orders[o.ID] = &c
	return nil
}

func (r *OrderRepo) CreateItem(it *entity.PurchaseOrderItem) error {
	c := *it
	r.items = append(r.items, &c)
	return nil
}

func (r *OrderRepo) GetByID(id string) (*entity.PurchaseOrder, error)     { return r.Get(id), nil }
func (r *OrderRepo) GetForUpdate(id string) (*entity.PurchaseOrder, error) { return r.Get(id), nil }

func (r *OrderRepo) GetByNumber(orderNumber string) (*entity.PurchaseOrder, error) {
	for _, o := range r.orders {
		if o.OrderNumber == orderNumber {
			return r.Get(o.ID), nil
		}
	}
	return nil, nil
}

func (r *OrderRepo) GetItemsByOrderID(orderID string) ([]*entity.PurchaseOrderItem, error) {
	var out []*entity.PurchaseOrderItem
	for _, it := range r.items {
		if it.PurchaseOrderID == orderID {
			c := *it
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *OrderRepo) Update(o *entity.PurchaseOrder) error {
	c := *o
	r.orders[o.ID] = &c
	return nil
}

func (r *OrderRepo) List(storeID, status string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	var out []*entity.PurchaseOrder
	for _, o := range r.orders {
		if o.StoreID != storeID {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, r.Get(o.ID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

type orderSnap struct {
	orders map[string]entity.PurchaseOrder
	items  int
}

func (r *OrderRepo) snapshot() orderSnap {
	snap := orderSnap{orders: make(map[string]entity.PurchaseOrder, len(r.orders)), items: len(r.items)}
	for k, v := range r.orders {
		snap.orders[k] = *v
	}
	return snap
}

func (r *OrderRepo) restore(snap orderSnap) {
	r.orders = make(map[string]*entity.PurchaseOrder, len(snap.orders))
	for k, v := range snap.orders {
		c := v
		r.orders[k] = &c
	}
	r.items = r.items[:snap.items]
}

// SaleRepo implementación en memoria de repository.SaleRepository.
type SaleRepo struct {
	sales map[string]*entity.Sale
	items []*entity.SaleItem
}

// Add inserta una copia de la venta.
func (r *SaleRepo) Add(s *entity.Sale) { c := *s; r.sales[s.ID] = &c }

// Get devuelve una copia de la venta o nil si no existe.
func (r *SaleRepo) Get(id string) *entity.Sale {
	s, ok := r.sales[id]
	if !ok {
		return nil
	}
	c := *s
	return &c
}

func (r *SaleRepo) Create(s *entity.Sale) error { r.Add(s); return nil }

func (r *SaleRepo) CreateItem(it *entity.SaleItem) error {
	c := *it
	r.items = append(r.items, &c)
	return nil
}

func (r *SaleRepo) GetByID(id string) (*entity.Sale, error)     { return r.Get(id), nil }
func (r *SaleRepo) GetForUpdate(id string) (*entity.Sale, error) { return r.Get(id), nil }

func (r *SaleRepo) GetByNumber(saleNumber string) (*entity.Sale, error) {
	for _, s := range r.sales {
		if s.SaleNumber == saleNumber {
			return r.Get(s.ID), nil
		}
	}
	return nil, nil
}

func (r *SaleRepo) GetItemsBySaleID(saleID string) ([]*entity.SaleItem, error) {
	var out []*entity.SaleItem
	for _, it := range r.items {
		if it.SaleID == saleID {
			c := *it
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *SaleRepo) Update(s *entity.Sale) error { r.Add(s); return nil }

func (r *SaleRepo) List(storeID string, from, to *time.Time, status string, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range r.sales {
		if s.StoreID != storeID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		if !inRange(s.CreatedAt, from, to) {
			continue
		}
		out = append(out, r.Get(s.ID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

type saleSnap struct {
	sales map[string]entity.Sale
	items int
}

func (r *SaleRepo) snapshot() saleSnap {
	snap := saleSnap{sales: make(map[string]entity.Sale, len(r.sales)), items: len(r.items)}
	for k, v := range r.sales {
		snap.sales[k] = *v
	}
	return snap
}

func (r *SaleRepo) restore(snap saleSnap) {
	r.sales = make(map[string]*entity.Sale, len(snap.sales))
	for k, v := range snap.sales {
		c := v
		r.sales[k] = &c
	}
	r.items = r.items[:snap.items]
}

// PharmacySaleRepo implementación en memoria de repository.PharmacySaleRepository.
type PharmacySaleRepo struct {
	sales map[string]*entity.PharmacySale
	items []*entity.PharmacySaleItem
}

// Add inserta una copia de la venta.
func (r *PharmacySaleRepo) Add(s *entity.PharmacySale) { c := *s; r.sales[s.ID] = &c }

// Get devuelve una copia de la venta o nil si no existe.
func (r *PharmacySaleRepo) Get(id string) *entity.PharmacySale {
	s, ok := r.sales[id]
	if !ok {
		return nil
	}
	c := *s
	return &c
}

func (r *PharmacySaleRepo) Create(s *entity.PharmacySale) error { r.Add(s); return nil }

func (r *PharmacySaleRepo) CreateItem(it *entity.PharmacySaleItem) error {
	c := *it
	r.items = append(r.items, &c)
	return nil
}

func (r *PharmacySaleRepo) GetByID(id string) (*entity.PharmacySale, error)     { return r.Get(id), nil }
func (r *PharmacySaleRepo) GetForUpdate(id string) (*entity.PharmacySale, error) { return r.Get(id), nil }

func (r *PharmacySaleRepo) GetByInvoiceNumber(invoiceNumber string) (*entity.PharmacySale, error) {
	for _, s := range r.sales {
		if s.InvoiceNumber == invoiceNumber {
			return r.Get(s.ID), nil
		}
	}
	return nil, nil
}

func (r *PharmacySaleRepo) GetItemsBySaleID(saleID string) ([]*entity.PharmacySaleItem, error) {
	var out []*entity.PharmacySaleItem
	for _, it := range r.items {
		if it.SaleID == saleID {
			c := *it
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *PharmacySaleRepo) Update(s *entity.PharmacySale) error { r.Add(s); return nil }

func (r *PharmacySaleRepo) List(storeID string, from, to *time.Time, status string, limit, offset int) ([]*entity.PharmacySale, error) {
	var out []*entity.PharmacySale
	for _, s := range r.sales {
		if s.StoreID != storeID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		if !inRange(s.CreatedAt, from, to) {
			continue
		}
		out = append(out, r.Get(s.ID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), nil
}

type pharmacySaleSnap struct {
	sales map[string]entity.PharmacySale
	items int
}

func (r *PharmacySaleRepo) snapshot() pharmacySaleSnap {
	snap := pharmacySaleSnap{sales: make(map[string]entity.PharmacySale, len(r.sales)), items: len(r.items)}
	for k, v := range r.sales {
		snap.sales[k] = *v
	}
	return snap
}

func (r *PharmacySaleRepo) restore(snap pharmacySaleSnap) {
	r.sales = make(map[string]*entity.PharmacySale, len(snap.sales))
	for k, v := range snap.sales {
		c := v
		r.sales[k] = &c
	}
	r.items = r.items[:snap.items]
}

// PaymentRepo implementación en memoria de repository.PaymentRepository.
type PaymentRepo struct {
	rows []*entity.Payment
}

func (r *PaymentRepo) Create(p *entity.Payment) error {
	c := *p
	r.rows = append(r.rows, &c)
	return nil
}

func (r *PaymentRepo) ListBySale(saleID string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range r.rows {
		if p.SaleID == saleID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *PaymentRepo) ListByPharmacySale(pharmacySaleID string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range r.rows {
		if p.PharmacySaleID == pharmacySaleID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

// All devuelve los pagos en orden de inserción; solo lectura.
func (r *PaymentRepo) All() []*entity.Payment { return r.rows }

func (r *PaymentRepo) snapshot() int { return len(r.rows) }
func (r *PaymentRepo) restore(n int) { r.rows = r.rows[:n] }
