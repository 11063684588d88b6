package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
	"github.com/jhoicas/Farmapos-api/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo implementación del puerto StoreRepository sobre PostgreSQL (usable con pool o tx).
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador de persistencia para tiendas. Pasar pool o tx (Querier).
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

// Create persiste una nueva tienda. Si llega marcada como default, desmarca la anterior.
func (r *StoreRepo) Create(store *entity.Store) error {
	if store.IsDefault {
		if err := r.clearDefault(store.ID); err != nil {
			return err
		}
	}
	query := `
		INSERT INTO stores (id, name, address, phone, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		store.ID, store.Name, store.Address, store.Phone, store.IsDefault,
		store.CreatedAt, store.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert store: %w", err)
	}
	return nil
}

// GetByID obtiene una tienda por ID.
func (r *StoreRepo) GetByID(id string) (*entity.Store, error) {
	query := `
		SELECT id, name, address, phone, is_default, created_at, updated_at
		FROM stores WHERE id = $1`
	var s entity.Store
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&s.ID, &s.Name, &s.Address, &s.Phone, &s.IsDefault, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &s, nil
}

// GetDefault obtiene la tienda marcada como default, o nil si no hay ninguna.
func (r *StoreRepo) GetDefault() (*entity.Store, error) {
	query := `
		SELECT id, name, address, phone, is_default, created_at, updated_at
		FROM stores WHERE is_default = TRUE LIMIT 1`
	var s entity.Store
	err := r.q.QueryRow(context.Background(), query).Scan(
		&s.ID, &s.Name, &s.Address, &s.Phone, &s.IsDefault, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get default store: %w", err)
	}
	return &s, nil
}

// Update actualiza una tienda. Si queda marcada como default, desmarca las demás.
func (r *StoreRepo) Update(store *entity.Store) error {
	if store.IsDefault {
		if err := r.clearDefault(store.ID); err != nil {
			return err
		}
	}
	query := `
		UPDATE stores SET name = $2, address = $3, phone = $4, is_default = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		store.ID, store.Name, store.Address, store.Phone, store.IsDefault, store.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update store: %w", err)
	}
	return nil
}

// List lista tiendas con paginación, la default primero.
func (r *StoreRepo) List(limit, offset int) ([]*entity.Store, error) {
	query := `
		SELECT id, name, address, phone, is_default, created_at, updated_at
		FROM stores ORDER BY is_default DESC, name ASC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()
	var list []*entity.Store
	for rows.Next() {
		var s entity.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.IsDefault, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *StoreRepo) clearDefault(exceptID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE stores SET is_default = FALSE WHERE is_default = TRUE AND id <> $1`, exceptID)
	if err != nil {
		return fmt.Errorf("clear default store: %w", err)
	}
	return nil
}
