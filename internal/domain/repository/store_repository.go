package repository

import "github.com/jhoicas/Farmapos-api/internal/domain/entity"

// StoreRepository define el puerto de persistencia para Store (DIP).
// Los flujos de negocio reciben el store explícitamente; GetDefault existe
// solo para el bootstrap inicial del sistema.
type StoreRepository interface {
	Create(store *entity.Store) error
	GetByID(id string) (*entity.Store, error)
	GetDefault() (*entity.Store, error)
	Update(store *entity.Store) error
	List(limit, offset int) ([]*entity.Store, error)
}
