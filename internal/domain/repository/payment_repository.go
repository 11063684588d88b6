package repository

import "github.com/jhoicas/Farmapos-api/internal/domain/entity"

// PaymentRepository define el puerto de persistencia para pagos (DIP).
type PaymentRepository interface {
	Create(payment *entity.Payment) error
	ListBySale(saleID string) ([]*entity.Payment, error)
	ListByPharmacySale(pharmacySaleID string) ([]*entity.Payment, error)
}
