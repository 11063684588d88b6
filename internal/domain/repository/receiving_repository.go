package repository

import (
	"time"

	"github.com/jhoicas/Farmapos-api/internal/domain/entity"
)

// ReceivingRepository define el puerto de persistencia para recepciones de
// mercancía farmacéutica y sus líneas (DIP).
type ReceivingRepository interface {
	Create(receiving *entity.StockReceiving) error
	CreateItem(item *entity.StockReceivingItem) error
	GetByID(id string) (*entity.StockReceiving, error)
	GetByNumber(receivingNumber string) (*entity.StockReceiving, error)
	GetItemsByReceivingID(receivingID string) ([]*entity.StockReceivingItem, error)
	List(storeID string, from, to *time.Time, limit, offset int) ([]*entity.StockReceiving, error)
}
