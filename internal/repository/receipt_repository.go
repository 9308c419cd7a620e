package repository

import (
	"storefront/internal/domain"
)

// ReceiptRepository stores receipts of successfully submitted orders.
// Finders return nil, nil when nothing matches.
type ReceiptRepository interface {
	Save(receipt *domain.Receipt) error
	FindByID(id uint64) (*domain.Receipt, error)
	FindByProductId(productId string) ([]domain.Receipt, error)
}
