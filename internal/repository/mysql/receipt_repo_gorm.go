package mysql

import (
	"errors"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errNoID = errors.New("failed to assign receipt ID")

type receiptRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReceiptRepository(db *gorm.DB, log *zap.Logger) repository.ReceiptRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &receiptRepo{db: db, log: log}
}

// Save inserts the receipt and its items in one transaction.
func (r *receiptRepo) Save(receipt *domain.Receipt) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Create(receipt)
		if result.Error != nil {
			return result.Error
		}
		if receipt.ID == 0 {
			r.log.Warn("receipt saved without ID", zap.Int64("rows_affected", result.RowsAffected))
			return errNoID
		}
		return nil
	})
	if err != nil {
		r.log.Error("save receipt", zap.Error(err))
		return err
	}

	r.log.Info("receipt saved",
		zap.Uint64("id", receipt.ID),
		zap.String("external_id", receipt.ExternalID),
		zap.Int("items", len(receipt.Items)),
	)
	return nil
}

func (r *receiptRepo) FindByID(id uint64) (*domain.Receipt, error) {
	var rc domain.Receipt
	if err := r.db.Preload("Items").First(&rc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Error("find receipt by id", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return &rc, nil
}

func (r *receiptRepo) FindByProductId(productId string) ([]domain.Receipt, error) {
	containing := r.db.Model(&domain.ReceiptItem{}).
		Select("receipt_id").
		Where("product_id = ?", productId)

	var out []domain.Receipt
	err := r.db.Preload("Items").
		Where("id IN (?)", containing).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		r.log.Error("find receipts by product", zap.String("product_id", productId), zap.Error(err))
		return nil, err
	}

	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
