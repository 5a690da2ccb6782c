package repositories

import (
	"context"

	"gorm.io/gorm"

	"pospay/app/models/receipt"
	"pospay/pkg/database"
)

// ReceiptRepository 收据仓库
type ReceiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository 创建仓库实例
func NewReceiptRepository() *ReceiptRepository {
	return &ReceiptRepository{
		db: database.DB,
	}
}

// GetByNumber 根据收据编号获取收据
func (r *ReceiptRepository) GetByNumber(ctx context.Context, receiptNumber string) (*receipt.Receipt, error) {
	var rc receipt.Receipt
	err := r.db.WithContext(ctx).Where("receipt_number = ?", receiptNumber).First(&rc).Error
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// GetByPaymentID 根据支付 ID 获取收据
func (r *ReceiptRepository) GetByPaymentID(ctx context.Context, paymentID uint64) (*receipt.Receipt, error) {
	var rc receipt.Receipt
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&rc).Error
	if err != nil {
		return nil, err
	}
	return &rc, nil
}
