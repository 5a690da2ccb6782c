// Package receipt 收据模型，支付确认后生成，不可变更
package receipt

import (
	"github.com/shopspring/decimal"

	"pospay/app/models"
)

// Receipt 收据模型
// 一笔支付只会有一张收据，ReceiptNumber 由支付 ID 和创建时间推导，天然稳定
type Receipt struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentID     uint64          `gorm:"uniqueIndex;not null" json:"payment_id"`
	ReceiptNumber string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"receipt_number"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Content       string          `gorm:"type:text;not null" json:"content"`

	models.CommonTimestampsField
}

// TableName 指定表名
func (Receipt) TableName() string {
	return "receipts"
}
