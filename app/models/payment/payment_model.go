// Package payment 收款支付记录模型
package payment

import (
	"github.com/shopspring/decimal"

	"pospay/app/models"
)

// Payment 支付记录模型
// ClientPaymentID 由收银端生成，作为幂等键，唯一索引保证同一笔请求只会落一条记录
type Payment struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	ClientPaymentID string          `gorm:"type:varchar(128);uniqueIndex;not null" json:"client_payment_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency        string          `gorm:"type:varchar(8);not null;default:TND" json:"currency"`
	Mode            string          `gorm:"type:varchar(32);not null" json:"mode"`
	Status          string          `gorm:"type:varchar(32);index;not null" json:"status"`
	Detail          string          `gorm:"type:varchar(512)" json:"detail"`
	ApprovedBy      string          `gorm:"type:varchar(64)" json:"approved_by"`

	models.CommonTimestampsField
}

// TableName 指定表名
func (Payment) TableName() string {
	return "payments"
}
