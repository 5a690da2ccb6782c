// Package erpsync ERP 同步队列模型
package erpsync

import (
	"time"

	"pospay/app/models"
)

// SyncState 同步状态
type SyncState string

const (
	StatePending SyncState = "pending" // 待同步
	StateSynced  SyncState = "synced"  // 已同步
	StateFailed  SyncState = "failed"  // 多次失败，待管理员处理
)

// ErpSync ERP 同步队列条目
// 支付确认时创建，之后由对账 worker 独占写入；forced 相关字段仅管理员强制同步时设置
type ErpSync struct {
	ID            uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentID     uint64     `gorm:"uniqueIndex;not null" json:"payment_id"`
	SyncState     string     `gorm:"type:varchar(20);index;not null" json:"sync_state"`
	Attempts      int        `gorm:"not null;default:0" json:"attempts"`
	LastAttemptAt *time.Time `json:"last_attempt_at"`
	Forced        bool       `gorm:"not null;default:false" json:"forced"`
	ForcedBy      string     `gorm:"type:varchar(64)" json:"forced_by"`

	models.CommonTimestampsField
}

// TableName 指定表名
func (ErpSync) TableName() string {
	return "erp_sync_entries"
}

// IsSynced 是否已同步
func (e *ErpSync) IsSynced() bool {
	return e.SyncState == string(StateSynced)
}
