package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pospay/app/models/erpsync"
	"pospay/pkg/database"
)

// ErpSyncRepository ERP 同步队列仓库
type ErpSyncRepository struct {
	db *gorm.DB
}

// NewErpSyncRepository 创建仓库实例
func NewErpSyncRepository() *ErpSyncRepository {
	return &ErpSyncRepository{
		db: database.DB,
	}
}

// Create 创建同步条目
func (r *ErpSyncRepository) Create(ctx context.Context, entry *erpsync.ErpSync) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListUnsynced 列出未同步完成的条目（pending 和 failed），按创建时间排序
func (r *ErpSyncRepository) ListUnsynced(ctx context.Context) ([]erpsync.ErpSync, error) {
	var entries []erpsync.ErpSync
	err := r.db.WithContext(ctx).
		Where("sync_state IN ?", []string{string(erpsync.StatePending), string(erpsync.StateFailed)}).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// GetUnsyncedByPaymentID 获取某笔支付未同步完成的条目
func (r *ErpSyncRepository) GetUnsyncedByPaymentID(ctx context.Context, paymentID uint64) (*erpsync.ErpSync, error) {
	var entry erpsync.ErpSync
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Where("sync_state IN ?", []string{string(erpsync.StatePending), string(erpsync.StateFailed)}).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// RecordSuccess 记录一次同步成功
func (r *ErpSyncRepository) RecordSuccess(ctx context.Context, entry *erpsync.ErpSync) error {
	now := time.Now()
	entry.SyncState = string(erpsync.StateSynced)
	entry.Attempts++
	entry.LastAttemptAt = &now
	return r.db.WithContext(ctx).Save(entry).Error
}

// RecordFailure 记录一次同步失败，累计失败达到 retryLimit 后转为 failed 状态，
// 便于在管理队列里区分新条目和卡住的条目（worker 仍会按周期继续重试）
func (r *ErpSyncRepository) RecordFailure(ctx context.Context, entry *erpsync.ErpSync, retryLimit int) error {
	now := time.Now()
	entry.Attempts++
	entry.LastAttemptAt = &now
	if entry.Attempts >= retryLimit {
		entry.SyncState = string(erpsync.StateFailed)
	}
	return r.db.WithContext(ctx).Save(entry).Error
}

// ForceSync 管理员强制同步：绕过同步结果，无条件置为 synced 并记录操作人
func (r *ErpSyncRepository) ForceSync(ctx context.Context, paymentID uint64, actor string) (*erpsync.ErpSync, error) {
	var entry *erpsync.ErpSync
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e erpsync.ErpSync
		err := tx.
			Where("payment_id = ?", paymentID).
			Where("sync_state IN ?", []string{string(erpsync.StatePending), string(erpsync.StateFailed)}).
			First(&e).Error
		if err != nil {
			return err
		}

		now := time.Now()
		e.SyncState = string(erpsync.StateSynced)
		e.Attempts++
		e.LastAttemptAt = &now
		e.Forced = true
		e.ForcedBy = actor
		if err := tx.Save(&e).Error; err != nil {
			return err
		}
		entry = &e
		return nil
	})
	return entry, err
}

// Delete 删除条目（worker 清理孤儿条目时使用）
func (r *ErpSyncRepository) Delete(ctx context.Context, entry *erpsync.ErpSync) error {
	return r.db.WithContext(ctx).Delete(entry).Error
}
