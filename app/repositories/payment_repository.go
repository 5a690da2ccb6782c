// Package repositories 数据仓库层
package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pospay/app/models/payment"
	"pospay/pkg/database"
)

// PaymentRepository 支付记录仓库
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建仓库实例
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		db: database.DB,
	}
}

// Create 创建支付记录
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// CreateOrGet 幂等创建：client_payment_id 的唯一索引保证只会落一条记录，
// 冲突时读取既有记录返回，绝不重复创建
func (r *PaymentRepository) CreateOrGet(ctx context.Context, p *payment.Payment) (bool, *payment.Payment, error) {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		// 并发同键创建时先写者胜出，后来者读取既有记录
		existing, lookupErr := r.GetByClientPaymentID(ctx, p.ClientPaymentID)
		if lookupErr == nil {
			return false, existing, nil
		}
		return false, nil, err
	}
	return true, p, nil
}

// GetByID 根据主键获取支付记录
func (r *PaymentRepository) GetByID(ctx context.Context, id uint64) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByClientPaymentID 根据幂等键获取支付记录
func (r *PaymentRepository) GetByClientPaymentID(ctx context.Context, clientPaymentID string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).Where("client_payment_id = ?", clientPaymentID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List 按创建时间倒序列出支付记录
func (r *PaymentRepository) List(ctx context.Context, limit int) ([]payment.Payment, error) {
	var payments []payment.Payment
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

// UpdateWithLock 在事务内锁定单条支付记录并执行 fn，
// 保证同一笔支付上的状态读写不会交叉（不同支付之间互不阻塞）
func (r *PaymentRepository) UpdateWithLock(ctx context.Context, id uint64, fn func(tx *gorm.DB, p *payment.Payment) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		// sqlite 不支持 FOR UPDATE，依赖其单写事务串行化
		if tx.Dialector.Name() == "postgres" {
			query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var p payment.Payment
		if err := query.First(&p, id).Error; err != nil {
			return err
		}
		return fn(tx, &p)
	})
}
