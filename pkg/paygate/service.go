// Package paygate 支付生命周期核心
//
// 状态机：initiated → authorized → confirmed
// 分支状态：declined（授权被拒，终态）、awaiting_approval（超额待主管审批）
// 现金支付无需授权，直接从 initiated 确认；确认时生成收据并创建 ERP 同步条目，
// 三者在同一事务内落库。
package paygate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pospay/app/models/erpsync"
	"pospay/app/models/payment"
	"pospay/app/models/receipt"
	"pospay/app/repositories"
)

// Service 支付生命周期管理器
// Payment 和 Receipt 的写入只发生在这里
type Service struct {
	cfg        Config
	authorizer Authorizer
	payments   *repositories.PaymentRepository
	receipts   *repositories.ReceiptRepository
}

// NewService 创建支付服务
func NewService(cfg Config, authorizer Authorizer) *Service {
	return &Service{
		cfg:        cfg,
		authorizer: authorizer,
		payments:   repositories.NewPaymentRepository(),
		receipts:   repositories.NewReceiptRepository(),
	}
}

// InitiateParams 发起支付的参数
type InitiateParams struct {
	ClientPaymentID string
	Amount          decimal.Decimal
	Currency        string
	Mode            string
}

// Initiate 发起支付（幂等）
// 同一个 client_payment_id 永远对应同一条支付记录，重复调用返回既有记录，
// 不产生任何新副作用。返回值第二项表示本次调用是否创建了新记录
func (s *Service) Initiate(ctx context.Context, params InitiateParams) (*payment.Payment, bool, error) {
	if params.ClientPaymentID == "" {
		return nil, false, ValidationError{Message: "client_payment_id is required"}
	}
	if !params.Amount.GreaterThan(decimal.Zero) {
		return nil, false, ValidationError{Message: "amount must be greater than 0"}
	}
	if params.Mode != string(payment.ModeCard) && params.Mode != string(payment.ModeCash) {
		return nil, false, ValidationError{Message: "mode must be card or cash"}
	}

	currency := params.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}

	p := &payment.Payment{
		ClientPaymentID: params.ClientPaymentID,
		Amount:          params.Amount,
		Currency:        currency,
		Mode:            params.Mode,
		Status:          string(payment.StatusInitiated),
	}

	created, result, err := s.payments.CreateOrGet(ctx, p)
	if err != nil {
		return nil, false, fmt.Errorf("initiate payment: %w", err)
	}
	return result, created, nil
}

// Authorize 授权支付（仅 card 模式，状态必须是 initiated）
// 授权被拒时支付转入 declined 终态并返回 DeclinedError；
// 状态或模式不合法时不产生任何副作用
func (s *Service) Authorize(ctx context.Context, id uint64, card Card) (*payment.Payment, error) {
	var result *payment.Payment
	var declined error

	err := s.payments.UpdateWithLock(ctx, id, func(tx *gorm.DB, p *payment.Payment) error {
		if !p.IsCard() {
			return InvalidStateError{Op: "authorize", State: "mode:" + p.Mode}
		}
		if p.Status != string(payment.StatusInitiated) {
			return InvalidStateError{Op: "authorize", State: p.Status}
		}

		decision := s.authorizer.Authorize(card)
		if decision.Accepted {
			p.Status = string(payment.StatusAuthorized)
		} else {
			p.Status = string(payment.StatusDeclined)
			// 拒绝也要落库，所以不能用返回 error 的方式回传（事务会回滚）
			declined = DeclinedError{Reason: decision.Reason}
		}
		p.Detail = "provider:" + decision.Reason

		if err := tx.Save(p).Error; err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, s.translateErr(err, "payment")
	}
	if declined != nil {
		return result, declined
	}
	return result, nil
}

// Confirm 确认（收款）支付
// 现金从 initiated 直接确认，银行卡必须已授权；
// 金额达到审批阈值且未审批时转入 awaiting_approval 并返回 ApprovalRequiredError；
// 确认成功时状态变更、收据生成、ERP 同步条目创建在同一事务内完成；
// 对已确认的支付重复调用幂等返回原收据
func (s *Service) Confirm(ctx context.Context, id uint64) (*receipt.Receipt, error) {
	var rc *receipt.Receipt
	var gate error

	err := s.payments.UpdateWithLock(ctx, id, func(tx *gorm.DB, p *payment.Payment) error {
		// 幂等：已确认的支付直接返回既有收据
		if p.IsConfirmed() {
			var existing receipt.Receipt
			if err := tx.Where("payment_id = ?", p.ID).First(&existing).Error; err != nil {
				return err
			}
			rc = &existing
			return nil
		}

		if !s.confirmable(p) {
			return InvalidStateError{Op: "confirm", State: p.Status}
		}

		// 审批闸门：状态落到 awaiting_approval 需要提交，错误通过外层变量回传
		if p.RequiresApproval(s.cfg.ApprovalThreshold) && !p.IsApproved() {
			gate = ApprovalRequiredError{Threshold: s.cfg.ApprovalThreshold}
			if p.Status == string(payment.StatusAwaitingApproval) {
				return nil
			}
			p.Status = string(payment.StatusAwaitingApproval)
			return tx.Save(p).Error
		}

		p.Status = string(payment.StatusConfirmed)
		if err := tx.Save(p).Error; err != nil {
			return err
		}

		rc = s.issueReceipt(p)
		if err := tx.Create(rc).Error; err != nil {
			return err
		}

		entry := &erpsync.ErpSync{
			PaymentID: p.ID,
			SyncState: string(erpsync.StatePending),
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, s.translateErr(err, "payment")
	}
	if gate != nil {
		return nil, gate
	}
	return rc, nil
}

// Approve 记录主管审批
// 只负责打开闸门，不变更支付状态，之后重新 Confirm 即可收款。
// 审批一经授予持续有效，无需按次重复授予
func (s *Service) Approve(ctx context.Context, id uint64, actor string) (*payment.Payment, error) {
	if actor == "" {
		return nil, ValidationError{Message: "actor is required"}
	}

	var result *payment.Payment
	err := s.payments.UpdateWithLock(ctx, id, func(tx *gorm.DB, p *payment.Payment) error {
		if !p.RequiresApproval(s.cfg.ApprovalThreshold) {
			return InvalidStateError{Op: "approve", State: "approval not required"}
		}
		if p.IsApproved() {
			return InvalidStateError{Op: "approve", State: "already approved by " + p.ApprovedBy}
		}
		if p.IsConfirmed() || p.IsDeclined() {
			return InvalidStateError{Op: "approve", State: p.Status}
		}

		p.ApprovedBy = actor
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, s.translateErr(err, "payment")
	}
	return result, nil
}

// Get 获取单笔支付
func (s *Service) Get(ctx context.Context, id uint64) (*payment.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, s.translateErr(err, "payment")
	}
	return p, nil
}

// List 按创建时间倒序列出支付记录
func (s *Service) List(ctx context.Context, limit int) ([]payment.Payment, error) {
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	return s.payments.List(ctx, limit)
}

// GetReceipt 根据收据编号获取收据
func (s *Service) GetReceipt(ctx context.Context, receiptNumber string) (*receipt.Receipt, error) {
	rc, err := s.receipts.GetByNumber(ctx, receiptNumber)
	if err != nil {
		return nil, s.translateErr(err, "receipt")
	}
	return rc, nil
}

// GetReceiptByPaymentID 获取某笔支付的收据
func (s *Service) GetReceiptByPaymentID(ctx context.Context, paymentID uint64) (*receipt.Receipt, error) {
	rc, err := s.receipts.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, s.translateErr(err, "receipt")
	}
	return rc, nil
}

// confirmable 当前状态是否允许确认
func (s *Service) confirmable(p *payment.Payment) bool {
	switch p.Status {
	case string(payment.StatusAwaitingApproval):
		return true
	case string(payment.StatusInitiated):
		return p.IsCash()
	case string(payment.StatusAuthorized):
		return p.IsCard()
	default:
		return false
	}
}

// issueReceipt 生成收据
// 收据编号由支付 ID 和创建时间推导，同一笔支付重复签发结果恒定
func (s *Service) issueReceipt(p *payment.Payment) *receipt.Receipt {
	number := fmt.Sprintf("RCPT-%d-%d", p.ID, p.CreatedAt.Unix())
	content := fmt.Sprintf("Receipt %s\nPayment ID: %d\nAmount: %s %s\nMode: %s\nDate: %s",
		number, p.ID, p.Amount.StringFixed(2), p.Currency, p.Mode, time.Now().Format(time.RFC3339))

	return &receipt.Receipt{
		PaymentID:     p.ID,
		ReceiptNumber: number,
		Amount:        p.Amount,
		Content:       content,
	}
}

// translateErr 把存储层的未找到错误翻译为领域错误
func (s *Service) translateErr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFoundError{Resource: resource}
	}
	return err
}
