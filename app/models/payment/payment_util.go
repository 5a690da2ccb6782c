package payment

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Mode 支付方式
type Mode string

const (
	ModeCard Mode = "card" // 银行卡
	ModeCash Mode = "cash" // 现金
)

// Status 支付状态
// 状态机：initiated → authorized → confirmed
// 分支：declined（授权被拒，终态）、awaiting_approval（超额待主管审批）
type Status string

const (
	StatusInitiated        Status = "initiated"         // 已发起
	StatusAuthorized       Status = "authorized"        // 已授权
	StatusAwaitingApproval Status = "awaiting_approval" // 待主管审批
	StatusConfirmed        Status = "confirmed"         // 已确认（已收款）
	StatusDeclined         Status = "declined"          // 已拒绝
)

// Validate 验证支付记录
func (p *Payment) Validate() error {
	if p.ClientPaymentID == "" {
		return errors.New("client_payment_id is required")
	}
	if !p.Amount.GreaterThan(decimal.Zero) {
		return errors.New("amount must be greater than 0")
	}
	if !p.ValidateMode() {
		return errors.New("invalid payment mode")
	}
	return nil
}

// ValidateMode 验证支付方式
func (p *Payment) ValidateMode() bool {
	return p.Mode == string(ModeCard) || p.Mode == string(ModeCash)
}

// RequiresApproval 金额达到阈值时需要主管审批
func (p *Payment) RequiresApproval(threshold decimal.Decimal) bool {
	return p.Amount.GreaterThanOrEqual(threshold)
}

// IsApproved 是否已获得主管审批
func (p *Payment) IsApproved() bool {
	return p.ApprovedBy != ""
}

// IsCard 是否银行卡支付
func (p *Payment) IsCard() bool {
	return p.Mode == string(ModeCard)
}

// IsCash 是否现金支付
func (p *Payment) IsCash() bool {
	return p.Mode == string(ModeCash)
}

// IsConfirmed 是否已确认
func (p *Payment) IsConfirmed() bool {
	return p.Status == string(StatusConfirmed)
}

// IsDeclined 是否已拒绝
func (p *Payment) IsDeclined() bool {
	return p.Status == string(StatusDeclined)
}
