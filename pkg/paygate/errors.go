package paygate

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError 请求数据不合法（金额、支付方式等）
type ValidationError struct {
	Message string
}

// Error 实现 error 接口
func (e ValidationError) Error() string {
	return "validation failed: " + e.Message
}

// NotFoundError 支付记录、收据或同步条目不存在
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	return e.Resource + " not found"
}

// InvalidStateError 当前状态下不允许该操作，操作不产生任何副作用
type InvalidStateError struct {
	Op    string
	State string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("operation %s not allowed in state %s", e.Op, e.State)
}

// DeclinedError 授权被拒。属于业务上的预期结果而非系统故障
type DeclinedError struct {
	Reason string
}

func (e DeclinedError) Error() string {
	return "payment declined: " + e.Reason
}

// ApprovalRequiredError 金额达到阈值且尚未获得主管审批
type ApprovalRequiredError struct {
	Threshold decimal.Decimal
}

func (e ApprovalRequiredError) Error() string {
	return fmt.Sprintf("manager approval required for amounts >= %s", e.Threshold.StringFixed(2))
}
