package paygate

import (
	"github.com/shopspring/decimal"

	"pospay/pkg/config"
)

// Config 支付核心的进程级配置
// 启动时构建一次后注入 Service，运行期间只读
type Config struct {
	// ApprovalThreshold 主管审批阈值，金额达到该值的支付确认前必须审批
	ApprovalThreshold decimal.Decimal
	// Currency 默认币种
	Currency string
}

// LoadConfig 从配置信息构建 Config
func LoadConfig() Config {
	return Config{
		ApprovalThreshold: decimal.NewFromFloat(config.GetFloat64("payment.approval_threshold", 1000.0)),
		Currency:          config.GetString("payment.currency", "TND"),
	}
}
