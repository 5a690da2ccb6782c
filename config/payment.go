package config

import "pospay/pkg/config"

func init() {
	config.Add("payment", func() map[string]interface{} {
		return map[string]interface{}{
			// 主管审批阈值，金额达到该值的支付确认前必须主管审批
			"approval_threshold": config.Env("MANAGER_APPROVAL_THRESHOLD", 1000.0),

			// 默认币种
			"currency": config.Env("PAYMENT_CURRENCY", "TND"),
		}
	})
}
