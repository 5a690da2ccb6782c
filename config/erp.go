package config

import "pospay/pkg/config"

func init() {
	config.Add("erp", func() map[string]interface{} {
		return map[string]interface{}{
			// ERP 服务地址，留空则使用确定性的模拟客户端
			"base_url": config.Env("ERP_BASE_URL", ""),
			"api_key":  config.Env("ERP_API_KEY", ""),

			// 请求超时，单位：秒
			"timeout": config.Env("ERP_TIMEOUT", 10),

			// 对账轮询间隔，单位：秒
			"poll_interval": config.Env("ERP_POLL_INTERVAL", 10),

			// 失败转入 failed 状态的次数阈值（worker 仍会继续按周期重试）
			"retry_limit": config.Env("ERP_RETRY_LIMIT", 3),
		}
	})
}
