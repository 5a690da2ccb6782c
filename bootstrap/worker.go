package bootstrap

import (
	"time"

	"pospay/pkg/config"
	"pospay/pkg/erp"
	"pospay/pkg/logger"
)

// SetupWorker 初始化 ERP 对账 worker
// 返回 worker 实例供主流程在关闭时优雅停止
func SetupWorker() *erp.Worker {
	client := erp.NewClient(erp.ClientConfig{
		BaseURL: config.GetString("erp.base_url"),
		APIKey:  config.GetString("erp.api_key"),
		Timeout: time.Duration(config.GetInt("erp.timeout", 10)) * time.Second,
	})

	worker := erp.NewWorker(client, erp.WorkerConfig{
		PollInterval:    time.Duration(config.GetInt("erp.poll_interval", 10)) * time.Second,
		RetryLimit:      config.GetInt("erp.retry_limit", 3),
		ShutdownTimeout: 30 * time.Second,
	})

	worker.Start()

	logger.InfoString("ERP", "Setup", "对账 worker 启动成功")
	return worker
}
