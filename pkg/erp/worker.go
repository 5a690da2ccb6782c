package erp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pospay/app/models/erpsync"
	"pospay/app/repositories"
	"pospay/pkg/logger"
)

// WorkerConfig 对账 worker 配置
type WorkerConfig struct {
	PollInterval    time.Duration // 轮询间隔
	RetryLimit      int           // 失败转入 failed 状态的次数阈值
	ShutdownTimeout time.Duration // 关闭超时时间
}

// Worker ERP 对账 worker
// 独立于请求处理的单个后台任务，按固定间隔扫描待同步条目并尝试同步。
// 同步条目创建后由 worker 独占写入，同步失败只记录为数据，从不向任何调用方抛出
type Worker struct {
	client   Client
	payments *repositories.PaymentRepository
	entries  *repositories.ErpSyncRepository
	config   WorkerConfig
	metrics  *Metrics
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewWorker 创建对账 worker
func NewWorker(client Client, config WorkerConfig) *Worker {
	if config.PollInterval <= 0 {
		config.PollInterval = 10 * time.Second
	}
	if config.RetryLimit <= 0 {
		config.RetryLimit = 3
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	return &Worker{
		client:   client,
		payments: repositories.NewPaymentRepository(),
		entries:  repositories.NewErpSyncRepository(),
		config:   config,
		metrics:  NewMetrics(),
		stopChan: make(chan struct{}),
	}
}

// Start 启动 worker
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Worker) run() {
	defer w.wg.Done()

	logger.InfoString("ERP", "Worker", "reconciliation worker started")

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			logger.InfoString("ERP", "Worker", "reconciliation worker stopping")
			return
		case <-ticker.C:
			if err := w.RunCycle(context.Background()); err != nil {
				logger.ErrorString("ERP", "Cycle", err.Error())
			}
		}
	}
}

// RunCycle 执行一轮对账：扫描全部未同步完成的条目并逐条尝试同步
func (w *Worker) RunCycle(ctx context.Context) error {
	w.metrics.RecordCycle()

	entries, err := w.entries.ListUnsynced(ctx)
	if err != nil {
		return fmt.Errorf("list unsynced entries: %w", err)
	}

	for i := range entries {
		w.processEntry(ctx, &entries[i])
	}
	return nil
}

// processEntry 处理单个同步条目
func (w *Worker) processEntry(ctx context.Context, entry *erpsync.ErpSync) {
	p, err := w.payments.GetByID(ctx, entry.PaymentID)
	if err != nil || !p.IsConfirmed() {
		// 孤儿条目：对应的支付不存在或未确认，直接清理
		if delErr := w.entries.Delete(ctx, entry); delErr != nil {
			logger.ErrorString("ERP", "Cleanup", delErr.Error())
			return
		}
		w.metrics.RecordOrphaned()
		return
	}

	if syncErr := w.client.SyncPayment(ctx, p); syncErr != nil {
		if err := w.entries.RecordFailure(ctx, entry, w.config.RetryLimit); err != nil {
			logger.ErrorString("ERP", "RecordFailure", err.Error())
			return
		}
		w.metrics.RecordFailed()
		if entry.Attempts >= w.config.RetryLimit {
			logger.WarnString("ERP", "Sync",
				fmt.Sprintf("payment %d still unsynced after %d attempts, waiting for admin", entry.PaymentID, entry.Attempts))
		}
		return
	}

	if err := w.entries.RecordSuccess(ctx, entry); err != nil {
		logger.ErrorString("ERP", "RecordSuccess", err.Error())
		return
	}
	w.metrics.RecordSynced()
}

// Stop 优雅关闭 worker
func (w *Worker) Stop() {
	close(w.stopChan)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoString("ERP", "Worker", "reconciliation worker stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		logger.WarnString("ERP", "Worker", "reconciliation worker shutdown timed out")
	}
}

// Metrics 当前指标快照
func (w *Worker) Metrics() Snapshot {
	return w.metrics.Snapshot()
}
