package erp

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pospay/app/models/erpsync"
	"pospay/app/models/payment"
	"pospay/app/repositories"
	"pospay/pkg/database"
	"pospay/pkg/database/migrations"
	"pospay/pkg/logger"
	"pospay/pkg/paygate"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	database.Connect(sqlite.Open(dsn), logger.NewGormLogger())
	database.SQLDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(migrations.RegisterTables()))
}

// confirmCashPayment 走完整生命周期创建一笔已确认的支付
// sqlite 自增主键从 1 开始，调用顺序决定支付 ID 的奇偶
func confirmCashPayment(t *testing.T, svc *paygate.Service, clientID string) *payment.Payment {
	t.Helper()
	ctx := context.Background()

	p, _, err := svc.Initiate(ctx, paygate.InitiateParams{
		ClientPaymentID: clientID,
		Amount:          decimal.NewFromFloat(50.0),
		Mode:            string(payment.ModeCash),
	})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, p.ID)
	require.NoError(t, err)

	confirmed, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	return confirmed
}

func newTestWorker(t *testing.T) (*Worker, *paygate.Service, *repositories.ErpSyncRepository) {
	t.Helper()
	setupTestDB(t)

	svc := paygate.NewService(paygate.Config{
		ApprovalThreshold: decimal.NewFromFloat(1000.0),
		Currency:          "TND",
	}, paygate.NewSimulatedAuthorizer())

	worker := NewWorker(SimulatedClient{}, WorkerConfig{
		PollInterval: time.Hour, // 测试里手动驱动周期
		RetryLimit:   3,
	})
	return worker, svc, repositories.NewErpSyncRepository()
}

func TestRunCycleSyncsEvenPaymentIDs(t *testing.T) {
	worker, svc, entries := newTestWorker(t)
	ctx := context.Background()

	odd := confirmCashPayment(t, svc, "sale-1")  // ID 1
	even := confirmCashPayment(t, svc, "sale-2") // ID 2
	require.Equal(t, uint64(1), odd.ID)
	require.Equal(t, uint64(2), even.ID)

	require.NoError(t, worker.RunCycle(ctx))

	// 偶数 ID 同步成功
	var evenEntry erpsync.ErpSync
	require.NoError(t, database.DB.Where("payment_id = ?", even.ID).First(&evenEntry).Error)
	assert.Equal(t, string(erpsync.StateSynced), evenEntry.SyncState)
	assert.Equal(t, 1, evenEntry.Attempts)
	assert.NotNil(t, evenEntry.LastAttemptAt)

	// 奇数 ID 失败但保留在队列里
	oddEntry, err := entries.GetUnsyncedByPaymentID(ctx, odd.ID)
	require.NoError(t, err)
	assert.Equal(t, string(erpsync.StatePending), oddEntry.SyncState)
	assert.Equal(t, 1, oddEntry.Attempts)

	snap := worker.Metrics()
	assert.Equal(t, int64(1), snap.Cycles)
	assert.Equal(t, int64(1), snap.Synced)
	assert.Equal(t, int64(1), snap.Failed)
}

func TestEntryTurnsFailedAtRetryLimit(t *testing.T) {
	worker, svc, entries := newTestWorker(t)
	ctx := context.Background()

	odd := confirmCashPayment(t, svc, "sale-1") // ID 1，永远同步失败

	// 前两轮仍是 pending
	for i := 0; i < 2; i++ {
		require.NoError(t, worker.RunCycle(ctx))
		entry, err := entries.GetUnsyncedByPaymentID(ctx, odd.ID)
		require.NoError(t, err)
		assert.Equal(t, string(erpsync.StatePending), entry.SyncState)
	}

	// 第三轮达到重试阈值，转为 failed 供管理端识别
	require.NoError(t, worker.RunCycle(ctx))
	entry, err := entries.GetUnsyncedByPaymentID(ctx, odd.ID)
	require.NoError(t, err)
	assert.Equal(t, string(erpsync.StateFailed), entry.SyncState)
	assert.Equal(t, 3, entry.Attempts)

	// failed 不是终态，worker 继续重试
	require.NoError(t, worker.RunCycle(ctx))
	entry, err = entries.GetUnsyncedByPaymentID(ctx, odd.ID)
	require.NoError(t, err)
	assert.Equal(t, string(erpsync.StateFailed), entry.SyncState)
	assert.Equal(t, 4, entry.Attempts)
}

func TestRunCycleCleansOrphanEntries(t *testing.T) {
	worker, svc, entries := newTestWorker(t)
	ctx := context.Background()

	// 条目指向不存在的支付
	require.NoError(t, entries.Create(ctx, &erpsync.ErpSync{
		PaymentID: 999,
		SyncState: string(erpsync.StatePending),
	}))

	// 条目指向未确认的支付
	p, _, err := svc.Initiate(ctx, paygate.InitiateParams{
		ClientPaymentID: "sale-unconfirmed",
		Amount:          decimal.NewFromFloat(10.0),
		Mode:            string(payment.ModeCash),
	})
	require.NoError(t, err)
	require.NoError(t, entries.Create(ctx, &erpsync.ErpSync{
		PaymentID: p.ID,
		SyncState: string(erpsync.StatePending),
	}))

	require.NoError(t, worker.RunCycle(ctx))

	var count int64
	require.NoError(t, database.DB.Model(&erpsync.ErpSync{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	assert.Equal(t, int64(2), worker.Metrics().Orphaned)
}

func TestForceSync(t *testing.T) {
	worker, svc, entries := newTestWorker(t)
	ctx := context.Background()

	odd := confirmCashPayment(t, svc, "sale-1") // ID 1，自动同步永远失败
	require.NoError(t, worker.RunCycle(ctx))

	entry, err := entries.ForceSync(ctx, odd.ID, "admin1")
	require.NoError(t, err)
	assert.Equal(t, string(erpsync.StateSynced), entry.SyncState)
	assert.True(t, entry.Forced)
	assert.Equal(t, "admin1", entry.ForcedBy)
	assert.Equal(t, 2, entry.Attempts)

	// 已同步的条目不能再次强制同步
	_, err = entries.ForceSync(ctx, odd.ID, "admin1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 不存在的支付同理
	_, err = entries.ForceSync(ctx, 999, "admin1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 强制同步后 worker 不再碰这个条目
	require.NoError(t, worker.RunCycle(ctx))
	var stored erpsync.ErpSync
	require.NoError(t, database.DB.Where("payment_id = ?", odd.ID).First(&stored).Error)
	assert.Equal(t, 2, stored.Attempts)
}

func TestWorkerStartStop(t *testing.T) {
	setupTestDB(t)

	worker := NewWorker(SimulatedClient{}, WorkerConfig{
		PollInterval:    5 * time.Millisecond,
		RetryLimit:      3,
		ShutdownTimeout: time.Second,
	})

	worker.Start()
	time.Sleep(30 * time.Millisecond)
	worker.Stop()

	assert.GreaterOrEqual(t, worker.Metrics().Cycles, int64(1))
}
