package paygate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"pospay/app/models/erpsync"
	"pospay/app/models/payment"
	"pospay/pkg/database"
	"pospay/pkg/database/migrations"
	"pospay/pkg/logger"
)

// setupTestDB 连接独立的内存数据库并迁移表结构
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	database.Connect(sqlite.Open(dsn), logger.NewGormLogger())
	// sqlite 单连接，避免内存库多连接下互相看不到数据
	database.SQLDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(migrations.RegisterTables()))
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	setupTestDB(t)

	return NewService(Config{
		ApprovalThreshold: decimal.NewFromFloat(1000.0),
		Currency:          "TND",
	}, NewSimulatedAuthorizer())
}

func initiateTestPayment(t *testing.T, svc *Service, clientID string, amount float64, mode payment.Mode) *payment.Payment {
	t.Helper()

	p, created, err := svc.Initiate(context.Background(), InitiateParams{
		ClientPaymentID: clientID,
		Amount:          decimal.NewFromFloat(amount),
		Mode:            string(mode),
	})
	require.NoError(t, err)
	require.True(t, created)
	return p
}

func TestInitiateIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, created, err := svc.Initiate(ctx, InitiateParams{
		ClientPaymentID: "cart-123-pay-1",
		Amount:          decimal.NewFromFloat(120.0),
		Mode:            string(payment.ModeCard),
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, string(payment.StatusInitiated), first.Status)
	assert.Equal(t, "TND", first.Currency)

	// 相同幂等键重放，即使金额不同也返回原记录，不会重复扣款
	second, created, err := svc.Initiate(ctx, InitiateParams{
		ClientPaymentID: "cart-123-pay-1",
		Amount:          decimal.NewFromFloat(999.0),
		Mode:            string(payment.ModeCard),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Amount.Equal(decimal.NewFromFloat(120.0)))

	var count int64
	require.NoError(t, database.DB.Model(&payment.Payment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInitiateConcurrentSameKey(t *testing.T) {
	svc := newTestService(t)

	const callers = 10
	ids := make([]uint64, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p, _, err := svc.Initiate(context.Background(), InitiateParams{
				ClientPaymentID: "cart-777-pay-1",
				Amount:          decimal.NewFromFloat(42.0),
				Mode:            string(payment.ModeCash),
			})
			if err == nil {
				ids[n] = p.ID
			}
		}(i)
	}
	wg.Wait()

	// 并发同键创建只会落一条记录，所有调用方观察到同一笔支付
	var count int64
	require.NoError(t, database.DB.Model(&payment.Payment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestInitiateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		params InitiateParams
	}{
		{"missing client id", InitiateParams{Amount: decimal.NewFromFloat(10), Mode: "cash"}},
		{"zero amount", InitiateParams{ClientPaymentID: "c1", Amount: decimal.Zero, Mode: "cash"}},
		{"negative amount", InitiateParams{ClientPaymentID: "c2", Amount: decimal.NewFromFloat(-5), Mode: "card"}},
		{"unknown mode", InitiateParams{ClientPaymentID: "c3", Amount: decimal.NewFromFloat(10), Mode: "cheque"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Initiate(ctx, tc.params)
			assert.ErrorAs(t, err, &ValidationError{})
		})
	}
}

func TestAuthorizeAcceptsEvenCardNumber(t *testing.T) {
	svc := newTestService(t)
	p := initiateTestPayment(t, svc, "pay-auth-1", 120.0, payment.ModeCard)

	authorized, err := svc.Authorize(context.Background(), p.ID, Card{
		Number: "424242424242",
		Expiry: "12/27",
		CVV:    "123",
	})
	require.NoError(t, err)
	assert.Equal(t, string(payment.StatusAuthorized), authorized.Status)
	assert.Equal(t, "provider:authorized", authorized.Detail)

	// 已授权后不允许重复授权
	_, err = svc.Authorize(context.Background(), p.ID, Card{Number: "424242424242", Expiry: "12/27", CVV: "123"})
	assert.ErrorAs(t, err, &InvalidStateError{})
}

func TestAuthorizeDeclinesOddCardNumber(t *testing.T) {
	svc := newTestService(t)
	p := initiateTestPayment(t, svc, "pay-auth-2", 120.0, payment.ModeCard)

	_, err := svc.Authorize(context.Background(), p.ID, Card{
		Number: "4242424242421",
		Expiry: "12/27",
		CVV:    "123",
	})

	var declined DeclinedError
	require.ErrorAs(t, err, &declined)
	assert.Equal(t, ReasonBankDecline, declined.Reason)

	// 拒绝是终态，且必须落库
	stored, getErr := svc.Get(context.Background(), p.ID)
	require.NoError(t, getErr)
	assert.Equal(t, string(payment.StatusDeclined), stored.Status)
	assert.Equal(t, "provider:bank_decline", stored.Detail)
}

func TestAuthorizeRejectsMalformedCard(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name   string
		card   Card
		reason string
	}{
		{"short number", Card{Number: "42424", Expiry: "12/27", CVV: "123"}, ReasonInvalidCardNumber},
		{"non numeric", Card{Number: "42424242424x", Expiry: "12/27", CVV: "123"}, ReasonInvalidCardNumber},
		{"bad cvv", Card{Number: "424242424242", Expiry: "12/27", CVV: "12"}, ReasonInvalidCVV},
		{"bad expiry", Card{Number: "424242424242", Expiry: "1227", CVV: "123"}, ReasonInvalidExpiry},
	}

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := initiateTestPayment(t, svc, fmt.Sprintf("pay-malformed-%d", i), 50.0, payment.ModeCard)

			_, err := svc.Authorize(context.Background(), p.ID, tc.card)

			var declined DeclinedError
			require.ErrorAs(t, err, &declined)
			assert.Equal(t, tc.reason, declined.Reason)
		})
	}
}

func TestAuthorizeCashPaymentFails(t *testing.T) {
	svc := newTestService(t)
	p := initiateTestPayment(t, svc, "pay-cash-auth", 50.0, payment.ModeCash)

	_, err := svc.Authorize(context.Background(), p.ID, Card{Number: "424242424242", Expiry: "12/27", CVV: "123"})
	assert.ErrorAs(t, err, &InvalidStateError{})

	// 不产生任何副作用
	stored, getErr := svc.Get(context.Background(), p.ID)
	require.NoError(t, getErr)
	assert.Equal(t, string(payment.StatusInitiated), stored.Status)
}

func TestConfirmCashDirectly(t *testing.T) {
	svc := newTestService(t)
	p := initiateTestPayment(t, svc, "pay-cash-1", 50.0, payment.ModeCash)

	rc, err := svc.Confirm(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("RCPT-%d-%d", p.ID, p.CreatedAt.Unix()), rc.ReceiptNumber)
	assert.True(t, rc.Amount.Equal(decimal.NewFromFloat(50.0)))

	// 确认、收据、同步条目在同一事务内生效
	stored, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, string(payment.StatusConfirmed), stored.Status)

	var entry erpsync.ErpSync
	require.NoError(t, database.DB.Where("payment_id = ?", p.ID).First(&entry).Error)
	assert.Equal(t, string(erpsync.StatePending), entry.SyncState)
}

func TestConfirmCardRequiresAuthorization(t *testing.T) {
	svc := newTestService(t)
	p := initiateTestPayment(t, svc, "pay-card-unauth", 120.0, payment.ModeCard)

	_, err := svc.Confirm(context.Background(), p.ID)
	assert.ErrorAs(t, err, &InvalidStateError{})
}

func TestConfirmCardAfterAuthorization(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	p := initiateTestPayment(t, svc, "pay-card-ok", 120.0, payment.ModeCard)

	_, err := svc.Authorize(ctx, p.ID, Card{Number: "424242424242", Expiry: "12/27", CVV: "123"})
	require.NoError(t, err)

	rc, err := svc.Confirm(ctx, p.ID)
	require.NoError(t, err)

	// 收据编号可以反查
	found, err := svc.GetReceipt(ctx, rc.ReceiptNumber)
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.PaymentID)
}

func TestConfirmIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	p := initiateTestPayment(t, svc, "pay-idem-confirm", 60.0, payment.ModeCash)

	first, err := svc.Confirm(ctx, p.ID)
	require.NoError(t, err)

	second, err := svc.Confirm(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ReceiptNumber, second.ReceiptNumber)
	assert.Equal(t, first.ID, second.ID)

	// 重复确认不产生新的同步条目
	var count int64
	require.NoError(t, database.DB.Model(&erpsync.ErpSync{}).Where("payment_id = ?", p.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApprovalGate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	p := initiateTestPayment(t, svc, "pay-big-cash", 1500.0, payment.ModeCash)

	// 未审批时确认被闸门拦下
	_, err := svc.Confirm(ctx, p.ID)
	var gate ApprovalRequiredError
	require.ErrorAs(t, err, &gate)
	assert.True(t, gate.Threshold.Equal(decimal.NewFromFloat(1000.0)))

	stored, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, string(payment.StatusAwaitingApproval), stored.Status)

	// 审批只打开闸门，不改变状态
	approved, err := svc.Approve(ctx, p.ID, "mgr1")
	require.NoError(t, err)
	assert.Equal(t, "mgr1", approved.ApprovedBy)
	assert.Equal(t, string(payment.StatusAwaitingApproval), approved.Status)

	// 审批后确认成功
	rc, err := svc.Confirm(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, rc.ReceiptNumber)
}

func TestApprovalGateAtExactThreshold(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	p := initiateTestPayment(t, svc, "pay-exact", 1000.0, payment.ModeCash)

	// 阈值判定是大于等于
	_, err := svc.Confirm(ctx, p.ID)
	assert.ErrorAs(t, err, &ApprovalRequiredError{})
}

func TestApprovePersistsAcrossAttempts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	p := initiateTestPayment(t, svc, "pay-card-big", 2000.0, payment.ModeCard)

	_, err := svc.Authorize(ctx, p.ID, Card{Number: "424242424242", Expiry: "12/27", CVV: "123"})
	require.NoError(t, err)

	// 授权后直接审批（不必先撞一次闸门）
	_, err = svc.Approve(ctx, p.ID, "mgr2")
	require.NoError(t, err)

	rc, err := svc.Confirm(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, rc.ReceiptNumber)
}

func TestApproveInvalidCases(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	small := initiateTestPayment(t, svc, "pay-small", 10.0, payment.ModeCash)
	_, err := svc.Approve(ctx, small.ID, "mgr1")
	assert.ErrorAs(t, err, &InvalidStateError{}, "低于阈值的支付无需审批")

	big := initiateTestPayment(t, svc, "pay-big", 3000.0, payment.ModeCash)
	_, err = svc.Approve(ctx, big.ID, "")
	assert.ErrorAs(t, err, &ValidationError{})

	_, err = svc.Approve(ctx, big.ID, "mgr1")
	require.NoError(t, err)
	_, err = svc.Approve(ctx, big.ID, "mgr2")
	assert.ErrorAs(t, err, &InvalidStateError{}, "审批一经授予不可重复授予")
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), 99999)
	assert.ErrorAs(t, err, &NotFoundError{})

	_, err = svc.GetReceipt(context.Background(), "RCPT-0-0")
	assert.ErrorAs(t, err, &NotFoundError{})
}

func TestListNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		initiateTestPayment(t, svc, fmt.Sprintf("pay-list-%d", i), 10.0, payment.ModeCash)
	}

	payments, err := svc.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, payments, 3)

	// limit 不合法时退回默认值
	payments, err = svc.List(ctx, -1)
	require.NoError(t, err)
	assert.Len(t, payments, 5)
}
