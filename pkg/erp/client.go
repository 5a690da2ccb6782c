// Package erp ERP 对账：同步客户端与后台 worker
package erp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"pospay/app/models/payment"
)

// ErrSyncRejected ERP 端拒绝了本次同步
var ErrSyncRejected = errors.New("erp rejected payment sync")

// Client ERP 同步能力接口
// worker 只依赖这个接口，接入真实 ERP 时替换实现即可
type Client interface {
	SyncPayment(ctx context.Context, p *payment.Payment) error
}

// ClientConfig ERP 客户端配置
type ClientConfig struct {
	BaseURL string        // 为空时使用模拟客户端
	APIKey  string
	Timeout time.Duration
}

// NewClient 根据配置选择客户端实现
func NewClient(cfg ClientConfig) Client {
	if cfg.BaseURL != "" {
		return NewHTTPClient(cfg)
	}
	return SimulatedClient{}
}

// SimulatedClient 模拟 ERP 客户端
// 判定规则是确定性的：支付 ID 为偶数则同步成功，
// 奇数永远失败，模拟需要人工介入的系统性外部故障
type SimulatedClient struct{}

// SyncPayment 模拟同步
func (SimulatedClient) SyncPayment(ctx context.Context, p *payment.Payment) error {
	if p.ID%2 == 0 {
		return nil
	}
	return ErrSyncRejected
}

// HTTPClient 真实 ERP 的 HTTP 客户端
type HTTPClient struct {
	client *resty.Client
	apiKey string
}

// NewHTTPClient 创建 HTTP 客户端
func NewHTTPClient(cfg ClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	return &HTTPClient{
		client: client,
		apiKey: cfg.APIKey,
	}
}

// SyncPayment 推送一笔已确认的支付到 ERP
func (c *HTTPClient) SyncPayment(ctx context.Context, p *payment.Payment) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey)).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"payment_id":        p.ID,
			"client_payment_id": p.ClientPaymentID,
			"amount":            p.Amount.StringFixed(2),
			"currency":          p.Currency,
			"mode":              p.Mode,
			"confirmed_at":      p.UpdatedAt.Format(time.RFC3339),
		}).
		Post("/payments")
	if err != nil {
		return fmt.Errorf("erp sync request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d", ErrSyncRejected, resp.StatusCode())
	}
	return nil
}
