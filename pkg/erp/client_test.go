package erp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pospay/app/models/payment"
)

func TestSimulatedClientParity(t *testing.T) {
	client := SimulatedClient{}
	ctx := context.Background()

	assert.NoError(t, client.SyncPayment(ctx, &payment.Payment{ID: 2}))
	assert.NoError(t, client.SyncPayment(ctx, &payment.Payment{ID: 100}))
	assert.ErrorIs(t, client.SyncPayment(ctx, &payment.Payment{ID: 1}), ErrSyncRejected)
	assert.ErrorIs(t, client.SyncPayment(ctx, &payment.Payment{ID: 99}), ErrSyncRejected)
}

func TestNewClientPicksImplementation(t *testing.T) {
	assert.IsType(t, SimulatedClient{}, NewClient(ClientConfig{}))
	assert.IsType(t, &HTTPClient{}, NewClient(ClientConfig{BaseURL: "http://erp.local"}))
}

func TestHTTPClientSyncPayment(t *testing.T) {
	var gotAuth string
	status := http.StatusOK

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(status)
	}))
	defer server.Close()

	client := NewHTTPClient(ClientConfig{
		BaseURL: server.URL,
		APIKey:  "secret",
		Timeout: 5 * time.Second,
	})

	p := &payment.Payment{
		ID:              2,
		ClientPaymentID: "sale-2",
		Amount:          decimal.NewFromFloat(50.0),
		Currency:        "TND",
		Mode:            string(payment.ModeCash),
	}

	require.NoError(t, client.SyncPayment(context.Background(), p))
	assert.Equal(t, "Bearer secret", gotAuth)

	// ERP 返回错误状态码时视为拒绝
	status = http.StatusInternalServerError
	assert.ErrorIs(t, client.SyncPayment(context.Background(), p), ErrSyncRejected)
}
