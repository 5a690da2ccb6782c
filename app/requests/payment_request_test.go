package requests

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonContext(t *testing.T, body string) *gin.Context {
	t.Helper()

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestValidateInitiatePayment(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid card", `{"client_payment_id":"c1","amount":120.0,"mode":"card"}`, false},
		{"valid cash with currency", `{"client_payment_id":"c2","amount":50,"mode":"cash","currency":"TND"}`, false},
		{"missing client id", `{"amount":120.0,"mode":"card"}`, true},
		{"missing amount", `{"client_payment_id":"c3","mode":"card"}`, true},
		{"zero amount", `{"client_payment_id":"c4","amount":0,"mode":"card"}`, true},
		{"negative amount", `{"client_payment_id":"c5","amount":-1,"mode":"cash"}`, true},
		{"unknown mode", `{"client_payment_id":"c6","amount":10,"mode":"cheque"}`, true},
		{"broken json", `{"client_payment_id":`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := ValidateInitiatePayment(jsonContext(t, tc.body))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, req.ClientPaymentID)
		})
	}
}

func TestValidateAuthorizePayment(t *testing.T) {
	req, err := ValidateAuthorizePayment(jsonContext(t,
		`{"card":{"number":"424242424242","expiry":"12/27","cvv":"123"}}`))
	require.NoError(t, err)
	assert.Equal(t, "424242424242", req.Card.Number)

	_, err = ValidateAuthorizePayment(jsonContext(t, `{"card":{"expiry":"12/27","cvv":"123"}}`))
	assert.Error(t, err)

	_, err = ValidateAuthorizePayment(jsonContext(t, `{}`))
	assert.Error(t, err)
}

func TestValidateActor(t *testing.T) {
	req, err := ValidateActor(jsonContext(t, `{"actor":"mgr1"}`))
	require.NoError(t, err)
	assert.Equal(t, "mgr1", req.Actor)

	_, err = ValidateActor(jsonContext(t, `{"actor":""}`))
	assert.Error(t, err)

	_, err = ValidateActor(jsonContext(t, `{}`))
	assert.Error(t, err)
}
