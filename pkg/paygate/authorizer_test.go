package paygate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimulatedAuthorizerIsDeterministic(t *testing.T) {
	auth := NewSimulatedAuthorizer()
	card := Card{Number: "4242424242424242", Expiry: "12/27", CVV: "123"}

	first := auth.Authorize(card)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, auth.Authorize(card))
	}
}

func TestSimulatedAuthorizerParity(t *testing.T) {
	auth := NewSimulatedAuthorizer()

	for digit := byte('0'); digit <= '9'; digit++ {
		card := Card{Number: "42424242424" + string(digit), Expiry: "12/27", CVV: "123"}
		decision := auth.Authorize(card)

		even := (digit-'0')%2 == 0
		assert.Equal(t, even, decision.Accepted, "末位 %c", digit)
		if even {
			assert.Equal(t, ReasonAuthorized, decision.Reason)
		} else {
			assert.Equal(t, ReasonBankDecline, decision.Reason)
		}
	}
}

func TestSimulatedAuthorizerShapeChecks(t *testing.T) {
	auth := NewSimulatedAuthorizer()

	cases := []struct {
		name   string
		card   Card
		reason string
	}{
		{"empty number", Card{Expiry: "12/27", CVV: "123"}, ReasonInvalidCardNumber},
		{"too short", Card{Number: "4242", Expiry: "12/27", CVV: "123"}, ReasonInvalidCardNumber},
		{"too long", Card{Number: "42424242424242424242", Expiry: "12/27", CVV: "123"}, ReasonInvalidCardNumber},
		{"letters in number", Card{Number: "42424242424a", Expiry: "12/27", CVV: "123"}, ReasonInvalidCardNumber},
		{"cvv too short", Card{Number: "424242424242", Expiry: "12/27", CVV: "12"}, ReasonInvalidCVV},
		{"cvv letters", Card{Number: "424242424242", Expiry: "12/27", CVV: "abc"}, ReasonInvalidCVV},
		{"expiry without slash", Card{Number: "424242424242", Expiry: "1227", CVV: "123"}, ReasonInvalidExpiry},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := auth.Authorize(tc.card)
			assert.False(t, decision.Accepted)
			assert.Equal(t, tc.reason, decision.Reason)
		})
	}
}
