package limiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimit(t *testing.T) {
	cases := []struct {
		limit string
		want  float64
	}{
		{"5-S", 5},
		{"60-M", 1},
		{"3600-H", 1},
		{"86400-D", 1},
	}

	for _, tc := range cases {
		t.Run(tc.limit, func(t *testing.T) {
			rate, err := ParseLimit(tc.limit)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, rate.Rate, 0.0001)
		})
	}
}

func TestParseLimitInvalid(t *testing.T) {
	for _, limit := range []string{"", "10", "abc-S", "10-X", "10-M-S"} {
		t.Run(limit, func(t *testing.T) {
			_, err := ParseLimit(limit)
			assert.Error(t, err)
		})
	}
}
