package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestDeriveRate(t *testing.T) {
	tests := []struct {
		name string
		excl string
		incl string
		want string
	}{
		{"standard 21% VAT", "10.00", "12.10", "21"},
		{"standard 10% VAT", "50.00", "55.00", "10"},
		{"blended rate rounds to 2 places", "30.00", "35.445", "18.15"},
		{"zero base yields zero", "0", "6.05", "0"},
		{"near-zero base yields zero", "0.00000001", "6.05", "0"},
		{"equal pair yields zero", "5.00", "5.00", "0"},
		{"noisy equal pair yields zero", "10.00", "10.00000001", "0"},
		{"free shipping", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveRate(d(tt.excl), d(tt.incl))
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

// A pair differing by less than the shared tolerance must produce exactly
// zero, never a near-zero noise rate.
func TestDeriveRateEpsilonIdempotence(t *testing.T) {
	got := DeriveRate(d("100.00"), d("100.00005"))
	assert.True(t, got.Equal(decimal.Zero))
	assert.Equal(t, "0", got.String())
}
