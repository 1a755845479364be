// Package money converts between major-unit decimal amounts and the integer
// minor-unit amounts the payment gateway expects, and centralizes the epsilon
// comparisons that absorb upstream floating-point noise.
package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// epsilon is the shared tolerance for all "effectively zero / effectively
// equal" decisions, for amounts and rates alike. Host platform fields are
// floats and routinely carry noise on the order of 1e-8; treating such values
// as distinct would manufacture phantom tax rates and charges.
var epsilon = decimal.New(1, -4)

// IsZero reports whether d is zero within the shared tolerance.
func IsZero(d decimal.Decimal) bool {
	return d.Abs().LessThan(epsilon)
}

// ApproxEqual reports whether a and b are equal within the shared tolerance.
func ApproxEqual(a, b decimal.Decimal) bool {
	return IsZero(a.Sub(b))
}

// InvalidAmountError indicates a NaN or infinite amount reached the money
// boundary. Such values are a contract violation: coercing them risks sending
// a corrupt amount to the gateway, so the whole reconciliation must abort.
type InvalidAmountError struct {
	Value float64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid monetary amount: %v", e.Value)
}

// FromFloat converts a host-platform float into a decimal amount, rejecting
// NaN and infinities with an InvalidAmountError.
func FromFloat(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, &InvalidAmountError{Value: v}
	}
	return decimal.NewFromFloat(v), nil
}

// Amount is an integer amount in a currency's minor unit (e.g. cents).
type Amount struct {
	Value    int64
	Currency string
}

// ToMinorUnits converts a major-unit amount to minor units, rounding half
// away from zero.
func ToMinorUnits(amount decimal.Decimal, exponent int32) int64 {
	return amount.Shift(exponent).Round(0).IntPart()
}

// FromMinorUnits is the exact inverse of ToMinorUnits.
func FromMinorUnits(value int64, exponent int32) decimal.Decimal {
	return decimal.New(value, -exponent)
}
