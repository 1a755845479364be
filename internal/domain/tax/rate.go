// Package tax derives effective tax rates from tax-exclusive/inclusive amount
// pairs and snaps computed rates onto payment-method-specific legal tables.
package tax

import (
	"github.com/shopspring/decimal"

	"github.com/veloxpay/cartrecon/internal/domain/money"
)

var hundred = decimal.NewFromInt(100)

// DeriveRate computes the effective percentage rate implied by a tax-exclusive
// base and its tax-inclusive counterpart, rounded to two decimal places.
//
// A near-zero base or a near-equal pair yields exactly zero: shipping,
// wrapping and discount aggregates can legitimately be 0, and naive division
// would propagate Inf/NaN into the payment payload, while float noise in the
// pair must not surface as a spurious near-zero rate.
func DeriveRate(exclBase, inclAmount decimal.Decimal) decimal.Decimal {
	if money.IsZero(exclBase) || money.ApproxEqual(inclAmount, exclBase) {
		return decimal.Zero
	}
	return inclAmount.Sub(exclBase).Div(exclBase).Mul(hundred).Round(2)
}
