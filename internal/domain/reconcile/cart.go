// Package reconcile turns a tax-inclusive cart snapshot into the discrete
// tax-exclusive line items a payment gateway order request expects, such that
// re-applying each line's tax rate and summing reproduces the cart's original
// tax-inclusive total within a few minor units.
package reconcile

import "github.com/shopspring/decimal"

// RoundingPolicy is the merchant's configuration of when fractional-cent
// rounding is applied when the host platform computes line totals.
type RoundingPolicy string

const (
	// RoundPerItem rounds each unit's tax-exclusive price to the currency's
	// precision before multiplying by quantity, avoiding one-cent drift on
	// large-quantity lines.
	RoundPerItem RoundingPolicy = "item"
	// RoundPerLine rounds once per line; unit prices stay unrounded here.
	RoundPerLine RoundingPolicy = "line"
	// RoundPerTotal rounds only on the grand total; unit prices stay unrounded here.
	RoundPerTotal RoundingPolicy = "total"
)

// CartLine is one product line from the host platform's cart snapshot.
// All prices are as supplied by the platform and may carry float noise.
type CartLine struct {
	ProductID    string
	VariantID    string
	Name         string
	VariantLabel string
	Quantity     int
	// UnitPriceExcl is informational; the engine recomputes the exclusive
	// price from the inclusive total to stay consistent with the platform's
	// own rounding.
	UnitPriceExcl decimal.Decimal
	UnitPriceIncl decimal.Decimal
	// LineTotalIncl is the authoritative tax-inclusive total when present.
	LineTotalIncl *decimal.Decimal
	// PriceWithReduction is a platform-specific reduced unit price populated
	// by some cart states (group discounts, specific prices).
	PriceWithReduction *decimal.Decimal
	TaxRatePercent     decimal.Decimal
	IsGift             bool
	Weight             decimal.Decimal
}

// inclusiveTotalSources lists, in precedence order, the fields that can carry
// a line's tax-inclusive total. Different cart states populate different
// fields as the current truth, so the chain is explicit and testable.
var inclusiveTotalSources = []func(CartLine) (decimal.Decimal, bool){
	lineTotalSource,
	unitPriceSource,
	reducedPriceSource,
}

// InclusiveTotal resolves the line's authoritative tax-inclusive total
// through the fallback chain. It returns zero when no source applies.
func (l CartLine) InclusiveTotal() decimal.Decimal {
	for _, source := range inclusiveTotalSources {
		if total, ok := source(l); ok {
			return total
		}
	}
	return decimal.Zero
}

func lineTotalSource(l CartLine) (decimal.Decimal, bool) {
	if l.LineTotalIncl == nil {
		return decimal.Decimal{}, false
	}
	return *l.LineTotalIncl, true
}

func unitPriceSource(l CartLine) (decimal.Decimal, bool) {
	if l.UnitPriceIncl.IsZero() {
		return decimal.Decimal{}, false
	}
	return l.UnitPriceIncl.Mul(decimal.NewFromInt(int64(l.Quantity))), true
}

func reducedPriceSource(l CartLine) (decimal.Decimal, bool) {
	if l.PriceWithReduction == nil {
		return decimal.Decimal{}, false
	}
	return l.PriceWithReduction.Mul(decimal.NewFromInt(int64(l.Quantity))), true
}

// Summary holds the cart-level aggregates, each expressed both tax-exclusive
// and tax-inclusive. The difference between a pair is the tax actually
// applied, which may correspond to a blended rate when the underlying base
// spans several VAT rates.
type Summary struct {
	DiscountExcl decimal.Decimal
	DiscountIncl decimal.Decimal
	ShippingExcl decimal.Decimal
	ShippingIncl decimal.Decimal
	WrappingExcl *decimal.Decimal
	WrappingIncl *decimal.Decimal
	CarrierName  string
}
