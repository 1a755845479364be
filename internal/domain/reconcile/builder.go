package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/veloxpay/cartrecon/internal/domain/money"
	"github.com/veloxpay/cartrecon/internal/domain/tax"
)

var one = decimal.NewFromInt(1)

var hundred = decimal.NewFromInt(100)

// InvalidQuantityError indicates a product line with a non-positive quantity.
// This is upstream data corruption and aborts the whole reconciliation.
type InvalidQuantityError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s, got %d", e.ProductID, e.Quantity)
}

// InvalidTaxRateError indicates a product line whose nominal rate is -100% or
// below, which leaves no tax-exclusive base to reconstruct.
type InvalidTaxRateError struct {
	ProductID string
	Rate      decimal.Decimal
}

func (e *InvalidTaxRateError) Error() string {
	return fmt.Sprintf("tax rate must be greater than -100 for product %s, got %s", e.ProductID, e.Rate)
}

// buildContext carries the per-call parameters shared by every builder.
type buildContext struct {
	currency string
	exponent int32
	policy   RoundingPolicy
	profile  *tax.Profile
}

// resolveUnitPrice applies the merchant's rounding policy to a raw
// tax-exclusive per-unit price. Only RoundPerItem rounds here; the other
// policies round later, when minor-unit amounts are summed for the
// transaction total, which is outside this engine.
func resolveUnitPrice(raw decimal.Decimal, policy RoundingPolicy, exponent int32) decimal.Decimal {
	if policy == RoundPerItem {
		return raw.Round(exponent)
	}
	return raw
}

// buildProductLine reconciles one cart line into a gateway line item.
func buildProductLine(bc buildContext, l CartLine) (LineItem, error) {
	if l.Quantity < 1 {
		return LineItem{}, &InvalidQuantityError{ProductID: l.ProductID, Quantity: l.Quantity}
	}

	rate := l.TaxRatePercent.Round(2)
	unitExcl := decimal.Zero

	// Gift lines are priced at exactly zero but still report the nominal rate
	// so the gateway's VAT breakdown stays internally consistent.
	if !l.IsGift {
		// A rate of -100% or below makes the divisor zero or negative; no
		// exclusive base can be reconstructed from such a line.
		divisor := one.Add(rate.Div(hundred))
		if money.IsZero(divisor) || divisor.IsNegative() {
			return LineItem{}, &InvalidTaxRateError{ProductID: l.ProductID, Rate: rate}
		}

		inclTotal := l.InclusiveTotal()
		exclTotal := inclTotal.Div(divisor)

		// When the exclusive candidate only differs from the inclusive total
		// by float noise, the line is a 0%-rate line; deciding this
		// deterministically keeps noise from flipping it positive.
		if money.ApproxEqual(exclTotal, inclTotal) {
			rate = decimal.Zero
			exclTotal = inclTotal
		}

		rawUnit := exclTotal.Div(decimal.NewFromInt(int64(l.Quantity)))
		unitExcl = resolveUnitPrice(rawUnit, bc.policy, bc.exponent)
	}

	return LineItem{
		Kind:           KindProduct,
		Name:           productDisplayName(l),
		MerchantItemID: productMerchantItemID(l),
		Quantity:       l.Quantity,
		UnitPrice: money.Amount{
			Value:    money.ToMinorUnits(unitExcl, bc.exponent),
			Currency: bc.currency,
		},
		TaxRatePercent: tax.Snap(rate, bc.profile),
	}, nil
}

// productMerchantItemID builds the stable per-line merchant item id:
// productId[-variantId][-gift].
func productMerchantItemID(l CartLine) string {
	id := l.ProductID
	if l.VariantID != "" {
		id += "-" + l.VariantID
	}
	if l.IsGift {
		id += "-gift"
	}
	return id
}

func productDisplayName(l CartLine) string {
	if l.VariantLabel != "" {
		return l.Name + " ( " + l.VariantLabel + " )"
	}
	return l.Name
}

// aggregateSpec describes how one cart-level aggregate becomes a synthetic
// line. The three synthetic kinds share the same four build steps and differ
// only in this small table, so the epsilon/derive/snap logic lives once.
type aggregateSpec struct {
	kind           LineKind
	merchantItemID string
	name           string
	excl           decimal.Decimal
	incl           decimal.Decimal
	// present is false when the aggregate's fields are absent from the cart
	// snapshot entirely (wrapping on platforms without gift wrap).
	present bool
	// alwaysEmit forces a line even for a zero amount. Shipping needs this:
	// the gateway's cart total must reconcile to the order total even when
	// shipping is free.
	alwaysEmit bool
	// negate flips the sign of the emitted amount (discounts are sent as
	// negative line amounts; the rate itself stays non-negative).
	negate bool
}

// buildAggregateLine reconciles one cart-level aggregate into its synthetic
// line. The bool result is false when the aggregate produces no line: absent,
// zero or negative amounts are treated as "not there" rather than errors, to
// keep checkout resilient to partial upstream data.
func buildAggregateLine(bc buildContext, spec aggregateSpec) (LineItem, bool) {
	if !spec.present {
		return LineItem{}, false
	}
	if !spec.alwaysEmit && (money.IsZero(spec.excl) || spec.excl.IsNegative()) {
		return LineItem{}, false
	}

	value := money.ToMinorUnits(spec.excl, bc.exponent)
	if spec.negate {
		value = -value
	}

	return LineItem{
		Kind:           spec.kind,
		Name:           spec.name,
		MerchantItemID: spec.merchantItemID,
		Quantity:       1,
		UnitPrice: money.Amount{
			Value:    value,
			Currency: bc.currency,
		},
		TaxRatePercent: tax.Snap(tax.DeriveRate(spec.excl, spec.incl), bc.profile),
	}, true
}

func discountSpec(s Summary) aggregateSpec {
	return aggregateSpec{
		kind:           KindDiscount,
		merchantItemID: MerchantItemDiscount,
		name:           MerchantItemDiscount,
		excl:           s.DiscountExcl,
		incl:           s.DiscountIncl,
		present:        true,
		negate:         true,
	}
}

func shippingSpec(s Summary) aggregateSpec {
	name := s.CarrierName
	if name == "" {
		name = MerchantItemShipping
	}
	return aggregateSpec{
		kind:           KindShipping,
		merchantItemID: MerchantItemShipping,
		name:           name,
		excl:           s.ShippingExcl,
		incl:           s.ShippingIncl,
		present:        true,
		alwaysEmit:     true,
	}
}

func wrappingSpec(s Summary) aggregateSpec {
	spec := aggregateSpec{
		kind:           KindWrapping,
		merchantItemID: MerchantItemWrapping,
		name:           MerchantItemWrapping,
	}
	if s.WrappingExcl == nil {
		return spec
	}
	spec.present = true
	spec.excl = *s.WrappingExcl
	if s.WrappingIncl != nil {
		spec.incl = *s.WrappingIncl
	} else {
		spec.incl = *s.WrappingExcl
	}
	return spec
}
