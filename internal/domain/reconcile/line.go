package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/veloxpay/cartrecon/internal/domain/money"
)

// LineKind tags the origin of a reconciled line item.
type LineKind string

const (
	KindProduct  LineKind = "product"
	KindDiscount LineKind = "discount"
	KindShipping LineKind = "shipping"
	KindWrapping LineKind = "wrapping"
)

// Merchant item ids for the synthetic cart-level lines. Product lines use
// productId[-variantId][-gift] instead.
const (
	MerchantItemDiscount = "Discount"
	MerchantItemShipping = "Shipping"
	MerchantItemWrapping = "Wrapping"
)

// LineItem is a gateway-ready order line: an integer minor-unit tax-exclusive
// unit price plus an explicit tax rate. Items are immutable once produced and
// never outlive the reconciliation call that created them.
type LineItem struct {
	Kind           LineKind
	Name           string
	MerchantItemID string
	Quantity       int
	UnitPrice      money.Amount
	TaxRatePercent decimal.Decimal
}
