package reconcile

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/veloxpay/cartrecon/internal/domain/money"
	"github.com/veloxpay/cartrecon/internal/domain/tax"
)

// Assembler turns cart snapshots into ordered gateway line-item lists. It is
// a pure function of its inputs plus the two immutable lookup tables, so a
// single Assembler may serve concurrent reconciliation calls.
type Assembler struct {
	currencies money.Table
	profiles   tax.ProfileTable
}

// NewAssembler creates an Assembler over the given lookup tables. The tables
// must not be mutated after this call.
func NewAssembler(currencies money.Table, profiles tax.ProfileTable) *Assembler {
	return &Assembler{
		currencies: currencies,
		profiles:   profiles,
	}
}

// Request is the complete snapshot for one reconciliation call.
type Request struct {
	Lines    []CartLine
	Summary  Summary
	Currency string
	Policy   RoundingPolicy
	// Gateway is the payment method code (e.g. "BILLINK"); empty when the
	// method has no rate restrictions.
	Gateway string
}

// Result is the ordered line-item list plus the cart-level side computations.
type Result struct {
	Items         []LineItem
	TotalQuantity int
	TotalWeight   decimal.Decimal
	Description   string
}

// Build reconciles the cart into gateway line items in fixed order:
// products, discount, shipping, wrapping. Everything is created fresh from
// the snapshot; no state survives between calls.
func (a *Assembler) Build(req Request) (*Result, error) {
	exponent, err := a.currencies.Exponent(req.Currency)
	if err != nil {
		return nil, errors.Wrap(err, "resolve currency")
	}

	bc := buildContext{
		currency: req.Currency,
		exponent: exponent,
		policy:   req.Policy,
		profile:  a.profiles.Lookup(req.Gateway),
	}

	items := make([]LineItem, 0, len(req.Lines)+3)
	totalQty := 0
	totalWeight := decimal.Zero

	for _, line := range req.Lines {
		item, err := buildProductLine(bc, line)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		totalQty += line.Quantity
		totalWeight = totalWeight.Add(line.Weight.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	if item, ok := buildAggregateLine(bc, discountSpec(req.Summary)); ok {
		items = append(items, item)
	}
	if item, ok := buildAggregateLine(bc, shippingSpec(req.Summary)); ok {
		items = append(items, item)
	}
	if item, ok := buildAggregateLine(bc, wrappingSpec(req.Summary)); ok {
		items = append(items, item)
	}

	return &Result{
		Items:         items,
		TotalQuantity: totalQty,
		TotalWeight:   totalWeight,
		Description:   describe(totalQty),
	}, nil
}

func describe(totalQty int) string {
	if totalQty == 1 {
		return "Payment for 1 item"
	}
	return fmt.Sprintf("Payment for %d items", totalQty)
}
