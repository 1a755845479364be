package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/veloxpay/cartrecon/internal/domain/money"
	"github.com/veloxpay/cartrecon/internal/domain/reconcile"
)

// decodeRequest parses the reconciliation request body.
func decodeRequest(data []byte) (reconcile.Request, error) {
	var req reconcile.Request

	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "currency":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "currency")
			}
			req.Currency = s
			return nil
		case "rounding_policy":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "rounding_policy")
			}
			policy, err := parsePolicy(s)
			if err != nil {
				return err
			}
			req.Policy = policy
			return nil
		case "gateway":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "gateway")
			}
			req.Gateway = s
			return nil
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				line, err := decodeCartLine(d)
				if err != nil {
					return err
				}
				req.Lines = append(req.Lines, line)
				return nil
			})
		case "summary":
			summary, err := decodeSummary(d)
			if err != nil {
				return err
			}
			req.Summary = summary
			return nil
		default:
			return d.Skip()
		}
	}); err != nil {
		return reconcile.Request{}, errors.Wrap(err, "decode request")
	}

	if req.Currency == "" {
		return reconcile.Request{}, errors.New("currency is required")
	}
	if req.Policy == "" {
		return reconcile.Request{}, errors.New("rounding_policy is required")
	}
	return req, nil
}

func parsePolicy(s string) (reconcile.RoundingPolicy, error) {
	switch reconcile.RoundingPolicy(s) {
	case reconcile.RoundPerItem, reconcile.RoundPerLine, reconcile.RoundPerTotal:
		return reconcile.RoundingPolicy(s), nil
	default:
		return "", errors.Errorf("unsupported rounding_policy: %q", s)
	}
}

func decodeCartLine(d *jx.Decoder) (reconcile.CartLine, error) {
	var line reconcile.CartLine

	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "product_id":
			line.ProductID, err = d.Str()
		case "variant_id":
			line.VariantID, err = d.Str()
		case "name":
			line.Name, err = d.Str()
		case "variant_label":
			line.VariantLabel, err = d.Str()
		case "quantity":
			line.Quantity, err = d.Int()
		case "is_gift":
			line.IsGift, err = d.Bool()
		case "weight":
			line.Weight, err = decodeDecimal(d)
		case "unit_price_excl":
			line.UnitPriceExcl, err = decodeDecimal(d)
		case "unit_price_incl":
			line.UnitPriceIncl, err = decodeDecimal(d)
		case "line_total_incl":
			line.LineTotalIncl, err = decodeOptDecimal(d)
		case "price_with_reduction":
			line.PriceWithReduction, err = decodeOptDecimal(d)
		case "tax_rate":
			line.TaxRatePercent, err = decodeDecimal(d)
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return line, err
}

func decodeSummary(d *jx.Decoder) (reconcile.Summary, error) {
	var s reconcile.Summary

	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "discount_excl":
			s.DiscountExcl, err = decodeDecimal(d)
		case "discount_incl":
			s.DiscountIncl, err = decodeDecimal(d)
		case "shipping_excl":
			s.ShippingExcl, err = decodeDecimal(d)
		case "shipping_incl":
			s.ShippingIncl, err = decodeDecimal(d)
		case "wrapping_excl":
			s.WrappingExcl, err = decodeOptDecimal(d)
		case "wrapping_incl":
			s.WrappingIncl, err = decodeOptDecimal(d)
		case "carrier_name":
			s.CarrierName, err = d.Str()
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return s, err
}

// decodeDecimal reads a JSON number through the money boundary so that any
// non-finite value is rejected as an InvalidAmountError.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	f, err := d.Float64()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return money.FromFloat(f)
}

func decodeOptDecimal(d *jx.Decoder) (*decimal.Decimal, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	dec, err := decodeDecimal(d)
	if err != nil {
		return nil, err
	}
	return &dec, nil
}

// encodeResult renders the reconciliation response. Line items use the
// gateway wire shape: integer minor-unit amount plus a two-decimal rate.
func encodeResult(id string, res *reconcile.Result) []byte {
	var e jx.Encoder

	e.ObjStart()
	e.FieldStart("reconciliation_id")
	e.Str(id)
	e.FieldStart("description")
	e.Str(res.Description)
	e.FieldStart("total_quantity")
	e.Int(res.TotalQuantity)
	e.FieldStart("total_weight")
	e.Num(jx.Num(res.TotalWeight.String()))

	e.FieldStart("items")
	e.ArrStart()
	for _, item := range res.Items {
		e.ObjStart()
		e.FieldStart("merchant_item_id")
		e.Str(item.MerchantItemID)
		e.FieldStart("name")
		e.Str(item.Name)
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		e.FieldStart("unit_price")
		e.ObjStart()
		e.FieldStart("amount")
		e.Int64(item.UnitPrice.Value)
		e.FieldStart("currency")
		e.Str(item.UnitPrice.Currency)
		e.ObjEnd()
		e.FieldStart("tax_rate")
		e.Num(jx.Num(item.TaxRatePercent.StringFixed(2)))
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()

	return e.Bytes()
}

func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
