//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestReconcile_ProductAndShipping(t *testing.T) {
	resp := doPost(t, "/api/reconcile", `{
		"currency": "EUR",
		"rounding_policy": "line",
		"items": [
			{
				"product_id": "101",
				"name": "Widget",
				"quantity": 2,
				"unit_price_excl": 10.00,
				"unit_price_incl": 12.10,
				"line_total_incl": 24.20,
				"tax_rate": 21
			}
		],
		"summary": {
			"shipping_excl": 5.00,
			"shipping_incl": 6.05,
			"carrier_name": "PostNL"
		}
	}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	got := decodeJSON[reconcileResponse](t, resp)

	if !uuidPattern.MatchString(got.ReconciliationID) {
		t.Errorf("reconciliation_id: got %q, want a UUID", got.ReconciliationID)
	}
	if got.Description != "Payment for 2 items" {
		t.Errorf("description: got %q", got.Description)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items: got %d, want 2", len(got.Items))
	}

	product := got.Items[0]
	if product.UnitPrice.Amount != 1000 || product.UnitPrice.Currency != "EUR" {
		t.Errorf("product unit price: got %+v", product.UnitPrice)
	}
	if product.TaxRate != 21 {
		t.Errorf("product tax rate: got %v, want 21", product.TaxRate)
	}

	shipping := got.Items[1]
	if shipping.MerchantItemID != "Shipping" || shipping.Name != "PostNL" {
		t.Errorf("shipping line: got %+v", shipping)
	}
	if shipping.UnitPrice.Amount != 500 {
		t.Errorf("shipping amount: got %d, want 500", shipping.UnitPrice.Amount)
	}
}

func TestReconcile_GatewaySnap(t *testing.T) {
	// BILLINK is seeded by the migrations with legal rates {16,17,19,20,21}
	// and tolerance 0.05; the blended 20.97 must snap to 21.
	resp := doPost(t, "/api/reconcile", `{
		"currency": "EUR",
		"rounding_policy": "line",
		"gateway": "BILLINK",
		"items": [
			{
				"product_id": "7",
				"name": "Widget",
				"quantity": 1,
				"unit_price_incl": 12.098,
				"line_total_incl": 12.098,
				"tax_rate": 20.97
			}
		]
	}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	got := decodeJSON[reconcileResponse](t, resp)
	if len(got.Items) == 0 {
		t.Fatal("no items returned")
	}
	if got.Items[0].TaxRate != 21 {
		t.Errorf("tax rate: got %v, want 21", got.Items[0].TaxRate)
	}
}

func TestReconcile_ZeroExponentCurrency(t *testing.T) {
	resp := doPost(t, "/api/reconcile", `{
		"currency": "JPY",
		"rounding_policy": "line",
		"items": [
			{
				"product_id": "9",
				"name": "Widget",
				"quantity": 1,
				"unit_price_incl": 1100,
				"line_total_incl": 1100,
				"tax_rate": 10
			}
		]
	}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	got := decodeJSON[reconcileResponse](t, resp)
	if got.Items[0].UnitPrice.Amount != 1000 {
		t.Errorf("amount: got %d, want 1000", got.Items[0].UnitPrice.Amount)
	}
}

func TestReconcile_UnknownCurrency(t *testing.T) {
	resp := doPost(t, "/api/reconcile", `{
		"currency": "XAU",
		"rounding_policy": "line",
		"items": [
			{"product_id": "1", "name": "X", "quantity": 1, "unit_price_incl": 1.21, "tax_rate": 21}
		]
	}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Code != http.StatusUnprocessableEntity {
		t.Errorf("error code: got %d", body.Code)
	}
}

func TestReconcile_MalformedBody(t *testing.T) {
	resp := doPost(t, "/api/reconcile", `{"currency": `)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
