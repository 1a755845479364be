// Package handler exposes the reconciliation engine over HTTP.
package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/veloxpay/cartrecon/internal/domain/money"
	"github.com/veloxpay/cartrecon/internal/domain/reconcile"
)

// maxBodyBytes caps the request body size; cart snapshots are small.
const maxBodyBytes = 1 << 20

// Handler serves the reconciliation API.
type Handler struct {
	assembler *reconcile.Assembler
}

// NewHandler constructs a Handler over the given assembler.
func NewHandler(assembler *reconcile.Assembler) *Handler {
	return &Handler{assembler: assembler}
}

// Routes registers the API endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/reconcile", h.Reconcile)
}

// Reconcile decodes a cart snapshot, builds the gateway line items, and
// writes them back. Each response carries a fresh reconciliation id for log
// correlation with the outbound gateway request.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	req, err := decodeRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.assembler.Build(req)
	if err != nil {
		h.writeBuildError(w, r, err)
		return
	}

	id := uuid.New().String()
	zctx.From(r.Context()).Info("cart reconciled",
		zap.String("reconciliation_id", id),
		zap.String("currency", req.Currency),
		zap.String("gateway", req.Gateway),
		zap.Int("lines", len(result.Items)),
	)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(encodeResult(id, result))
}

// writeBuildError maps engine errors onto HTTP responses. Invalid upstream
// data is the client's problem (422); anything else is ours (500).
func (h *Handler) writeBuildError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		iqErr     *reconcile.InvalidQuantityError
		rateErr   *reconcile.InvalidTaxRateError
		currErr   *money.UnknownCurrencyError
		amountErr *money.InvalidAmountError
	)
	switch {
	case errors.As(err, &iqErr):
		writeError(w, http.StatusUnprocessableEntity, iqErr.Error())
	case errors.As(err, &rateErr):
		writeError(w, http.StatusUnprocessableEntity, rateErr.Error())
	case errors.As(err, &currErr):
		writeError(w, http.StatusUnprocessableEntity, currErr.Error())
	case errors.As(err, &amountErr):
		writeError(w, http.StatusUnprocessableEntity, amountErr.Error())
	default:
		zctx.From(r.Context()).Error("reconciliation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
