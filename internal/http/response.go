// Package http exposes the tracker over a JSON API.
//
// This file maps domain errors to HTTP status codes and renders JSON
// bodies. Decimal amounts are serialized as strings so clients never see
// binary floating point.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/session"
	"finanzas/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
}

// transactionBody is the wire form of one transaction.
type transactionBody struct {
	ID              string `json:"id"`
	EnteredAmount   string `json:"entered_amount"`
	EnteredCurrency string `json:"entered_currency"`
	AmountReference string `json:"amount_reference"`
	AmountLocal     string `json:"amount_local"`
	RateAtEntry     string `json:"rate_at_entry"`
	Category        string `json:"category"`
	Timestamp       string `json:"timestamp"`
	Attachment      string `json:"attachment,omitempty"`
}

func toTransactionBody(t core.Transaction) transactionBody {
	return transactionBody{
		ID:              t.ID,
		EnteredAmount:   t.EnteredAmount.String(),
		EnteredCurrency: string(t.EnteredCurrency),
		AmountReference: t.AmountReference.StringFixed(2),
		AmountLocal:     t.AmountLocal.StringFixed(2),
		RateAtEntry:     t.RateAtEntry.String(),
		Category:        string(t.Category),
		Timestamp:       t.Timestamp.Format(time.RFC3339),
		Attachment:      t.Attachment,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError translates a domain error into a status code. Validation
// failures are 422, auth failures 401, conflicts 409, persistence
// failures 503; anything unrecognized is a 500 with a generic body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidRate),
		errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, core.ErrDuplicateID),
		errors.Is(err, store.ErrWeakSecret):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, store.ErrInvalidCredentials),
		errors.Is(err, session.ErrNoSession):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, store.ErrDuplicateAccount):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, store.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
		message = "store unavailable"
	}

	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", status,
			"error", err)
	}
	writeJSON(w, status, errorBody{Error: message})
}
