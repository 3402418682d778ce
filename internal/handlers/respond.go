package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/briefly/pkg/credentials"
	"github.com/dmitrymomot/briefly/pkg/googleauth"
	"github.com/dmitrymomot/briefly/pkg/resilience"
)

type errorResponse struct {
	Error          string `json:"error"`
	Kind           string `json:"kind,omitempty"`
	RequiresReauth bool   `json:"requires_reauth,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps service failures onto the wire contract. Sentinels
// are checked before the taxonomy so domain outcomes (not linked, needs
// re-consent) win over transport-level classification.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, googleauth.ErrReauthorizationRequired):
		respondJSON(w, http.StatusConflict, errorResponse{
			Error:          "authorization with Google has lapsed, reconnect required",
			Kind:           "reauthorization_required",
			RequiresReauth: true,
		})
		return
	case errors.Is(err, googleauth.ErrNotLinked), errors.Is(err, credentials.ErrNotLinked), errors.Is(err, credentials.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{
			Error: "google account is not linked",
			Kind:  "not_linked",
		})
		return
	}

	classified := resilience.Classify(err)
	switch classified.Class {
	case resilience.ClassRateLimited:
		if classified.RetryAfter > 0 {
			seconds := int(math.Ceil(classified.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
		respondJSON(w, http.StatusTooManyRequests, errorResponse{
			Error: "provider rate limit exceeded",
			Kind:  "rate_limited",
		})
	case resilience.ClassTimeout:
		respondJSON(w, http.StatusGatewayTimeout, errorResponse{
			Error: "provider request timed out",
			Kind:  "timeout",
		})
	case resilience.ClassPaymentRequired:
		respondJSON(w, http.StatusPaymentRequired, errorResponse{
			Error: "provider requires payment",
			Kind:  "payment_required",
		})
	case resilience.ClassRetryable, resilience.ClassUnauthorized:
		respondJSON(w, http.StatusBadGateway, errorResponse{
			Error: "provider is unavailable",
			Kind:  "provider_unavailable",
		})
	default:
		respondJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "internal server error",
			Kind:  "internal",
		})
	}
}
