package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/briefly/internal/middleware"
	"github.com/dmitrymomot/briefly/pkg/gcal"
	"github.com/dmitrymomot/briefly/pkg/googleauth"
	"github.com/dmitrymomot/briefly/pkg/oauthstate"
)

// Notifier dispatches lifecycle notifications. Implemented by the jobs
// layer; failures are logged, never surfaced to the user.
type Notifier interface {
	CalendarConnected(ctx context.Context, ownerID string) error
}

// CredentialMetadata persists the owner's calendar selection.
type CredentialMetadata interface {
	SetCalendar(ctx context.Context, ownerID, provider, calendarID string) error
}

// OAuth serves the Google credential lifecycle endpoints.
type OAuth struct {
	connector  *googleauth.Connector
	calendars  *gcal.Client
	meta       CredentialMetadata
	notify     Notifier
	appBaseURL string
	log        *slog.Logger
}

// NewOAuth creates the OAuth handler set. notify may be nil.
func NewOAuth(connector *googleauth.Connector, calendars *gcal.Client, meta CredentialMetadata, notify Notifier, appBaseURL string, log *slog.Logger) *OAuth {
	if log == nil {
		log = slog.Default()
	}
	return &OAuth{
		connector:  connector,
		calendars:  calendars,
		meta:       meta,
		notify:     notify,
		appBaseURL: appBaseURL,
		log:        log,
	}
}

// Connect starts the authorization flow and hands the URL to the client,
// which redirects the browser to Google.
func (h *OAuth) Connect(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	authURL, err := h.connector.BeginAuthorization(r.Context(), ownerID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "begin authorization failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"authorization_url": authURL})
}

// Callback lands the browser redirect from Google. Outcomes are reported
// to the app UI via query parameters, never as JSON: the user agent here
// is a browser mid-redirect, not an API client.
func (h *OAuth) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ownerID, err := h.connector.HandleCallback(r.Context(), q.Get("code"), q.Get("state"), q.Get("error"))
	if err != nil {
		h.log.WarnContext(r.Context(), "oauth callback failed", slog.Any("error", err))
		h.redirect(w, r, "error", callbackErrorCode(err))
		return
	}

	if h.notify != nil {
		if err := h.notify.CalendarConnected(r.Context(), ownerID); err != nil {
			h.log.WarnContext(r.Context(), "connect notification failed",
				slog.String("owner_id", ownerID), slog.Any("error", err))
		}
	}

	h.redirect(w, r, "connected", "true")
}

// Refresh forces a token refresh for the authenticated owner.
func (h *OAuth) Refresh(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	accessToken, err := h.connector.RefreshAccessToken(r.Context(), ownerID)
	if err != nil {
		h.log.WarnContext(r.Context(), "token refresh failed",
			slog.String("owner_id", ownerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

// Disconnect revokes at Google best-effort and clears local credentials.
func (h *OAuth) Disconnect(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	if err := h.connector.Disconnect(r.Context(), ownerID); err != nil {
		h.log.ErrorContext(r.Context(), "disconnect failed",
			slog.String("owner_id", ownerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Calendars lists the owner's calendars for selection.
func (h *OAuth) Calendars(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	list, err := h.calendars.ListCalendars(r.Context(), ownerID)
	if err != nil {
		h.log.WarnContext(r.Context(), "calendar listing failed",
			slog.String("owner_id", ownerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"calendars": list})
}

// SetCalendar persists the owner's chosen calendar id.
func (h *OAuth) SetCalendar(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r.Context())

	var body struct {
		CalendarID string `json:"calendar_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.CalendarID) == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "calendar_id is required", Kind: "bad_request"})
		return
	}

	if err := h.meta.SetCalendar(r.Context(), ownerID, googleauth.ProviderName, body.CalendarID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *OAuth) redirect(w http.ResponseWriter, r *http.Request, key, value string) {
	u, err := url.Parse(h.appBaseURL)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "misconfigured app base url", Kind: "internal"})
		return
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

// callbackErrorCode reduces callback failures to stable, non-sensitive
// codes for the app UI.
func callbackErrorCode(err error) string {
	switch {
	case errors.Is(err, googleauth.ErrProviderDenied):
		return "access_denied"
	case errors.Is(err, googleauth.ErrInvalidState),
		errors.Is(err, oauthstate.ErrStateNotFound):
		return "invalid_state"
	case errors.Is(err, oauthstate.ErrStateExpired):
		return "state_expired"
	case errors.Is(err, googleauth.ErrTokenExchangeFailed):
		return "exchange_failed"
	default:
		return "connection_failed"
	}
}
