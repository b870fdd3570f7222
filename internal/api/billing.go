package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/audeasy/audeasy/internal/auth"
	"github.com/audeasy/audeasy/internal/logger"
)

// createCheckoutSession starts a Stripe Checkout session
func (h *Handler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	p := auth.GetPrincipal(r.Context())
	if p == nil {
		h.writeErrorResponse(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.billing == nil {
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "billing not configured")
		return
	}

	var body struct {
		PlanCode string `json:"plan_code"` // lite | pro
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	url, err := h.billing.CreateCheckoutSession(r.Context(), p.AccountID, strings.ToLower(body.PlanCode))
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSONResponse(w, http.StatusOK, map[string]string{"url": url})
}

// createPortalSession creates a Stripe Billing Portal session
func (h *Handler) createPortalSession(w http.ResponseWriter, r *http.Request) {
	p := auth.GetPrincipal(r.Context())
	if p == nil {
		h.writeErrorResponse(w, r, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.billing == nil {
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "billing not configured")
		return
	}

	row := h.db.QueryRow(r.Context(),
		"SELECT stripe_customer_id FROM subscriptions WHERE account_id=$1 AND status IN ('active','trialing') ORDER BY updated_at DESC LIMIT 1",
		p.AccountID)
	var custID string
	if err := scanRow(row, &custID); err != nil || custID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "no active subscription")
		return
	}

	url, err := h.billing.CreatePortalSession(r.Context(), custID)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSONResponse(w, http.StatusOK, map[string]string{"url": url})
}

// stripeWebhook receives Stripe events
func (h *Handler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	if h.billing == nil {
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "billing not configured")
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid body")
		return
	}

	if err := h.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		logger.WithContext(r.Context()).Warn("Stripe webhook rejected", "error", err)
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}
