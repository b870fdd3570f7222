package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/audeasy/audeasy/internal/audit"
	"github.com/audeasy/audeasy/internal/billing"
	"github.com/audeasy/audeasy/internal/database"
	"github.com/audeasy/audeasy/internal/defaults"
	"github.com/audeasy/audeasy/internal/industry"
	middlewares "github.com/audeasy/audeasy/internal/middleware"
	"github.com/audeasy/audeasy/internal/models"
	"github.com/audeasy/audeasy/internal/parser"
	"github.com/audeasy/audeasy/internal/store"
	"github.com/audeasy/audeasy/internal/wizard"
)

// Handler handles HTTP requests for the API
type Handler struct {
	cars        store.CARStore
	parser      *parser.Parser
	defaults    *defaults.Engine
	audits      *audit.Engine
	recognizer  *industry.Recognizer
	wizard      *wizard.Manager
	billing     *billing.Service
	db          *database.DB
	version     string
	buildTime   string
	gitCommit   string
	startTime   time.Time
	adminSecret string

	feedbackMu sync.RWMutex
	feedback   []models.Feedback
}

// NewHandler creates a new API handler
func NewHandler(cars store.CARStore, engine *defaults.Engine, sessions *wizard.Manager, billingSvc *billing.Service, db *database.DB, adminSecret, version, buildTime, gitCommit string) *Handler {
	return &Handler{
		cars:        cars,
		parser:      parser.New(),
		defaults:    engine,
		audits:      audit.New(),
		recognizer:  industry.New(),
		wizard:      sessions,
		billing:     billingSvc,
		db:          db,
		version:     version,
		buildTime:   buildTime,
		gitCommit:   gitCommit,
		startTime:   time.Now(),
		adminSecret: adminSecret,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {
		// Health check endpoints
		r.Get("/health", h.healthHandler)
		r.Get("/health/ready", h.readinessHandler)
		r.Get("/health/live", h.livenessHandler)

		// Corrective action reports
		r.Post("/cars", h.createCARHandler)
		r.Get("/cars", h.listCARsHandler)
		r.Get("/cars/{id}", h.getCARHandler)
		r.Post("/cars/analyze", h.analyzeCARHandler)

		// Smart defaults
		r.Post("/defaults/learn", h.learnDefaultsHandler)
		r.Get("/defaults", h.getDefaultsHandler)
		r.Get("/defaults/suggestions", h.getSuggestionsHandler)

		// Audits
		r.Post("/audits/quick", h.quickAuditHandler)
		r.Get("/audits/schedule", h.auditScheduleHandler)
		r.Post("/audits/standard", h.standardAuditHandler)

		// Setup wizard
		r.Post("/wizard/start", h.wizardStartHandler)
		r.Post("/wizard/business", h.wizardBusinessHandler)
		r.Post("/wizard/incident", h.wizardIncidentHandler)
		r.Post("/wizard/complete", h.wizardCompleteHandler)

		// Feedback
		r.Post("/feedback", h.createFeedbackHandler)
		r.Get("/feedback", h.listFeedbackHandler)

		// Service dashboard
		r.Get("/monitoring/dashboard", h.monitoringDashboardHandler)

		// Billing endpoints
		r.Post("/billing/checkout-session", h.createCheckoutSession)
		r.Post("/billing/portal-session", h.createPortalSession)
		r.Post("/billing/webhook", h.stripeWebhook)

		// System info
		r.Get("/version", h.versionHandler)
	})

	// Admin routes (protected by shared secret middleware)
	r.Route("/v1/admin", func(r chi.Router) {
		r.With(middlewares.AdminSecret(h.adminSecret)).Group(func(r chi.Router) {
			r.Post("/accounts", h.adminCreateAccount)
			r.Post("/accounts/{account_id}/keys", h.adminCreateKey)
			r.Get("/accounts/{account_id}/keys", h.adminListKeys)
			r.Post("/keys/{key_id}/revoke", h.adminRevokeKey)
		})
	})

	// Root health check
	r.Get("/health", h.healthHandler)
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// readinessHandler checks if the application is ready to serve traffic
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{
		"cars":     "ok",
		"patterns": "ok",
	}

	statusCode := http.StatusOK

	if err := h.cars.Health(ctx); err != nil {
		checks["cars"] = "error: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}
	if err := h.defaults.Health(ctx); err != nil {
		checks["patterns"] = "error: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}

	h.writeJSONResponse(w, statusCode, response)
}

// livenessHandler checks if the application is alive
func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// versionHandler returns version information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"version":    h.version,
		"build_time": h.buildTime,
		"git_commit": h.gitCommit,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// parseCARQuery parses query parameters into CARQuery
func (h *Handler) parseCARQuery(r *http.Request) (models.CARQuery, error) {
	q := models.CARQuery{}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return q, fmt.Errorf("invalid limit: %s", limitStr)
		}
		if limit < 0 || limit > 1000 {
			return q, fmt.Errorf("limit must be between 0 and 1000")
		}
		q.Limit = limit
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return q, fmt.Errorf("invalid offset: %s", offsetStr)
		}
		if offset < 0 {
			return q, fmt.Errorf("offset must be non-negative")
		}
		q.Offset = offset
	}

	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return q, fmt.Errorf("invalid since format: %s", sinceStr)
		}
		q.Since = since
	}

	if untilStr := r.URL.Query().Get("until"); untilStr != "" {
		until, err := time.Parse(time.RFC3339, untilStr)
		if err != nil {
			return q, fmt.Errorf("invalid until format: %s", untilStr)
		}
		q.Until = until
	}

	q.Categories = r.URL.Query()["category"]
	q.Severities = r.URL.Query()["severity"]
	q.Statuses = r.URL.Query()["status"]
	q.Sources = r.URL.Query()["source"]
	q.ReportedBy = r.URL.Query().Get("reported_by")

	return q, nil
}

// writeJSONResponse writes a JSON response
func (h *Handler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: r.Header.Get("X-Request-ID"),
	}

	h.writeJSONResponse(w, statusCode, response)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}
