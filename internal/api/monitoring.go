package api

import (
	"net/http"
	"time"

	"github.com/audeasy/audeasy/internal/logger"
)

// monitoringDashboardHandler handles GET /monitoring/dashboard: a service
// health snapshot with open report counts per severity.
func (h *Handler) monitoringDashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{
		"cars":     "ok",
		"patterns": "ok",
		"database": "ok",
	}
	status := "healthy"

	if err := h.cars.Health(ctx); err != nil {
		checks["cars"] = "error: " + err.Error()
		status = "degraded"
	}
	if err := h.defaults.Health(ctx); err != nil {
		checks["patterns"] = "error: " + err.Error()
		status = "degraded"
	}
	if h.db == nil || !h.db.IsConfigured() {
		checks["database"] = "not configured (in-memory mode)"
	} else if err := h.db.Health(ctx); err != nil {
		checks["database"] = "error: " + err.Error()
		status = "degraded"
	}

	severityCounts, err := h.cars.CountBySeverity(ctx)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to count cars", "error", err)
		severityCounts = map[string]int{}
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":          status,
		"timestamp":       time.Now().UTC(),
		"uptime":          time.Since(h.startTime).String(),
		"version":         h.version,
		"checks":          checks,
		"cars_by_severity": severityCounts,
		"wizard_sessions": h.wizard.Count(),
	})
}
