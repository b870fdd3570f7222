package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/audeasy/audeasy/internal/audit"
	"github.com/audeasy/audeasy/internal/logger"
	"github.com/audeasy/audeasy/internal/metrics"
	"github.com/audeasy/audeasy/internal/models"
)

// quickAuditHandler handles POST /audits/quick. Any critical failure blocks
// operations and auto-creates an emergency report.
func (h *Handler) quickAuditHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Responses  map[string]string `json:"responses"`
		ReportedBy string            `json:"reported_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	result := h.audits.Validate(body.Responses)

	if result.Status == "FAIL" {
		carID, err := h.createEmergencyCAR(r, result.Failures, body.ReportedBy)
		if err != nil {
			logger.WithContext(ctx).Error("Failed to create emergency car", "error", err)
			h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}

		h.writeJSONResponse(w, http.StatusForbidden, map[string]interface{}{
			"status":          "blocked",
			"message":         "OPERATIONS BLOCKED - Critical failures detected",
			"car_id":          carID,
			"failures":        result.Failures,
			"action_required": "Resolve all critical issues before operations",
		})
		return
	}

	schedule := h.audits.NextSchedule()
	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status":              "approved",
		"message":             "All critical checks passed - Cleared for operations",
		"timestamp":           result.Timestamp,
		"next_quick_audit":    schedule.Quick,
		"next_standard_audit": schedule.Standard,
	})
}

func (h *Handler) createEmergencyCAR(r *http.Request, failures []audit.Failure, reportedBy string) (string, error) {
	description := audit.EmergencyDescription(failures)
	parsed := h.parser.Parse(description)
	metrics.RecordParse(parsed.Category, parsed.Severity)

	now := time.Now().UTC()
	car := models.CAR{
		ID:          uuid.New().String(),
		Description: description,
		Status:      models.StatusOpen,
		Source:      "quick_audit",
		ReportedBy:  reportedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	car.ApplyParse(parsed)

	if err := h.cars.UpsertCARs(r.Context(), []models.CAR{car}); err != nil {
		return "", err
	}
	return car.ID, nil
}

// auditScheduleHandler handles GET /audits/schedule
func (h *Handler) auditScheduleHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, h.audits.NextSchedule())
}

// standardAuditHandler handles POST /audits/standard
func (h *Handler) standardAuditHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Responses map[string]string `json:"responses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, h.audits.ScoreStandard(body.Responses))
}
