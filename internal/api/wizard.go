package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/audeasy/audeasy/internal/errors"
	"github.com/audeasy/audeasy/internal/metrics"
	"github.com/audeasy/audeasy/internal/wizard"
)

// wizardStartHandler handles POST /wizard/start
func (h *Handler) wizardStartHandler(w http.ResponseWriter, r *http.Request) {
	session := h.wizard.Start()
	h.writeJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"session_id": session.ID,
		"created_at": session.CreatedAt,
	})
}

// wizardBusinessHandler handles POST /wizard/business: the description is
// analyzed for industry, region, and size, and the result lands in the session.
func (h *Handler) wizardBusinessHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID   string `json:"session_id"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Description == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "description is required")
		return
	}

	info := wizard.BusinessInfo{
		Description: body.Description,
		Industry:    h.recognizer.DetectIndustry(body.Description),
		Location:    h.recognizer.ExtractLocation(body.Description),
		Size:        h.recognizer.ExtractBusinessSize(body.Description),
	}

	session, err := h.wizard.Update(body.SessionID, func(s *wizard.Session) {
		s.BusinessInfo = &info
	})
	if err != nil {
		h.writeWizardError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"session_id": session.ID,
		"analysis":   info,
	})
}

// wizardIncidentHandler handles POST /wizard/incident: a practice incident
// description is run through the classifier and stored on the session.
func (h *Handler) wizardIncidentHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID   string `json:"session_id"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if len(body.Description) < minAnalyzableDescription {
		h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"message": "Description too short for analysis",
		})
		return
	}

	parsed := h.parser.Parse(body.Description)
	metrics.RecordParse(parsed.Category, parsed.Severity)

	session, err := h.wizard.Update(body.SessionID, func(s *wizard.Session) {
		s.IncidentText = body.Description
		s.ParsedIncident = &parsed
	})
	if err != nil {
		h.writeWizardError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"session_id": session.ID,
		"parsed_car": parsed,
	})
}

// wizardCompleteHandler handles POST /wizard/complete
func (h *Handler) wizardCompleteHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID         string   `json:"session_id"`
		SelectedTemplates []string `json:"selected_templates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	if len(body.SelectedTemplates) > 0 {
		if _, err := h.wizard.Update(body.SessionID, func(s *wizard.Session) {
			s.SelectedTemplates = body.SelectedTemplates
		}); err != nil {
			h.writeWizardError(w, r, err)
			return
		}
	}

	session, err := h.wizard.Complete(body.SessionID)
	if err != nil {
		h.writeWizardError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Setup wizard completed successfully",
		"session_id": session.ID,
		"session":    session,
	})
}

func (h *Handler) writeWizardError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperrors.ErrSessionExpired) {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid or expired session")
		return
	}
	h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
}
