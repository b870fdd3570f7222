package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/audeasy/audeasy/internal/models"
)

// createFeedbackHandler handles POST /feedback
func (h *Handler) createFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Description string `json:"description"`
		PageURL     string `json:"page_url"`
		Screenshot  string `json:"screenshot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Description == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "description is required")
		return
	}

	report := models.Feedback{
		ID:          uuid.New().String(),
		Description: body.Description,
		PageURL:     body.PageURL,
		Screenshot:  body.Screenshot,
		Status:      "new",
		CreatedAt:   time.Now().UTC(),
	}

	h.feedbackMu.Lock()
	h.feedback = append(h.feedback, report)
	h.feedbackMu.Unlock()

	h.writeJSONResponse(w, http.StatusCreated, report)
}

// listFeedbackHandler handles GET /feedback
func (h *Handler) listFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	h.feedbackMu.RLock()
	reports := make([]models.Feedback, len(h.feedback))
	copy(reports, h.feedback)
	h.feedbackMu.RUnlock()

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"data":  reports,
		"count": len(reports),
	})
}
