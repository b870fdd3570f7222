package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/audeasy/audeasy/internal/logger"
	"github.com/audeasy/audeasy/internal/metrics"
	"github.com/audeasy/audeasy/internal/models"
)

const minAnalyzableDescription = 10

// createCARHandler handles POST /cars: the description is run through the
// classifier and the report persists with the parsed fields filled in.
func (h *Handler) createCARHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Description string `json:"description"`
		ReportedBy  string `json:"reported_by"`
		Source      string `json:"source"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Description == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "description is required")
		return
	}
	if body.Source == "" {
		body.Source = "manual"
	}

	parsed := h.parser.Parse(body.Description)
	metrics.RecordParse(parsed.Category, parsed.Severity)

	now := time.Now().UTC()
	car := models.CAR{
		ID:          uuid.New().String(),
		Description: body.Description,
		Status:      models.StatusOpen,
		Source:      body.Source,
		ReportedBy:  body.ReportedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	car.ApplyParse(parsed)

	if err := h.cars.UpsertCARs(ctx, []models.CAR{car}); err != nil {
		logger.WithContext(ctx).Error("Failed to store car", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, car)
}

// listCARsHandler handles GET /cars
func (h *Handler) listCARsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := h.parseCARQuery(r)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	cars, err := h.cars.QueryCARs(ctx, q)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to query cars", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := map[string]interface{}{
		"data":      cars,
		"count":     len(cars),
		"timestamp": time.Now().UTC(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// getCARHandler handles GET /cars/{id}
func (h *Handler) getCARHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	carID := chi.URLParam(r, "id")

	if carID == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "car ID is required")
		return
	}

	car, err := h.cars.GetCAR(ctx, carID)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to get car", "error", err, "car_id", carID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	if car == nil {
		h.writeErrorResponse(w, r, http.StatusNotFound, "Car not found")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, car)
}

// analyzeCARHandler handles POST /cars/analyze: classification without
// persistence, used by the report form for live preview.
func (h *Handler) analyzeCARHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
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

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"analysis": parsed,
	})
}
