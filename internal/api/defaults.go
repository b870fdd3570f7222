package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/audeasy/audeasy/internal/auth"
	apperrors "github.com/audeasy/audeasy/internal/errors"
	"github.com/audeasy/audeasy/internal/logger"
	"github.com/audeasy/audeasy/internal/models"
)

// resolveUserID picks the pattern-store user: the authenticated account when
// present, otherwise an explicit user_id, otherwise anonymous.
func resolveUserID(r *http.Request, explicit string) string {
	if p := auth.GetPrincipal(r.Context()); p != nil {
		return p.AccountID
	}
	if explicit != "" {
		return explicit
	}
	return "anonymous"
}

// learnDefaultsHandler handles POST /defaults/learn
func (h *Handler) learnDefaultsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		UserID       string            `json:"user_id"`
		LocationType string            `json:"location_type"`
		Fields       map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if len(body.Fields) == 0 {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "fields are required")
		return
	}

	userID := resolveUserID(r, body.UserID)
	auditCtx := models.AuditContext{LocationType: body.LocationType}

	if err := h.defaults.Learn(ctx, userID, auditCtx, body.Fields); err != nil {
		if errors.Is(err, apperrors.ErrStorageUnavailable) {
			h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "pattern storage unavailable")
			return
		}
		logger.WithContext(ctx).Error("Failed to learn patterns", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"learned": len(body.Fields),
	})
}

// getDefaultsHandler handles GET /defaults
func (h *Handler) getDefaultsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := resolveUserID(r, r.URL.Query().Get("user_id"))
	auditCtx := models.AuditContext{LocationType: r.URL.Query().Get("location_type")}

	suggestions, err := h.defaults.Defaults(ctx, userID, auditCtx)
	if err != nil {
		if errors.Is(err, apperrors.ErrStorageUnavailable) {
			h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "pattern storage unavailable")
			return
		}
		logger.WithContext(ctx).Error("Failed to compute defaults", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"defaults": suggestions,
		"count":    len(suggestions),
	})
}

// getSuggestionsHandler handles GET /defaults/suggestions
func (h *Handler) getSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	field := r.URL.Query().Get("field")
	if field == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "field is required")
		return
	}
	prefix := r.URL.Query().Get("prefix")
	userID := resolveUserID(r, r.URL.Query().Get("user_id"))

	suggestions, err := h.defaults.Suggestions(ctx, userID, field, prefix)
	if err != nil {
		if errors.Is(err, apperrors.ErrStorageUnavailable) {
			h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "pattern storage unavailable")
			return
		}
		logger.WithContext(ctx).Error("Failed to compute suggestions", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}
