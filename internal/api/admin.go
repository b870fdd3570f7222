package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/audeasy/audeasy/internal/auth"
)

// adminCreateAccount creates a new account (owner-only)
// Body: { "name": "Harbor Bistro", "email": "owner@example.com" }
func (h *Handler) adminCreateAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if body.Name == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "name is required")
		return
	}

	row := h.db.QueryRow(r.Context(),
		"INSERT INTO accounts(id,name,email) VALUES (gen_random_uuid(), $1, $2) RETURNING id",
		body.Name, body.Email)
	var id uuid.UUID
	if err := scanRow(row, &id); err != nil {
		h.writeErrorResponse(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSONResponse(w, http.StatusCreated, map[string]any{"account_id": id.String()})
}

// POST /v1/admin/accounts/{account_id}/keys
func (h *Handler) adminCreateKey(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")
	var body struct {
		ClientType string `json:"client_type"`
		Label      string `json:"label"`
		Env        string `json:"env"`
	}
	json.NewDecoder(r.Body).Decode(&body)
	if body.ClientType != "agent" && body.ClientType != "human" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "client_type must be agent or human")
		return
	}
	repo := auth.NewRepository(h.db)
	raw, id, err := repo.CreateAPIKey(r.Context(), accountID, body.ClientType, body.Label, body.Env)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSONResponse(w, http.StatusCreated, map[string]any{"api_key": raw, "key_id": id})
}

// GET /v1/admin/accounts/{account_id}/keys
func (h *Handler) adminListKeys(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")
	repo := auth.NewRepository(h.db)
	ids, err := repo.ListAPIKeyIDsByAccount(r.Context(), accountID)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSONResponse(w, http.StatusOK, map[string]any{"key_ids": ids, "count": len(ids)})
}

// POST /v1/admin/keys/{key_id}/revoke
func (h *Handler) adminRevokeKey(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "key_id")
	repo := auth.NewRepository(h.db)
	if err := repo.RevokeAPIKey(r.Context(), keyID); err != nil {
		h.writeErrorResponse(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSONResponse(w, http.StatusOK, map[string]any{"status": "revoked", "key_id": keyID})
}

func scanRow(row interface{}, dest ...any) error {
	if s, ok := row.(interface{ Scan(dest ...any) error }); ok {
		return s.Scan(dest...)
	}
	return fmt.Errorf("invalid row type")
}
