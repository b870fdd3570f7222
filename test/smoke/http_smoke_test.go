package smoke

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/audeasy/audeasy/config"
	"github.com/audeasy/audeasy/internal/api"
	"github.com/audeasy/audeasy/internal/database"
	"github.com/audeasy/audeasy/internal/defaults"
	"github.com/audeasy/audeasy/internal/store"
	"github.com/audeasy/audeasy/internal/wizard"
)

func TestHealthAndCARsSmoke(t *testing.T) {
	db, err := database.New(context.Background(), config.DatabaseConfig{})
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	engine := defaults.New(store.NewInMemoryPatternStore(), config.DefaultsConfig{MinFrequency: 2, MaxSuggestions: 5})
	h := api.NewHandler(store.NewInMemoryCARStore(), engine, wizard.NewManager(time.Minute), nil, db, "", "dev", time.Now().Format(time.RFC3339), "git")
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/health", nil))
	if rec.Code != 200 {
		t.Fatalf("/v1/health %d", rec.Code)
	}

	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, httptest.NewRequest("GET", "/v1/cars", nil))
	if rec2.Code != 200 {
		t.Fatalf("/v1/cars %d", rec2.Code)
	}

	body := strings.NewReader(`{"description":"walk-in cooler at 9C overnight, dairy at risk"}`)
	req := httptest.NewRequest("POST", "/v1/cars", body)
	req.Header.Set("Content-Type", "application/json")
	rec3 := httptest.NewRecorder()
	r.ServeHTTP(rec3, req)
	if rec3.Code != 201 {
		t.Fatalf("POST /v1/cars %d: %s", rec3.Code, rec3.Body.String())
	}
}
