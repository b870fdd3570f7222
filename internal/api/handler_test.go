package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/audeasy/audeasy/config"
	"github.com/audeasy/audeasy/internal/database"
	"github.com/audeasy/audeasy/internal/defaults"
	"github.com/audeasy/audeasy/internal/models"
	"github.com/audeasy/audeasy/internal/store"
	"github.com/audeasy/audeasy/internal/wizard"
)

func testHandler(t *testing.T) (*Handler, *chi.Mux) {
	t.Helper()

	db, err := database.New(context.Background(), config.DatabaseConfig{})
	if err != nil {
		t.Fatalf("database.New failed: %v", err)
	}

	engine := defaults.New(store.NewInMemoryPatternStore(), config.DefaultsConfig{MinFrequency: 2, MaxSuggestions: 5})
	h := NewHandler(store.NewInMemoryCARStore(), engine, wizard.NewManager(30*time.Minute), nil, db, "admin-secret", "test", "now", "abc123")

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return h, r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, router := testHandler(t)

	for _, path := range []string{"/v1/health", "/v1/health/ready", "/v1/health/live", "/health"} {
		rec := doJSON(t, router, "GET", path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestVersionEndpoint(t *testing.T) {
	_, router := testHandler(t)

	rec := doJSON(t, router, "GET", "/v1/version", nil)
	var body map[string]string
	decode(t, rec, &body)
	if body["version"] != "test" || body["git_commit"] != "abc123" {
		t.Errorf("Unexpected version payload: %v", body)
	}
}

func TestCreateAndGetCAR(t *testing.T) {
	_, router := testHandler(t)

	rec := doJSON(t, router, "POST", "/v1/cars", map[string]string{
		"description": "Walk-in cooler reading 10C this morning, chicken looks warm",
		"reported_by": "sam",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var car models.CAR
	decode(t, rec, &car)
	if car.ID == "" {
		t.Fatal("Expected car ID")
	}
	if car.Category != "Temperature Control" {
		t.Errorf("Expected category Temperature Control, got %q", car.Category)
	}
	if car.Status != models.StatusOpen {
		t.Errorf("Expected status open, got %q", car.Status)
	}
	if car.Source != "manual" {
		t.Errorf("Expected default source manual, got %q", car.Source)
	}

	rec = doJSON(t, router, "GET", "/v1/cars/"+car.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var fetched models.CAR
	decode(t, rec, &fetched)
	if fetched.ID != car.ID {
		t.Errorf("Expected car %s, got %s", car.ID, fetched.ID)
	}

	rec = doJSON(t, router, "GET", "/v1/cars/missing-id", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing car, got %d", rec.Code)
	}
}

func TestCreateCARValidation(t *testing.T) {
	_, router := testHandler(t)

	rec := doJSON(t, router, "POST", "/v1/cars", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing description, got %d", rec.Code)
	}
}

func TestListCARsFilters(t *testing.T) {
	_, router := testHandler(t)

	descriptions := []string{
		"pest droppings near the back door, urgent contamination risk",
		"label missing on the checklist and logbook",
	}
	for _, d := range descriptions {
		rec := doJSON(t, router, "POST", "/v1/cars", map[string]string{"description": d})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create failed: %d", rec.Code)
		}
	}

	rec := doJSON(t, router, "GET", "/v1/cars?category=Pest+Control", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		Data  []models.CAR `json:"data"`
		Count int          `json:"count"`
	}
	decode(t, rec, &body)
	if body.Count != 1 {
		t.Errorf("Expected 1 pest car, got %d", body.Count)
	}

	rec = doJSON(t, router, "GET", "/v1/cars?limit=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestAnalyzeCAR(t *testing.T) {
	_, router := testHandler(t)

	rec := doJSON(t, router, "POST", "/v1/cars/analyze", map[string]string{"description": "too short"})
	var short struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decode(t, rec, &short)
	if short.Success {
		t.Error("Expected success=false for short description")
	}
	if short.Message != "Description too short for analysis" {
		t.Errorf("Unexpected message %q", short.Message)
	}

	rec = doJSON(t, router, "POST", "/v1/cars/analyze", map[string]string{
		"description": "freezer thawing out near the prep area since this morning",
	})
	var full struct {
		Success  bool                  `json:"success"`
		Analysis models.ParsedIncident `json:"analysis"`
	}
	decode(t, rec, &full)
	if !full.Success {
		t.Fatal("Expected success=true")
	}
	if full.Analysis.Category != "Temperature Control" {
		t.Errorf("Expected Temperature Control, got %q", full.Analysis.Category)
	}
}

func TestDefaultsFlow(t *testing.T) {
	_, router := testHandler(t)

	learn := map[string]interface{}{
		"user_id":       "u1",
		"location_type": "kitchen",
		"fields":        map[string]string{"temperature": "4C"},
	}
	for i := 0; i < 3; i++ {
		rec := doJSON(t, router, "POST", "/v1/defaults/learn", learn)
		if rec.Code != http.StatusOK {
			t.Fatalf("learn failed: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, router, "GET", "/v1/defaults?user_id=u1&location_type=kitchen", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		Defaults map[string]models.DefaultSuggestion `json:"defaults"`
	}
	decode(t, rec, &body)
	if suggestion, ok := body.Defaults["temperature"]; !ok || suggestion.Value != "4C" {
		t.Errorf("Expected temperature default 4C, got %v", body.Defaults)
	}

	rec = doJSON(t, router, "GET", "/v1/defaults/suggestions?user_id=u1&field=temperature&prefix=4", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var sBody struct {
		Suggestions []models.ValueSuggestion `json:"suggestions"`
	}
	decode(t, rec, &sBody)
	if len(sBody.Suggestions) != 1 || sBody.Suggestions[0].Value != "4C" {
		t.Errorf("Expected one 4C suggestion, got %v", sBody.Suggestions)
	}

	rec = doJSON(t, router, "GET", "/v1/defaults/suggestions?user_id=u1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without field, got %d", rec.Code)
	}
}

type failingPatternStore struct{}

func (f *failingPatternStore) UpsertObservation(ctx context.Context, obs models.Observation) error {
	return errors.New("connection refused")
}
func (f *failingPatternStore) QueryPatterns(ctx context.Context, userID, locationType string) ([]models.Pattern, error) {
	return nil, errors.New("connection refused")
}
func (f *failingPatternStore) QueryValuePrefix(ctx context.Context, userID, field, prefix string) ([]models.Pattern, error) {
	return nil, errors.New("connection refused")
}
func (f *failingPatternStore) Health(ctx context.Context) error { return errors.New("connection refused") }

func TestDefaultsStorageUnavailable(t *testing.T) {
	db, err := database.New(context.Background(), config.DatabaseConfig{})
	if err != nil {
		t.Fatalf("database.New failed: %v", err)
	}
	engine := defaults.New(&failingPatternStore{}, config.DefaultsConfig{MinFrequency: 2, MaxSuggestions: 5})
	h := NewHandler(store.NewInMemoryCARStore(), engine, wizard.NewManager(time.Minute), nil, db, "", "test", "", "")
	router := chi.NewRouter()
	h.RegisterRoutes(router)

	rec := doJSON(t, router, "POST", "/v1/defaults/learn", map[string]interface{}{
		"fields": map[string]string{"temperature": "4C"},
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 from learn, got %d", rec.Code)
	}

	rec = doJSON(t, router, "GET", "/v1/defaults", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 from defaults, got %d", rec.Code)
	}
}

func passingQuickAudit() map[string]string {
	return map[string]string{
		"temperature_control_walk_in_cooler":      "3.5",
		"temperature_control_freezer":             "-20",
		"temperature_control_hot_hold":            "63",
		"food_safety_hand_wash_stations":          "functional",
		"food_safety_cross_contamination_control": "compliant",
		"food_safety_allergen_separation":         "proper",
		"sanitation_sanitizer_concentration":      "300",
		"sanitation_equipment_cleanliness":        "clean",
		"personnel_sick_employee_policy":          "compliant",
		"personnel_proper_uniforms":               "yes",
	}
}

func TestQuickAuditApproved(t *testing.T) {
	_, router := testHandler(t)

	rec := doJSON(t, router, "POST", "/v1/audits/quick", map[string]interface{}{
		"responses": passingQuickAudit(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	decode(t, rec, &body)
	if body["status"] != "approved" {
		t.Errorf("Expected approved, got %v", body["status"])
	}
}

func TestQuickAuditBlockedCreatesEmergencyCAR(t *testing.T) {
	h, router := testHandler(t)

	responses := passingQuickAudit()
	responses["temperature_control_walk_in_cooler"] = "12"

	rec := doJSON(t, router, "POST", "/v1/audits/quick", map[string]interface{}{
		"responses":   responses,
		"reported_by": "lead",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Status string `json:"status"`
		CarID  string `json:"car_id"`
	}
	decode(t, rec, &body)
	if body.Status != "blocked" {
		t.Errorf("Expected blocked, got %q", body.Status)
	}
	if body.CarID == "" {
		t.Fatal("Expected emergency car ID")
	}

	car, err := h.cars.GetCAR(context.Background(), body.CarID)
	if err != nil || car == nil {
		t.Fatalf("Emergency car not stored: %v", err)
	}
	if car.Source != "quick_audit" {
		t.Errorf("Expected source quick_audit, got %q", car.Source)
	}
	if car.Severity != models.SeverityCritical {
		t.Errorf("Expected critical severity for emergency car, got %q", car.Severity)
	}
}

func TestAuditScheduleAndStandard(t *testing.T) {
	_, router := testHandler(t)

	rec := doJSON(t, router, "GET", "/v1/audits/schedule", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	responses := map[string]string{}
	for i := 0; i < 64; i++ {
		responses[fmt.Sprintf("check_%d", i)] = "yes"
	}
	rec = doJSON(t, router, "POST", "/v1/audits/standard", map[string]interface{}{"responses": responses})
	var body struct {
		Score int    `json:"score"`
		Grade string `json:"grade"`
	}
	decode(t, rec, &body)
	if body.Score != 80 || body.Grade != "B" {
		t.Errorf("Expected score 80 grade B, got %d %q", body.Score, body.Grade)
	}
}

func TestWizardFlow(t *testing.T) {
	_, router := testHandler(t)

	rec := doJSON(t, router, "POST", "/v1/wizard/start", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}
	var started struct {
		SessionID string `json:"session_id"`
	}
	decode(t, rec, &started)
	if started.SessionID == "" {
		t.Fatal("Expected session ID")
	}

	rec = doJSON(t, router, "POST", "/v1/wizard/business", map[string]string{
		"session_id":  started.SessionID,
		"description": "family restaurant with 3 locations in Halifax",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var business struct {
		Analysis struct {
			Industry struct {
				Industry string `json:"industry"`
			} `json:"industry"`
			Location struct {
				Country string `json:"country"`
			} `json:"location"`
		} `json:"analysis"`
	}
	decode(t, rec, &business)
	if business.Analysis.Industry.Industry != "food_service" {
		t.Errorf("Expected food_service, got %q", business.Analysis.Industry.Industry)
	}
	if business.Analysis.Location.Country != "CA" {
		t.Errorf("Expected CA, got %q", business.Analysis.Location.Country)
	}

	rec = doJSON(t, router, "POST", "/v1/wizard/incident", map[string]string{
		"session_id":  started.SessionID,
		"description": "found mouse droppings in dry storage yesterday",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, router, "POST", "/v1/wizard/complete", map[string]interface{}{
		"session_id":         started.SessionID,
		"selected_templates": []string{"haccp_critical_points"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "POST", "/v1/wizard/business", map[string]string{
		"session_id":  "not-a-session",
		"description": "a cafe",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad session, got %d", rec.Code)
	}
}

func TestFeedbackFlow(t *testing.T) {
	_, router := testHandler(t)

	rec := doJSON(t, router, "POST", "/v1/feedback", map[string]string{
		"description": "suggestions dropdown overlaps the save button",
		"page_url":    "/audits/quick",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, router, "GET", "/v1/feedback", nil)
	var body struct {
		Count int `json:"count"`
	}
	decode(t, rec, &body)
	if body.Count != 1 {
		t.Errorf("Expected 1 feedback report, got %d", body.Count)
	}
}

func TestMonitoringDashboard(t *testing.T) {
	_, router := testHandler(t)

	rec := doJSON(t, router, "POST", "/v1/cars", map[string]string{
		"description": "urgent contamination outbreak in the prep area",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", rec.Code)
	}

	rec = doJSON(t, router, "GET", "/v1/monitoring/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		Status         string         `json:"status"`
		CarsBySeverity map[string]int `json:"cars_by_severity"`
	}
	decode(t, rec, &body)
	if body.Status != "healthy" {
		t.Errorf("Expected healthy, got %q", body.Status)
	}
	if body.CarsBySeverity[models.SeverityCritical] != 1 {
		t.Errorf("Expected 1 critical car, got %v", body.CarsBySeverity)
	}
}

func TestAdminRoutesRequireSecret(t *testing.T) {
	_, router := testHandler(t)

	rec := doJSON(t, router, "POST", "/v1/admin/accounts", map[string]string{"name": "Acme"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 without admin secret, got %d", rec.Code)
	}
}

func TestBillingRequiresPrincipal(t *testing.T) {
	_, router := testHandler(t)

	rec := doJSON(t, router, "POST", "/v1/billing/checkout-session", map[string]string{"plan_code": "pro"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without principal, got %d", rec.Code)
	}
}
