package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/audeasy/audeasy/internal/models"
)

func TestInMemoryCARStoreUpsertAndGet(t *testing.T) {
	s := NewInMemoryCARStore()
	ctx := context.Background()

	car := models.CAR{
		ID:          "car-1",
		Description: "freezer warm",
		Category:    "Temperature Control",
		Severity:    models.SeverityMajor,
		Status:      models.StatusOpen,
		CreatedAt:   time.Now(),
	}

	if err := s.UpsertCARs(ctx, []models.CAR{car}); err != nil {
		t.Fatalf("UpsertCARs failed: %v", err)
	}

	got, err := s.GetCAR(ctx, "car-1")
	if err != nil {
		t.Fatalf("GetCAR failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected car, got nil")
	}
	if got.Category != "Temperature Control" {
		t.Errorf("Expected category Temperature Control, got %q", got.Category)
	}

	// Upsert with the same ID replaces
	car.Status = models.StatusClosed
	if err := s.UpsertCARs(ctx, []models.CAR{car}); err != nil {
		t.Fatalf("UpsertCARs failed: %v", err)
	}
	got, _ = s.GetCAR(ctx, "car-1")
	if got.Status != models.StatusClosed {
		t.Errorf("Expected status closed after upsert, got %q", got.Status)
	}
}

func TestInMemoryCARStoreGetMissing(t *testing.T) {
	s := NewInMemoryCARStore()

	got, err := s.GetCAR(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetCAR failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing car, got %+v", got)
	}
}

func TestInMemoryCARStoreQueryFiltersAndOrders(t *testing.T) {
	s := NewInMemoryCARStore()
	ctx := context.Background()

	base := time.Now()
	cars := []models.CAR{
		{ID: "a", Severity: models.SeverityMinor, Status: models.StatusOpen, CreatedAt: base.Add(-2 * time.Hour)},
		{ID: "b", Severity: models.SeverityCritical, Status: models.StatusOpen, CreatedAt: base.Add(-1 * time.Hour)},
		{ID: "c", Severity: models.SeverityCritical, Status: models.StatusClosed, CreatedAt: base},
	}
	if err := s.UpsertCARs(ctx, cars); err != nil {
		t.Fatalf("UpsertCARs failed: %v", err)
	}

	result, err := s.QueryCARs(ctx, models.CARQuery{Severities: []string{models.SeverityCritical}})
	if err != nil {
		t.Fatalf("QueryCARs failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 cars, got %d", len(result))
	}
	if result[0].ID != "c" || result[1].ID != "b" {
		t.Errorf("Expected newest-first [c b], got [%s %s]", result[0].ID, result[1].ID)
	}

	result, err = s.QueryCARs(ctx, models.CARQuery{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("QueryCARs failed: %v", err)
	}
	if len(result) != 1 || result[0].ID != "b" {
		t.Errorf("Expected [b] with limit 1 offset 1, got %v", result)
	}

	result, err = s.QueryCARs(ctx, models.CARQuery{Offset: 10})
	if err != nil {
		t.Fatalf("QueryCARs failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("Expected empty result for offset past end, got %d", len(result))
	}
}

func TestInMemoryCARStoreCountBySeverity(t *testing.T) {
	s := NewInMemoryCARStore()
	ctx := context.Background()

	cars := []models.CAR{
		{ID: "1", Severity: models.SeverityCritical},
		{ID: "2", Severity: models.SeverityCritical},
		{ID: "3", Severity: models.SeverityMinor},
	}
	if err := s.UpsertCARs(ctx, cars); err != nil {
		t.Fatalf("UpsertCARs failed: %v", err)
	}

	counts, err := s.CountBySeverity(ctx)
	if err != nil {
		t.Fatalf("CountBySeverity failed: %v", err)
	}
	if counts[models.SeverityCritical] != 2 {
		t.Errorf("Expected 2 critical, got %d", counts[models.SeverityCritical])
	}
	if counts[models.SeverityMinor] != 1 {
		t.Errorf("Expected 1 minor, got %d", counts[models.SeverityMinor])
	}
}

func TestInMemoryPatternStoreIncrementOrInsert(t *testing.T) {
	s := NewInMemoryPatternStore()
	ctx := context.Background()

	obs := models.Observation{
		UserID:       "u1",
		LocationType: "kitchen",
		Field:        "temperature",
		Value:        "4C",
		HourBucket:   3,
		TimeOfDay:    9,
		DayOfWeek:    1,
		ObservedAt:   time.Now(),
	}

	for i := 0; i < 3; i++ {
		if err := s.UpsertObservation(ctx, obs); err != nil {
			t.Fatalf("UpsertObservation failed: %v", err)
		}
	}

	patterns, err := s.QueryPatterns(ctx, "u1", "kitchen")
	if err != nil {
		t.Fatalf("QueryPatterns failed: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("Expected 1 pattern, got %d", len(patterns))
	}
	if patterns[0].Frequency != 3 {
		t.Errorf("Expected frequency 3, got %d", patterns[0].Frequency)
	}
}

func TestInMemoryPatternStoreDistinctBuckets(t *testing.T) {
	s := NewInMemoryPatternStore()
	ctx := context.Background()

	obs := models.Observation{
		UserID:       "u1",
		LocationType: "kitchen",
		Field:        "temperature",
		Value:        "4C",
		HourBucket:   2,
		ObservedAt:   time.Now(),
	}
	if err := s.UpsertObservation(ctx, obs); err != nil {
		t.Fatalf("UpsertObservation failed: %v", err)
	}
	obs.HourBucket = 5
	if err := s.UpsertObservation(ctx, obs); err != nil {
		t.Fatalf("UpsertObservation failed: %v", err)
	}

	patterns, err := s.QueryPatterns(ctx, "u1", "kitchen")
	if err != nil {
		t.Fatalf("QueryPatterns failed: %v", err)
	}
	if len(patterns) != 2 {
		t.Errorf("Expected 2 patterns for distinct hour buckets, got %d", len(patterns))
	}
}

func TestInMemoryPatternStoreConcurrentUpserts(t *testing.T) {
	s := NewInMemoryPatternStore()
	ctx := context.Background()

	obs := models.Observation{
		UserID:       "u1",
		LocationType: "kitchen",
		Field:        "temperature",
		Value:        "4C",
		HourBucket:   3,
		ObservedAt:   time.Now(),
	}

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if err := s.UpsertObservation(ctx, obs); err != nil {
				t.Errorf("UpsertObservation failed: %v", err)
			}
		}()
	}
	wg.Wait()

	patterns, err := s.QueryPatterns(ctx, "u1", "kitchen")
	if err != nil {
		t.Fatalf("QueryPatterns failed: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("Expected 1 pattern, got %d", len(patterns))
	}
	if patterns[0].Frequency != n {
		t.Errorf("Expected frequency %d after concurrent upserts, got %d", n, patterns[0].Frequency)
	}
}

func TestInMemoryPatternStoreValuePrefixCaseSensitive(t *testing.T) {
	s := NewInMemoryPatternStore()
	ctx := context.Background()

	for _, value := range []string{"Walk-in cooler", "Walk-in freezer", "walk-in cooler"} {
		obs := models.Observation{
			UserID:       "u1",
			LocationType: "kitchen",
			Field:        "area",
			Value:        value,
			HourBucket:   1,
			ObservedAt:   time.Now(),
		}
		if err := s.UpsertObservation(ctx, obs); err != nil {
			t.Fatalf("UpsertObservation failed: %v", err)
		}
	}

	patterns, err := s.QueryValuePrefix(ctx, "u1", "area", "Walk")
	if err != nil {
		t.Fatalf("QueryValuePrefix failed: %v", err)
	}
	if len(patterns) != 2 {
		t.Errorf("Expected 2 case-sensitive matches, got %d", len(patterns))
	}
	for _, p := range patterns {
		if p.Value == "walk-in cooler" {
			t.Errorf("Lowercase value should not match prefix Walk")
		}
	}
}

func TestInMemoryPatternStoreScopedByUser(t *testing.T) {
	s := NewInMemoryPatternStore()
	ctx := context.Background()

	obs := models.Observation{
		UserID:       "u1",
		LocationType: "kitchen",
		Field:        "temperature",
		Value:        "4C",
		HourBucket:   1,
		ObservedAt:   time.Now(),
	}
	if err := s.UpsertObservation(ctx, obs); err != nil {
		t.Fatalf("UpsertObservation failed: %v", err)
	}

	patterns, err := s.QueryPatterns(ctx, "u2", "kitchen")
	if err != nil {
		t.Fatalf("QueryPatterns failed: %v", err)
	}
	if len(patterns) != 0 {
		t.Errorf("Expected no patterns for other user, got %d", len(patterns))
	}
}
