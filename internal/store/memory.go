package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/audeasy/audeasy/internal/models"
	"github.com/audeasy/audeasy/pkg/utils"
)

// InMemoryCARStore implements CARStore using in-memory storage
type InMemoryCARStore struct {
	mu   sync.RWMutex
	cars map[string]models.CAR
}

// NewInMemoryCARStore creates a new in-memory CAR store
func NewInMemoryCARStore() *InMemoryCARStore {
	return &InMemoryCARStore{
		cars: make(map[string]models.CAR),
	}
}

// UpsertCARs stores reports in memory
func (s *InMemoryCARStore) UpsertCARs(ctx context.Context, cars []models.CAR) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, car := range cars {
		s.cars[car.ID] = car
	}

	return nil
}

// QueryCARs retrieves reports from memory based on query parameters
func (s *InMemoryCARStore) QueryCARs(ctx context.Context, q models.CARQuery) ([]models.CAR, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.CAR
	for _, car := range s.cars {
		if q.Matches(car) {
			result = append(result, car)
		}
	}

	// Sort by CreatedAt descending
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if q.Offset > 0 && q.Offset < len(result) {
		result = result[q.Offset:]
	} else if q.Offset >= len(result) && q.Offset > 0 {
		result = []models.CAR{}
	}

	if q.Limit > 0 && q.Limit < len(result) {
		result = result[:q.Limit]
	}

	return result, nil
}

// GetCAR retrieves a single report by ID
func (s *InMemoryCARStore) GetCAR(ctx context.Context, id string) (*models.CAR, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if car, exists := s.cars[id]; exists {
		return &car, nil
	}

	return nil, nil
}

// CountBySeverity returns report counts grouped by severity
func (s *InMemoryCARStore) CountBySeverity(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, car := range s.cars {
		counts[car.Severity]++
	}
	return counts, nil
}

// Health always returns nil for in-memory store
func (s *InMemoryCARStore) Health(ctx context.Context) error {
	return nil
}

// InMemoryPatternStore implements PatternStore using in-memory storage.
// The single mutex makes each increment-or-insert atomic, which is the
// lost-update contract UpsertObservation has to honor.
type InMemoryPatternStore struct {
	mu       sync.RWMutex
	patterns map[string]models.Pattern
}

// NewInMemoryPatternStore creates a new in-memory pattern store
func NewInMemoryPatternStore() *InMemoryPatternStore {
	return &InMemoryPatternStore{
		patterns: make(map[string]models.Pattern),
	}
}

func patternKey(userID, locationType, field, value string, hourBucket int) string {
	// Hashing sidesteps delimiter collisions in free-text values
	return utils.HashString(strings.Join([]string{
		userID, locationType, field, value, strconv.Itoa(hourBucket),
	}, "\x00"))
}

// UpsertObservation increments an existing pattern or creates a new one
func (s *InMemoryPatternStore) UpsertObservation(ctx context.Context, obs models.Observation) error {
	key := patternKey(obs.UserID, obs.LocationType, obs.Field, obs.Value, obs.HourBucket)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.patterns[key]; ok {
		existing.Frequency++
		existing.LastUsed = obs.ObservedAt
		existing.TimeOfDay = obs.TimeOfDay
		existing.DayOfWeek = obs.DayOfWeek
		s.patterns[key] = existing
		return nil
	}

	s.patterns[key] = models.Pattern{
		UserID:       obs.UserID,
		LocationType: obs.LocationType,
		Field:        obs.Field,
		Value:        obs.Value,
		HourBucket:   obs.HourBucket,
		TimeOfDay:    obs.TimeOfDay,
		DayOfWeek:    obs.DayOfWeek,
		Frequency:    1,
		LastUsed:     obs.ObservedAt,
		CreatedAt:    obs.ObservedAt,
	}
	return nil
}

// QueryPatterns returns all patterns for a user in a location type
func (s *InMemoryPatternStore) QueryPatterns(ctx context.Context, userID, locationType string) ([]models.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Pattern
	for _, p := range s.patterns {
		if p.UserID == userID && p.LocationType == locationType {
			result = append(result, p)
		}
	}
	return result, nil
}

// QueryValuePrefix returns patterns whose value starts with the given prefix.
// The match is case-sensitive, mirroring what autocomplete callers expect.
func (s *InMemoryPatternStore) QueryValuePrefix(ctx context.Context, userID, field, prefix string) ([]models.Pattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Pattern
	for _, p := range s.patterns {
		if p.UserID == userID && p.Field == field && strings.HasPrefix(p.Value, prefix) {
			result = append(result, p)
		}
	}
	return result, nil
}

// Health always returns nil for in-memory store
func (s *InMemoryPatternStore) Health(ctx context.Context) error {
	return nil
}
