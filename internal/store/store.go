package store

import (
	"context"

	"github.com/audeasy/audeasy/internal/models"
)

// CARStore defines the interface for corrective action report storage
type CARStore interface {
	UpsertCARs(ctx context.Context, cars []models.CAR) error
	QueryCARs(ctx context.Context, q models.CARQuery) ([]models.CAR, error)
	GetCAR(ctx context.Context, id string) (*models.CAR, error)
	CountBySeverity(ctx context.Context) (map[string]int, error)
	Health(ctx context.Context) error
}

// PatternStore defines the interface for the smart-defaults pattern store.
// UpsertObservation must behave as one atomic increment-or-insert per
// observation key; concurrent calls with the same key may never lose counts.
type PatternStore interface {
	UpsertObservation(ctx context.Context, obs models.Observation) error
	QueryPatterns(ctx context.Context, userID, locationType string) ([]models.Pattern, error)
	QueryValuePrefix(ctx context.Context, userID, field, prefix string) ([]models.Pattern, error)
	Health(ctx context.Context) error
}

// Database interface for dependency injection
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (interface{}, error)
	QueryRow(ctx context.Context, sql string, args ...any) interface{}
	Health(ctx context.Context) error
	IsConfigured() bool
}

// New creates a new CAR store instance
func New(db Database) CARStore {
	if db.IsConfigured() {
		return NewPostgresCARStore(db)
	}
	// Fallback to in-memory store if no database
	return NewInMemoryCARStore()
}

// NewPatterns creates a new pattern store instance
func NewPatterns(db Database) PatternStore {
	if db.IsConfigured() {
		return NewPostgresPatternStore(db)
	}
	return NewInMemoryPatternStore()
}
