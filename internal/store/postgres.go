package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/audeasy/audeasy/internal/models"
)

// PostgresCARStore implements CARStore using PostgreSQL
type PostgresCARStore struct {
	db Database
}

// NewPostgresCARStore creates a new PostgreSQL CAR store
func NewPostgresCARStore(db Database) *PostgresCARStore {
	return &PostgresCARStore{db: db}
}

// UpsertCARs inserts or updates reports in the database
func (s *PostgresCARStore) UpsertCARs(ctx context.Context, cars []models.CAR) error {
	if len(cars) == 0 {
		return nil
	}

	query := `
		INSERT INTO cars (
			id, description, category, category_confidence, severity, severity_reason,
			location, occurred, affected_products, immediate_risks, suggested_actions,
			related_standards, confidence_score, status, source, reported_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		ON CONFLICT (id) DO UPDATE SET
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			category_confidence = EXCLUDED.category_confidence,
			severity = EXCLUDED.severity,
			severity_reason = EXCLUDED.severity_reason,
			location = EXCLUDED.location,
			occurred = EXCLUDED.occurred,
			affected_products = EXCLUDED.affected_products,
			immediate_risks = EXCLUDED.immediate_risks,
			suggested_actions = EXCLUDED.suggested_actions,
			related_standards = EXCLUDED.related_standards,
			confidence_score = EXCLUDED.confidence_score,
			status = EXCLUDED.status,
			source = EXCLUDED.source,
			reported_by = EXCLUDED.reported_by,
			updated_at = NOW()
	`

	for _, car := range cars {
		actions, err := json.Marshal(car.SuggestedActions)
		if err != nil {
			return fmt.Errorf("marshal actions for %s: %w", car.ID, err)
		}
		err = s.db.Exec(ctx, query,
			car.ID, car.Description, car.Category, car.CategoryConfidence,
			car.Severity, car.SeverityReason, car.Location, car.When,
			car.AffectedProducts, car.ImmediateRisks, string(actions),
			car.RelatedStandards, car.ConfidenceScore, car.Status, car.Source, car.ReportedBy,
		)
		if err != nil {
			return fmt.Errorf("upsert car %s: %w", car.ID, err)
		}
	}

	return nil
}

// QueryCARs retrieves reports based on query parameters
func (s *PostgresCARStore) QueryCARs(ctx context.Context, q models.CARQuery) ([]models.CAR, error) {
	query := `
		SELECT id, description, category, category_confidence, severity, severity_reason,
			   location, occurred, affected_products, immediate_risks, suggested_actions,
			   related_standards, confidence_score, status, source, reported_by,
			   created_at, updated_at
		FROM cars
		WHERE 1=1
	`

	var args []interface{}
	argIndex := 1

	if len(q.IDs) > 0 {
		query += fmt.Sprintf(" AND id = ANY($%d)", argIndex)
		args = append(args, q.IDs)
		argIndex++
	}

	if len(q.Categories) > 0 {
		query += fmt.Sprintf(" AND category = ANY($%d)", argIndex)
		args = append(args, q.Categories)
		argIndex++
	}

	if len(q.Severities) > 0 {
		query += fmt.Sprintf(" AND severity = ANY($%d)", argIndex)
		args = append(args, q.Severities)
		argIndex++
	}

	if len(q.Statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", argIndex)
		args = append(args, q.Statuses)
		argIndex++
	}

	if len(q.Sources) > 0 {
		query += fmt.Sprintf(" AND source = ANY($%d)", argIndex)
		args = append(args, q.Sources)
		argIndex++
	}

	if q.ReportedBy != "" {
		query += fmt.Sprintf(" AND reported_by = $%d", argIndex)
		args = append(args, q.ReportedBy)
		argIndex++
	}

	if !q.Since.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, q.Since)
		argIndex++
	}

	if !q.Until.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, q.Until)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, q.Limit)
		argIndex++
	}

	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, q.Offset)
	}

	rowsInterface, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cars: %w", err)
	}

	rows, ok := rowsInterface.(pgx.Rows)
	if !ok {
		return nil, fmt.Errorf("invalid rows type")
	}
	defer rows.Close()

	var cars []models.CAR
	for rows.Next() {
		car, err := scanCAR(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}

	return cars, nil
}

// GetCAR retrieves a single report by ID
func (s *PostgresCARStore) GetCAR(ctx context.Context, id string) (*models.CAR, error) {
	query := `
		SELECT id, description, category, category_confidence, severity, severity_reason,
			   location, occurred, affected_products, immediate_risks, suggested_actions,
			   related_standards, confidence_score, status, source, reported_by,
			   created_at, updated_at
		FROM cars
		WHERE id = $1
	`

	rowInterface := s.db.QueryRow(ctx, query, id)
	row, ok := rowInterface.(pgx.Row)
	if !ok {
		return nil, fmt.Errorf("invalid row type")
	}

	car, err := scanCAR(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &car, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCAR(row scanner) (models.CAR, error) {
	var car models.CAR
	var actionsJSON []byte
	err := row.Scan(
		&car.ID, &car.Description, &car.Category, &car.CategoryConfidence,
		&car.Severity, &car.SeverityReason, &car.Location, &car.When,
		&car.AffectedProducts, &car.ImmediateRisks, &actionsJSON,
		&car.RelatedStandards, &car.ConfidenceScore, &car.Status, &car.Source,
		&car.ReportedBy, &car.CreatedAt, &car.UpdatedAt,
	)
	if err != nil {
		return car, err
	}
	if len(actionsJSON) > 0 {
		if err := json.Unmarshal(actionsJSON, &car.SuggestedActions); err != nil {
			return car, fmt.Errorf("unmarshal actions for %s: %w", car.ID, err)
		}
	}
	return car, nil
}

// CountBySeverity returns report counts grouped by severity
func (s *PostgresCARStore) CountBySeverity(ctx context.Context) (map[string]int, error) {
	rowsInterface, err := s.db.Query(ctx, `SELECT severity, COUNT(*) FROM cars GROUP BY severity`)
	if err != nil {
		return nil, fmt.Errorf("count cars: %w", err)
	}

	rows, ok := rowsInterface.(pgx.Rows)
	if !ok {
		return nil, fmt.Errorf("invalid rows type")
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, fmt.Errorf("scan severity count: %w", err)
		}
		counts[severity] = count
	}
	return counts, nil
}

// Health checks the database connection
func (s *PostgresCARStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}

// PostgresPatternStore implements PatternStore using PostgreSQL
type PostgresPatternStore struct {
	db Database
}

// NewPostgresPatternStore creates a new PostgreSQL pattern store
func NewPostgresPatternStore(db Database) *PostgresPatternStore {
	return &PostgresPatternStore{db: db}
}

// UpsertObservation performs a single atomic increment-or-insert. The unique
// key on (user_id, location_type, field_name, field_value, hour_bucket) lets
// ON CONFLICT serialize concurrent learns for the same observation.
func (s *PostgresPatternStore) UpsertObservation(ctx context.Context, obs models.Observation) error {
	query := `
		INSERT INTO audit_patterns (
			user_id, location_type, field_name, field_value,
			hour_bucket, time_of_day, day_of_week, frequency, last_used
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8)
		ON CONFLICT (user_id, location_type, field_name, field_value, hour_bucket)
		DO UPDATE SET
			frequency = audit_patterns.frequency + 1,
			time_of_day = EXCLUDED.time_of_day,
			day_of_week = EXCLUDED.day_of_week,
			last_used = EXCLUDED.last_used
	`

	err := s.db.Exec(ctx, query,
		obs.UserID, obs.LocationType, obs.Field, obs.Value,
		obs.HourBucket, obs.TimeOfDay, obs.DayOfWeek, obs.ObservedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert observation: %w", err)
	}
	return nil
}

// QueryPatterns returns all patterns for a user in a location type
func (s *PostgresPatternStore) QueryPatterns(ctx context.Context, userID, locationType string) ([]models.Pattern, error) {
	query := `
		SELECT user_id, location_type, field_name, field_value, hour_bucket,
			   time_of_day, day_of_week, frequency, last_used, created_at
		FROM audit_patterns
		WHERE user_id = $1 AND location_type = $2
	`

	rowsInterface, err := s.db.Query(ctx, query, userID, locationType)
	if err != nil {
		return nil, fmt.Errorf("query patterns: %w", err)
	}

	return scanPatterns(rowsInterface)
}

// QueryValuePrefix returns patterns whose value starts with the given prefix.
// LIKE without ILIKE keeps the match case-sensitive.
func (s *PostgresPatternStore) QueryValuePrefix(ctx context.Context, userID, field, prefix string) ([]models.Pattern, error) {
	query := `
		SELECT user_id, location_type, field_name, field_value, hour_bucket,
			   time_of_day, day_of_week, frequency, last_used, created_at
		FROM audit_patterns
		WHERE user_id = $1 AND field_name = $2 AND field_value LIKE $3 || '%'
	`

	rowsInterface, err := s.db.Query(ctx, query, userID, field, prefix)
	if err != nil {
		return nil, fmt.Errorf("query value prefix: %w", err)
	}

	return scanPatterns(rowsInterface)
}

func scanPatterns(rowsInterface interface{}) ([]models.Pattern, error) {
	rows, ok := rowsInterface.(pgx.Rows)
	if !ok {
		return nil, fmt.Errorf("invalid rows type")
	}
	defer rows.Close()

	var patterns []models.Pattern
	for rows.Next() {
		var p models.Pattern
		err := rows.Scan(
			&p.UserID, &p.LocationType, &p.Field, &p.Value, &p.HourBucket,
			&p.TimeOfDay, &p.DayOfWeek, &p.Frequency, &p.LastUsed, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// Health checks the database connection
func (s *PostgresPatternStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
