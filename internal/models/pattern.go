package models

import "time"

// GeneralLocationType is used when a submission carries no location context
const GeneralLocationType = "general"

// AuditContext describes the situation a form submission happened in
type AuditContext struct {
	LocationType string `json:"location_type"`
}

// NormalizedLocationType returns the context's location type or the general fallback
func (c AuditContext) NormalizedLocationType() string {
	if c.LocationType == "" {
		return GeneralLocationType
	}
	return c.LocationType
}

// Observation is one sighting of a field value in a given context
type Observation struct {
	UserID       string    `json:"user_id"`
	LocationType string    `json:"location_type"`
	Field        string    `json:"field"`
	Value        string    `json:"value"`
	HourBucket   int       `json:"hour_bucket"`
	TimeOfDay    int       `json:"time_of_day"`
	DayOfWeek    int       `json:"day_of_week"`
	ObservedAt   time.Time `json:"observed_at"`
}

// Pattern is a stored, counted observation in the pattern store
type Pattern struct {
	UserID       string    `json:"user_id" db:"user_id"`
	LocationType string    `json:"location_type" db:"location_type"`
	Field        string    `json:"field" db:"field_name"`
	Value        string    `json:"value" db:"field_value"`
	HourBucket   int       `json:"hour_bucket" db:"hour_bucket"`
	TimeOfDay    int       `json:"time_of_day" db:"time_of_day"`
	DayOfWeek    int       `json:"day_of_week" db:"day_of_week"`
	Frequency    int       `json:"frequency" db:"frequency"`
	LastUsed     time.Time `json:"last_used" db:"last_used"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// DefaultSuggestion is a pre-fill candidate for one form field
type DefaultSuggestion struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context"`
}

// ValueSuggestion is an autocomplete candidate for a field being typed
type ValueSuggestion struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	UsageCount int     `json:"usage_count"`
}
