package models

import "time"

// Severity buckets for corrective action reports
const (
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
)

// CAR statuses
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusClosed     = "closed"
)

// SuggestedAction is a single corrective step with its execution priority
type SuggestedAction struct {
	Action   string `json:"action" db:"action"`
	Priority int    `json:"priority" db:"priority"`
}

// ParsedIncident is the classifier's view of a free-form CAR description.
// It is a pure function of the input text; parsing the same description twice
// yields an identical value.
type ParsedIncident struct {
	Category           string            `json:"category"`
	CategoryConfidence float64           `json:"category_confidence"`
	Severity           string            `json:"severity"`
	SeverityReason     string            `json:"severity_reason"`
	Location           string            `json:"location,omitempty"`
	When               string            `json:"when,omitempty"`
	AffectedProducts   []string          `json:"affected_products"`
	ImmediateRisks     []string          `json:"immediate_risks"`
	SuggestedActions   []SuggestedAction `json:"suggested_actions"`
	RelatedStandards   []string          `json:"related_standards"`
	ConfidenceScore    float64           `json:"confidence_score"`
}

// CAR represents a corrective action report
type CAR struct {
	ID                 string            `json:"id" db:"id"`
	Description        string            `json:"description" db:"description"`
	Category           string            `json:"category" db:"category"`
	CategoryConfidence float64           `json:"category_confidence" db:"category_confidence"`
	Severity           string            `json:"severity" db:"severity"`
	SeverityReason     string            `json:"severity_reason" db:"severity_reason"`
	Location           string            `json:"location,omitempty" db:"location"`
	When               string            `json:"when,omitempty" db:"occurred"`
	AffectedProducts   []string          `json:"affected_products" db:"affected_products"`
	ImmediateRisks     []string          `json:"immediate_risks" db:"immediate_risks"`
	SuggestedActions   []SuggestedAction `json:"suggested_actions" db:"suggested_actions"`
	RelatedStandards   []string          `json:"related_standards" db:"related_standards"`
	ConfidenceScore    float64           `json:"confidence_score" db:"confidence_score"`
	Status             string            `json:"status" db:"status"`
	Source             string            `json:"source" db:"source"`
	ReportedBy         string            `json:"reported_by" db:"reported_by"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at" db:"updated_at"`
}

// ApplyParse copies classifier output onto the report
func (c *CAR) ApplyParse(p ParsedIncident) {
	c.Category = p.Category
	c.CategoryConfidence = p.CategoryConfidence
	c.Severity = p.Severity
	c.SeverityReason = p.SeverityReason
	c.Location = p.Location
	c.When = p.When
	c.AffectedProducts = p.AffectedProducts
	c.ImmediateRisks = p.ImmediateRisks
	c.SuggestedActions = p.SuggestedActions
	c.RelatedStandards = p.RelatedStandards
	c.ConfidenceScore = p.ConfidenceScore
}

// CARQuery represents query parameters for filtering reports
type CARQuery struct {
	IDs        []string  `json:"ids"`
	Categories []string  `json:"categories"`
	Severities []string  `json:"severities"`
	Statuses   []string  `json:"statuses"`
	Sources    []string  `json:"sources"`
	ReportedBy string    `json:"reported_by"`
	Since      time.Time `json:"since"`
	Until      time.Time `json:"until"`
	Limit      int       `json:"limit"`
	Offset     int       `json:"offset"`
}

// Matches checks if a report matches the query criteria
func (q CARQuery) Matches(car CAR) bool {
	if len(q.IDs) > 0 && !contains(q.IDs, car.ID) {
		return false
	}
	if len(q.Categories) > 0 && !contains(q.Categories, car.Category) {
		return false
	}
	if len(q.Severities) > 0 && !contains(q.Severities, car.Severity) {
		return false
	}
	if len(q.Statuses) > 0 && !contains(q.Statuses, car.Status) {
		return false
	}
	if len(q.Sources) > 0 && !contains(q.Sources, car.Source) {
		return false
	}
	if q.ReportedBy != "" && car.ReportedBy != q.ReportedBy {
		return false
	}
	if !q.Since.IsZero() && car.CreatedAt.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && car.CreatedAt.After(q.Until) {
		return false
	}
	return true
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Feedback is a user-submitted bug report
type Feedback struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	PageURL     string    `json:"page_url,omitempty"`
	Screenshot  string    `json:"screenshot,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
