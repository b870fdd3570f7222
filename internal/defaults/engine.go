package defaults

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/audeasy/audeasy/config"
	apperrors "github.com/audeasy/audeasy/internal/errors"
	"github.com/audeasy/audeasy/internal/logger"
	"github.com/audeasy/audeasy/internal/metrics"
	"github.com/audeasy/audeasy/internal/models"
	"github.com/audeasy/audeasy/internal/store"
)

// HourBucket maps an hour of day onto one of eight 3-hour buckets.
// Observations at 09:50 and 10:10 land in the same bucket, so near-identical
// audit times reinforce the same pattern instead of fragmenting it.
func HourBucket(hour int) int {
	return hour / 3
}

// Engine learns field values from past audit submissions and serves them back
// as pre-fill defaults and autocomplete suggestions.
type Engine struct {
	patterns       store.PatternStore
	minFrequency   int
	maxSuggestions int
	now            func() time.Time
}

// New creates a defaults engine backed by the given pattern store
func New(patterns store.PatternStore, cfg config.DefaultsConfig) *Engine {
	return &Engine{
		patterns:       patterns,
		minFrequency:   cfg.MinFrequency,
		maxSuggestions: cfg.MaxSuggestions,
		now:            time.Now,
	}
}

// Learn records every non-empty field value of a submission as an observation
func (e *Engine) Learn(ctx context.Context, userID string, auditCtx models.AuditContext, fields map[string]string) error {
	at := e.now()
	locationType := auditCtx.NormalizedLocationType()

	for field, value := range fields {
		// Clients that stringify JSON nulls send the literal "null"
		if value == "" || value == "null" {
			continue
		}
		obs := models.Observation{
			UserID:       userID,
			LocationType: locationType,
			Field:        field,
			Value:        value,
			HourBucket:   HourBucket(at.Hour()),
			TimeOfDay:    at.Hour(),
			DayOfWeek:    int(at.Weekday()),
			ObservedAt:   at,
		}
		if err := e.patterns.UpsertObservation(ctx, obs); err != nil {
			metrics.RecordPatternOp("learn", "error")
			logger.Error("Pattern learn failed", "error", err, "user_id", userID, "field", field)
			return apperrors.Unavailable("learn patterns", err)
		}
	}

	metrics.RecordPatternOp("learn", "success")
	return nil
}

// Defaults returns one pre-fill suggestion per field. Only patterns seen at
// least minFrequency times qualify; a value used once is noise, not a habit.
// All qualifying patterns compete regardless of when they were learned: a
// habit built every morning is still the best guess in the evening. Time of
// day only breaks frequency ties, favoring the candidate observed closest to
// the current hour, then the closest weekday.
func (e *Engine) Defaults(ctx context.Context, userID string, auditCtx models.AuditContext) (map[string]models.DefaultSuggestion, error) {
	patterns, err := e.patterns.QueryPatterns(ctx, userID, auditCtx.NormalizedLocationType())
	if err != nil {
		metrics.RecordPatternOp("defaults", "error")
		return nil, apperrors.Unavailable("query patterns", err)
	}

	now := e.now()
	hour := now.Hour()
	day := int(now.Weekday())

	best := make(map[string]models.Pattern)
	for _, p := range patterns {
		if p.Frequency < e.minFrequency {
			continue
		}
		current, ok := best[p.Field]
		if !ok || ranksHigher(p, current, hour, day) {
			best[p.Field] = p
		}
	}

	result := make(map[string]models.DefaultSuggestion, len(best))
	for field, p := range best {
		result[field] = models.DefaultSuggestion{
			Value:      p.Value,
			Confidence: patternConfidence(p.Frequency),
			Context:    fmt.Sprintf("Used %d times in similar conditions", p.Frequency),
		}
	}

	metrics.RecordPatternOp("defaults", "success")
	return result, nil
}

// Suggestions returns autocomplete candidates for a field being typed.
// The prefix match is case-sensitive. Rows for the same value in different
// contexts collapse into one candidate.
func (e *Engine) Suggestions(ctx context.Context, userID, field, prefix string) ([]models.ValueSuggestion, error) {
	rows, err := e.patterns.QueryValuePrefix(ctx, userID, field, prefix)
	if err != nil {
		metrics.RecordPatternOp("suggestions", "error")
		return nil, apperrors.Unavailable("query value prefix", err)
	}

	type aggregate struct {
		maxFrequency int
		contexts     int
	}
	byValue := make(map[string]aggregate)
	for _, p := range rows {
		agg := byValue[p.Value]
		if p.Frequency > agg.maxFrequency {
			agg.maxFrequency = p.Frequency
		}
		agg.contexts++
		byValue[p.Value] = agg
	}

	suggestions := make([]models.ValueSuggestion, 0, len(byValue))
	for value, agg := range byValue {
		suggestions = append(suggestions, models.ValueSuggestion{
			Value:      value,
			Confidence: patternConfidence(agg.maxFrequency),
			UsageCount: agg.contexts,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		if suggestions[i].UsageCount != suggestions[j].UsageCount {
			return suggestions[i].UsageCount > suggestions[j].UsageCount
		}
		return suggestions[i].Value < suggestions[j].Value
	})

	if len(suggestions) > e.maxSuggestions {
		suggestions = suggestions[:e.maxSuggestions]
	}

	metrics.RecordPatternOp("suggestions", "success")
	return suggestions, nil
}

// Health reports whether the backing pattern store is reachable
func (e *Engine) Health(ctx context.Context) error {
	return e.patterns.Health(ctx)
}

// ranksHigher orders candidate patterns for a field: frequency descending,
// then hour distance to now ascending, then day distance ascending, with
// recency as the final deterministic tie-break.
func ranksHigher(a, b models.Pattern, hour, day int) bool {
	if a.Frequency != b.Frequency {
		return a.Frequency > b.Frequency
	}
	if ah, bh := absInt(a.TimeOfDay-hour), absInt(b.TimeOfDay-hour); ah != bh {
		return ah < bh
	}
	if ad, bd := absInt(a.DayOfWeek-day), absInt(b.DayOfWeek-day); ad != bd {
		return ad < bd
	}
	return a.LastUsed.After(b.LastUsed)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func patternConfidence(frequency int) float64 {
	confidence := float64(frequency) / 10
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}
