package parser

import (
	"math"
	"strings"

	"github.com/audeasy/audeasy/internal/models"
	"github.com/audeasy/audeasy/pkg/utils"
)

// Parser turns free-form CAR descriptions into structured incident records.
// Parsing is pure and total: every input maps to some output, missing signals
// degrade confidence instead of producing an error, and the same description
// always yields the same record.
type Parser struct{}

// New creates a new parser instance
func New() *Parser {
	return &Parser{}
}

const (
	maxProducts  = 5
	maxActions   = 3
	maxStandards = 3
)

// Parse analyzes a description and returns the structured incident record
func (p *Parser) Parse(description string) models.ParsedIncident {
	text := strings.ToLower(description)

	category, categoryConfidence := p.extractCategory(text)
	severity, severityReason := p.extractSeverity(text)

	return models.ParsedIncident{
		Category:           category,
		CategoryConfidence: categoryConfidence,
		Severity:           severity,
		SeverityReason:     severityReason,
		Location:           p.extractLocation(text, description),
		When:               p.extractTime(text),
		AffectedProducts:   p.extractProducts(text),
		ImmediateRisks:     p.extractRisks(text),
		SuggestedActions:   p.suggestActions(text),
		RelatedStandards:   p.relatedStandards(text),
		ConfidenceScore:    p.confidenceScore(text),
	}
}

// extractCategory scores each category bucket by keyword hits. The earliest
// bucket in table order wins ties; zero signal falls back to Other at 0.3.
func (p *Parser) extractCategory(text string) (string, float64) {
	bestName := ""
	bestScore := 0.0

	for _, rule := range categoryRules {
		score := rule.Weight * float64(utils.CountMatches(text, rule.Keywords))
		if score > bestScore {
			bestScore = score
			bestName = rule.Name
		}
	}

	if bestScore == 0 {
		return CategoryOther, 0.3
	}

	confidence := math.Min(bestScore/3.0, 1.0)
	return bestName, math.Round(confidence*100) / 100
}

// extractSeverity scores the three severity buckets (keywords weigh 2,
// indicator phrases weigh 1). No signal at all defaults to major: when we
// cannot tell how bad an incident is, under-triaging is the worse failure.
func (p *Parser) extractSeverity(text string) (string, string) {
	bestName := ""
	bestScore := 0

	for _, rule := range severityRules {
		score := 2*utils.CountMatches(text, rule.Keywords) + utils.CountMatches(text, rule.Indicators)
		if score > bestScore {
			bestScore = score
			bestName = rule.Name
		}
	}

	if bestScore == 0 {
		return models.SeverityMajor, "Unable to determine from description - defaulting to major"
	}

	var reasons []string
	if strings.Contains(text, "contamination") || strings.Contains(text, "illness") {
		reasons = append(reasons, "Food safety risk detected")
	}
	if strings.Contains(text, "temperature") && (strings.Contains(text, "warm") || strings.Contains(text, "hot")) {
		reasons = append(reasons, "Temperature abuse indicated")
	}
	if strings.Contains(text, "immediate") || strings.Contains(text, "urgent") {
		reasons = append(reasons, "Urgency indicated")
	}

	reasoning := "Based on keyword analysis"
	if len(reasons) > 0 {
		reasoning = strings.Join(reasons, "; ")
	}
	return bestName, reasoning
}

// extractLocation tries the known location phrases first, then falls back to
// a loose preposition capture. The span is taken from the original-case text
// so mixed-case input title-cases cleanly.
func (p *Parser) extractLocation(text, original string) string {
	for _, pattern := range locationPatterns {
		if loc := pattern.FindStringIndex(text); loc != nil {
			return utils.TitleCase(original[loc[0]:loc[1]])
		}
	}

	if m := locationFallback.FindStringSubmatch(text); m != nil {
		return utils.TitleCase(strings.TrimSpace(m[1]))
	}
	return ""
}

func (p *Parser) extractTime(text string) string {
	for _, rule := range timeRules {
		if m := rule.Pattern.FindString(text); m != "" {
			if rule.Render != "" {
				return rule.Render
			}
			return m
		}
	}
	return ""
}

// extractProducts returns matched food items in table order, not match order
func (p *Parser) extractProducts(text string) []string {
	var products []string
	for _, item := range foodItems {
		if strings.Contains(text, item) {
			products = append(products, utils.Capitalize(item))
			if len(products) == maxProducts {
				break
			}
		}
	}
	return products
}

func (p *Parser) extractRisks(text string) []string {
	var risks []string
	for _, rule := range riskRules {
		if utils.ContainsAny(text, rule.Keywords) {
			risks = append(risks, rule.Label)
		}
	}
	return risks
}

// suggestActions concatenates triggered rule sets in evaluation order and
// truncates to three entries
func (p *Parser) suggestActions(text string) []models.SuggestedAction {
	var actions []models.SuggestedAction
	for _, rule := range actionRules {
		if !utils.ContainsAny(text, rule.Triggers) {
			continue
		}
		for _, entry := range rule.Actions {
			actions = append(actions, models.SuggestedAction{Action: entry.Action, Priority: entry.Priority})
		}
	}
	if len(actions) > maxActions {
		actions = actions[:maxActions]
	}
	return actions
}

func (p *Parser) relatedStandards(text string) []string {
	var standards []string
	for _, rule := range standardRules {
		if strings.Contains(text, rule.Keyword) {
			standards = append(standards, rule.Citations...)
		}
	}
	standards = utils.DedupeFirstSeen(standards)
	if len(standards) > maxStandards {
		standards = standards[:maxStandards]
	}
	return standards
}

// confidenceScore reflects only how much text we were given, independent of
// the per-field confidences
func (p *Parser) confidenceScore(text string) float64 {
	wordCount := len(strings.Fields(text))
	switch {
	case wordCount < 10:
		return 0.3
	case wordCount < 20:
		return 0.5
	case wordCount < 50:
		return 0.7
	default:
		return 0.9
	}
}
