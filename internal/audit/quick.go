package audit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Check kinds distinguish numeric-range validation from status matching
const (
	checkMax    = "max"
	checkMin    = "min"
	checkRange  = "range"
	checkStatus = "status"
)

// CriticalCheck is one pre-shift check that must pass before operations open
type CriticalCheck struct {
	Category string
	Name     string
	Kind     string
	Min      float64
	Max      float64
	Unit     string
	Status   string
}

// Key is the response map key for this check
func (c CriticalCheck) Key() string {
	return c.Category + "_" + c.Name
}

// Expected renders the passing condition for failure payloads
func (c CriticalCheck) Expected() string {
	switch c.Kind {
	case checkMax:
		return fmt.Sprintf("<= %g%s", c.Max, c.Unit)
	case checkMin:
		return fmt.Sprintf(">= %g%s", c.Min, c.Unit)
	case checkRange:
		return fmt.Sprintf("%g-%g %s", c.Min, c.Max, c.Unit)
	default:
		return c.Status
	}
}

// Ordered; failure lists come back in this sequence.
var criticalChecks = []CriticalCheck{
	{Category: "temperature_control", Name: "walk_in_cooler", Kind: checkMax, Max: 4, Unit: "°C"},
	{Category: "temperature_control", Name: "freezer", Kind: checkMax, Max: -18, Unit: "°C"},
	{Category: "temperature_control", Name: "hot_hold", Kind: checkMin, Min: 60, Unit: "°C"},
	{Category: "food_safety", Name: "hand_wash_stations", Kind: checkStatus, Status: "functional"},
	{Category: "food_safety", Name: "cross_contamination_control", Kind: checkStatus, Status: "compliant"},
	{Category: "food_safety", Name: "allergen_separation", Kind: checkStatus, Status: "proper"},
	{Category: "sanitation", Name: "sanitizer_concentration", Kind: checkRange, Min: 200, Max: 400, Unit: "ppm"},
	{Category: "sanitation", Name: "equipment_cleanliness", Kind: checkStatus, Status: "clean"},
	{Category: "personnel", Name: "sick_employee_policy", Kind: checkStatus, Status: "compliant"},
	{Category: "personnel", Name: "proper_uniforms", Kind: checkStatus, Status: "yes"},
}

// Failure is one critical check that did not pass
type Failure struct {
	Category string `json:"category"`
	Check    string `json:"check"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Severity string `json:"severity"`
}

// Result is the outcome of a quick-audit validation
type Result struct {
	Status             string    `json:"status"`
	Failures           []Failure `json:"failures"`
	PassedChecks       int       `json:"passed_checks"`
	TotalChecks        int       `json:"total_checks"`
	Timestamp          time.Time `json:"timestamp"`
	OperationsApproved bool      `json:"operations_approved"`
}

// Schedule gives the next required time for each audit tier
type Schedule struct {
	Quick    time.Time `json:"quick"`
	Standard time.Time `json:"standard"`
	Deep     time.Time `json:"deep"`
}

// StandardResult is the scored outcome of a weekly standard audit
type StandardResult struct {
	Status string `json:"status"`
	Score  int    `json:"score"`
	Passed int    `json:"passed"`
	Total  int    `json:"total"`
	Grade  string `json:"grade"`
}

const standardAuditChecks = 80

// Engine validates pre-shift audits against the critical check table
type Engine struct {
	now func() time.Time
}

// New creates a quick-audit engine
func New() *Engine {
	return &Engine{now: time.Now}
}

// Validate runs all critical checks against a response map. A missing or
// malformed response fails its check; any failure blocks operations.
func (e *Engine) Validate(responses map[string]string) Result {
	var failures []Failure

	for _, check := range criticalChecks {
		response := responses[check.Key()]
		if checkPasses(response, check) {
			continue
		}
		failures = append(failures, Failure{
			Category: check.Category,
			Check:    check.Name,
			Expected: check.Expected(),
			Actual:   response,
			Severity: "critical",
		})
	}

	status := "PASS"
	if len(failures) > 0 {
		status = "FAIL"
	}

	return Result{
		Status:             status,
		Failures:           failures,
		PassedChecks:       len(criticalChecks) - len(failures),
		TotalChecks:        len(criticalChecks),
		Timestamp:          e.now(),
		OperationsApproved: len(failures) == 0,
	}
}

func checkPasses(value string, check CriticalCheck) bool {
	switch check.Kind {
	case checkMax, checkMin, checkRange:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return false
		}
		switch check.Kind {
		case checkMax:
			return parsed <= check.Max
		case checkMin:
			return parsed >= check.Min
		default:
			return parsed >= check.Min && parsed <= check.Max
		}
	case checkStatus:
		return strings.EqualFold(strings.TrimSpace(value), check.Status)
	}
	return false
}

// EmergencyDescription builds the auto-CAR text for blocked operations. The
// output feeds straight into the incident parser.
func EmergencyDescription(failures []Failure) string {
	var b strings.Builder
	b.WriteString("CRITICAL FAILURE - Pre-shift audit blocked operations:\n\n")
	for _, f := range failures {
		fmt.Fprintf(&b, "- %s: %s\n", f.Category, f.Check)
		fmt.Fprintf(&b, "  Expected: %s\n", f.Expected)
		fmt.Fprintf(&b, "  Actual: %s\n\n", f.Actual)
	}
	return b.String()
}

// NextSchedule returns the three-tier audit schedule: quick daily at 06:00,
// standard weekly, deep monthly.
func (e *Engine) NextSchedule() Schedule {
	now := e.now()
	quick := time.Date(now.Year(), now.Month(), now.Day(), 6, 0, 0, 0, now.Location())
	if !quick.After(now) {
		quick = quick.AddDate(0, 0, 1)
	}
	return Schedule{
		Quick:    quick,
		Standard: now.AddDate(0, 0, 7),
		Deep:     now.AddDate(0, 0, 30),
	}
}

// ScoreStandard grades a weekly standard audit out of a fixed check count
func (e *Engine) ScoreStandard(responses map[string]string) StandardResult {
	passed := 0
	for _, v := range responses {
		if v == "yes" {
			passed++
		}
	}
	score := passed * 100 / standardAuditChecks

	grade := "F"
	switch {
	case score >= 90:
		grade = "A"
	case score >= 80:
		grade = "B"
	case score >= 70:
		grade = "C"
	}

	return StandardResult{
		Status: "complete",
		Score:  score,
		Passed: passed,
		Total:  standardAuditChecks,
		Grade:  grade,
	}
}
