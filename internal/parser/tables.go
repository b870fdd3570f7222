package parser

import "regexp"

// Scoring tables for the CAR description classifier. All tables are ordered
// slices: when two entries score equally, the earlier entry wins. Tie-breaking
// must stay deterministic across runs, so none of these may become maps.

type categoryRule struct {
	Name     string
	Weight   float64
	Keywords []string
}

var categoryRules = []categoryRule{
	{
		Name:     "Temperature Control",
		Weight:   1.0,
		Keywords: []string{"temperature", "cooler", "freezer", "refrigerat", "hot", "cold", "warm", "frozen", "thaw"},
	},
	{
		Name:     "Pest Control",
		Weight:   1.0,
		Keywords: []string{"pest", "mouse", "mice", "rat", "rodent", "insect", "fly", "cockroach", "droppings"},
	},
	{
		Name:     "Personal Hygiene",
		Weight:   0.9,
		Keywords: []string{"glove", "hand", "wash", "hygiene", "uniform", "hairnet", "apron", "jewelry"},
	},
	{
		Name:     "Cross Contamination",
		Weight:   1.0,
		Keywords: []string{"cross", "contamination", "raw", "cooked", "separate", "cutting board", "contact"},
	},
	{
		Name:     "Cleaning & Sanitation",
		Weight:   0.9,
		Keywords: []string{"clean", "sanit", "dirty", "residue", "chemical", "detergent", "sanitizer"},
	},
	{
		Name:     "Equipment Maintenance",
		Weight:   0.8,
		Keywords: []string{"equipment", "machine", "broken", "malfunction", "repair", "maintenance", "leak"},
	},
	{
		Name:     "Documentation",
		Weight:   0.8,
		Keywords: []string{"log", "record", "document", "form", "checklist", "missing", "incomplete"},
	},
	{
		Name:     "Storage & Organization",
		Weight:   0.8,
		Keywords: []string{"storage", "shelf", "organize", "label", "expired", "dating", "fifo"},
	},
}

// CategoryOther is the fallback when no category keyword matches
const CategoryOther = "Other"

type severityRule struct {
	Name       string
	Keywords   []string // weight 2 per match
	Indicators []string // weight 1 per match
}

var severityRules = []severityRule{
	{
		Name: "critical",
		Keywords: []string{"critical", "immediate", "contamination", "illness", "outbreak", "poisoning",
			"severe", "dangerous", "unsafe", "health risk", "life-threatening"},
		Indicators: []string{"must", "immediately", "urgent", "emergency"},
	},
	{
		Name:       "major",
		Keywords:   []string{"major", "significant", "serious", "violation", "non-compliance", "regulatory"},
		Indicators: []string{"should", "need to", "requires"},
	},
	{
		Name:       "minor",
		Keywords:   []string{"minor", "small", "slight", "cosmetic", "improvement", "enhancement"},
		Indicators: []string{"could", "might", "suggest"},
	},
}

var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`walk-in\s+(?:cooler|freezer)`),
	regexp.MustCompile(`prep\s+(?:area|station|kitchen)`),
	regexp.MustCompile(`storage\s+(?:area|room)`),
	regexp.MustCompile(`dish\s*(?:washing|washer)?\s+area`),
	regexp.MustCompile(`dry\s+storage`),
	regexp.MustCompile(`back\s+(?:door|area|room)`),
	regexp.MustCompile(`(?:main|front)\s+kitchen`),
	regexp.MustCompile(`service\s+area`),
}

// locationFallback captures a loose phrase after a preposition
var locationFallback = regexp.MustCompile(`(?:in|at|near)\s+(?:the\s+)?([a-z\s-]{3,30})`)

type timeRule struct {
	Pattern *regexp.Regexp
	Render  string // empty means render the matched span as-is
}

var timeRules = []timeRule{
	{Pattern: regexp.MustCompile(`today`), Render: "today"},
	{Pattern: regexp.MustCompile(`yesterday`), Render: "yesterday"},
	{Pattern: regexp.MustCompile(`this morning`), Render: "this morning"},
	{Pattern: regexp.MustCompile(`lunch rush`), Render: "during lunch service"},
	{Pattern: regexp.MustCompile(`dinner service`), Render: "during dinner service"},
	{Pattern: regexp.MustCompile(`\d{1,2}:\d{2}\s*(?:am|pm)?`)},
	{Pattern: regexp.MustCompile(`at\s+\d{1,2}\s*(?:am|pm)`)},
}

var foodItems = []string{
	"chicken", "beef", "pork", "fish", "seafood", "dairy", "milk", "cheese",
	"salad", "vegetables", "fruit", "bread", "pastries", "dessert", "soup",
	"rice", "pasta", "meat", "eggs", "produce",
}

type riskRule struct {
	Label    string
	Keywords []string
}

var riskRules = []riskRule{
	{Label: "Food poisoning risk", Keywords: []string{"contamination", "bacteria", "salmonella", "e.coli"}},
	{Label: "Temperature abuse", Keywords: []string{"warm", "hot", "temperature", "thaw"}},
	{Label: "Cross-contamination", Keywords: []string{"raw", "cooked", "contact", "cross"}},
	{Label: "Pest infestation", Keywords: []string{"pest", "rodent", "droppings", "insects"}},
	{Label: "Injury risk", Keywords: []string{"sharp", "broken", "leak", "wet floor"}},
}

type actionRule struct {
	Triggers []string
	Actions  []actionEntry
}

type actionEntry struct {
	Action   string
	Priority int
}

// actionRules are evaluated in order and their outputs concatenated before the
// final truncation to three. When several hazard types co-occur, later rule
// sets get silently dropped; that matches the behavior audits have been
// trained on, so changing it needs a data migration, not a code tweak.
var actionRules = []actionRule{
	{
		Triggers: []string{"temperature", "warm", "hot"},
		Actions: []actionEntry{
			{"Discard affected products", 1},
			{"Call refrigeration technician", 2},
			{"Monitor temperature hourly", 3},
		},
	},
	{
		Triggers: []string{"pest", "rodent", "mouse"},
		Actions: []actionEntry{
			{"Contact pest control service", 1},
			{"Deep clean affected area", 2},
			{"Seal entry points", 3},
		},
	},
	{
		Triggers: []string{"glove", "hand", "hygiene"},
		Actions: []actionEntry{
			{"Retrain staff on hygiene protocols", 1},
			{"Review handwashing procedures", 2},
			{"Increase supervision", 3},
		},
	},
	{
		Triggers: []string{"equipment", "broken", "malfunction"},
		Actions: []actionEntry{
			{"Tag equipment \"Out of Service\"", 1},
			{"Schedule repair/replacement", 2},
			{"Document equipment failure", 3},
		},
	},
}

type standardRule struct {
	Keyword   string
	Citations []string
}

var standardRules = []standardRule{
	{Keyword: "temperature", Citations: []string{"CFIA 4.2 - Cold Storage", "FDA Food Code 3-501.16"}},
	{Keyword: "pest", Citations: []string{"CFIA 5.1 - Pest Prevention", "FDA Food Code 6-202.15"}},
	{Keyword: "hygiene", Citations: []string{"CFIA 3.3 - Food Handler Hygiene", "FDA Food Code 2-301.11"}},
	{Keyword: "cleaning", Citations: []string{"CFIA 6.1 - Cleaning and Sanitizing", "FDA Food Code 4-601.11"}},
	{Keyword: "equipment", Citations: []string{"CFIA 7.2 - Equipment Maintenance", "FDA Food Code 4-204.11"}},
}
