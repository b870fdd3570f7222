package industry

import (
	"regexp"
	"strconv"
	"strings"
)

// IndustryGeneral is returned when no keyword bucket matches
const IndustryGeneral = "general"

// Profile describes a detected industry and its compliance context
type Profile struct {
	Industry        string   `json:"industry"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	Templates       []string `json:"templates"`
	Regulations     []string `json:"regulations"`
	RiskCategories  []string `json:"risk_categories"`
}

// Location is a recognized operating region with its regulators
type Location struct {
	Name        string   `json:"location,omitempty"`
	Code        string   `json:"code,omitempty"`
	Country     string   `json:"country,omitempty"`
	CountryName string   `json:"country_name,omitempty"`
	Regulations []string `json:"regulations"`
	Detected    bool     `json:"detected"`
}

// BusinessSize is the location count parsed from a description
type BusinessSize struct {
	Locations int  `json:"locations"`
	Detected  bool `json:"detected"`
}

type industryRule struct {
	name           string
	keywords       []string
	templates      []string
	regulations    []string
	riskCategories []string
}

// Ordered; ties resolve to the earlier entry.
var industryRules = []industryRule{
	{
		name: "food_service",
		keywords: []string{
			"restaurant", "cafe", "coffee", "food", "kitchen", "dining",
			"fast-casual", "qsr", "catering", "bakery", "bistro", "grill",
		},
		templates: []string{
			"fda_food_code_basic", "haccp_critical_points", "allergen_control",
			"food_temperature_log", "kitchen_cleanliness", "employee_hygiene",
		},
		regulations:    []string{"FDA Food Code", "Local Health Department", "HACCP"},
		riskCategories: []string{"Food Safety", "Equipment", "Cleanliness", "Customer Service"},
	},
	{
		name:           "retail",
		keywords:       []string{"store", "retail", "shop", "boutique", "outlet", "mall"},
		templates:      []string{"retail_safety_checklist", "customer_service_standards", "inventory_control"},
		regulations:    []string{"OSHA", "ADA", "Consumer Protection"},
		riskCategories: []string{"Safety", "Customer Service", "Inventory", "Compliance"},
	},
}

type locationRule struct {
	key     string
	country string
	code    string
	name    string
}

var locationRules = []locationRule{
	{"oregon", "US", "OR", "Oregon"},
	{"california", "US", "CA", "California"},
	{"new york", "US", "NY", "New York"},
	{"texas", "US", "TX", "Texas"},
	{"florida", "US", "FL", "Florida"},
	{"portland", "US", "OR", "Portland, Oregon"},
	{"nova scotia", "CA", "NS", "Nova Scotia"},
	{"halifax", "CA", "NS", "Halifax, Nova Scotia"},
	{"ontario", "CA", "ON", "Ontario"},
	{"toronto", "CA", "ON", "Toronto, Ontario"},
	{"quebec", "CA", "QC", "Quebec"},
	{"british columbia", "CA", "BC", "British Columbia"},
	{"vancouver", "CA", "BC", "Vancouver, BC"},
	{"qatar", "QA", "QA", "Qatar"},
	{"doha", "QA", "QA", "Doha, Qatar"},
	{"saudi arabia", "SA", "SA", "Saudi Arabia"},
	{"riyadh", "SA", "SA", "Riyadh, Saudi Arabia"},
	{"dubai", "AE", "DU", "Dubai, UAE"},
	{"uae", "AE", "AE", "United Arab Emirates"},
	{"philippines", "PH", "PH", "Philippines"},
	{"manila", "PH", "MM", "Manila, Philippines"},
	{"cebu", "PH", "CE", "Cebu, Philippines"},
	{"davao", "PH", "DA", "Davao, Philippines"},
	{"singapore", "SG", "SG", "Singapore"},
	{"hong kong", "HK", "HK", "Hong Kong"},
	{"london", "GB", "LN", "London, UK"},
	{"sydney", "AU", "NSW", "Sydney, Australia"},
}

var countryRegulations = map[string][]string{
	"US": {"FDA Food Code", "OSHA", "Local Health Department"},
	"CA": {"Canadian Food Inspection Agency (CFIA)", "Health Canada", "Provincial Health"},
	"QA": {"Qatar Food Safety", "Ministry of Public Health", "QNFSP"},
	"PH": {"FDA Philippines", "DOH Food Safety", "LGU Health Office"},
	"SG": {"SFA Singapore", "NEA", "Food Safety Standards"},
	"AE": {"Dubai Municipality", "FSSAI", "Emirates Food Safety"},
	"GB": {"FSA UK", "Food Hygiene Rating", "Local Authority"},
	"AU": {"Food Standards Australia", "State Health Departments"},
}

var countryNames = map[string]string{
	"US": "United States",
	"CA": "Canada",
	"QA": "Qatar",
	"PH": "Philippines",
	"SG": "Singapore",
	"AE": "United Arab Emirates",
	"GB": "United Kingdom",
	"AU": "Australia",
	"SA": "Saudi Arabia",
	"HK": "Hong Kong",
}

var generalRegulations = []string{"General Compliance"}

var businessSizePattern = regexp.MustCompile(`(\d+)\s*(location|restaurant|store|shop|outlet|branch)`)

// Recognizer detects industry, region, and size from a business description
type Recognizer struct{}

// New creates a recognizer
func New() *Recognizer {
	return &Recognizer{}
}

// DetectIndustry scores keyword buckets against the description. With no
// matches the caller gets a general profile at 0.5 confidence.
func (r *Recognizer) DetectIndustry(description string) Profile {
	lower := strings.ToLower(description)

	best := Profile{}
	bestScore := 0
	for _, rule := range industryRules {
		score := 0
		var matched []string
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				score++
				matched = append(matched, keyword)
			}
		}
		if score > bestScore {
			bestScore = score
			best = Profile{
				Industry:        rule.name,
				Confidence:      industryConfidence(score),
				MatchedKeywords: matched,
				Templates:       rule.templates,
				Regulations:     rule.regulations,
				RiskCategories:  rule.riskCategories,
			}
		}
	}

	if bestScore == 0 {
		return Profile{
			Industry:       IndustryGeneral,
			Confidence:     0.5,
			Templates:      []string{"general_audit_checklist"},
			Regulations:    generalRegulations,
			RiskCategories: []string{"Safety", "Quality", "Operations"},
		}
	}
	return best
}

// ExtractLocation finds the first known region mentioned in the description
func (r *Recognizer) ExtractLocation(description string) Location {
	lower := strings.ToLower(description)

	for _, rule := range locationRules {
		if !strings.Contains(lower, rule.key) {
			continue
		}
		regulations, ok := countryRegulations[rule.country]
		if !ok {
			regulations = generalRegulations
		}
		countryName, ok := countryNames[rule.country]
		if !ok {
			countryName = "International"
		}
		return Location{
			Name:        rule.name,
			Code:        rule.code,
			Country:     rule.country,
			CountryName: countryName,
			Regulations: regulations,
			Detected:    true,
		}
	}

	return Location{Regulations: generalRegulations}
}

// ExtractBusinessSize parses a location count like "3 restaurants" from the
// description, defaulting to a single location.
func (r *Recognizer) ExtractBusinessSize(description string) BusinessSize {
	match := businessSizePattern.FindStringSubmatch(strings.ToLower(description))
	if match == nil {
		return BusinessSize{Locations: 1}
	}
	count, err := strconv.Atoi(match[1])
	if err != nil {
		return BusinessSize{Locations: 1}
	}
	return BusinessSize{Locations: count, Detected: true}
}

func industryConfidence(score int) float64 {
	confidence := float64(score) / 5
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}
