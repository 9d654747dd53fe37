package feasibility

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	percentPattern  = regexp.MustCompile(`(?i)(\d{1,2}(?:\.\d+)?)%`)
	monthsPattern   = regexp.MustCompile(`(?i)(\d{1,3})\s*(?:months?|mo)`)
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
)

// ExtractorConfig carries every default the extractor falls back to when the
// idea text carries no usable signal.
type ExtractorConfig struct {
	DefaultInterestRate     float64 `yaml:"default_interest_rate" default:"8" validate:"gte=0,lte=100"`
	DefaultROITime          float64 `yaml:"default_roi_time" default:"24" validate:"gte=0,lte=600"`
	TimeValueMin            float64 `yaml:"time_value_min" default:"3" validate:"gte=0"`
	TimeValueMax            float64 `yaml:"time_value_max" default:"15" validate:"gtefield=TimeValueMin"`
	TimeValueFallback       float64 `yaml:"time_value_fallback" default:"5" validate:"gte=0"`
	BaselineRisk            int     `yaml:"baseline_risk" default:"40" validate:"gte=0,lte=100"`
	NoveltyRisk             int     `yaml:"novelty_risk" default:"60" validate:"gte=0,lte=100"`
	RegulatoryRiskFloor     int     `yaml:"regulatory_risk_floor" default:"50" validate:"gte=0,lte=100"`
	RecurringRisk           int     `yaml:"recurring_risk" default:"25" validate:"gte=0,lte=100"`
	DefaultLengthTimeFactor float64 `yaml:"default_length_time_factor" default:"24" validate:"gte=0"`
	LargeScaleLengthFactor  float64 `yaml:"large_scale_length_factor" default:"48" validate:"gte=0"`

	StopWords          []string `yaml:"-"`
	NoveltyPhrases     []string `yaml:"-"`
	RegulatoryPhrases  []string `yaml:"-"`
	RecurringPhrases   []string `yaml:"-"`
	LargeScaleKeywords []string `yaml:"-"`
}

var defaultStopWords = []string{
	"about", "after", "also", "because", "been", "being", "could", "does", "each", "from",
	"have", "having", "into", "just", "like", "make", "more", "most", "much", "only",
	"other", "over", "should", "some", "such", "than", "that", "their", "them", "then",
	"there", "these", "they", "this", "those", "through", "very", "want", "were", "what",
	"when", "where", "which", "while", "will", "with", "would", "your", "ours", "within",
}

// DefaultExtractorConfig returns the built-in extractor defaults and phrase lists.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		DefaultInterestRate:     8,
		DefaultROITime:          24,
		TimeValueMin:            3,
		TimeValueMax:            15,
		TimeValueFallback:       5,
		BaselineRisk:            40,
		NoveltyRisk:             60,
		RegulatoryRiskFloor:     50,
		RecurringRisk:           25,
		DefaultLengthTimeFactor: 24,
		LargeScaleLengthFactor:  48,
		StopWords:               defaultStopWords,
		NoveltyPhrases: []string{
			"high risk", "risky", "uncertain", "uncertainty", "new market", "unproven",
			"experimental", "first of its kind", "never been done", "untested", "speculative",
		},
		RegulatoryPhrases: []string{
			"regulat", "compliance", "licens", "enterprise", "government", "public sector",
			"hospital", "healthcare", "fda", "approval", "long sales cycle", "procurement",
		},
		RecurringPhrases: []string{
			"recurring", "subscription", "loyal", "repeat customer", "repeat business",
			"retainer", "membership", "renewal",
		},
		LargeScaleKeywords: []string{
			"infrastructure", "manufacturing", "factory", "nationwide", "global", "international",
			"logistics", "construction", "energy", "utility", "semiconductor", "biotech",
			"pharmaceutical", "real estate", "marketplace platform",
		},
	}
}

type Extractor struct {
	cfg       ExtractorConfig
	stopWords map[string]struct{}
}

func NewExtractor(cfg ExtractorConfig) *Extractor {
	base := DefaultExtractorConfig()
	if cfg.StopWords == nil {
		cfg.StopWords = base.StopWords
	}
	if cfg.NoveltyPhrases == nil {
		cfg.NoveltyPhrases = base.NoveltyPhrases
	}
	if cfg.RegulatoryPhrases == nil {
		cfg.RegulatoryPhrases = base.RegulatoryPhrases
	}
	if cfg.RecurringPhrases == nil {
		cfg.RecurringPhrases = base.RecurringPhrases
	}
	if cfg.LargeScaleKeywords == nil {
		cfg.LargeScaleKeywords = base.LargeScaleKeywords
	}
	stop := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &Extractor{cfg: cfg, stopWords: stop}
}

var defaultExtractor = NewExtractor(DefaultExtractorConfig())

// ExtractKeywords runs the default extractor.
func ExtractKeywords(text string) []string { return defaultExtractor.ExtractKeywords(text) }

// DeriveInputs runs the default extractor.
func DeriveInputs(text string) DerivedInputs { return defaultExtractor.DeriveInputs(text) }

// IsLargeScale runs the default extractor's category test.
func IsLargeScale(text string) bool { return defaultExtractor.IsLargeScale(text) }

// ExtractKeywords returns up to MaxTags tokens ranked by frequency. Ties keep
// the order in which tokens first appeared.
func (e *Extractor) ExtractKeywords(text string) []string {
	normalized := nonAlphanumeric.ReplaceAllString(strings.ToLower(text), " ")
	counts := map[string]int{}
	var order []string
	for _, tok := range strings.Fields(normalized) {
		if len(tok) <= 3 {
			continue
		}
		if _, stop := e.stopWords[tok]; stop {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > MaxTags {
		order = order[:MaxTags]
	}
	out := make([]string, len(order))
	copy(out, order)
	return out
}

func (e *Extractor) DeriveInputs(text string) DerivedInputs {
	lower := strings.ToLower(text)

	interest := e.cfg.DefaultInterestRate
	if m := percentPattern.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			interest = clampFloat(v, 0, 100)
		}
	}

	roi := e.cfg.DefaultROITime
	if m := monthsPattern.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			roi = clampFloat(float64(v), 0, 600)
		}
	}

	timeValue := e.cfg.TimeValueFallback
	if interest > 0 {
		timeValue = max(e.cfg.TimeValueMin, min(interest, e.cfg.TimeValueMax))
	}

	risk := e.cfg.BaselineRisk
	if containsAny(lower, e.cfg.NoveltyPhrases) {
		risk = max(risk, e.cfg.NoveltyRisk)
	}
	if containsAny(lower, e.cfg.RegulatoryPhrases) {
		risk = max(risk, e.cfg.RegulatoryRiskFloor)
	}
	if containsAny(lower, e.cfg.RecurringPhrases) {
		risk = e.cfg.RecurringRisk
	}

	length := e.cfg.DefaultLengthTimeFactor
	if e.IsLargeScale(text) {
		length = e.cfg.LargeScaleLengthFactor
	}

	return DerivedInputs{
		Risk:             clampInt(risk, 0, 100),
		TimeValue:        timeValue,
		ROITime:          roi,
		LengthTimeFactor: length,
		InterestRate:     interest,
	}
}

func (e *Extractor) IsLargeScale(text string) bool {
	return containsAny(strings.ToLower(text), e.cfg.LargeScaleKeywords)
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
