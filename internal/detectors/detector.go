package detectors

import (
	"context"
	"fmt"
	"sort"
)

// Category names one policy-violation class a detector scores.
type Category string

const (
	CategoryToxicity  Category = "toxicity"
	CategorySpam      Category = "spam"
	CategoryProfanity Category = "profanity"
	CategoryThreat    Category = "threat"
	CategoryPII       Category = "pii"
)

// AllCategories lists every category the engine knows, in stable order.
var AllCategories = []Category{
	CategoryToxicity,
	CategorySpam,
	CategoryProfanity,
	CategoryThreat,
	CategoryPII,
}

func ParseCategory(s string) (Category, error) {
	for _, c := range AllCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown detector category %q", s)
}

func IsCategory(s string) bool {
	_, err := ParseCategory(s)
	return err == nil
}

// SortCategories orders categories the same way AllCategories does.
func SortCategories(cats []Category) {
	rank := make(map[Category]int, len(AllCategories))
	for i, c := range AllCategories {
		rank[c] = i
	}
	sort.SliceStable(cats, func(i, j int) bool { return rank[cats[i]] < rank[cats[j]] })
}

// Result is the output of one detector run over one text.
type Result struct {
	Category Category `json:"category"`
	Score    float64  `json:"score"`
	Evidence []string `json:"matchedEvidence"`
	// HardBlock marks a result that forces a block regardless of threshold.
	HardBlock bool   `json:"hardBlock,omitempty"`
	Redacted  string `json:"redacted,omitempty"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latencyMs"`
}

func (r Result) Faulted() bool {
	return r.Error != ""
}

// Fault builds the zero-score result recorded when a detector fails.
func Fault(cat Category, err error) Result {
	return Result{
		Category: cat,
		Score:    0,
		Evidence: []string{},
		Error:    err.Error(),
	}
}

// Detector scores text for a single category. Implementations hold no
// mutable state and are safe for concurrent use.
type Detector interface {
	Category() Category
	Detect(ctx context.Context, text string) (Result, error)
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
