package detectors

import (
	"context"
	"fmt"
	"regexp"
)

type threatRule struct {
	label  string
	re     *regexp.Regexp
	weight float64
}

// Threat scores text by the heaviest matching threat pattern.
type Threat struct {
	rules []threatRule
}

func NewThreat(patterns []ThreatPattern) (*Threat, error) {
	rules := make([]threatRule, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("threat pattern %q: %w", p.Label, err)
		}
		rules = append(rules, threatRule{label: p.Label, re: re, weight: p.Weight})
	}
	return &Threat{rules: rules}, nil
}

func (t *Threat) Category() Category { return CategoryThreat }

func (t *Threat) Detect(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res := Result{Category: CategoryThreat, Evidence: []string{}}
	if text == "" {
		return res, nil
	}
	normalized := Normalize(text)
	for _, rule := range t.rules {
		if rule.re.MatchString(normalized) {
			res.Evidence = append(res.Evidence, rule.label)
			res.Score = max(res.Score, rule.weight)
		}
	}
	return res, nil
}
