package detectors

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// Toxicity combines weighted insult terms as independent signals:
// score = 1 - prod(1 - w) over distinct matched terms.
type Toxicity struct {
	re      *regexp.Regexp
	weights map[string]float64
}

func NewToxicity(weights map[string]float64) (*Toxicity, error) {
	terms := make([]string, 0, len(weights))
	norm := make(map[string]float64, len(weights))
	for term, w := range weights {
		terms = append(terms, term)
		norm[strings.Join(strings.Fields(Normalize(term)), " ")] = w
	}
	// longer phrases first so "hate you" wins over a shorter overlapping term
	sort.Slice(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })
	re, err := termPattern(terms)
	if err != nil {
		return nil, err
	}
	return &Toxicity{re: re, weights: norm}, nil
}

func (t *Toxicity) Category() Category { return CategoryToxicity }

func (t *Toxicity) Detect(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res := Result{Category: CategoryToxicity, Evidence: []string{}}
	if t.re == nil || text == "" {
		return res, nil
	}

	remaining := 1.0
	seen := make(map[string]bool)
	for _, m := range t.re.FindAllString(Normalize(text), -1) {
		m = strings.Join(strings.Fields(m), " ")
		if seen[m] {
			continue
		}
		seen[m] = true
		res.Evidence = append(res.Evidence, m)
		remaining *= 1 - t.weights[m]
	}
	res.Score = clamp(1 - remaining)
	return res, nil
}
