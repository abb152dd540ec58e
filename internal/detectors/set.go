package detectors

import "fmt"

// Set is the registry of detectors the pipeline can run, keyed by category.
type Set struct {
	detectors map[Category]Detector
}

// NewSet builds the standard five detectors from a lexicon.
func NewSet(lex *Lexicon) (*Set, error) {
	profanity, err := NewProfanity(lex.Profanity)
	if err != nil {
		return nil, fmt.Errorf("profanity detector: %w", err)
	}
	toxicity, err := NewToxicity(lex.Toxicity)
	if err != nil {
		return nil, fmt.Errorf("toxicity detector: %w", err)
	}
	threat, err := NewThreat(lex.Threats)
	if err != nil {
		return nil, fmt.Errorf("threat detector: %w", err)
	}
	return NewSetFrom(toxicity, NewSpam(), profanity, threat, NewPII()), nil
}

// NewSetFrom registers the given detectors. A later detector replaces an
// earlier one for the same category.
func NewSetFrom(ds ...Detector) *Set {
	s := &Set{detectors: make(map[Category]Detector, len(ds))}
	for _, d := range ds {
		s.detectors[d.Category()] = d
	}
	return s
}

func (s *Set) Get(cat Category) (Detector, bool) {
	d, ok := s.detectors[cat]
	return d, ok
}

// Categories returns registered categories in AllCategories order.
func (s *Set) Categories() []Category {
	out := make([]Category, 0, len(s.detectors))
	for _, c := range AllCategories {
		if _, ok := s.detectors[c]; ok {
			out = append(out, c)
		}
	}
	return out
}
