package detectors

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

//go:embed default_lexicon.json
var defaultLexicon []byte

// ThreatPattern is one weighted regular expression for the threat detector.
type ThreatPattern struct {
	Label   string  `json:"label"`
	Pattern string  `json:"pattern"`
	Weight  float64 `json:"weight"`
}

// Lexicon is the data-driven part of the detector set. It can be swapped
// by pointing LEXICON_PATH at another file.
type Lexicon struct {
	Profanity []string           `json:"profanity"`
	Toxicity  map[string]float64 `json:"toxicity"`
	Threats   []ThreatPattern    `json:"threats"`
}

// DefaultLexicon returns the lexicon compiled into the binary.
func DefaultLexicon() (*Lexicon, error) {
	return parseLexicon(defaultLexicon)
}

// LoadLexicon reads a lexicon from path, or the embedded default when path
// is empty.
func LoadLexicon(path string) (*Lexicon, error) {
	if path == "" {
		return DefaultLexicon()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon: %w", err)
	}
	return parseLexicon(data)
}

func parseLexicon(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := json.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	if err := lex.Validate(); err != nil {
		return nil, err
	}
	return &lex, nil
}

func (l *Lexicon) Validate() error {
	var errs []error
	for _, w := range l.Profanity {
		if strings.TrimSpace(w) == "" {
			errs = append(errs, errors.New("profanity: empty term"))
		}
	}
	for term, w := range l.Toxicity {
		if strings.TrimSpace(term) == "" {
			errs = append(errs, errors.New("toxicity: empty term"))
		}
		if w <= 0 || w > 1 {
			errs = append(errs, fmt.Errorf("toxicity: weight for %q must be in (0,1]", term))
		}
	}
	for _, t := range l.Threats {
		if _, err := regexp.Compile(t.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("threats: pattern %q: %w", t.Label, err))
		}
		if t.Weight <= 0 || t.Weight > 1 {
			errs = append(errs, fmt.Errorf("threats: weight for %q must be in (0,1]", t.Label))
		}
	}
	return errors.Join(errs...)
}

// termPattern builds a case-insensitive, word-bounded alternation of terms.
// Whitespace inside a phrase matches any run of whitespace.
func termPattern(terms []string) (*regexp.Regexp, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	alts := make([]string, 0, len(terms))
	for _, t := range terms {
		words := strings.Fields(Normalize(t))
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alts = append(alts, strings.Join(words, `\s+`))
	}
	return regexp.Compile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
}
