package detectors

import (
	"context"
	"regexp"
	"strings"
)

// PII kinds recorded as evidence. Matched values are never recorded.
const (
	PIIEmail      = "email"
	PIIPhone      = "phone"
	PIISSN        = "ssn"
	PIICreditCard = "credit_card"
)

var (
	emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(?:\+?1[-.\s]?)?(?:\(\d{3}\)\s*|\b\d{3}[-.\s]?)\d{3}[-.\s]?\d{4}\b`)
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`)
)

var piiWeights = map[string]float64{
	PIISSN:        0.9,
	PIICreditCard: 0.9,
	PIIEmail:      0.5,
	PIIPhone:      0.5,
}

// PII detects exposed contact and identity data.
type PII struct{}

func NewPII() *PII { return &PII{} }

func (p *PII) Category() Category { return CategoryPII }

func (p *PII) Detect(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res := Result{Category: CategoryPII, Evidence: []string{}}
	if text == "" {
		return res, nil
	}

	rest := text
	if ssnPattern.MatchString(rest) {
		res.Evidence = append(res.Evidence, PIISSN)
		rest = ssnPattern.ReplaceAllString(rest, " ")
	}
	foundCard := false
	rest = cardPattern.ReplaceAllStringFunc(rest, func(m string) string {
		if luhnValid(m) {
			foundCard = true
			return " "
		}
		return m
	})
	if foundCard {
		res.Evidence = append(res.Evidence, PIICreditCard)
	}
	if emailPattern.MatchString(rest) {
		res.Evidence = append(res.Evidence, PIIEmail)
	}
	if phonePattern.MatchString(rest) {
		res.Evidence = append(res.Evidence, PIIPhone)
	}

	for _, kind := range res.Evidence {
		res.Score = max(res.Score, piiWeights[kind])
	}
	if n := len(res.Evidence); n > 1 {
		res.Score = clamp(res.Score + 0.1*float64(n-1))
	}
	return res, nil
}

func luhnValid(s string) bool {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
