package detectors

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Spam warning names recorded as evidence.
const (
	SpamRepeatedChars  = "repeated_characters"
	SpamExcessiveCaps  = "excessive_caps"
	SpamTooManyURLs    = "too_many_urls"
	SpamRepeatedPhrase = "repeated_phrase"
	SpamLowDiversity   = "low_word_diversity"
)

const (
	spamRunLength       = 5
	spamCapsMinLength   = 20
	spamURLLimit        = 3
	spamPhraseMaxLength = 10
	spamPhraseRepeats   = 3
	spamMinWords        = 10
	spamMinUniqueRatio  = 0.3

	spamWarningWeight = 0.35
	spamSoftCeiling   = 0.75
)

var urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)

// Spam is a union of heuristics. Only the URL rule is a hard block; the
// others are soft warnings that add to the score.
type Spam struct{}

func NewSpam() *Spam { return &Spam{} }

func (s *Spam) Category() Category { return CategorySpam }

func (s *Spam) Detect(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res := Result{Category: CategorySpam, Evidence: []string{}}
	if strings.TrimSpace(text) == "" {
		return res, nil
	}

	if urls := len(urlPattern.FindAllString(text, -1)); urls >= spamURLLimit {
		res.HardBlock = true
		res.Score = 1.0
		res.Evidence = append(res.Evidence, SpamTooManyURLs, fmt.Sprintf("url_count:%d", urls))
	}

	var warnings []string
	if hasRepeatedRun(text, spamRunLength) {
		warnings = append(warnings, SpamRepeatedChars)
	}
	if isAllCaps(text) {
		warnings = append(warnings, SpamExcessiveCaps)
	}
	if hasRepeatedPhrase(text) {
		warnings = append(warnings, SpamRepeatedPhrase)
	}
	if lowWordDiversity(text) {
		warnings = append(warnings, SpamLowDiversity)
	}
	res.Evidence = append(res.Evidence, warnings...)

	if !res.HardBlock && len(warnings) > 0 {
		res.Score = min(spamSoftCeiling, spamWarningWeight*float64(len(warnings)))
	}
	return res, nil
}

// hasRepeatedRun reports n or more identical non-space characters in a row.
func hasRepeatedRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev && !unicode.IsSpace(r) {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
		prev = r
	}
	return false
}

func isAllCaps(text string) bool {
	trimmed := []rune(strings.TrimSpace(text))
	if len(trimmed) < spamCapsMinLength {
		return false
	}
	letters := 0
	for _, r := range trimmed {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters > 0
}

// hasRepeatedPhrase looks for a unit of 2..10 characters, containing at
// least one letter or digit, repeated three or more times back to back
// ("buy now buy now buy now", "hahaha").
func hasRepeatedPhrase(text string) bool {
	// collapsed whitespace plus a trailing space lets word units repeat cleanly
	r := []rune(strings.Join(strings.Fields(strings.ToLower(text)), " ") + " ")
	for p := 2; p <= spamPhraseMaxLength; p++ {
		need := p * (spamPhraseRepeats - 1)
		match := 0
		for i := 0; i+p < len(r); i++ {
			if r[i] != r[i+p] {
				match = 0
				continue
			}
			match++
			if match >= need && hasWordChar(r[i+1-match:i+1-match+p]) {
				return true
			}
		}
	}
	return false
}

func hasWordChar(unit []rune) bool {
	for _, r := range unit {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func lowWordDiversity(text string) bool {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	if len(words) <= spamMinWords {
		return false
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return float64(len(unique))/float64(len(words)) < spamMinUniqueRatio
}
