package detectors

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases text and strips combining marks, so "Fück" and
// "fuck" match the same lexicon entry.
func Normalize(text string) string {
	// the transformer carries state, so it is built per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(text))
	if err != nil {
		slog.Warn("unicode normalization failed", "error", err)
		return strings.ToLower(text)
	}
	return out
}
