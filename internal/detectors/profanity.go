package detectors

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Profanity flags any denylisted word. A match is an all-or-nothing signal.
type Profanity struct {
	re *regexp.Regexp
}

func NewProfanity(terms []string) (*Profanity, error) {
	re, err := termPattern(terms)
	if err != nil {
		return nil, err
	}
	return &Profanity{re: re}, nil
}

func (p *Profanity) Category() Category { return CategoryProfanity }

func (p *Profanity) Detect(ctx context.Context, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res := Result{Category: CategoryProfanity, Evidence: []string{}}
	if p.re == nil || text == "" {
		return res, nil
	}

	folded, segs := foldSegments(text)
	matches := p.re.FindAllStringIndex(folded, -1)
	if len(matches) == 0 {
		return res, nil
	}
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		term := strings.Join(strings.Fields(folded[m[0]:m[1]]), " ")
		if !seen[term] {
			seen[term] = true
			res.Evidence = append(res.Evidence, term)
		}
	}
	res.Score = 1.0
	res.Redacted = redactSpans(text, segs, matches)
	return res, nil
}

// segment ties a run of the folded text back to the bytes of the original
// text it came from.
type segment struct {
	foldedStart, foldedEnd int
	origStart, origEnd     int
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_'
}

// foldSegments normalizes text one word at a time so every match in the
// folded string maps onto whole words of the original.
func foldSegments(text string) (string, []segment) {
	var b strings.Builder
	var segs []segment
	for start := 0; start < len(text); {
		first, _ := utf8.DecodeRuneInString(text[start:])
		word := isWordRune(first)
		end := start
		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			if isWordRune(r) != word {
				break
			}
			end += size
		}
		piece := text[start:end]
		if word {
			piece = Normalize(piece)
		}
		segs = append(segs, segment{
			foldedStart: b.Len(),
			foldedEnd:   b.Len() + len(piece),
			origStart:   start,
			origEnd:     end,
		})
		b.WriteString(piece)
		start = end
	}
	return b.String(), segs
}

// redactSpans masks the original words under each folded match. matches
// must be ordered and non-overlapping, as FindAllStringIndex returns them.
func redactSpans(text string, segs []segment, matches [][]int) string {
	var out strings.Builder
	last, i := 0, 0
	for _, m := range matches {
		for i < len(segs) && segs[i].foldedEnd <= m[0] {
			i++
		}
		if i == len(segs) {
			break
		}
		j := i
		for j+1 < len(segs) && segs[j+1].foldedStart < m[1] {
			j++
		}
		from, to := segs[i].origStart, segs[j].origEnd
		if from < last {
			from = last
		}
		out.WriteString(text[last:from])
		out.WriteString(Redact(text[from:to]))
		last = to
		i = j
	}
	out.WriteString(text[last:])
	return out.String()
}

// Redact keeps the first and last character of word and masks the rest.
func Redact(word string) string {
	r := []rune(word)
	if len(r) <= 2 {
		return strings.Repeat("*", len(r))
	}
	for i := 1; i < len(r)-1; i++ {
		if r[i] != ' ' {
			r[i] = '*'
		}
	}
	return string(r)
}
