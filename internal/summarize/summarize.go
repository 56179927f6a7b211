// Package summarize produces short extractive summaries. Sentences are
// scored by the frequency of the words they contain and the highest-scoring
// ones are returned in document order.
package summarize

import (
	"strings"
	"unicode"
)

const DefaultMaxSentences = 3

// stopwords are excluded from frequency scoring so connective words don't
// dominate.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "for": {}, "from": {}, "has": {}, "have": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {}, "or": {},
	"that": {}, "the": {}, "this": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {},
}

// Summarize returns up to maxSentences sentences from text, chosen by word
// frequency. Short texts are returned whole. maxSentences <= 0 falls back to
// DefaultMaxSentences.
func Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	sentences := splitSentences(text)
	if len(sentences) <= maxSentences {
		return strings.Join(sentences, " ")
	}

	freq := make(map[string]int)
	for _, s := range sentences {
		for _, w := range words(s) {
			if _, skip := stopwords[w]; skip {
				continue
			}
			freq[w]++
		}
	}

	scores := make([]float64, len(sentences))
	for i, s := range sentences {
		ws := words(s)
		if len(ws) == 0 {
			continue
		}
		total := 0
		for _, w := range ws {
			total += freq[w]
		}
		scores[i] = float64(total) / float64(len(ws))
	}

	// Select the top maxSentences by score, keeping document order. The
	// selection is a simple threshold pass so ties resolve toward earlier
	// sentences, which keeps the result deterministic.
	selected := make([]bool, len(sentences))
	for n := 0; n < maxSentences; n++ {
		best := -1
		for i, score := range scores {
			if selected[i] {
				continue
			}
			if best == -1 || score > scores[best] {
				best = i
			}
		}
		if best == -1 {
			break
		}
		selected[best] = true
	}

	var out []string
	for i, s := range sentences {
		if selected[i] {
			out = append(out, s)
		}
	}
	return strings.Join(out, " ")
}

// splitSentences breaks text on sentence-ending punctuation and blank lines.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder
	flush := func() {
		s := strings.TrimSpace(cur.String())
		cur.Reset()
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	runes := []rune(text)
	for i, r := range runes {
		switch r {
		case '.', '!', '?':
			cur.WriteRune(r)
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				flush()
			}
		case '\n':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				flush()
			} else {
				cur.WriteRune(' ')
			}
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return sentences
}

func words(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return fields
}
