// Package greek normalizes polytonic Greek text into matchable letter and
// word streams while keeping a mapping back to the original rune offsets.
package greek

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Span is a half-open [Start, End) range of 0-based rune offsets into an
// original (un-normalized) string.
type Span struct {
	Start int
	End   int
}

// Empty reports whether the span covers nothing.
func (s Span) Empty() bool {
	return s.End <= s.Start
}

// Stream is the matchable form of one text. Letters holds the normalized
// letter stream; LetterPos[i] is the rune offset in Original of the rune
// that produced Letters[i]. Words holds the normalized tokens; WordSpans[i]
// is the original span of the token that produced Words[i]. Both position
// maps are monotonically non-decreasing.
type Stream struct {
	Original  string
	Letters   []rune
	LetterPos []int
	Words     []string
	WordSpans []Span
}

// stripMarks decomposes to NFD and removes combining marks, so accents,
// breathings and iota subscripts fall away while base letters survive.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize builds the letter and word streams for text. It is pure and
// deterministic; text with no Greek letters yields empty streams.
func Normalize(text string) *Stream {
	s := &Stream{Original: text}

	tokenStart := -1
	src := []rune(text)
	for i, r := range src {
		for _, base := range normalizeRune(r) {
			s.Letters = append(s.Letters, base)
			s.LetterPos = append(s.LetterPos, i)
		}

		// Token boundaries are runs of non-letter runes; combining
		// marks never break a token.
		if unicode.IsLetter(r) || unicode.Is(unicode.Mn, r) {
			if tokenStart < 0 {
				tokenStart = i
			}
		} else if tokenStart >= 0 {
			s.addWord(src, tokenStart, i)
			tokenStart = -1
		}
	}
	if tokenStart >= 0 {
		s.addWord(src, tokenStart, len(src))
	}

	return s
}

func (s *Stream) addWord(src []rune, start, end int) {
	word := NormalizeWord(string(src[start:end]))
	if word == "" {
		return
	}
	s.Words = append(s.Words, word)
	s.WordSpans = append(s.WordSpans, Span{Start: start, End: end})
}

// NormalizeWord applies the full letter normalization to a single token:
// NFD, drop combining marks, lowercase, fold final sigma, keep Greek base
// letters only. Tokens with no Greek letters normalize to "".
func NormalizeWord(token string) string {
	stripped, _, _ := transform.String(stripMarks, token)
	var b strings.Builder
	for _, r := range stripped {
		if base, ok := foldLetter(r); ok {
			b.WriteRune(base)
		}
	}
	return b.String()
}

// LettersString returns the normalized letter stream as a string.
func (s *Stream) LettersString() string {
	return string(s.Letters)
}

// LetterSpan maps a half-open range of normalized letter indexes back to a
// span in the original text.
func (s *Stream) LetterSpan(start, end int) Span {
	if start >= end {
		return Span{}
	}
	return Span{Start: s.LetterPos[start], End: s.LetterPos[end-1] + 1}
}

// WordRunSpan maps a half-open range of word indexes back to the original
// span covering the first through last token of the run.
func (s *Stream) WordRunSpan(start, end int) Span {
	if start >= end {
		return Span{}
	}
	return Span{Start: s.WordSpans[start].Start, End: s.WordSpans[end-1].End}
}

// normalizeRune decomposes one original rune and returns the normalized
// Greek base letters it contributes to the letter stream.
func normalizeRune(r rune) []rune {
	var out []rune
	for _, d := range norm.NFD.String(string(r)) {
		if unicode.Is(unicode.Mn, d) {
			continue
		}
		if base, ok := foldLetter(d); ok {
			out = append(out, base)
		}
	}
	return out
}

// foldLetter lowercases, folds word-final sigma, and reports whether the
// rune is a Greek base letter worth keeping.
func foldLetter(r rune) (rune, bool) {
	r = unicode.ToLower(r)
	if r == 'ς' {
		r = 'σ'
	}
	if !isGreekLetter(r) {
		return 0, false
	}
	return r, true
}

// isGreekLetter reports whether r is a letter in the Greek and Coptic or
// Greek Extended blocks. Non-letter codepoints inside those blocks
// (numeral signs, koronis, standalone accents) are excluded.
func isGreekLetter(r rune) bool {
	if !unicode.IsLetter(r) {
		return false
	}
	return (r >= 0x0370 && r <= 0x03FF) || (r >= 0x1F00 && r <= 0x1FFF)
}
