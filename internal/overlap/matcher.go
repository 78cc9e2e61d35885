// Package overlap finds salvaged phrases shared between two Greek corpora:
// exact longest-common-substring matching over normalized streams, scored
// and mapped back to original-text spans.
package overlap

import (
	"github.com/solresol/prosodia-catholica/internal/greek"
)

// Result describes the strongest contiguous overlap between two streams at
// letter and word granularity. Spans index the original (un-normalized)
// text of each side as 0-based, end-exclusive rune offsets.
type Result struct {
	CharLen   int
	CharRatio float64
	WordLen   int
	WordRatio float64

	// Letter-level match location.
	ASpan greek.Span
	BSpan greek.Span

	// Word-level match location (union of the matched token spans).
	AWordSpan greek.Span
	BWordSpan greek.Span
}

// Match computes the longest common contiguous block between a and b at
// letter and at word granularity. Empty streams are fine: every length and
// ratio is zero and the spans are empty.
func Match(a, b *greek.Stream) Result {
	var res Result

	charLen, aCharStart, bCharStart := longestCommonRun(len(a.Letters), len(b.Letters), func(i, j int) bool {
		return a.Letters[i] == b.Letters[j]
	})
	res.CharLen = charLen
	res.CharRatio = ratio(charLen, len(a.Letters), len(b.Letters))
	res.ASpan = a.LetterSpan(aCharStart, aCharStart+charLen)
	res.BSpan = b.LetterSpan(bCharStart, bCharStart+charLen)

	wordLen, aWordStart, bWordStart := longestCommonRun(len(a.Words), len(b.Words), func(i, j int) bool {
		return a.Words[i] == b.Words[j]
	})
	res.WordLen = wordLen
	res.WordRatio = ratio(wordLen, len(a.Words), len(b.Words))
	res.AWordSpan = a.WordRunSpan(aWordStart, aWordStart+wordLen)
	res.BWordSpan = b.WordRunSpan(bWordStart, bWordStart+wordLen)

	return res
}

// longestCommonRun is the classic longest-common-contiguous-substring DP
// with a rolling row: O(n·m) time, O(m) space. It returns the run length
// and the start index of the winning run on each side. When several runs
// share the maximal length the one with the smallest start in A wins, then
// the smallest start in B.
func longestCommonRun(n, m int, eq func(i, j int) bool) (length, aStart, bStart int) {
	if n == 0 || m == 0 {
		return 0, 0, 0
	}

	prev := make([]int, m+1)
	cur := make([]int, m+1)

	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			if !eq(i, j) {
				cur[j+1] = 0
				continue
			}
			run := prev[j] + 1
			cur[j+1] = run

			as, bs := i-run+1, j-run+1
			if run > length {
				length, aStart, bStart = run, as, bs
			} else if run == length && (as < aStart || (as == aStart && bs < bStart)) {
				length, aStart, bStart = run, as, bs
			}
		}
		prev, cur = cur, prev
	}

	return length, aStart, bStart
}

// ratio normalizes a match length by the shorter stream, per the metric
// contract: ratio = len / min(lenA, lenB), zero when either side is empty.
func ratio(matchLen, lenA, lenB int) float64 {
	shorter := lenA
	if lenB < shorter {
		shorter = lenB
	}
	if shorter == 0 {
		return 0
	}
	return float64(matchLen) / float64(shorter)
}
