package overlap

import (
	"hash/crc32"
	"sort"
	"strings"

	"github.com/solresol/prosodia-catholica/internal/greek"
)

// wordHitWeight boosts word-shingle hits when scoring candidates: a shared
// run of whole words is higher-signal than the same number of shared
// character windows.
const wordHitWeight = 5

// Index is an inverted shingle index over candidate streams, used as an
// optional pre-filter in front of the exact matcher. CRC-32 shingles of the
// letter stream (length CharK runes) and of the word stream (WordK
// consecutive tokens) map to the candidate ids containing them.
type Index struct {
	charK int
	wordK int
	char  map[uint32][]int64
	word  map[uint32][]int64
}

// NewIndex creates an empty index with the given shingle lengths.
func NewIndex(charK, wordK int) *Index {
	return &Index{
		charK: charK,
		wordK: wordK,
		char:  make(map[uint32][]int64),
		word:  make(map[uint32][]int64),
	}
}

// Add indexes one candidate stream under id.
func (ix *Index) Add(id int64, s *greek.Stream) {
	for sh := range charShingles(s.Letters, ix.charK) {
		ix.char[sh] = append(ix.char[sh], id)
	}
	for sh := range wordShingles(s.Words, ix.wordK) {
		ix.word[sh] = append(ix.word[sh], id)
	}
}

// Candidates returns up to limit candidate ids sharing shingles with the
// passage stream, best-first. Ordering is deterministic: shared-shingle
// score descending, then candidate id ascending.
func (ix *Index) Candidates(s *greek.Stream, limit int) []int64 {
	if limit <= 0 {
		return nil
	}

	score := make(map[int64]int)
	for sh := range charShingles(s.Letters, ix.charK) {
		for _, id := range ix.char[sh] {
			score[id]++
		}
	}
	for sh := range wordShingles(s.Words, ix.wordK) {
		for _, id := range ix.word[sh] {
			score[id] += wordHitWeight
		}
	}

	ids := make([]int64, 0, len(score))
	for id := range score {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if score[ids[i]] != score[ids[j]] {
			return score[ids[i]] > score[ids[j]]
		}
		return ids[i] < ids[j]
	})

	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func charShingles(letters []rune, k int) map[uint32]struct{} {
	out := make(map[uint32]struct{})
	if k <= 0 || len(letters) < k {
		return out
	}
	for i := 0; i+k <= len(letters); i++ {
		out[crc32.ChecksumIEEE([]byte(string(letters[i:i+k])))] = struct{}{}
	}
	return out
}

func wordShingles(words []string, k int) map[uint32]struct{} {
	out := make(map[uint32]struct{})
	if k <= 0 || len(words) < k {
		return out
	}
	for i := 0; i+k <= len(words); i++ {
		out[crc32.ChecksumIEEE([]byte(strings.Join(words[i:i+k], " ")))] = struct{}{}
	}
	return out
}
