package overlap

import "sort"

// RankBefore reports whether a outranks b under the persisted ordering:
// letter ratio descending, word ratio descending, letter length descending,
// candidate id ascending. The id key makes the order total, so equal scores
// never depend on slice order.
func RankBefore(a, b MatchRow) bool {
	if a.CharRatio != b.CharRatio {
		return a.CharRatio > b.CharRatio
	}
	if a.WordRatio != b.WordRatio {
		return a.WordRatio > b.WordRatio
	}
	if a.CharLen != b.CharLen {
		return a.CharLen > b.CharLen
	}
	return a.EntryID < b.EntryID
}

// rankAndTrim sorts rows best-first and keeps at most k.
func rankAndTrim(rows []MatchRow, k int) []MatchRow {
	sort.Slice(rows, func(i, j int) bool { return RankBefore(rows[i], rows[j]) })
	if k > 0 && len(rows) > k {
		rows = rows[:k]
	}
	return rows
}
