package overlap

import "testing"

func TestRankBefore(t *testing.T) {
	tests := []struct {
		name string
		a, b MatchRow
		want bool
	}{
		{
			"higher char ratio wins",
			MatchRow{CharRatio: 0.9, EntryID: 2},
			MatchRow{CharRatio: 0.5, EntryID: 1},
			true,
		},
		{
			"word ratio breaks char tie",
			MatchRow{CharRatio: 0.9, WordRatio: 0.6, EntryID: 9},
			MatchRow{CharRatio: 0.9, WordRatio: 0.2, EntryID: 1},
			true,
		},
		{
			"char length breaks ratio ties",
			MatchRow{CharRatio: 0.9, WordRatio: 0.5, CharLen: 30, EntryID: 9},
			MatchRow{CharRatio: 0.9, WordRatio: 0.5, CharLen: 20, EntryID: 1},
			true,
		},
		{
			"entry id is the final key",
			MatchRow{CharRatio: 0.9, WordRatio: 0.5, CharLen: 30, EntryID: 4},
			MatchRow{CharRatio: 0.9, WordRatio: 0.5, CharLen: 30, EntryID: 7},
			true,
		},
		{
			"identical scores, larger id loses",
			MatchRow{CharRatio: 0.9, EntryID: 7},
			MatchRow{CharRatio: 0.9, EntryID: 4},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RankBefore(tt.a, tt.b); got != tt.want {
				t.Errorf("RankBefore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankAndTrim(t *testing.T) {
	rows := []MatchRow{
		{CharRatio: 0.5, EntryID: 3},
		{CharRatio: 0.9, EntryID: 2},
		{CharRatio: 0.9, EntryID: 1},
	}

	got := rankAndTrim(rows, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].EntryID != 1 || got[1].EntryID != 2 {
		t.Errorf("expected entries [1 2], got [%d %d]", got[0].EntryID, got[1].EntryID)
	}
}
