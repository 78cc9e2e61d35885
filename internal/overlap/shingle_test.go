package overlap

import (
	"testing"

	"github.com/solresol/prosodia-catholica/internal/greek"
)

func TestCharShingles(t *testing.T) {
	letters := []rune("αβγδε")

	if got := len(charShingles(letters, 3)); got != 3 {
		t.Errorf("expected 3 shingles of length 3, got %d", got)
	}
	if got := len(charShingles(letters, 6)); got != 0 {
		t.Errorf("text shorter than k should yield no shingles, got %d", got)
	}
	if got := len(charShingles(nil, 3)); got != 0 {
		t.Errorf("empty text should yield no shingles, got %d", got)
	}
}

func TestWordShingles(t *testing.T) {
	words := []string{"α", "β", "γ", "δ"}

	if got := len(wordShingles(words, 2)); got != 3 {
		t.Errorf("expected 3 word shingles, got %d", got)
	}
	if got := len(wordShingles(words, 5)); got != 0 {
		t.Errorf("too few words should yield no shingles, got %d", got)
	}
}

func TestIndexCandidates(t *testing.T) {
	ix := NewIndex(4, 2)
	ix.Add(1, greek.Normalize("ἡ πόλις τῆς Φωκίδος"))
	ix.Add(2, greek.Normalize("πόλις τῆς Φωκίδος κεῖται"))
	ix.Add(3, greek.Normalize("οὐδὲν κοινόν"))

	passage := greek.Normalize("πόλις τῆς Φωκίδος")

	got := ix.Candidates(passage, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %v", got)
	}
	// Entry 3 shares nothing and must not appear.
	for _, id := range got {
		if id == 3 {
			t.Error("unrelated entry surfaced as candidate")
		}
	}
}

func TestIndexCandidatesLimitAndOrder(t *testing.T) {
	ix := NewIndex(3, 2)
	// Two entries with identical shingle sets: the tie resolves by id.
	ix.Add(9, greek.Normalize("αβγδεζ"))
	ix.Add(4, greek.Normalize("αβγδεζ"))

	passage := greek.Normalize("αβγδεζ")

	got := ix.Candidates(passage, 1)
	if len(got) != 1 || got[0] != 4 {
		t.Errorf("expected [4], got %v", got)
	}

	if got := ix.Candidates(passage, 0); got != nil {
		t.Errorf("limit 0 should return nothing, got %v", got)
	}
}

func TestIndexDeterministic(t *testing.T) {
	ix := NewIndex(3, 2)
	for id := int64(1); id <= 8; id++ {
		ix.Add(id, greek.Normalize("αβγδεζηθικ"))
	}
	passage := greek.Normalize("αβγδεζηθικ")

	first := ix.Candidates(passage, 5)
	for i := 0; i < 5; i++ {
		next := ix.Candidates(passage, 5)
		if len(next) != len(first) {
			t.Fatal("candidate count varies across calls")
		}
		for j := range next {
			if next[j] != first[j] {
				t.Fatalf("candidate order varies across calls: %v vs %v", next, first)
			}
		}
	}
}
