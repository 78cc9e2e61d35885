package overlap

import (
	"testing"

	"github.com/solresol/prosodia-catholica/internal/greek"
)

func TestMatchSalvagedPhrase(t *testing.T) {
	// Herodian line vs a lexicon entry that preserves the phrase with
	// different accentuation, spacing and a final sigma.
	a := greek.Normalize("τὸν λόγον")
	b := greek.Normalize("τὸνλογοσ")

	res := Match(a, b)

	if res.CharLen != 7 {
		t.Fatalf("CharLen = %d, want 7", res.CharLen)
	}
	if res.CharRatio != 0.875 {
		t.Errorf("CharRatio = %v, want 0.875", res.CharRatio)
	}

	// Passage side: the matched letters cover "τὸν λόγο".
	if res.ASpan != (greek.Span{Start: 0, End: 8}) {
		t.Errorf("ASpan = %+v, want {0 8}", res.ASpan)
	}
	if got := string([]rune(a.Original)[res.ASpan.Start:res.ASpan.End]); got != "τὸν λόγο" {
		t.Errorf("ASpan text = %q, want %q", got, "τὸν λόγο")
	}

	if got := string([]rune(b.Original)[res.BSpan.Start:res.BSpan.End]); got != "τὸνλογο" {
		t.Errorf("BSpan text = %q, want %q", got, "τὸνλογο")
	}

	// No whole token is shared, so the word level is empty.
	if res.WordLen != 0 || res.WordRatio != 0 {
		t.Errorf("word level = (%d, %v), want (0, 0)", res.WordLen, res.WordRatio)
	}
	if !res.AWordSpan.Empty() || !res.BWordSpan.Empty() {
		t.Errorf("word spans should be empty, got %+v / %+v", res.AWordSpan, res.BWordSpan)
	}
}

func TestMatchWordLevel(t *testing.T) {
	a := greek.Normalize("ἡ πόλις καλή ἐστι")
	b := greek.Normalize("πόλις καλὴ")

	res := Match(a, b)

	if res.WordLen != 2 {
		t.Fatalf("WordLen = %d, want 2", res.WordLen)
	}
	if res.WordRatio != 1.0 {
		t.Errorf("WordRatio = %v, want 1.0", res.WordRatio)
	}
	if got := string([]rune(a.Original)[res.AWordSpan.Start:res.AWordSpan.End]); got != "πόλις καλή" {
		t.Errorf("AWordSpan text = %q, want %q", got, "πόλις καλή")
	}
	if got := string([]rune(b.Original)[res.BWordSpan.Start:res.BWordSpan.End]); got != "πόλις καλὴ" {
		t.Errorf("BWordSpan text = %q, want %q", got, "πόλις καλὴ")
	}
}

func TestMatchEmptyStreams(t *testing.T) {
	full := greek.Normalize("τὸν λόγον")
	empty := greek.Normalize("nothing greek here")

	for _, pair := range [][2]*greek.Stream{
		{empty, full},
		{full, empty},
		{empty, empty},
	} {
		res := Match(pair[0], pair[1])
		if res.CharLen != 0 || res.CharRatio != 0 || res.WordLen != 0 || res.WordRatio != 0 {
			t.Errorf("empty-side match not zeroed: %+v", res)
		}
		if !res.ASpan.Empty() || !res.BSpan.Empty() {
			t.Errorf("empty-side spans not empty: %+v", res)
		}
	}
}

func TestMatchBounds(t *testing.T) {
	pairs := [][2]string{
		{"Ἄβαι· πόλις Φωκίδος", "πόλις Φωκίδος πρὸς τῇ Ὑαμπόλει"},
		{"καὶ τὰ λοιπά", "οὐδὲν κοινόν"},
		{"αβγ", "αβγ"},
	}

	for _, p := range pairs {
		a, b := greek.Normalize(p[0]), greek.Normalize(p[1])
		res := Match(a, b)

		min := len(a.Letters)
		if len(b.Letters) < min {
			min = len(b.Letters)
		}
		if res.CharLen < 0 || res.CharLen > min {
			t.Errorf("%q vs %q: CharLen %d out of [0,%d]", p[0], p[1], res.CharLen, min)
		}
		if res.CharRatio < 0 || res.CharRatio > 1 {
			t.Errorf("%q vs %q: CharRatio %v out of [0,1]", p[0], p[1], res.CharRatio)
		}
		if (res.CharRatio == 0) != (res.CharLen == 0) {
			t.Errorf("%q vs %q: ratio/length zero mismatch: %+v", p[0], p[1], res)
		}
	}
}

func TestMatchTieBreakEarliestStartInA(t *testing.T) {
	// Two disjoint common runs of length 3: αβγ at the head and δεζ at
	// the tail. The earlier start in A must win.
	a := greek.Normalize("αβγπδεζ")
	b := greek.Normalize("αβγρδεζ")

	res := Match(a, b)

	if res.CharLen != 3 {
		t.Fatalf("CharLen = %d, want 3", res.CharLen)
	}
	if res.ASpan != (greek.Span{Start: 0, End: 3}) {
		t.Errorf("ASpan = %+v, want {0 3}", res.ASpan)
	}
	if res.BSpan != (greek.Span{Start: 0, End: 3}) {
		t.Errorf("BSpan = %+v, want {0 3}", res.BSpan)
	}
}

func TestMatchTieBreakEarliestStartInB(t *testing.T) {
	// The run αβγ occurs twice in B; with A's start fixed, the earlier
	// B start must win.
	a := greek.Normalize("αβγ")
	b := greek.Normalize("δαβγεαβγ")

	res := Match(a, b)

	if res.CharLen != 3 {
		t.Fatalf("CharLen = %d, want 3", res.CharLen)
	}
	if res.BSpan != (greek.Span{Start: 1, End: 4}) {
		t.Errorf("BSpan = %+v, want {1 4}", res.BSpan)
	}
}

func TestMatchDeterministic(t *testing.T) {
	a := greek.Normalize("Ἄβαι· πόλις Φωκίδος πρὸς τῇ Ὑαμπόλει")
	b := greek.Normalize("πόλις Φωκίδος· Ἄβαι πρὸς τῇ Ὑαμπόλει κεῖται")

	first := Match(a, b)
	for i := 0; i < 5; i++ {
		if got := Match(a, b); got != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestSpanRoundTripThroughMatcher(t *testing.T) {
	a := greek.Normalize("περὶ τῆς καθόλου προσῳδίας ὁ λόγος")
	b := greek.Normalize("ὁ περὶ τῆς καθόλου προσῳδίας λόγος ἐστίν")

	res := Match(a, b)
	if res.CharLen == 0 {
		t.Fatal("expected a non-empty match")
	}

	aText := string([]rune(a.Original)[res.ASpan.Start:res.ASpan.End])
	bText := string([]rune(b.Original)[res.BSpan.Start:res.BSpan.End])

	if greek.Normalize(aText).LettersString() != greek.Normalize(bText).LettersString() {
		t.Errorf("matched spans do not renormalize to the same block: %q vs %q", aText, bText)
	}
	if got := len(greek.Normalize(aText).Letters); got != res.CharLen {
		t.Errorf("renormalized span length = %d, want %d", got, res.CharLen)
	}
}
