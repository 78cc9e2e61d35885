package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseRef(t *testing.T) {
	major, minor := ParseRef("3.17")
	if major == nil || minor == nil || *major != 3 || *minor != 17 {
		t.Errorf("ParseRef(3.17) = (%v, %v), want (3, 17)", major, minor)
	}

	major, minor = ParseRef("E")
	if major != nil || minor != nil {
		t.Errorf("ParseRef(E) should yield nil components, got (%v, %v)", major, minor)
	}
}

func TestParseTSV(t *testing.T) {
	input := "1\tE\t1\t1\tEditorial preface\n" +
		"1\t1.1\t3\t5\tἩρωδιανοῦ Περὶ καθολικῆς προσῳδίας \n"

	lines, err := ParseTSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTSV failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	if lines[0].Ref != "E" || lines[0].RefMajor != nil {
		t.Errorf("front matter row parsed wrong: %+v", lines[0])
	}

	l := lines[1]
	if l.Ref != "1.1" || l.RefMajor == nil || *l.RefMajor != 1 || *l.RefMinor != 1 {
		t.Errorf("ref parsed wrong: %+v", l)
	}
	if l.SrcID != 1 || l.SrcPage != 3 || l.SrcLine != 5 {
		t.Errorf("source fields parsed wrong: %+v", l)
	}
	if strings.HasSuffix(l.GreekText, " ") {
		t.Error("trailing whitespace not trimmed from text")
	}
}

func TestParseTSVRejectsBadFieldCount(t *testing.T) {
	_, err := ParseTSV(strings.NewReader("1\t1.1\tonly four fields\there\n"))
	if err == nil {
		t.Fatal("expected error for wrong field count")
	}
	if !strings.Contains(err.Error(), "expected 5 TSV fields") {
		t.Errorf("unhelpful error: %v", err)
	}
}

func TestStripPageRefs(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		want        string
		wantRemoved int
	}{
		{
			"single page ref",
			"Ἄβαι (p. 630) πόλις Φωκίδος",
			"Ἄβαι πόλις Φωκίδος",
			1,
		},
		{
			"page ref before punctuation",
			"πόλις Φωκίδος (p. 630), ὡς εἴρηται",
			"πόλις Φωκίδος, ὡς εἴρηται",
			1,
		},
		{
			"two refs",
			"α (ed. p. 1) β (cf. p. 2) γ",
			"α β γ",
			2,
		},
		{
			"plain parenthetical untouched",
			"κεῖται (Il. 13, 1) οὕτως",
			"κεῖται (Il. 13, 1) οὕτως",
			0,
		},
		{
			"no parens at all",
			"οὐδὲν ἀφαιρεῖται",
			"οὐδὲν ἀφαιρεῖται",
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, removed := StripPageRefs(tt.in)
			if got != tt.want {
				t.Errorf("StripPageRefs(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if removed != tt.wantRemoved {
				t.Errorf("removed = %d, want %d", removed, tt.wantRemoved)
			}
		})
	}
}

func TestCleanTSV(t *testing.T) {
	input := "1\t1.1\t3\t5\tἌβαι (p. 630) πόλις\n" +
		"1\t1.2\t3\t6\tκαθαρὸς στίχος\n"

	out, res, err := CleanTSV(input)
	if err != nil {
		t.Fatalf("CleanTSV failed: %v", err)
	}

	if res.ChangedLines != 1 || res.Removed != 1 {
		t.Errorf("result = %+v, want 1 changed / 1 removed", res)
	}
	if !strings.Contains(out, "Ἄβαι πόλις") {
		t.Errorf("page ref not stripped: %q", out)
	}
	if !strings.Contains(out, "καθαρὸς στίχος") {
		t.Errorf("clean line mangled: %q", out)
	}
}

func TestCleanTSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "herodian.tsv")
	content := "1\t1.1\t3\t5\tἌβαι (p. 630) πόλις\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := CleanTSVFile(path)
	if err != nil {
		t.Fatalf("CleanTSVFile failed: %v", err)
	}
	if res.Removed != 1 {
		t.Errorf("removed = %d, want 1", res.Removed)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "p. 630") {
		t.Errorf("file still contains page ref: %q", data)
	}
}
