package ingest

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	pageParenRe  = regexp.MustCompile(`\s*\([^)]*p\.[^)]*\)\s*`)
	multiSpaceRe = regexp.MustCompile(`[ \t]{2,}`)
	spacePunctRe = regexp.MustCompile(`\s+([,.;:·\x{0387}])`)
)

// StripPageRefs removes parenthetical editorial page references like
// "(p. 630)" from a text and tidies the surrounding whitespace. Returns the
// cleaned text and how many parentheticals were removed.
func StripPageRefs(text string) (string, int) {
	removed := 0
	out := pageParenRe.ReplaceAllStringFunc(text, func(string) string {
		removed++
		return " "
	})
	out = multiSpaceRe.ReplaceAllString(out, " ")
	out = spacePunctRe.ReplaceAllString(out, "$1")
	return strings.TrimSpace(out), removed
}

// CleanResult reports what a TSV cleaning pass changed.
type CleanResult struct {
	ChangedLines int
	Removed      int
}

// CleanTSV strips page refs from the text field of every row in a raw TSV
// document, returning the rewritten document.
func CleanTSV(data string) (string, CleanResult, error) {
	var res CleanResult
	var b strings.Builder

	lines := strings.Split(data, "\n")
	// A trailing newline produces one empty trailing element; keep it so
	// the rewrite is byte-faithful outside the cleaned field.
	for i, raw := range lines {
		if i == len(lines)-1 && raw == "" {
			break
		}
		parts := strings.Split(raw, "\t")
		if len(parts) != 5 {
			return "", res, fmt.Errorf("line %d: expected 5 TSV fields, got %d", i+1, len(parts))
		}
		cleaned, removed := StripPageRefs(parts[4])
		res.Removed += removed
		if cleaned != parts[4] {
			res.ChangedLines++
			parts[4] = cleaned
		}
		b.WriteString(strings.Join(parts, "\t"))
		b.WriteByte('\n')
	}
	return b.String(), res, nil
}

// CleanTSVFile rewrites a TSV file in place (atomically, via a temp file in
// the same directory).
func CleanTSVFile(path string) (CleanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CleanResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	out, res, err := CleanTSV(string(data))
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(out), 0644); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return res, fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return res, nil
}
