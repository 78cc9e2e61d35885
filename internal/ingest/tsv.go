// Package ingest loads the Herodian TSV export into the owned database and
// cleans editorial artifacts out of it.
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/solresol/prosodia-catholica/internal/store"
)

var refRe = regexp.MustCompile(`^(\d+)\.(\d+)$`)

// ParseRef splits a ref like "3.17" into its numeric components. Refs that
// do not match (front matter like "E") yield nil components.
func ParseRef(ref string) (major, minor *int) {
	m := refRe.FindStringSubmatch(strings.TrimSpace(ref))
	if m == nil {
		return nil, nil
	}
	maj, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return &maj, &min
}

// ParseTSV reads the 5-field export: src id, ref, page, line, Greek text.
// Any malformed row is an error; the export is machine-written and a field
// count mismatch means a corrupted file, not a row to skip.
func ParseTSV(r io.Reader) ([]store.ImportedLine, error) {
	var out []store.ImportedLine

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) != 5 {
			return nil, fmt.Errorf("line %d: expected 5 TSV fields, got %d", lineNum, len(parts))
		}

		srcID, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad src id %q: %w", lineNum, parts[0], err)
		}
		srcPage, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad page %q: %w", lineNum, parts[2], err)
		}
		srcLine, err := strconv.Atoi(parts[3])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad line number %q: %w", lineNum, parts[3], err)
		}

		major, minor := ParseRef(parts[1])
		out = append(out, store.ImportedLine{
			Ref:       parts[1],
			RefMajor:  major,
			RefMinor:  minor,
			SrcID:     srcID,
			SrcPage:   srcPage,
			SrcLine:   srcLine,
			GreekText: strings.TrimRight(parts[4], " \t\r"),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read TSV: %w", err)
	}
	return out, nil
}

// ImportFile parses a TSV file and upserts its rows keyed by ref.
func ImportFile(ctx context.Context, st *store.Store, path string) (inserted, updated int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open TSV: %w", err)
	}
	defer func() { _ = f.Close() }()

	lines, err := ParseTSV(f)
	if err != nil {
		return 0, 0, err
	}
	return st.UpsertLines(ctx, lines)
}
