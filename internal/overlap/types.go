package overlap

import (
	"context"
	"time"

	"github.com/solresol/prosodia-catholica/internal/greek"
)

// Passage is one line of the owned corpus.
type Passage struct {
	ID   int64
	Ref  string
	Text string
}

// Candidate is one entry of the external lexicon corpus, already filtered
// upstream to the currently authoritative text version.
type Candidate struct {
	ID       int64
	Ref      *string // stable external reference, e.g. the Meineke id
	Headword *string // display label
	Text     string
}

// Run is one versioned computation pass. FinishedAt is nil while the pass
// is in progress or after an abort; only finished runs are visible to
// latest-run queries.
type Run struct {
	ID            int64
	MetricVersion string
	CreatedAt     time.Time
	FinishedAt    *time.Time
	LineCount     int
	EntryCount    int
}

// MatchRow is one retained (passage, candidate) overlap within a run. The
// spans are rune offsets into each side's original text.
type MatchRow struct {
	RunID    int64
	LineID   int64
	EntryID  int64
	EntryRef *string
	Headword *string

	CharLen   int
	CharRatio float64
	WordLen   int
	WordRatio float64

	LineSpan  greek.Span
	EntrySpan greek.Span
}

// PassageSource reads the owned corpus. CandidateSource reads the external
// lexicon corpus. The two stores are independently owned and may live in
// different systems, so they stay behind separate interfaces and are never
// queried jointly.
type PassageSource interface {
	Passages(ctx context.Context) ([]Passage, error)
}

// CandidateSource reads the external candidate corpus.
type CandidateSource interface {
	Candidates(ctx context.Context) ([]Candidate, error)
}

// RunStore is the write side of the persistence gateway used by a pass.
type RunStore interface {
	// CreateRun opens a new run with a null completion timestamp.
	CreateRun(ctx context.Context, metricVersion string, lineCount, entryCount int) (int64, error)

	// BulkInsertMatches writes all retained matches for the run.
	BulkInsertMatches(ctx context.Context, runID int64, rows []MatchRow) error

	// FinalizeRun sets the completion timestamp and the final corpus
	// counts, making the run visible to latest-run queries.
	FinalizeRun(ctx context.Context, runID int64, lineCount, entryCount int) error

	// TryAcquireRunLock takes the advisory lock serializing passes for
	// one metric version. A false return means another pass holds it.
	TryAcquireRunLock(ctx context.Context, metricVersion string) (bool, error)

	// ReleaseRunLock releases the advisory lock.
	ReleaseRunLock(ctx context.Context, metricVersion string) error
}
