// Package store is the persistence gateway for the database this pipeline
// owns: Herodian lines, overlap runs, and overlap matches. Other teams read
// these tables through a restricted credential, so nothing here assumes
// exclusive access; visibility of a run is gated solely by its completion
// timestamp.
package store

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solresol/prosodia-catholica/internal/overlap"
)

// Store wraps the connection pool of the owned database.
type Store struct {
	pool *pgxpool.Pool

	// Advisory locks are per-connection, so each held run lock pins the
	// connection it was taken on until release.
	mu        sync.Mutex
	lockConns map[string]*pgxpool.Conn
}

// Store is both the write gateway for a pass and the passage source.
var _ overlap.RunStore = (*Store)(nil)
var _ overlap.PassageSource = (*Store)(nil)

// New connects to the owned database.
func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool, lockConns: make(map[string]*pgxpool.Conn)}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.mu.Lock()
	for _, conn := range s.lockConns {
		conn.Release()
	}
	s.lockConns = map[string]*pgxpool.Conn{}
	s.mu.Unlock()
	s.pool.Close()
}

// Begin starts a transaction on the owned database.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.pool.Begin(ctx)
}

// Passages returns every line eligible for overlap computation, in ref
// order. The editorial front-matter ref 'E' is excluded.
func (s *Store) Passages(ctx context.Context) ([]overlap.Passage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, ref, greek_text
		FROM cathpros_lines
		WHERE greek_text IS NOT NULL
		  AND ref NOT IN ('E')
		ORDER BY ref_major NULLS LAST, ref_minor NULLS LAST, ref
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	var out []overlap.Passage
	for rows.Next() {
		var p overlap.Passage
		if err := rows.Scan(&p.ID, &p.Ref, &p.Text); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateRun opens a new overlap run with a null completion timestamp.
func (s *Store) CreateRun(ctx context.Context, metricVersion string, lineCount, entryCount int) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO lexicon_overlap_runs (metric_version, created_at, line_count, entry_count)
		VALUES ($1, NOW(), $2, $3)
		RETURNING id
	`, metricVersion, lineCount, entryCount).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// BulkInsertMatches writes all retained matches of a run in one COPY.
func (s *Store) BulkInsertMatches(ctx context.Context, runID int64, matches []overlap.MatchRow) error {
	if len(matches) == 0 {
		return nil
	}

	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"lexicon_overlap_matches"},
		[]string{
			"run_id", "line_id", "entry_id", "entry_ref", "headword",
			"char_len", "char_ratio", "word_len", "word_ratio",
			"line_start", "line_end", "entry_start", "entry_end",
		},
		pgx.CopyFromSlice(len(matches), func(i int) ([]any, error) {
			m := matches[i]
			return []any{
				runID, m.LineID, m.EntryID, m.EntryRef, m.Headword,
				m.CharLen, m.CharRatio, m.WordLen, m.WordRatio,
				m.LineSpan.Start, m.LineSpan.End, m.EntrySpan.Start, m.EntrySpan.End,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk insert matches: %w", err)
	}
	return nil
}

// FinalizeRun sets the completion timestamp and the final corpus counts.
func (s *Store) FinalizeRun(ctx context.Context, runID int64, lineCount, entryCount int) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE lexicon_overlap_runs
		SET finished_at = NOW(), line_count = $2, entry_count = $3
		WHERE id = $1 AND finished_at IS NULL
	`, runID, lineCount, entryCount)
	if err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run %d not found or already finalized", runID)
	}
	return nil
}

// TryAcquireRunLock takes the advisory lock serializing passes for one
// metric version. The lock lives on a dedicated pooled connection until
// released.
func (s *Store) TryAcquireRunLock(ctx context.Context, metricVersion string) (bool, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to acquire connection for run lock: %w", err)
	}

	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, runLockKey(metricVersion)).Scan(&locked); err != nil {
		conn.Release()
		return false, fmt.Errorf("failed to take run lock: %w", err)
	}
	if !locked {
		conn.Release()
		return false, nil
	}

	s.mu.Lock()
	s.lockConns[metricVersion] = conn
	s.mu.Unlock()
	return true, nil
}

// ReleaseRunLock releases the advisory lock for a metric version.
func (s *Store) ReleaseRunLock(ctx context.Context, metricVersion string) error {
	s.mu.Lock()
	conn := s.lockConns[metricVersion]
	delete(s.lockConns, metricVersion)
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, runLockKey(metricVersion)); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}

// runLockKey derives the advisory-lock key for a metric version.
func runLockKey(metricVersion string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("lexicon_overlap:" + metricVersion))
	return int64(h.Sum64())
}

// LatestRun returns the most recent run with a completion timestamp for the
// metric version, or nil when none has finished yet. Unfinished runs are
// never returned, no matter how many matches they have written.
func (s *Store) LatestRun(ctx context.Context, metricVersion string) (*overlap.Run, error) {
	var r overlap.Run
	err := s.pool.QueryRow(ctx, `
		SELECT id, metric_version, created_at, finished_at, line_count, entry_count
		FROM lexicon_overlap_runs
		WHERE metric_version = $1 AND finished_at IS NOT NULL
		ORDER BY id DESC
		LIMIT 1
	`, metricVersion).Scan(&r.ID, &r.MetricVersion, &r.CreatedAt, &r.FinishedAt, &r.LineCount, &r.EntryCount)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return &r, nil
}

const matchColumns = `
	run_id, line_id, entry_id, entry_ref, headword,
	char_len, char_ratio, word_len, word_ratio,
	line_start, line_end, entry_start, entry_end`

// matchOrder is the same deterministic ranking used at write time.
const matchOrder = `char_ratio DESC, word_ratio DESC, char_len DESC, entry_id ASC`

// MatchesByLine returns a run's matches for one line, best first.
func (s *Store) MatchesByLine(ctx context.Context, runID, lineID int64) ([]overlap.MatchRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+matchColumns+`
		FROM lexicon_overlap_matches
		WHERE run_id = $1 AND line_id = $2
		ORDER BY `+matchOrder,
		runID, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches by line: %w", err)
	}
	return scanMatches(rows)
}

// MatchesByEntry returns a run's matches for one lexicon entry, best first.
func (s *Store) MatchesByEntry(ctx context.Context, runID, entryID int64) ([]overlap.MatchRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+matchColumns+`
		FROM lexicon_overlap_matches
		WHERE run_id = $1 AND entry_id = $2
		ORDER BY `+matchOrder,
		runID, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches by entry: %w", err)
	}
	return scanMatches(rows)
}

// MatchesForRun returns every match of a run grouped by line, ranked within
// each line. Used by the site generator.
func (s *Store) MatchesForRun(ctx context.Context, runID int64) ([]overlap.MatchRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+matchColumns+`
		FROM lexicon_overlap_matches
		WHERE run_id = $1
		ORDER BY line_id ASC, `+matchOrder,
		runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for run: %w", err)
	}
	return scanMatches(rows)
}

func scanMatches(rows pgx.Rows) ([]overlap.MatchRow, error) {
	defer rows.Close()

	var out []overlap.MatchRow
	for rows.Next() {
		var m overlap.MatchRow
		if err := rows.Scan(
			&m.RunID, &m.LineID, &m.EntryID, &m.EntryRef, &m.Headword,
			&m.CharLen, &m.CharRatio, &m.WordLen, &m.WordRatio,
			&m.LineSpan.Start, &m.LineSpan.End, &m.EntrySpan.Start, &m.EntrySpan.End,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
