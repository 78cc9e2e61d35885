package overlap

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/solresol/prosodia-catholica/internal/greek"
)

// Config carries the knobs of one computation pass. MetricVersion and TopK
// are the two externally configurable values the contract exposes; the rest
// tune the optional pre-filter and retention thresholds.
type Config struct {
	MetricVersion string
	TopK          int
	Workers       int

	// CandidateLimit > 0 enables the shingle pre-filter and caps how
	// many candidates are scored exactly per passage. 0 scores every
	// pair exactly.
	CandidateLimit int
	CharShingle    int
	WordShingle    int

	// Retention thresholds. A match is kept only when its letter run
	// reaches MinCharLen or its word run reaches MinWordLen. Zero
	// values keep everything with any overlap at all.
	MinCharLen int
	MinWordLen int
}

func (c *Config) defaults() {
	if c.TopK <= 0 {
		c.TopK = 10
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.CharShingle <= 0 {
		c.CharShingle = 36
	}
	if c.WordShingle <= 0 {
		c.WordShingle = 5
	}
}

// Summary reports what one pass did.
type Summary struct {
	RunID           int64
	Passages        int
	Candidates      int
	Matches         int
	SkippedPassages int
}

// Orchestrator drives one full pass: snapshot both corpora, match every
// retained pair, keep the top K per passage, and persist the result as one
// atomically visible run.
type Orchestrator struct {
	passages   PassageSource
	candidates CandidateSource
	store      RunStore
	logger     zerolog.Logger
	cfg        Config
}

// New creates an orchestrator. The metric version arrives here explicitly
// with the rest of the config; there is no ambient default.
func New(passages PassageSource, candidates CandidateSource, store RunStore, logger zerolog.Logger, cfg Config) *Orchestrator {
	cfg.defaults()
	return &Orchestrator{
		passages:   passages,
		candidates: candidates,
		store:      store,
		logger:     logger,
		cfg:        cfg,
	}
}

type normalizedCandidate struct {
	Candidate
	stream *greek.Stream
}

// Run executes one pass. Storage and corpus errors abort the pass and leave
// the run unfinalized, which keeps it invisible to latest-run queries; a
// malformed passage is logged, skipped, and does not abort the pass.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	locked, err := o.store.TryAcquireRunLock(ctx, o.cfg.MetricVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another pass for metric version %q is already running", o.cfg.MetricVersion)
	}
	defer func() {
		if err := o.store.ReleaseRunLock(context.WithoutCancel(ctx), o.cfg.MetricVersion); err != nil {
			o.logger.Warn().Err(err).Msg("failed to release run lock")
		}
	}()

	rawCandidates, err := o.candidates.Candidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidate corpus: %w", err)
	}
	passages, err := o.passages.Passages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read passage corpus: %w", err)
	}

	runID, err := o.store.CreateRun(ctx, o.cfg.MetricVersion, len(passages), len(rawCandidates))
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	o.logger.Info().
		Int64("run_id", runID).
		Str("metric_version", o.cfg.MetricVersion).
		Int("passages", len(passages)).
		Int("candidates", len(rawCandidates)).
		Msg("overlap pass started")

	// Each candidate text normalizes once for the whole pass; the
	// streams are read-only from here on and shared across workers.
	cands := make([]normalizedCandidate, 0, len(rawCandidates))
	byID := make(map[int64]*normalizedCandidate, len(rawCandidates))
	for _, c := range rawCandidates {
		cands = append(cands, normalizedCandidate{Candidate: c, stream: greek.Normalize(c.Text)})
	}
	for i := range cands {
		byID[cands[i].ID] = &cands[i]
	}

	var index *Index
	if o.cfg.CandidateLimit > 0 {
		index = NewIndex(o.cfg.CharShingle, o.cfg.WordShingle)
		for i := range cands {
			index.Add(cands[i].ID, cands[i].stream)
		}
	}

	var (
		mu       sync.Mutex
		retained []MatchRow
		skipped  atomic.Int64
		done     atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)

	for _, p := range passages {
		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if !utf8.ValidString(p.Text) {
				o.logger.Warn().Int64("line_id", p.ID).Str("ref", p.Ref).Msg("skipping malformed passage text")
				skipped.Add(1)
				return nil
			}

			rows := o.matchPassage(runID, p, cands, byID, index)

			mu.Lock()
			retained = append(retained, rows...)
			mu.Unlock()

			if n := done.Add(1); n%25 == 0 || n == int64(len(passages)) {
				o.logger.Info().Int64("scored", n).Int("total", len(passages)).Msg("scoring progress")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pass aborted: %w", err)
	}

	if err := o.store.BulkInsertMatches(ctx, runID, retained); err != nil {
		return nil, fmt.Errorf("failed to persist matches: %w", err)
	}
	if err := o.store.FinalizeRun(ctx, runID, len(passages), len(cands)); err != nil {
		return nil, fmt.Errorf("failed to finalize run: %w", err)
	}

	sum := &Summary{
		RunID:           runID,
		Passages:        len(passages),
		Candidates:      len(cands),
		Matches:         len(retained),
		SkippedPassages: int(skipped.Load()),
	}
	o.logger.Info().
		Int64("run_id", runID).
		Int("matches", sum.Matches).
		Int("skipped", sum.SkippedPassages).
		Msg("overlap pass complete")
	return sum, nil
}

// matchPassage scores one passage against the candidate set (pre-filtered
// when an index is present) and applies the top-K cut locally, so workers
// never coordinate on ranking.
func (o *Orchestrator) matchPassage(runID int64, p Passage, cands []normalizedCandidate, byID map[int64]*normalizedCandidate, index *Index) []MatchRow {
	stream := greek.Normalize(p.Text)

	var pool []*normalizedCandidate
	if index != nil {
		ids := index.Candidates(stream, o.cfg.CandidateLimit)
		pool = make([]*normalizedCandidate, 0, len(ids))
		for _, id := range ids {
			if c := byID[id]; c != nil {
				pool = append(pool, c)
			}
		}
	} else {
		pool = make([]*normalizedCandidate, len(cands))
		for i := range cands {
			pool[i] = &cands[i]
		}
	}

	var rows []MatchRow
	for _, c := range pool {
		res := Match(stream, c.stream)

		// A pair with no common letters and no common words is not a
		// match at all.
		if res.CharLen == 0 && res.WordLen == 0 {
			continue
		}
		if (o.cfg.MinCharLen > 0 || o.cfg.MinWordLen > 0) &&
			res.CharLen < o.cfg.MinCharLen && res.WordLen < o.cfg.MinWordLen {
			continue
		}

		rows = append(rows, MatchRow{
			RunID:     runID,
			LineID:    p.ID,
			EntryID:   c.ID,
			EntryRef:  c.Ref,
			Headword:  c.Headword,
			CharLen:   res.CharLen,
			CharRatio: res.CharRatio,
			WordLen:   res.WordLen,
			WordRatio: res.WordRatio,
			LineSpan:  res.ASpan,
			EntrySpan: res.BSpan,
		})
	}

	return rankAndTrim(rows, o.cfg.TopK)
}
