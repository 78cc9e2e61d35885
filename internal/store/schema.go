package store

import (
	"context"
	"fmt"
)

// ddl is the full schema of the owned database. Everything is CREATE IF NOT
// EXISTS so init-db is safe to rerun. The lexicon database is externally
// owned and has no DDL here.
const ddl = `
CREATE TABLE IF NOT EXISTS cathpros_lines (
  id BIGSERIAL PRIMARY KEY,
  ref TEXT NOT NULL UNIQUE,
  ref_major INTEGER,
  ref_minor INTEGER,
  src_id INTEGER,
  src_page INTEGER,
  src_line INTEGER,
  greek_text TEXT NOT NULL,
  english_translation TEXT,
  imported_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  translated_at TIMESTAMPTZ,
  translation_model TEXT,
  translation_tokens INTEGER,
  translation_attempts INTEGER NOT NULL DEFAULT 0,
  last_attempted_at TIMESTAMPTZ,
  translation_error TEXT,
  summary TEXT,
  summarized_at TIMESTAMPTZ,
  summary_model TEXT,
  summary_tokens INTEGER,
  summary_attempts INTEGER NOT NULL DEFAULT 0,
  summary_last_attempted_at TIMESTAMPTZ,
  summary_error TEXT
);

CREATE INDEX IF NOT EXISTS cathpros_lines_pending_idx
  ON cathpros_lines (id)
  WHERE english_translation IS NULL;

CREATE INDEX IF NOT EXISTS cathpros_lines_summary_pending_idx
  ON cathpros_lines (id)
  WHERE summary IS NULL;

CREATE TABLE IF NOT EXISTS lexicon_overlap_runs (
  id BIGSERIAL PRIMARY KEY,
  metric_version TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  finished_at TIMESTAMPTZ,
  line_count INTEGER NOT NULL DEFAULT 0,
  entry_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS lexicon_overlap_runs_latest_idx
  ON lexicon_overlap_runs (metric_version, id DESC)
  WHERE finished_at IS NOT NULL;

CREATE TABLE IF NOT EXISTS lexicon_overlap_matches (
  id BIGSERIAL PRIMARY KEY,
  run_id BIGINT NOT NULL REFERENCES lexicon_overlap_runs(id) ON DELETE CASCADE,
  line_id BIGINT NOT NULL REFERENCES cathpros_lines(id),
  entry_id BIGINT NOT NULL,
  entry_ref TEXT,
  headword TEXT,
  char_len INTEGER NOT NULL,
  char_ratio DOUBLE PRECISION NOT NULL,
  word_len INTEGER NOT NULL,
  word_ratio DOUBLE PRECISION NOT NULL,
  line_start INTEGER NOT NULL,
  line_end INTEGER NOT NULL,
  entry_start INTEGER NOT NULL,
  entry_end INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS lexicon_overlap_matches_line_idx
  ON lexicon_overlap_matches (run_id, line_id);

CREATE INDEX IF NOT EXISTS lexicon_overlap_matches_entry_idx
  ON lexicon_overlap_matches (run_id, entry_id);
`

// InitSchema creates the owned tables and indexes if missing.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
