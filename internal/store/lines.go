package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Line is one row of cathpros_lines.
type Line struct {
	ID                 int64
	Ref                string
	RefMajor           *int
	RefMinor           *int
	SrcID              *int
	SrcPage            *int
	SrcLine            *int
	GreekText          string
	EnglishTranslation *string
	Summary            *string
	TranslatedAt       *time.Time
}

// ImportedLine is one parsed TSV row headed for upsert.
type ImportedLine struct {
	Ref       string
	RefMajor  *int
	RefMinor  *int
	SrcID     int
	SrcPage   int
	SrcLine   int
	GreekText string
}

// UpsertLines inserts or updates lines keyed by ref and reports how many
// rows were inserted vs updated.
func (s *Store) UpsertLines(ctx context.Context, lines []ImportedLine) (inserted, updated int, err error) {
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(`
			INSERT INTO cathpros_lines
			  (ref, ref_major, ref_minor, src_id, src_page, src_line, greek_text)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (ref) DO UPDATE SET
			  ref_major = EXCLUDED.ref_major,
			  ref_minor = EXCLUDED.ref_minor,
			  src_id = EXCLUDED.src_id,
			  src_page = EXCLUDED.src_page,
			  src_line = EXCLUDED.src_line,
			  greek_text = EXCLUDED.greek_text
			RETURNING (xmax = 0) AS inserted
		`, l.Ref, l.RefMajor, l.RefMinor, l.SrcID, l.SrcPage, l.SrcLine, l.GreekText)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer func() {
		if cerr := results.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close upsert batch: %w", cerr)
		}
	}()

	for range lines {
		var wasInserted bool
		if scanErr := results.QueryRow().Scan(&wasInserted); scanErr != nil {
			return inserted, updated, fmt.Errorf("failed to upsert line: %w", scanErr)
		}
		if wasInserted {
			inserted++
		} else {
			updated++
		}
	}
	return inserted, updated, nil
}

// lineOrder sorts by the parsed ref components first so 2.10 follows 2.9.
const lineOrder = `ref_major NULLS LAST, ref_minor NULLS LAST, ref`

// ClaimPendingTranslations locks up to limit untranslated lines inside tx,
// skipping rows another worker already holds.
func (s *Store) ClaimPendingTranslations(ctx context.Context, tx pgx.Tx, limit int) ([]Line, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, ref, greek_text
		FROM cathpros_lines
		WHERE english_translation IS NULL
		  AND greek_text IS NOT NULL
		  AND ref NOT IN ('E')
		  AND COALESCE(ref_major, 1) <> 0
		ORDER BY `+lineOrder+`
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending translations: %w", err)
	}
	return scanIDRefText(rows)
}

// SaveTranslation stores a successful translation with its bookkeeping.
func (s *Store) SaveTranslation(ctx context.Context, tx pgx.Tx, lineID int64, english, model string, tokens int) error {
	_, err := tx.Exec(ctx, `
		UPDATE cathpros_lines
		SET english_translation = $2,
		    translated_at = NOW(),
		    translation_model = $3,
		    translation_tokens = $4,
		    translation_error = NULL,
		    last_attempted_at = NOW(),
		    translation_attempts = translation_attempts + 1
		WHERE id = $1
	`, lineID, english, model, tokens)
	if err != nil {
		return fmt.Errorf("failed to save translation: %w", err)
	}
	return nil
}

// RecordTranslationError notes a failed attempt without losing the line.
func (s *Store) RecordTranslationError(ctx context.Context, tx pgx.Tx, lineID int64, cause string) error {
	_, err := tx.Exec(ctx, `
		UPDATE cathpros_lines
		SET translation_error = $2,
		    last_attempted_at = NOW(),
		    translation_attempts = translation_attempts + 1
		WHERE id = $1
	`, lineID, cause)
	if err != nil {
		return fmt.Errorf("failed to record translation error: %w", err)
	}
	return nil
}

// ClaimPendingSummaries locks up to limit unsummarized lines inside tx.
func (s *Store) ClaimPendingSummaries(ctx context.Context, tx pgx.Tx, limit int) ([]Line, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, ref, greek_text
		FROM cathpros_lines
		WHERE summary IS NULL
		  AND greek_text IS NOT NULL
		  AND ref NOT IN ('E')
		ORDER BY `+lineOrder+`
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending summaries: %w", err)
	}
	return scanIDRefText(rows)
}

// SaveSummary stores a successful summary with its bookkeeping.
func (s *Store) SaveSummary(ctx context.Context, tx pgx.Tx, lineID int64, summary, model string, tokens int) error {
	_, err := tx.Exec(ctx, `
		UPDATE cathpros_lines
		SET summary = $2,
		    summarized_at = NOW(),
		    summary_model = $3,
		    summary_tokens = $4,
		    summary_error = NULL,
		    summary_last_attempted_at = NOW(),
		    summary_attempts = summary_attempts + 1
		WHERE id = $1
	`, lineID, summary, model, tokens)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

// RecordSummaryError notes a failed summary attempt.
func (s *Store) RecordSummaryError(ctx context.Context, tx pgx.Tx, lineID int64, cause string) error {
	_, err := tx.Exec(ctx, `
		UPDATE cathpros_lines
		SET summary_error = $2,
		    summary_last_attempted_at = NOW(),
		    summary_attempts = summary_attempts + 1
		WHERE id = $1
	`, lineID, cause)
	if err != nil {
		return fmt.Errorf("failed to record summary error: %w", err)
	}
	return nil
}

// AllLines returns every line in ref order for site generation.
func (s *Store) AllLines(ctx context.Context) ([]Line, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, ref, greek_text, english_translation, summary, translated_at
		FROM cathpros_lines
		ORDER BY `+lineOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.Ref, &l.GreekText, &l.EnglishTranslation, &l.Summary, &l.TranslatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// TranslationStats counts body lines and how many are translated. Editorial
// front matter (ref 'E', ref_major 0) is excluded from the totals.
func (s *Store) TranslationStats(ctx context.Context) (total, translated int, err error) {
	err = s.pool.QueryRow(ctx, `
		SELECT
		  COUNT(*) FILTER (WHERE ref NOT IN ('E') AND COALESCE(ref_major, 1) <> 0),
		  COUNT(*) FILTER (WHERE english_translation IS NOT NULL AND ref NOT IN ('E') AND COALESCE(ref_major, 1) <> 0)
		FROM cathpros_lines
	`).Scan(&total, &translated)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query translation stats: %w", err)
	}
	return total, translated, nil
}

func scanIDRefText(rows pgx.Rows) ([]Line, error) {
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.Ref, &l.GreekText); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
