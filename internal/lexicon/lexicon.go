// Package lexicon reads the externally owned Stephanos database. Access is
// strictly read-only: the candidate corpus belongs to another team, may
// live on a different server, and is never joined against the owned
// database. One query snapshots the currently authoritative entries.
package lexicon

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solresol/prosodia-catholica/internal/overlap"
)

// Store wraps the read-only connection pool of the lexicon database.
type Store struct {
	pool *pgxpool.Pool
}

var _ overlap.CandidateSource = (*Store)(nil)

// New connects to the lexicon database.
func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to lexicon database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping lexicon database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Candidates snapshots every lemma whose Meineke source text is current.
// Superseded text versions never participate in a pass.
func (s *Store) Candidates(ctx context.Context) ([]overlap.Candidate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT l.id, l.lemma, l.meineke_id, v.text_body
		FROM assembled_lemmas l
		JOIN lemma_source_text_versions v
		  ON v.lemma_id = l.id
		WHERE v.source_document = 'meineke'
		  AND v.is_current = TRUE
		  AND v.text_body IS NOT NULL
		ORDER BY l.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lexicon entries: %w", err)
	}
	defer rows.Close()

	var out []overlap.Candidate
	for rows.Next() {
		var c overlap.Candidate
		if err := rows.Scan(&c.ID, &c.Headword, &c.Ref, &c.Text); err != nil {
			return nil, fmt.Errorf("failed to scan lexicon entry: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
