package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/solresol/prosodia-catholica/internal/lexicon"
	"github.com/solresol/prosodia-catholica/internal/libs/obs"
	"github.com/solresol/prosodia-catholica/internal/overlap"
)

// limitedPassages truncates the passage snapshot, for trial passes over a
// prefix of the corpus.
type limitedPassages struct {
	src overlap.PassageSource
	n   int
}

func (l limitedPassages) Passages(ctx context.Context) ([]overlap.Passage, error) {
	ps, err := l.src.Passages(ctx)
	if err != nil {
		return nil, err
	}
	if l.n > 0 && len(ps) > l.n {
		ps = ps[:l.n]
	}
	return ps, nil
}

func newComputeOverlapsCommand(cc *commandContext) *cobra.Command {
	var (
		metricVersion  string
		maxMatches     int
		limitLines     int
		candidateLimit int
		charShingle    int
		wordShingle    int
		minCharLCS     int
		minWordLCS     int
		workers        int
	)

	cmd := &cobra.Command{
		Use:   "compute-overlaps",
		Short: "Match every corpus line against the lexicon and store a new run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := cc.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			lex, err := lexicon.New(ctx, cc.cfg.LexiconDatabaseURL)
			if err != nil {
				return err
			}
			defer lex.Close()

			var passages overlap.PassageSource = st
			if limitLines > 0 {
				passages = limitedPassages{src: st, n: limitLines}
			}

			logger := obs.Logger("overlap")
			orch := overlap.New(passages, lex, st, logger, overlap.Config{
				MetricVersion:  metricVersion,
				TopK:           maxMatches,
				Workers:        workers,
				CandidateLimit: candidateLimit,
				CharShingle:    charShingle,
				WordShingle:    wordShingle,
				MinCharLen:     minCharLCS,
				MinWordLen:     minWordLCS,
			})

			summary, err := orch.Run(ctx)
			if err != nil {
				return err
			}
			logger.Info().
				Int64("run_id", summary.RunID).
				Int("lines", summary.Passages).
				Int("entries", summary.Candidates).
				Int("matches", summary.Matches).
				Int("skipped", summary.SkippedPassages).
				Msg("pass complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&metricVersion, "metric-version", "v1", "Version label recorded on the run")
	cmd.Flags().IntVar(&maxMatches, "max-matches", 10, "Matches retained per line")
	cmd.Flags().IntVar(&limitLines, "limit-lines", 0, "Only score the first N lines (0 = all)")
	cmd.Flags().IntVar(&candidateLimit, "candidate-limit", 0, "Shingle pre-filter candidate cap per line (0 = score every pair exactly)")
	cmd.Flags().IntVar(&charShingle, "char-shingle", 36, "Letter shingle width for the pre-filter")
	cmd.Flags().IntVar(&wordShingle, "word-shingle", 5, "Word shingle width for the pre-filter")
	cmd.Flags().IntVar(&minCharLCS, "min-char-lcs", 0, "Keep a match only if its letter run reaches this length")
	cmd.Flags().IntVar(&minWordLCS, "min-word-lcs", 0, "Keep a match only if its word run reaches this length")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent line workers")
	return cmd
}
