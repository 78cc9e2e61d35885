package oracle

import (
	"context"
	"fmt"

	"github.com/solresol/prosodia-catholica/internal/store"
)

// PassResult reports what one oracle pass did.
type PassResult struct {
	Processed   int
	Failed      int
	TotalTokens int
}

// TranslatePending claims up to limit untranslated lines and translates
// them. Per-line failures are recorded on the row and the pass continues;
// only storage errors or cancellation abort it. Row claims and updates
// share one transaction so concurrent runners skip each other's rows.
func (c *Client) TranslatePending(ctx context.Context, st *store.Store, model string, limit int) (PassResult, error) {
	var res PassResult

	tx, err := st.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lines, err := st.ClaimPendingTranslations(ctx, tx, limit)
	if err != nil {
		return res, err
	}
	if len(lines) == 0 {
		c.logger.Info().Msg("no lines pending translation")
		return res, tx.Commit(ctx)
	}

	for _, line := range lines {
		english, tokens, err := c.Translate(ctx, model, line.GreekText)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failed++
			c.logger.Warn().Err(err).Str("ref", line.Ref).Int64("line_id", line.ID).Msg("translation failed")
			if err := st.RecordTranslationError(ctx, tx, line.ID, err.Error()); err != nil {
				return res, err
			}
			continue
		}

		res.TotalTokens += tokens
		if err := st.SaveTranslation(ctx, tx, line.ID, english, model, tokens); err != nil {
			return res, err
		}
		res.Processed++
		c.logger.Info().Str("ref", line.Ref).Int64("line_id", line.ID).Int("tokens", tokens).Msg("translated line")

		if err := c.pause(ctx); err != nil {
			return res, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("failed to commit translation pass: %w", err)
	}
	return res, nil
}

// SummarizePending claims up to limit unsummarized lines and writes short
// index labels for them. Same failure policy as TranslatePending.
func (c *Client) SummarizePending(ctx context.Context, st *store.Store, model string, limit int) (PassResult, error) {
	var res PassResult

	tx, err := st.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lines, err := st.ClaimPendingSummaries(ctx, tx, limit)
	if err != nil {
		return res, err
	}
	if len(lines) == 0 {
		c.logger.Info().Msg("no lines pending summary")
		return res, tx.Commit(ctx)
	}

	for _, line := range lines {
		summary, tokens, err := c.Summarize(ctx, model, line.GreekText)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failed++
			c.logger.Warn().Err(err).Str("ref", line.Ref).Int64("line_id", line.ID).Msg("summary failed")
			if err := st.RecordSummaryError(ctx, tx, line.ID, err.Error()); err != nil {
				return res, err
			}
			continue
		}

		res.TotalTokens += tokens
		if err := st.SaveSummary(ctx, tx, line.ID, summary, model, tokens); err != nil {
			return res, err
		}
		res.Processed++
		c.logger.Info().Str("ref", line.Ref).Int64("line_id", line.ID).Int("tokens", tokens).Msg("summarized line")

		if err := c.pause(ctx); err != nil {
			return res, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("failed to commit summary pass: %w", err)
	}
	return res, nil
}
