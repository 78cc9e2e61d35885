package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/solresol/prosodia-catholica/internal/libs/obs"
)

func newSummarizeCommand(cc *commandContext) *cobra.Command {
	var (
		limit int
		model string
		delay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize translated lines in one English sentence each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := cc.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			client, err := cc.openOracle("summarize")
			if err != nil {
				return err
			}
			client.Delay = delay

			if model == "" {
				model = cc.cfg.SummaryModel
			}
			res, err := client.SummarizePending(ctx, st, model, limit)
			if err != nil {
				return err
			}
			logger := obs.Logger("summarize")
			logger.Info().
				Int("processed", res.Processed).
				Int("failed", res.Failed).
				Int("tokens", res.TotalTokens).
				Msg("summary pass complete")
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum lines to summarize this pass")
	cmd.Flags().StringVar(&model, "model", "", "Model override (defaults to SUMMARY_MODEL)")
	cmd.Flags().DurationVar(&delay, "delay", time.Second, "Pause between model calls")
	return cmd
}
