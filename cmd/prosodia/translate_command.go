package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/solresol/prosodia-catholica/internal/libs/obs"
)

func newTranslateCommand(cc *commandContext) *cobra.Command {
	var (
		limit int
		model string
		delay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate pending lines into English",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := cc.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			client, err := cc.openOracle("translate")
			if err != nil {
				return err
			}
			client.Delay = delay

			if model == "" {
				model = cc.cfg.TranslateModel
			}
			res, err := client.TranslatePending(ctx, st, model, limit)
			if err != nil {
				return err
			}
			logger := obs.Logger("translate")
			logger.Info().
				Int("processed", res.Processed).
				Int("failed", res.Failed).
				Int("tokens", res.TotalTokens).
				Msg("translation pass complete")
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum lines to translate this pass")
	cmd.Flags().StringVar(&model, "model", "", "Model override (defaults to OPENAI_MODEL)")
	cmd.Flags().DurationVar(&delay, "delay", time.Second, "Pause between model calls")
	return cmd
}
