package main

import (
	"github.com/spf13/cobra"

	"github.com/solresol/prosodia-catholica/internal/libs/obs"
	"github.com/solresol/prosodia-catholica/internal/site"
)

func newSiteCommand(cc *commandContext) *cobra.Command {
	var (
		outDir        string
		metricVersion string
	)

	cmd := &cobra.Command{
		Use:   "site",
		Short: "Render the static site from the stored corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := cc.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			data, err := site.Build(ctx, st, metricVersion, cc.cfg.SiteTitle)
			if err != nil {
				return err
			}
			if err := site.Generate(outDir, data); err != nil {
				return err
			}
			logger := obs.Logger("site")
			logger.Info().
				Str("dir", outDir).
				Int("lines", len(data.Lines)).
				Int("translated", data.Stats.Translated).
				Msg("site generated")
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "site", "Output directory")
	cmd.Flags().StringVar(&metricVersion, "metric-version", "v1", "Run version whose matches are highlighted")
	return cmd
}
