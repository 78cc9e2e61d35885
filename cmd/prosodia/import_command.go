package main

import (
	"github.com/spf13/cobra"

	"github.com/solresol/prosodia-catholica/internal/ingest"
	"github.com/solresol/prosodia-catholica/internal/libs/obs"
)

func newImportCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <tsv-file>",
		Short: "Import or update corpus lines from a TSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := cc.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			inserted, updated, err := ingest.ImportFile(ctx, st, args[0])
			if err != nil {
				return err
			}
			logger := obs.Logger("import")
			logger.Info().
				Str("file", args[0]).
				Int("inserted", inserted).
				Int("updated", updated).
				Msg("import complete")
			return nil
		},
	}
}
