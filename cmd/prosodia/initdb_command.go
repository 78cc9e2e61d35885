package main

import (
	"github.com/spf13/cobra"

	"github.com/solresol/prosodia-catholica/internal/libs/obs"
)

func newInitDBCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the corpus tables and indexes (idempotent)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := cc.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.InitSchema(ctx); err != nil {
				return err
			}
			logger := obs.Logger("initdb")
			logger.Info().Msg("schema ready")
			return nil
		},
	}
}
