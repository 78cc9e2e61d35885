package main

import (
	"github.com/spf13/cobra"

	"github.com/solresol/prosodia-catholica/internal/ingest"
	"github.com/solresol/prosodia-catholica/internal/libs/obs"
)

func newStripPageRefsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "strip-page-refs <tsv-file>",
		Short: "Remove parenthesized page citations from a TSV file in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := ingest.CleanTSVFile(args[0])
			if err != nil {
				return err
			}
			logger := obs.Logger("clean")
			logger.Info().
				Str("file", args[0]).
				Int("changed_lines", res.ChangedLines).
				Int("removed", res.Removed).
				Msg("page references stripped")
			return nil
		},
	}
}
