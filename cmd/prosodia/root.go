package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solresol/prosodia-catholica/internal/libs/config"
	"github.com/solresol/prosodia-catholica/internal/libs/obs"
	"github.com/solresol/prosodia-catholica/internal/oracle"
	"github.com/solresol/prosodia-catholica/internal/store"
)

// commandContext carries the loaded configuration into the subcommands.
type commandContext struct {
	cfg *config.Config
}

func newRootCommand() *cobra.Command {
	cc := &commandContext{}

	root := &cobra.Command{
		Use:           "prosodia",
		Short:         "Pipeline for the Herodian line corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			obs.InitLogger(cfg.LogLevel)
			cc.cfg = cfg
			return nil
		},
	}

	root.AddCommand(
		newInitDBCommand(cc),
		newImportCommand(cc),
		newStripPageRefsCommand(),
		newComputeOverlapsCommand(cc),
		newTranslateCommand(cc),
		newSummarizeCommand(cc),
		newSiteCommand(cc),
	)
	return root
}

func (c *commandContext) openStore(ctx context.Context) (*store.Store, error) {
	return store.New(ctx, c.cfg.DatabaseURL)
}

func (c *commandContext) openOracle(component string) (*oracle.Client, error) {
	key, err := c.cfg.ResolveOpenAIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve OpenAI key: %w", err)
	}
	return oracle.NewClient(key, obs.Logger(component)), nil
}
