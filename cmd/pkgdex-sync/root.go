package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgdex/internal/app"
	"github.com/kailas-cloud/pkgdex/internal/config"
	logpkg "github.com/kailas-cloud/pkgdex/internal/logger"
	"github.com/kailas-cloud/pkgdex/internal/metrics"
	"github.com/kailas-cloud/pkgdex/internal/version"
)

// env holds the state shared by every subcommand after PersistentPreRunE.
type env struct {
	name   string
	cfg    config.Config
	logger *zap.Logger
	quiet  bool
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "pkgdex-sync",
		Short: "Batch jobs for the pkgdex search catalog",
		Long: `pkgdex-sync prepares the catalog for search.

Examples:
  pkgdex-sync embeddings            # embed packages without a fresh vector
  pkgdex-sync embeddings --force    # re-embed every package
  pkgdex-sync index init            # push full-text index settings
  pkgdex-sync index rebuild         # rewrite every index document
  pkgdex-sync all                   # embeddings, then index rebuild`,
		Version:      version.String(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if e.name == "" {
				e.name = config.GetEnv()
			}
			cfg, err := config.Load(e.name)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			e.cfg = cfg

			e.logger, err = logpkg.NewLogger("pkgdex-sync", e.name, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			metrics.RegisterEmbeddingMetrics()
			metrics.RegisterSyncMetrics()
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&e.name, "env", "", "config environment (default: $ENV or local)")
	root.PersistentFlags().BoolVarP(&e.quiet, "quiet", "q", false, "disable the progress bar")

	root.AddCommand(newEmbeddingsCmd(e), newIndexCmd(e), newAllCmd(e))
	return root
}

// withComponents builds the backing services for one command run.
// SIGINT/SIGTERM cancel the job; partial work is kept.
func (e *env) withComponents(cmd *cobra.Command, run func(ctx context.Context, c *app.Components) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, err := app.Build(ctx, &e.cfg, e.logger)
	if err != nil {
		return fmt.Errorf("build components: %w", err)
	}
	defer comps.Close()

	return run(ctx, comps)
}
