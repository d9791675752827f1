package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/pkgdex/internal/app"
	"github.com/kailas-cloud/pkgdex/internal/usecase/jobs"
)

func newEmbeddingsCmd(e *env) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "embeddings",
		Short: "Generate embeddings for packages",
		Long: `Embed every package whose vector is missing or older than its record.
With --force every package is re-embedded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withComponents(cmd, func(ctx context.Context, c *app.Components) error {
				return e.runEmbeddings(ctx, cmd, c, force)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-embed every package")
	return cmd
}

func newIndexCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the full-text index",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the index or update its settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withComponents(cmd, func(ctx context.Context, c *app.Components) error {
				changed, err := c.IndexJob(&e.cfg, e.logger).Init(ctx)
				if err != nil {
					return err
				}
				if changed {
					cmd.Println("Index schema created or updated; run `pkgdex-sync index rebuild`.")
				} else {
					cmd.Println("Index settings unchanged.")
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rebuild",
		Short: "Rewrite every index document from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withComponents(cmd, func(ctx context.Context, c *app.Components) error {
				return e.runIndex(ctx, cmd, c)
			})
		},
	})
	return cmd
}

func newAllCmd(e *env) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Generate embeddings, then rebuild the full-text index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withComponents(cmd, func(ctx context.Context, c *app.Components) error {
				if err := e.runEmbeddings(ctx, cmd, c, force); err != nil {
					return err
				}
				return e.runIndex(ctx, cmd, c)
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-embed every package")
	return cmd
}

func (e *env) runEmbeddings(ctx context.Context, cmd *cobra.Command, c *app.Components, force bool) error {
	bar := newProgress("Embedding", e.quiet)
	report, err := c.EmbeddingJob(&e.cfg, e.logger).Run(ctx, force, bar.update)
	bar.finish()
	printReport(cmd, "Embeddings", report)
	if err != nil {
		return fmt.Errorf("embedding job: %w", err)
	}
	return nil
}

func (e *env) runIndex(ctx context.Context, cmd *cobra.Command, c *app.Components) error {
	bar := newProgress("Indexing", e.quiet)
	report, err := c.IndexJob(&e.cfg, e.logger).Run(ctx, bar.update)
	bar.finish()
	printReport(cmd, "Index rebuild", report)
	if err != nil {
		return fmt.Errorf("index job: %w", err)
	}
	return nil
}

func printReport(cmd *cobra.Command, title string, r jobs.Report) {
	cmd.Printf("\n%s complete:\n", title)
	cmd.Printf("  Processed: %d\n", r.Processed)
	cmd.Printf("  Failed:    %d\n", r.Failed)
	if r.Skipped > 0 {
		cmd.Printf("  Skipped:   %d\n", r.Skipped)
	}
	if r.Deleted > 0 {
		cmd.Printf("  Deleted:   %d (no longer in catalog)\n", r.Deleted)
	}
	cmd.Printf("  Duration:  %s\n", formatDuration(time.Duration(r.DurationMs)*time.Millisecond))
}
