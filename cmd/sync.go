// Package cmd defines and implements the CLI commands for the content-sync executable.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/interautonomy/content-sync/internal/content"
	"github.com/interautonomy/content-sync/internal/metrics"
	"github.com/interautonomy/content-sync/internal/records"
	syncpipe "github.com/interautonomy/content-sync/internal/sync"
)

// newSyncCmd creates and configures the 'sync' subcommand. It reads the
// record files produced by a scrape and reconciles them into the store.
func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronizes record files into the content store",
		Long: `Reads the scraped record files and upserts their content into the
store in dependency order. Re-running against the same input is a no-op; a
failed run is safe to repeat.`,

		RunE: runSyncCommand,
	}
	return cmd
}

func runSyncCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.GetLogger()
	cfg := appInstance.GetConfig()

	batch, err := records.NewLoader(cfg.Input, logger).Load()
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	opts, err := syncOptions(cfg.Content.DefaultStatus, cfg.Content.PublishedAt)
	if err != nil {
		return err
	}

	syncer := syncpipe.New(appInstance.GetStore(), logger, opts)
	report, err := syncer.Run(cmd.Context(), batch)
	if err != nil {
		metrics.ObserveRun("canceled")
		return fmt.Errorf("run sync: %w", err)
	}

	result := "clean"
	if !report.Clean() {
		result = "degraded"
		for _, failure := range report.Failures {
			logger.Warn("record not synced",
				zap.String("phase", string(failure.Phase)),
				zap.String("key", failure.Key),
				zap.Error(failure.Err),
			)
		}
	}
	metrics.ObserveRun(result)
	logger.Info("sync command finished", zap.String("result", result))
	return nil
}

// syncOptions translates the content configuration into pipeline options.
func syncOptions(status, publishedAt string) (syncpipe.Options, error) {
	opts := syncpipe.Options{
		DefaultStatus: content.NormalizeStatus(status),
	}
	if publishedAt != "" {
		ts, err := content.ParseDate(publishedAt)
		if err != nil {
			return opts, fmt.Errorf("content.published_at: %w", err)
		}
		opts.DefaultPublishedAt = &ts
	}
	opts.Now = time.Now
	return opts, nil
}
