package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/interautonomy/content-sync/internal/records"
	"github.com/interautonomy/content-sync/internal/scrape"
)

// newScrapeCmd creates and configures the 'scrape' subcommand. It walks the
// site catalogs and writes the normalized record files the sync command
// consumes.
func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrapes the site into record files",
		Long: `Fetches the strategy and project catalogs in every configured
language, extracts and sanitizes their content, and writes the normalized
record files into the input directory.`,

		RunE: runScrapeCommand,
	}
	return cmd
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.GetLogger()
	cfg := appInstance.GetConfig()

	var archiver scrape.PageArchiver
	if arc := appInstance.GetArchive(); arc != nil {
		archiver = arc
	}

	scraper := scrape.NewScraper(
		scrape.NewFetcher(cfg.Scrape),
		archiver,
		cfg.Content.Languages,
		cfg.Scrape,
		logger,
	)

	batch, err := scraper.BuildBatch(cmd.Context())
	if err != nil {
		return fmt.Errorf("build batch: %w", err)
	}

	if err := records.Save(cfg.Input, batch); err != nil {
		return fmt.Errorf("save records: %w", err)
	}

	logger.Info("scrape command finished",
		zap.String("dir", cfg.Input.Dir),
		zap.Int("tags", len(batch.Tags)),
		zap.Int("items", len(batch.Items)),
		zap.Int("paragraphs", len(batch.Paragraphs)),
	)
	return nil
}
