package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fontrake/fontrake/internal/config"
	"github.com/fontrake/fontrake/internal/extractor"
	"github.com/fontrake/fontrake/internal/family"
	"github.com/fontrake/fontrake/internal/model"
	"github.com/fontrake/fontrake/internal/report"
	"github.com/fontrake/fontrake/internal/selection"
	"github.com/fontrake/fontrake/internal/worker"
)

// downloadFlags carries the selection clauses parsed from CLI flags.
type downloadFlags struct {
	criteria selection.Criteria
	dryRun   bool
}

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download selected fonts from a page",
		Long: `Download discovers fonts on the page, resolves the selection flags into
concrete records, and saves the files under the output directory, one
subdirectory per family.

Selection clauses combine as a union: a font is downloaded when it matches
any of --all, --family, --name, --url, or --index. At least one clause is
required.

Examples:
  # Everything the page references
  fontrake download --all example.com

  # One family (matches inferred and source family names)
  fontrake download --family "Open Sans" example.com

  # Specific records by index from 'fontrake inspect --view font'
  fontrake download --index 0 --index 3 example.com

  # Preview the selection without fetching anything
  fontrake download --all --dry-run example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runDownloadCmd,
	}

	cmd.Flags().BoolP("all", "a", false,
		"Select every discovered font")
	cmd.Flags().StringSliceP("family", "f", nil,
		"Select all fonts in a family (matches inferred and source family names)")
	cmd.Flags().StringSliceP("name", "n", nil,
		"Select fonts by exact name")
	cmd.Flags().StringSliceP("url", "u", nil,
		"Select fonts by exact URL")
	cmd.Flags().IntSliceP("index", "i", nil,
		"Select fonts by index from 'fontrake inspect --view font'")
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Destination directory for downloaded fonts")
	cmd.Flags().Bool("dry-run", false,
		"Show the selection without downloading")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Overall timeout for each page or stylesheet fetch")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .fontrake in current or home directory)")
	cmd.Flags().String("user-agent", "",
		"Override the browser-like User-Agent header")

	return cmd
}

// runDownloadCmd executes the download command.
func runDownloadCmd(cmd *cobra.Command, args []string) error {
	cfg, flags, err := buildDownloadConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if !flags.criteria.Active() {
		return selection.ErrNoCriteria
	}

	logger := setupLogger(getVerboseFlag(cmd))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return runDownload(ctx, cfg, flags, logger)
}

// buildDownloadConfig creates a Config from cobra command flags.
func buildDownloadConfig(cmd *cobra.Command, args []string) (*config.Config, downloadFlags, error) {
	cfg := config.NewConfig()
	var flags downloadFlags
	var err error

	flags.criteria.All, err = cmd.Flags().GetBool("all")
	if err != nil {
		return nil, flags, err
	}
	flags.criteria.Families, err = cmd.Flags().GetStringSlice("family")
	if err != nil {
		return nil, flags, err
	}
	flags.criteria.Names, err = cmd.Flags().GetStringSlice("name")
	if err != nil {
		return nil, flags, err
	}
	flags.criteria.URLs, err = cmd.Flags().GetStringSlice("url")
	if err != nil {
		return nil, flags, err
	}
	flags.criteria.Indices, err = cmd.Flags().GetIntSlice("index")
	if err != nil {
		return nil, flags, err
	}
	flags.dryRun, err = cmd.Flags().GetBool("dry-run")
	if err != nil {
		return nil, flags, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, flags, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, flags, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, flags, err
	}
	if err := loadSiteConfigs(cfg); err != nil {
		return nil, flags, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, flags, err
	}

	cfg.Targets = []string{extractor.NormalizeTarget(args[0])}

	return cfg, flags, nil
}

// runDownload discovers, selects, previews, and fetches.
func runDownload(ctx context.Context, cfg *config.Config, flags downloadFlags, logger *slog.Logger) error {
	target := cfg.Targets[0]
	site := siteConfigFor(cfg, target)

	fmt.Printf("Discovering fonts on %s...\n", target)

	ext := newExtractorFor(cfg, site, logger)
	events := worker.Discover(ctx, ext, target)
	records, err := worker.CollectDiscovery(events, func(stage string) {
		logger.Debug("discovery progress", "stage", stage)
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return extractor.ErrNoFonts
	}

	indices, err := selection.Resolve(records, flags.criteria)
	if err != nil {
		return err
	}

	printSelection(target, records, indices)

	if flags.dryRun {
		fmt.Println("Dry run: nothing downloaded")
		return nil
	}

	outputDir := cfg.OutputDir
	if site.OutputDir != "" {
		outputDir = site.OutputDir
	}

	selected := make([]model.FontRecord, 0, len(indices))
	for _, index := range indices {
		selected = append(selected, records[index])
	}

	fetcher := newDownloaderFor(cfg, site)
	downloadEvents := worker.Download(ctx, fetcher, selected, outputDir)
	result, err := worker.CollectDownload(downloadEvents, func(position, total int, record model.FontRecord) {
		fmt.Printf("[%d/%d] %s\n", position, total, record.Name)
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nSaved %d of %d fonts to %s\n", result.SuccessCount(), result.Attempted, outputDir)
	if len(result.Failures) > 0 {
		for _, failure := range result.Failures {
			fmt.Fprintf(os.Stderr, "failed: %s\n", failure)
		}
		return fmt.Errorf("%d of %d downloads failed", len(result.Failures), result.Attempted)
	}

	return nil
}

// printSelection renders the selected records as a font-view table.
func printSelection(target string, records []model.FontRecord, indices []int) {
	groups := family.GroupRecords(records, indices)
	result := report.NewResult(target, len(records), report.ViewFont, groups)

	if _, err := report.NewTableWriter(os.Stdout).Write(result); err != nil {
		fmt.Fprintf(os.Stderr, "failed to render selection: %v\n", err)
	}
}
