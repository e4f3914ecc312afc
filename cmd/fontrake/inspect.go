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
	"github.com/fontrake/fontrake/internal/history"
	"github.com/fontrake/fontrake/internal/model"
	"github.com/fontrake/fontrake/internal/report"
	"github.com/fontrake/fontrake/internal/worker"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <url>...",
		Short: "Discover web fonts referenced by one or more pages",
		Long: `Inspect fetches each page, scans its inline styles and linked or imported
stylesheets for font sources, and prints the findings grouped by inferred
family or as a flat font list.

Examples:
  # Inspect a site (scheme defaults to https)
  fontrake inspect example.com

  # Show individual fonts instead of family groups
  fontrake inspect --view font example.com

  # Limit output to specific families
  fontrake inspect --family "Open Sans" --family Roboto example.com

  # Machine-readable output
  fontrake inspect --json example.com

  # Inspect several sites concurrently
  fontrake inspect site-a.com site-b.com site-c.com

Configuration file (.fontrake) example:
  sites:
    fonts.example.com:
      userAgent: "custom-agent/1.0"
      headers:
        X-Access-Token: "abc123"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInspectCmd,
	}

	cmd.Flags().StringSliceP("family", "f", nil,
		"Limit output to one or more family names (matches inferred and source family names)")
	cmd.Flags().String("view", string(report.ViewFamily),
		"Output view: family (grouped) or font (flat list)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Overall timeout for each page or stylesheet fetch")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of sites inspected in parallel")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .fontrake in current or home directory)")
	cmd.Flags().String("user-agent", "",
		"Override the browser-like User-Agent header")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")

	return cmd
}

// runInspectCmd executes the inspect command.
func runInspectCmd(cmd *cobra.Command, args []string) error {
	cfg, families, view, err := buildInspectConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return runInspect(ctx, cfg, families, view, logger)
}

// buildInspectConfig creates a Config from cobra command flags.
func buildInspectConfig(cmd *cobra.Command, args []string) (*config.Config, []string, report.View, error) {
	cfg := config.NewConfig()

	families, err := cmd.Flags().GetStringSlice("family")
	if err != nil {
		return nil, nil, "", err
	}

	rawView, err := cmd.Flags().GetString("view")
	if err != nil {
		return nil, nil, "", err
	}
	view := report.ParseView(rawView)

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, nil, "", err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, nil, "", err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, "", err
	}
	if err := loadSiteConfigs(cfg); err != nil {
		return nil, nil, "", err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, nil, "", err
	}

	cfg.JSONOutput, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, nil, "", err
	}

	cfg.MarkdownOutput, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, nil, "", err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, nil, "", err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, nil, "", err
	}
	cfg.SaveHistory = !noHistory

	for _, arg := range args {
		cfg.Targets = append(cfg.Targets, extractor.NormalizeTarget(arg))
	}

	return cfg, families, view, nil
}

// runInspect executes discovery and renders the results.
func runInspect(ctx context.Context, cfg *config.Config, families []string, view report.View, logger *slog.Logger) error {
	writer, closer, err := resolveWriter(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	var db *history.DB
	if cfg.SaveHistory {
		db, err = history.Open(cfg.DBDir, history.DefaultOptions())
		if err != nil {
			logger.Warn("history database unavailable, runs will not be recorded", "error", err)
		} else {
			defer db.Close()
		}
	}

	results, err := scanTargets(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var firstErr error
	for _, result := range results {
		if result.Err != nil {
			logger.Error("discovery failed", "target", result.Target, "error", result.Err)
			fmt.Fprintf(os.Stderr, "Discovery error for %s: %v\n", result.Target, result.Err)
			if firstErr == nil {
				firstErr = result.Err
			}
			continue
		}

		if err := renderResult(writer, result.Target, result.Records, families, view); err != nil {
			return err
		}

		if db != nil {
			groups := family.GroupAll(result.Records)
			if _, err := db.SaveRun(ctx, result.Target, result.Records, len(groups)); err != nil {
				logger.Warn("failed to record run", "target", result.Target, "error", err)
			}
		}
	}

	return firstErr
}

// scanTargets runs discovery for every target, concurrently when there is
// more than one.
func scanTargets(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]worker.TargetResult, error) {
	if len(cfg.Targets) == 1 {
		target := cfg.Targets[0]
		ext := newExtractorFor(cfg, siteConfigFor(cfg, target), logger)

		events := worker.Discover(ctx, ext, target)
		records, err := worker.CollectDiscovery(events, func(stage string) {
			logger.Debug("discovery progress", "stage", stage)
		})
		return []worker.TargetResult{{Target: target, Records: records, Err: err}}, nil
	}

	// Site overrides may differ per target, but one shared Extractor with
	// default options keeps the batch path simple. Per-site overrides
	// apply only to single-target runs.
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("per-site overrides are ignored when inspecting multiple targets",
			"siteCount", len(cfg.SiteConfigs.Sites))
	}

	ext := newExtractorFor(cfg, config.SiteConfig{}, logger)
	batch := worker.NewBatch(ext,
		worker.WithConcurrency(cfg.Concurrency),
		worker.WithBatchLogger(logger),
	)
	return batch.ScanAll(ctx, cfg.Targets)
}

// renderResult groups one target's records, applies the family filter, and
// writes the result.
func renderResult(writer report.Writer, target string, records []model.FontRecord, families []string, view report.View) error {
	if len(records) == 0 {
		_, err := writer.Write(report.EmptyResult(target, view))
		return err
	}

	var groups []family.Group
	if len(families) > 0 {
		indices := family.SelectByNames(records, families)
		groups = family.GroupRecords(records, indices)
	} else {
		groups = family.GroupAll(records)
	}

	_, err := writer.Write(report.NewResult(target, len(records), view, groups))
	return err
}
