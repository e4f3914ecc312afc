package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fontrake/fontrake/internal/config"
	"github.com/fontrake/fontrake/internal/download"
	"github.com/fontrake/fontrake/internal/extractor"
	"github.com/fontrake/fontrake/internal/log"
	"github.com/fontrake/fontrake/internal/report"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the structured logger and installs it as default.
func setupLogger(verbose bool) *slog.Logger {
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	return logger
}

// loadSiteConfigs resolves and loads the .fontrake file into cfg.
// An explicitly specified missing file is an error; a missing default
// file is not.
func loadSiteConfigs(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		siteConfigs, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.SiteConfigs = siteConfigs
		return nil
	}

	if explicit {
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.SiteConfigs = &config.File{
		Sites: make(map[string]config.SiteConfig),
	}
	return nil
}

// siteConfigFor looks up the per-site overrides for a normalized target URL.
func siteConfigFor(cfg *config.Config, target string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return cfg.SiteConfigs.Defaults
	}
	return cfg.SiteConfigs.GetSiteConfig(parsed.Host)
}

// newExtractorFor builds an Extractor honoring global config and the
// target's site overrides.
func newExtractorFor(cfg *config.Config, site config.SiteConfig, logger *slog.Logger) *extractor.Extractor {
	opts := []extractor.Option{
		extractor.WithLogger(logger),
		extractor.WithHTTPClient(&http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: extractor.DefaultConnectTimeout,
				}).DialContext,
			},
		}),
	}
	if cfg.MaxBodySize > 0 {
		opts = append(opts, extractor.WithMaxBodySize(cfg.MaxBodySize))
	}
	if ua := userAgentFor(cfg, site); ua != "" {
		opts = append(opts, extractor.WithUserAgent(ua))
	}
	if len(site.Headers) > 0 {
		opts = append(opts, extractor.WithExtraHeaders(site.Headers))
	}
	return extractor.New(opts...)
}

// newDownloaderFor builds a Downloader honoring global config and the
// target's site overrides.
func newDownloaderFor(cfg *config.Config, site config.SiteConfig) *download.Downloader {
	opts := []download.Option{
		download.WithHTTPClient(&http.Client{
			Timeout: cfg.DownloadTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: download.DefaultConnectTimeout,
				}).DialContext,
			},
		}),
	}
	if ua := userAgentFor(cfg, site); ua != "" {
		opts = append(opts, download.WithUserAgent(ua))
	}
	if len(site.Headers) > 0 {
		opts = append(opts, download.WithExtraHeaders(site.Headers))
	}
	return download.New(opts...)
}

// userAgentFor resolves the User-Agent precedence: site override, then
// global flag, then the built-in browser default (empty string).
func userAgentFor(cfg *config.Config, site config.SiteConfig) string {
	if site.UserAgent != "" {
		return site.UserAgent
	}
	return cfg.UserAgent
}

// resolveWriter picks the output format and destination from config.
// The returned closer is nil when writing to stdout.
func resolveWriter(cfg *config.Config) (report.Writer, *os.File, error) {
	var out *os.File
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(cfg.ReportFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		out = f
	}

	var target = os.Stdout
	if out != nil {
		target = out
	}

	switch {
	case cfg.JSONOutput:
		return report.NewJSONWriter(target, report.WithPrettyPrint()), out, nil
	case cfg.MarkdownOutput:
		return report.NewMarkdownWriter(target), out, nil
	default:
		return report.NewTableWriter(target), out, nil
	}
}
