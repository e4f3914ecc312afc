package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout is the overall budget for one page or stylesheet
	// fetch. Font CDNs are fast; 30 seconds covers slow origins without
	// hanging a discovery run indefinitely.
	DefaultTimeout = 30 * time.Second

	// DefaultDownloadTimeout is the budget for one font file fetch.
	// Font binaries are larger than stylesheets, so it is wider.
	DefaultDownloadTimeout = 45 * time.Second

	// DefaultConcurrency is the number of sites scanned in parallel when
	// multiple targets are given. Discovery is network-bound and light on
	// CPU, but each site fans out into several stylesheet fetches of its
	// own, so this stays modest.
	DefaultConcurrency = 4

	// DefaultOutputDir is where downloaded fonts land when --output is
	// not given.
	DefaultOutputDir = "fonts"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 10MB covers any realistic stylesheet while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// AppName is the application name used for XDG directory paths.
	AppName = "fontrake"
)

// Config holds all configuration options for a run.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., DiscoveryConfig, DownloadConfig) for simplicity. The number of
// options is manageable, and nesting would add complexity without
// significant benefit.
type Config struct {
	// Targets is the list of site references to inspect. A reference
	// without a scheme defaults to https.
	Targets []string

	// Timeout is the overall budget for one page or stylesheet fetch.
	Timeout time.Duration

	// DownloadTimeout is the overall budget for one font file fetch.
	DownloadTimeout time.Duration

	// Concurrency is the number of sites scanned in parallel.
	Concurrency int

	// OutputDir is the destination root for downloaded fonts.
	OutputDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONOutput renders results as JSON instead of tables.
	// Mutually exclusive with MarkdownOutput.
	JSONOutput bool

	// MarkdownOutput renders results as GitHub Flavored Markdown.
	// Mutually exclusive with JSONOutput.
	MarkdownOutput bool

	// ReportFile is the output file path for the rendered result.
	// When set, output is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .fontrake in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// UserAgent overrides the browser-like default sent with requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default.
	MaxBodySize int64

	// DBDir is the directory path for storing the SQLite history
	// database. Defaults to the XDG data directory.
	DBDir string

	// SaveHistory indicates whether discovery runs are recorded in the
	// history database.
	SaveHistory bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeouts,
// concurrency). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:         DefaultTimeout,
		DownloadTimeout: DefaultDownloadTimeout,
		Concurrency:     DefaultConcurrency,
		OutputDir:       DefaultOutputDir,
		MaxBodySize:     DefaultMaxBodySize,
		DBDir:           XDGDataDir(),
		SaveHistory:     true,
	}
}

// XDGDataDir returns the XDG data directory for fontrake.
// On Linux: ~/.local/share/fontrake
// On macOS: ~/Library/Application Support/fontrake
// On Windows: %LOCALAPPDATA%\fontrake
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for fontrake.
// On Linux: ~/.config/fontrake
// On macOS: ~/Library/Application Support/fontrake
// On Windows: %APPDATA%\fontrake
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any network work begins.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.Timeout <= 0 || c.DownloadTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.JSONOutput && c.MarkdownOutput {
		return ErrConflictingOutputFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
