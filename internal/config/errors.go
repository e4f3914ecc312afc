package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoTarget is returned when no site reference is specified.
	ErrNoTarget = errors.New("no target specified: provide at least one site URL")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not
	// positive. Zero concurrency would mean no scanning at all.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingOutputFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingOutputFormats = errors.New("conflicting output formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
