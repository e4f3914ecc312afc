// Package log provides compact logging built on top of the standard slog
// package.
//
// Font discovery handles values that are hostile to plain text logs:
// inline data payloads can run to megabytes of base64, and page URLs
// occasionally carry credentials in their userinfo section. The
// CompactHandler truncates oversized string attributes and masks URL
// userinfo before the record reaches the underlying handler.
//
// # Usage
//
//	// Create a compact logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("found font source",
//	    "url", "data:font/woff2;base64,d09GMgABAA...",  // truncated
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
