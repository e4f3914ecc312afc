package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

// MaxValueLength is the longest string attribute value that passes through
// unmodified. Inline data payloads exceed this by orders of magnitude.
const MaxValueLength = 256

// MaskValue replaces URL userinfo credentials.
const MaskValue = "***"

// CompactHandler wraps an slog.Handler to keep records readable. Oversized
// string values are truncated with an elision marker and URL-shaped values
// have their userinfo masked before reaching the underlying handler.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Components that accept *slog.Logger need no changes
type CompactHandler struct {
	// handler is the underlying slog handler that receives compacted records.
	handler slog.Handler
}

// NewCompactHandler creates a CompactHandler wrapping the given handler.
// If handler is nil, the returned CompactHandler wraps slog.Default().Handler().
func NewCompactHandler(handler slog.Handler) *CompactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &CompactHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *CompactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle compacts the record's attributes and passes it on.
func (h *CompactHandler) Handle(ctx context.Context, r slog.Record) error {
	compacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		compacted.AddAttrs(h.compactAttr(a))
		return true
	})

	return h.handler.Handle(ctx, compacted)
}

// WithAttrs returns a new handler with the given attributes added,
// compacted first.
func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	compacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		compacted[i] = h.compactAttr(a)
	}
	return &CompactHandler{handler: h.handler.WithAttrs(compacted)}
}

// WithGroup returns a new handler with the given group name.
func (h *CompactHandler) WithGroup(name string) slog.Handler {
	return &CompactHandler{handler: h.handler.WithGroup(name)}
}

// compactAttr compacts a single attribute, recursively handling groups.
func (h *CompactHandler) compactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		compacted := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			compacted[i] = h.compactAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(compacted...)}
	}

	if a.Value.Kind() != slog.KindString {
		return a
	}

	value := maskUserinfo(a.Value.String())
	if len(value) > MaxValueLength {
		value = truncate(value)
	}
	if value == a.Value.String() {
		return a
	}
	return slog.String(a.Key, value)
}

// truncate shortens an oversized value, keeping the head and noting how
// much was elided.
func truncate(value string) string {
	elided := len(value) - MaxValueLength
	return value[:MaxValueLength] + "...(" + strconv.Itoa(elided) + " bytes elided)"
}

// maskUserinfo strips credentials from URL-shaped values. Non-URL values
// and URLs without userinfo pass through unchanged.
func maskUserinfo(value string) string {
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		return value
	}
	if !strings.Contains(value, "@") {
		return value
	}

	u, err := url.Parse(value)
	if err != nil || u.User == nil {
		return value
	}

	u.User = url.User(MaskValue)
	return u.String()
}

// NewLogger creates a *slog.Logger with compact text output.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewCompactHandler(textHandler))
}

// NewJSONLogger creates a *slog.Logger with compact JSON output. Useful
// for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	return slog.New(NewCompactHandler(jsonHandler))
}
