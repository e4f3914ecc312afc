package worker

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/fontrake/fontrake/internal/model"
)

// TargetResult is one site's discovery outcome in a multi-target scan.
type TargetResult struct {
	Target  string
	Records []model.FontRecord
	Err     error
}

// Batch discovers fonts on multiple sites concurrently.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each target gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
type Batch struct {
	discoverer  Discoverer
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithConcurrency sets the maximum number of concurrent discoveries.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// NewBatch creates a Batch around one Discoverer. The Discoverer is shared
// across goroutines and must be safe for concurrent use.
func NewBatch(discoverer Discoverer, opts ...BatchOption) *Batch {
	b := &Batch{
		discoverer:  discoverer,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// ScanAll discovers fonts on every target and returns results in target
// order. A failed target holds its error in its result slot; only context
// cancellation aborts the batch as a whole.
func (b *Batch) ScanAll(ctx context.Context, targets []string) ([]TargetResult, error) {
	results := make([]TargetResult, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			b.logger.Info("scanning site",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			records, err := b.discoverer.Extract(ctx, target)
			results[i] = TargetResult{Target: target, Records: records, Err: err}

			if err != nil {
				b.logger.Warn("discovery failed",
					"target", target,
					"error", err,
				)
				// Recorded in the result slot; keep scanning other targets.
				return nil
			}

			b.logger.Info("discovery completed",
				"target", target,
				"fonts", len(records),
			)
			return nil
		})
	}

	err := g.Wait()
	return results, err
}
