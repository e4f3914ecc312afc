package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/fontrake/fontrake/internal/download"
	"github.com/fontrake/fontrake/internal/model"
)

// ErrWorkerStopped reports a worker channel that closed without delivering
// its terminal event. The operation's outcome is unknown at that point.
var ErrWorkerStopped = errors.New("worker stopped before delivering a result")

// Discoverer extracts font records from one site.
type Discoverer interface {
	Extract(ctx context.Context, rawURL string) ([]model.FontRecord, error)
}

// Fetcher persists a record batch under a destination root.
type Fetcher interface {
	Download(ctx context.Context, records []model.FontRecord, destRoot string, progress download.ProgressFunc) (download.Report, error)
}

// DiscoveryEvent is one message from a discovery worker. Stage carries
// progress text on non-terminal events; Done marks the terminal event,
// which carries either Records or Err.
type DiscoveryEvent struct {
	Stage   string
	Done    bool
	Records []model.FontRecord
	Err     error
}

// Discover runs one extraction on its own goroutine and returns the event
// channel. The channel delivers progress events, then exactly one terminal
// event, then closes.
func Discover(ctx context.Context, discoverer Discoverer, target string) <-chan DiscoveryEvent {
	events := make(chan DiscoveryEvent, 1)

	go func() {
		defer close(events)

		events <- DiscoveryEvent{Stage: fmt.Sprintf("fetching %s", target)}

		records, err := discoverer.Extract(ctx, target)
		if err != nil {
			events <- DiscoveryEvent{Done: true, Err: err}
			return
		}
		events <- DiscoveryEvent{Done: true, Records: records}
	}()

	return events
}

// CollectDiscovery drains a discovery channel and returns its terminal
// result. Progress events are passed to onProgress when non-nil. A channel
// that closes without a terminal event yields ErrWorkerStopped.
func CollectDiscovery(events <-chan DiscoveryEvent, onProgress func(stage string)) ([]model.FontRecord, error) {
	for event := range events {
		if event.Done {
			return event.Records, event.Err
		}
		if onProgress != nil {
			onProgress(event.Stage)
		}
	}
	return nil, ErrWorkerStopped
}

// DownloadEvent is one message from a download worker. Non-terminal events
// describe the record about to be fetched; the terminal event carries the
// batch report or the setup error.
type DownloadEvent struct {
	Position int
	Total    int
	Record   model.FontRecord
	Done     bool
	Report   download.Report
	Err      error
}

// Download runs one batch on its own goroutine and returns the event
// channel. Each record produces a progress event before its attempt; the
// terminal event carries the report, or the error when directory setup
// failed before any attempt.
func Download(ctx context.Context, fetcher Fetcher, records []model.FontRecord, destRoot string) <-chan DownloadEvent {
	events := make(chan DownloadEvent, len(records)+1)

	go func() {
		defer close(events)

		report, err := fetcher.Download(ctx, records, destRoot, func(position, total int, record model.FontRecord) {
			events <- DownloadEvent{Position: position, Total: total, Record: record}
		})
		if err != nil {
			events <- DownloadEvent{Done: true, Err: err}
			return
		}
		events <- DownloadEvent{Done: true, Report: report}
	}()

	return events
}

// CollectDownload drains a download channel and returns its terminal
// report. Progress events are passed to onProgress when non-nil. A channel
// that closes without a terminal event yields ErrWorkerStopped.
func CollectDownload(events <-chan DownloadEvent, onProgress func(position, total int, record model.FontRecord)) (download.Report, error) {
	for event := range events {
		if event.Done {
			return event.Report, event.Err
		}
		if onProgress != nil {
			onProgress(event.Position, event.Total, event.Record)
		}
	}
	return download.Report{}, ErrWorkerStopped
}
