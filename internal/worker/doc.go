// Package worker runs discovery and download off the caller's goroutine,
// reporting over one-directional event channels.
//
// Both operations are synchronous from the core's perspective; an
// interactive surface offloads them here so its own loop stays responsive.
// Every worker channel carries zero or more progress events followed by
// exactly one terminal event, then closes. A channel that closes without a
// terminal event signals a failed worker and is surfaced as an error by the
// collect helpers, never silently ignored.
//
// Multi-target discovery fans out with errgroup under a concurrency limit.
// Per-target failures are recorded in that target's result slot and do not
// cancel the remaining targets.
package worker
