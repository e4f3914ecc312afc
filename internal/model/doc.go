// Package model defines the core data types shared across fontrake.
//
// The central type is FontRecord, an immutable description of one web font
// source discovered on a page. Records are identified by their URL: the
// extractor deduplicates on it and every later stage (grouping, selection,
// download) addresses records by their position in the discovery result.
//
// Design decision: We keep this package free of network and filesystem
// concerns so that grouping and selection stay pure functions over record
// slices. This mirrors the separation between data structures and the
// pipeline stages that produce or consume them.
package model
