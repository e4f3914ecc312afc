// Package download fetches selected font records and persists them under a
// destination root, one subdirectory per declared family.
//
// Each record is attempted independently: a fetch, decode, or write failure
// is recorded in the batch report and never aborts the remaining records.
// The exception is directory setup, which runs before any attempt; when the
// root or a family directory cannot be created the whole batch fails with
// zero attempts.
//
// Remote fetches send a browser-like User-Agent and, when the record
// carries a referring URL, Referer and Origin headers. Some font CDNs
// refuse requests without them. Inline data payloads are decoded locally
// (base64 or percent-encoded) and never touch the network.
//
// Destination names are collision safe: a numeric suffix is appended until
// the candidate is free both on disk and in the batch's own set of claimed
// paths.
package download
