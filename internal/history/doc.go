// Package history persists discovery runs in a local SQLite database.
//
// Each run stores the scanned site, summary counts, and the full record
// list as JSON, timestamped at insertion. The history command lists past
// runs and can reload a run's records without touching the network.
//
// Design decision: We store the record list as a JSON column rather than
// normalized rows. Records are only ever read back as a whole run, never
// queried individually, so a relational layout would add schema and
// migration cost with nothing to show for it.
package history
