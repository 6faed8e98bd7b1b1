// Package history holds the merged, deduplicated event history.
//
// Events from every ingested log file land in a single Store ordered by
// (timestamp, message, originator). That triple is both the sort key and the
// identity of an event, so inserting the same parsed line twice is a no-op and
// the final content does not depend on the order files were imported in.
//
// # Ranks
//
// Windows are addressed by rank counted from the newest end: rank 0 is the
// most recent event, rank Len()-1 the oldest. Returned windows are always in
// chronological order (oldest first).
//
// The Store is not safe for concurrent use. Ingestion runs sequentially and a
// duplicate check plus insert must stay a single step if that ever changes.
package history
