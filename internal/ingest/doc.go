// Package ingest merges log files into the event history.
//
// Every tracked file carries a Watermark. A file is re-read only when its
// modification time moved past the watermark, and then only its trailing
// ReadCap bytes are read. Parsed lines are staged per file and merged into the
// history; duplicates are dropped by the store, so running ingestion again
// over unchanged bytes never changes the history.
//
// Unparseable lines are counted and dropped. A file that cannot be read is
// logged and skipped with its watermark left untouched, so the next run
// retries it.
package ingest
