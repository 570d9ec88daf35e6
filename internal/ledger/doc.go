// Package ledger records export runs in Redis and reads them back for the
// history command.
//
// Every run is stored as a hash and indexed in a sorted set scored by its
// creation time in milliseconds:
//
//	libdoc2tb:{repository}:run:{run_id}   hash with the run fields
//	libdoc2tb:{repository}:runs           ZSET run_id -> created_at_ms
//
// Keys are namespaced by the project-dump repository id, so several
// repositories can share one Redis database.
//
// Runs are written once and never updated. Lookups accept a full run id or a
// unique prefix of at least MinShortIDLength characters.
package ledger
