// Package export flattens finalized logbooks into tabular rows and writes
// them to CSV files, SQLite databases, or Postgres.
//
// The core hands over one Logbook per feed; this package joins stop names
// from the static GTFS lookup (unknown stops keep an empty name) and emits
// one row per stop visit. All sinks share the same Row shape, so the choice
// of backing store is a deployment concern only.
package export
