// Package gtfs loads the static GTFS stops table and exposes the
// stop_id -> stop_name lookup used when flattening logbooks for export.
//
// This package is data-source agnostic: it accepts an io.Reader over a
// stops.txt CSV, a plain file path, or a full GTFS zip containing
// stops.txt. Stop ids absent from the table pass through the exporter with
// an empty name.
package gtfs
