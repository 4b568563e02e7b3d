// Package gtfsrt decodes raw GTFS-Realtime protobuf snapshots into the
// structured form consumed by the logbook builder.
//
// A snapshot is one archived FeedMessage: a timestamped report of predicted
// and observed stop times for every trip active in a feed at that moment.
// Decoding is a pure function of the snapshot bytes; malformed input is
// reported as a ParseError value, never as a fatal fault, so a caller can
// log the error and continue with the next snapshot.
package gtfsrt
