// Package archive reads collected GTFS-RT snapshot files from a directory
// or zip archive and hands them to the pipeline grouped by feed.
//
// Agencies publish realtime archives as flat collections of protobuf files
// named gtfs_{feed}_{YYYYMMDD}_{HHMMSS}.gtfs; the feed identifier and the
// capture timestamp live only in the filename. This package derives that
// metadata, groups the payloads per feed, and sorts each group
// chronologically, which is the ordering contract the logbook builder
// relies on.
package archive
