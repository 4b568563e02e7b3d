package gtfsrt

import "fmt"

// RawSnapshot is one archived GTFS-RT message: the opaque protobuf payload
// plus the capture timestamp supplied by the archive (derived from the
// snapshot filename). Immutable once read.
type RawSnapshot struct {
	Payload    []byte
	CapturedAt int64 // epoch seconds; fallback when the feed header has no timestamp
}

// TripStopUpdate is one predicted or observed stop time for a trip, as
// reported by a single snapshot.
type TripStopUpdate struct {
	TripID       string
	StopID       string
	StopSequence int

	// ArrivalEstimate and DepartureEstimate are epoch seconds; zero means
	// the snapshot carried no event of that kind for this stop.
	ArrivalEstimate   int64
	DepartureEstimate int64

	// Observed reports that the event time has already passed as of the
	// snapshot timestamp, i.e. the estimate is an actual, not a prediction.
	Observed bool

	// Skipped reports schedule_relationship = SKIPPED on the stop time
	// update: the feed itself declared the stop will not be served.
	Skipped bool
}

// Estimate returns the update's best single event time: the departure when
// present, otherwise the arrival. Zero when the update carried neither.
func (u TripStopUpdate) Estimate() int64 {
	if u.DepartureEstimate != 0 {
		return u.DepartureEstimate
	}
	return u.ArrivalEstimate
}

// DecodedSnapshot is a fully parsed snapshot, ready to be folded into a
// logbook. Updates preserve feed order.
type DecodedSnapshot struct {
	Timestamp int64 // epoch seconds
	Updates   []TripStopUpdate
}

// ParseError records a snapshot that could not be decoded. SnapshotIndex is
// the snapshot's position in the input sequence handed to the builder.
// ParseErrors accumulate as data; they never abort a run.
type ParseError struct {
	SnapshotIndex int
	Reason        string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("snapshot %d: %s", e.SnapshotIndex, e.Reason)
}
