package gtfsrt

import (
	"fmt"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Decode parses one raw snapshot into a DecodedSnapshot. It is a pure
// function of its input and has no side effects.
//
// The snapshot timestamp is taken from the FeedMessage header; when the
// header carries none, the archive capture timestamp is used instead.
// Every stop time update must reference a non-empty trip_id and stop_id and
// carry a stop_sequence (logbook records are keyed by it); a snapshot
// violating this is rejected whole.
func Decode(raw RawSnapshot) (*DecodedSnapshot, error) {
	fm := &gtfsrtpb.FeedMessage{}
	if err := proto.Unmarshal(raw.Payload, fm); err != nil {
		return nil, fmt.Errorf("unmarshal feed message: %w", err)
	}

	ts := raw.CapturedAt
	if fm.Header != nil && fm.Header.Timestamp != nil && *fm.Header.Timestamp > 0 {
		ts = int64(*fm.Header.Timestamp)
	}
	if ts <= 0 {
		return nil, fmt.Errorf("no usable timestamp in header or capture metadata")
	}

	snap := &DecodedSnapshot{Timestamp: ts}
	for i, e := range fm.Entity {
		tu := e.TripUpdate
		if tu == nil {
			continue // vehicle positions and alerts carry no stop times
		}
		if tu.Trip == nil || tu.Trip.TripId == nil || *tu.Trip.TripId == "" {
			return nil, fmt.Errorf("entity %d: trip update without trip_id", i)
		}
		tripID := *tu.Trip.TripId

		for j, stu := range tu.StopTimeUpdate {
			if stu.StopId == nil || *stu.StopId == "" {
				return nil, fmt.Errorf("entity %d: trip %s stop_time_update %d without stop_id", i, tripID, j)
			}
			if stu.StopSequence == nil {
				return nil, fmt.Errorf("entity %d: trip %s stop %s without stop_sequence", i, tripID, *stu.StopId)
			}

			u := TripStopUpdate{
				TripID:       tripID,
				StopID:       *stu.StopId,
				StopSequence: int(*stu.StopSequence),
			}
			if stu.Arrival != nil && stu.Arrival.Time != nil {
				u.ArrivalEstimate = *stu.Arrival.Time
			}
			if stu.Departure != nil && stu.Departure.Time != nil {
				u.DepartureEstimate = *stu.Departure.Time
			}
			if stu.ScheduleRelationship != nil &&
				*stu.ScheduleRelationship == gtfsrtpb.TripUpdate_StopTimeUpdate_SKIPPED {
				u.Skipped = true
			}
			// An event time at or before the snapshot timestamp has already
			// happened; the estimate is an actual. A skipped stop never
			// observes: the feed declared it unserved, so any event time it
			// still carries is leftover schedule data.
			if est := u.Estimate(); !u.Skipped && est != 0 && est <= ts {
				u.Observed = true
			}
			snap.Updates = append(snap.Updates, u)
		}
	}
	return snap, nil
}
