package logbook

import "sort"

// Status is the lifecycle state of a stop record.
type Status string

const (
	// StatusScheduled means the stop has only ever been seen as a prediction.
	StatusScheduled Status = "scheduled"
	// StatusArrived means the record finalized on an observed arrival.
	StatusArrived Status = "arrived"
	// StatusDeparted means the record finalized on an observed departure.
	StatusDeparted Status = "departed"
	// StatusSkipped means the feed declared the stop unserved
	// (schedule_relationship = SKIPPED) before it was ever finalized.
	StatusSkipped Status = "skipped"
)

// TripRecord is one stop visit in a trip's reconstructed history.
//
// FirstSeenEstimate is the event time from the snapshot that first sighted
// the (trip, stop_sequence) pair; LastSeenEstimate tracks the most recent
// prediction. FinalizedTime is zero until the event is observed and is
// immutable afterwards.
type TripRecord struct {
	TripID            string
	StopID            string
	StopSequence      int
	FirstSeenEstimate int64
	LastSeenEstimate  int64
	FinalizedTime     int64
	Status            Status
}

// Finalized reports whether the record's event has been observed.
func (r *TripRecord) Finalized() bool { return r.FinalizedTime != 0 }

// Logbook maps trip_id to that trip's stop records, ordered by
// stop_sequence. Within one trip, stop_sequence values are unique.
type Logbook map[string][]*TripRecord

// Trips returns all trip ids in lexical order.
func (lb Logbook) Trips() []string {
	ids := make([]string, 0, len(lb))
	for id := range lb {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RecordCount returns the total number of stop records across all trips.
func (lb Logbook) RecordCount() int {
	n := 0
	for _, recs := range lb {
		n += len(recs)
	}
	return n
}

// ChunkResult is the unit exchanged between the builder and the merger: the
// logbook folded from one contiguous slice of a feed's snapshots, plus the
// timestamps of the snapshots it consumed (used by Merge to verify that
// chunks abut in chronological order).
type ChunkResult struct {
	Logbook    Logbook
	Timestamps []int64
}

// records keyed by (trip_id, stop_sequence); the working representation
// shared by the builder fold and the merger.
type recordIndex map[string]map[int]*TripRecord

func (ri recordIndex) lookup(tripID string, seq int) *TripRecord {
	if m := ri[tripID]; m != nil {
		return m[seq]
	}
	return nil
}

func (ri recordIndex) put(rec *TripRecord) {
	m := ri[rec.TripID]
	if m == nil {
		m = map[int]*TripRecord{}
		ri[rec.TripID] = m
	}
	m[rec.StopSequence] = rec
}

// materialize flattens the index into a Logbook with each trip's records
// sorted by stop_sequence.
func (ri recordIndex) materialize() Logbook {
	lb := make(Logbook, len(ri))
	for tripID, bySeq := range ri {
		recs := make([]*TripRecord, 0, len(bySeq))
		for _, rec := range bySeq {
			recs = append(recs, rec)
		}
		sort.Slice(recs, func(i, j int) bool { return recs[i].StopSequence < recs[j].StopSequence })
		lb[tripID] = recs
	}
	return lb
}
