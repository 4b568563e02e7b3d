package logbook

import (
	"github.com/theoremus-urban-solutions/gtfsrt-logbook/gtfsrt"
)

// Builder folds decoded snapshots into a logbook. It owns its accumulator
// exclusively; concurrent chunk tasks each use their own Builder, so no
// locking is needed anywhere in the fold.
//
// The caller must supply snapshots in chronological order. The builder does
// not re-sort.
type Builder struct {
	records    recordIndex
	timestamps []int64
	errs       []gtfsrt.ParseError
	warns      *WarningAggregator
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		records: recordIndex{},
		warns:   NewWarningAggregator(),
	}
}

// Build decodes and folds an ordered sequence of raw snapshots. It returns
// the reconstructed logbook, the timestamps of every successfully decoded
// snapshot in input order, and the parse errors encountered. Decode
// failures are accumulated, never propagated: a corrupted snapshot yields
// exactly one ParseError referencing its position and leaves every other
// record untouched.
func Build(snapshots []gtfsrt.RawSnapshot) (Logbook, []int64, []gtfsrt.ParseError) {
	b := NewBuilder()
	for i, raw := range snapshots {
		snap, err := gtfsrt.Decode(raw)
		if err != nil {
			b.errs = append(b.errs, gtfsrt.ParseError{SnapshotIndex: i, Reason: err.Error()})
			continue
		}
		b.Fold(snap)
	}
	return b.Finish()
}

// Fold applies one decoded snapshot to the accumulator. A snapshot that
// reports the same (trip_id, stop_sequence) pair more than once is
// malformed; the first occurrence wins and the rest are dropped with an
// aggregated warning.
func (b *Builder) Fold(snap *gtfsrt.DecodedSnapshot) {
	b.timestamps = append(b.timestamps, snap.Timestamp)
	seen := map[string]bool{}
	for _, u := range snap.Updates {
		key := recordKey(u.TripID, u.StopSequence)
		if seen[key] {
			b.warns.Add(WarningDuplicateSequence, key)
			continue
		}
		seen[key] = true
		b.apply(u)
	}
}

func (b *Builder) apply(u gtfsrt.TripStopUpdate) {
	est := u.Estimate()
	rec := b.records.lookup(u.TripID, u.StopSequence)
	if rec == nil {
		// First sighting: the trip/stop pair enters the prediction horizon.
		rec = &TripRecord{
			TripID:            u.TripID,
			StopID:            u.StopID,
			StopSequence:      u.StopSequence,
			FirstSeenEstimate: est,
			Status:            StatusScheduled,
		}
		b.records.put(rec)
	}
	if rec.Finalized() {
		return // an already-passed stop is immutable
	}
	switch {
	case u.Skipped:
		// The feed declared the stop unserved; this outranks any event
		// time the update may still carry.
		rec.Status = StatusSkipped
	case u.Observed:
		rec.FinalizedTime = est
		rec.LastSeenEstimate = est
		if u.DepartureEstimate != 0 {
			rec.Status = StatusDeparted
		} else {
			rec.Status = StatusArrived
		}
	default:
		if est == 0 {
			b.warns.Add(WarningNoEventTime, recordKey(u.TripID, u.StopSequence))
			return
		}
		rec.LastSeenEstimate = est
		rec.Status = StatusScheduled
	}
}

// Finish materializes the accumulator. Trips that vanished from the feed
// without ever finalizing are left StatusScheduled; CutCancellations
// resolves them later.
func (b *Builder) Finish() (Logbook, []int64, []gtfsrt.ParseError) {
	b.warns.LogAll("builder")
	return b.records.materialize(), b.timestamps, b.errs
}
