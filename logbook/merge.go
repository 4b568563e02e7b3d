package logbook

import (
	"errors"
	"fmt"
)

// ErrOutOfOrder reports chunks handed to Merge out of chronological order,
// or with overlapping timestamp ranges. This is a caller-contract violation
// and cannot be recovered without re-sorting upstream.
var ErrOutOfOrder = errors.New("chunks out of chronological order")

// Merge combines independently built chunk results, each covering a
// disjoint, abutting time window, into one logbook spanning the full range.
//
// Chunks must be supplied in chronological order of their covering window;
// Merge verifies this through each chunk's timestamps before combining and
// fails with ErrOutOfOrder otherwise. For a trip spanning a chunk boundary,
// records are unioned by (trip_id, stop_sequence); finalization is
// monotonic and never regresses. When two chunks finalized the same record
// with conflicting times the earlier chronological finalization is
// authoritative, and the conflict is logged as a warning, never an error.
//
// Merge is associative and order-preserving: merging [A,B,C] equals merging
// (A,B) then C. The returned timestamps are the ordered concatenation of
// the inputs. Input chunks are not mutated.
func Merge(chunks []ChunkResult) (Logbook, []int64, error) {
	if err := checkChronology(chunks); err != nil {
		return nil, nil, err
	}

	acc := recordIndex{}
	var timestamps []int64
	warns := NewWarningAggregator()

	for _, chunk := range chunks {
		timestamps = append(timestamps, chunk.Timestamps...)
		for tripID, recs := range chunk.Logbook {
			for _, rec := range recs {
				prev := acc.lookup(tripID, rec.StopSequence)
				if prev == nil {
					cp := *rec
					acc.put(&cp)
					continue
				}
				combineRecord(prev, rec, warns)
			}
		}
	}

	warns.LogAll("merge")
	return acc.materialize(), timestamps, nil
}

// checkChronology asserts that every chunk's timestamps are internally
// nondecreasing and that consecutive chunks cover disjoint, increasing
// windows. Empty chunks are permitted anywhere.
func checkChronology(chunks []ChunkResult) error {
	var last int64
	seen := false
	for i, chunk := range chunks {
		for j, ts := range chunk.Timestamps {
			if seen {
				if j == 0 && ts <= last {
					return fmt.Errorf("%w: chunk %d begins at %d, at or before the previous chunk's end %d",
						ErrOutOfOrder, i, ts, last)
				}
				if j > 0 && ts < last {
					return fmt.Errorf("%w: chunk %d timestamps are unsorted at %d", ErrOutOfOrder, i, ts)
				}
			}
			last = ts
			seen = true
		}
	}
	return nil
}

// combineRecord folds a record from a later chunk into the accumulated one.
// prev is from strictly earlier snapshots than next.
func combineRecord(prev *TripRecord, next *TripRecord, warns *WarningAggregator) {
	switch {
	case prev.Finalized() && next.Finalized():
		if prev.FinalizedTime != next.FinalizedTime {
			// The earlier observation is closer to ground truth; keep it.
			warns.Add(WarningConflictingFinalization, recordKey(prev.TripID, prev.StopSequence))
		}
	case prev.Finalized():
		// Already immutable; the later chunk re-sighted a passed stop.
	case next.Finalized():
		prev.FinalizedTime = next.FinalizedTime
		prev.LastSeenEstimate = next.LastSeenEstimate
		prev.Status = next.Status
		if prev.FirstSeenEstimate == 0 {
			prev.FirstSeenEstimate = next.FirstSeenEstimate
		}
	default:
		// Both still predictions: the later chunk's revision wins, the
		// earliest sighting is preserved.
		if next.LastSeenEstimate != 0 {
			prev.LastSeenEstimate = next.LastSeenEstimate
		}
		prev.Status = next.Status
		if prev.FirstSeenEstimate == 0 {
			prev.FirstSeenEstimate = next.FirstSeenEstimate
		}
	}
}
