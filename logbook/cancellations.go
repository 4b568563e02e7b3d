package logbook

// cutDecision is the outcome of the cancellation policy for one record.
type cutDecision int

const (
	keepRecord cutDecision = iota
	dropRecord
)

// cancellationPolicy is the decision table behind CutCancellations, kept
// separate from the scan so the heuristic stays auditable on its own.
//
//	finalized                      -> keep (ground truth)
//	skipped                        -> drop (the feed declared it unserved)
//	scheduled, later stop observed -> drop (the trip passed it without serving it)
//	scheduled, no later evidence   -> keep (trip may still be in progress)
//
// The last row is deliberately conservative: a trip ending in Scheduled
// records with no later finalized stop cannot be told apart from a trip cut
// off by the data-collection window, so those records are retained.
func cancellationPolicy(rec *TripRecord, laterStopObserved bool) cutDecision {
	switch {
	case rec.Finalized():
		return keepRecord
	case rec.Status == StatusSkipped:
		return dropRecord
	case laterStopObserved:
		return dropRecord
	default:
		return keepRecord
	}
}

// CutCancellations strips stop records for stops a trip never actually
// reached: records still Scheduled even though a later-sequence stop of the
// same trip finalized. It only removes records that were seen but never
// finalized; stops that never appeared in any snapshot are not its concern.
//
// The input is not mutated. The operation is idempotent.
func CutCancellations(lb Logbook) Logbook {
	out := make(Logbook, len(lb))
	for tripID, recs := range lb {
		// Highest finalized stop_sequence for the trip, if any.
		lastObserved := -1
		for _, rec := range recs {
			if rec.Finalized() && rec.StopSequence > lastObserved {
				lastObserved = rec.StopSequence
			}
		}

		kept := make([]*TripRecord, 0, len(recs))
		for _, rec := range recs {
			if cancellationPolicy(rec, rec.StopSequence < lastObserved) == keepRecord {
				kept = append(kept, rec)
			}
		}
		if len(kept) > 0 {
			out[tripID] = kept
		}
	}
	return out
}
