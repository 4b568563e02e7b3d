package logbook_test

import (
	"reflect"
	"testing"

	"github.com/theoremus-urban-solutions/gtfsrt-logbook/logbook"
)

func scheduled(tripID, stopID string, seq int, est int64) *logbook.TripRecord {
	return &logbook.TripRecord{
		TripID: tripID, StopID: stopID, StopSequence: seq,
		FirstSeenEstimate: est, LastSeenEstimate: est,
		Status: logbook.StatusScheduled,
	}
}

func arrived(tripID, stopID string, seq int, at int64) *logbook.TripRecord {
	return &logbook.TripRecord{
		TripID: tripID, StopID: stopID, StopSequence: seq,
		FirstSeenEstimate: at, LastSeenEstimate: at,
		FinalizedTime: at, Status: logbook.StatusArrived,
	}
}

// A Scheduled record with a later finalized stop is evidence the trip
// skipped the stop; it is removed.
func TestCutCancellations_RemovesPassedScheduledStop(t *testing.T) {
	lb := logbook.Logbook{"T3": {
		arrived("T3", "S1", 1, 100),
		scheduled("T3", "S2", 2, 150),
		arrived("T3", "S3", 3, 200),
	}}

	cut := logbook.CutCancellations(lb)
	if len(cut["T3"]) != 2 {
		t.Fatalf("got %d records, want 2", len(cut["T3"]))
	}
	for _, rec := range cut["T3"] {
		if rec.StopSequence == 2 {
			t.Errorf("seq 2 should have been cut")
		}
	}
}

// A gap in stop_sequence is not the cutter's concern: it only removes
// records that were seen but never finalized, not stops never seen at all.
func TestCutCancellations_IgnoresNeverSeenStops(t *testing.T) {
	lb := logbook.Logbook{"T2": {
		arrived("T2", "S1", 1, 100),
		arrived("T2", "S3", 3, 200),
	}}

	cut := logbook.CutCancellations(lb)
	if !reflect.DeepEqual(cut, lb) {
		t.Errorf("logbook with a sequence gap should pass through unchanged")
	}
}

// A trailing Scheduled record is ambiguous (the trip may still be in
// progress at the data-collection cutoff) and is retained.
func TestCutCancellations_KeepsTrailingScheduled(t *testing.T) {
	lb := logbook.Logbook{"T1": {
		arrived("T1", "S1", 1, 100),
		scheduled("T1", "S2", 2, 150),
	}}

	cut := logbook.CutCancellations(lb)
	if len(cut["T1"]) != 2 {
		t.Fatalf("got %d records, want trailing scheduled record retained", len(cut["T1"]))
	}
}

func TestCutCancellations_DropsSkippedRecords(t *testing.T) {
	rec := scheduled("T1", "S2", 2, 150)
	rec.Status = logbook.StatusSkipped
	lb := logbook.Logbook{"T1": {
		arrived("T1", "S1", 1, 100),
		rec,
	}}

	cut := logbook.CutCancellations(lb)
	if len(cut["T1"]) != 1 || cut["T1"][0].StopSequence != 1 {
		t.Errorf("feed-declared skipped stop should be dropped, got %+v", cut["T1"])
	}
}

func TestCutCancellations_AllScheduledTripUntouched(t *testing.T) {
	lb := logbook.Logbook{"T1": {
		scheduled("T1", "S1", 1, 100),
		scheduled("T1", "S2", 2, 150),
	}}

	cut := logbook.CutCancellations(lb)
	if len(cut["T1"]) != 2 {
		t.Errorf("trip with no finalized stop must not be cut, got %+v", cut["T1"])
	}
}

func TestCutCancellations_DropsEmptiedTrips(t *testing.T) {
	rec := scheduled("T1", "S1", 1, 100)
	rec.Status = logbook.StatusSkipped
	lb := logbook.Logbook{"T1": {rec}}

	cut := logbook.CutCancellations(lb)
	if _, ok := cut["T1"]; ok {
		t.Errorf("trip with every record cut should disappear from the logbook")
	}
}

func TestCutCancellations_Idempotent(t *testing.T) {
	lb := logbook.Logbook{
		"T1": {
			arrived("T1", "S1", 1, 100),
			scheduled("T1", "S2", 2, 150),
			arrived("T1", "S3", 3, 200),
			scheduled("T1", "S4", 4, 250),
		},
		"T2": {
			scheduled("T2", "S1", 1, 100),
		},
	}

	once := logbook.CutCancellations(lb)
	twice := logbook.CutCancellations(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("cut_cancellations is not idempotent")
	}
}
