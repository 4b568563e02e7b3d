package export

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theoremus-urban-solutions/gtfsrt-logbook/logbook"
)

type nameMap map[string]string

func (m nameMap) Lookup(stopID string) (string, bool) {
	n, ok := m[stopID]
	return n, ok
}

func sampleLogbook() logbook.Logbook {
	return logbook.Logbook{
		"B": {
			{TripID: "B", StopID: "S2", StopSequence: 2, FirstSeenEstimate: 150,
				LastSeenEstimate: 160, Status: logbook.StatusScheduled},
		},
		"A": {
			{TripID: "A", StopID: "S1", StopSequence: 1, FirstSeenEstimate: 100,
				LastSeenEstimate: 105, FinalizedTime: 105, Status: logbook.StatusArrived},
			{TripID: "A", StopID: "S9", StopSequence: 2, FirstSeenEstimate: 200,
				LastSeenEstimate: 210, Status: logbook.StatusScheduled},
		},
	}
}

func TestFlatten_DeterministicOrderAndNames(t *testing.T) {
	rows := Flatten(sampleLogbook(), nameMap{"S1": "First Av", "S2": "Second Av"})
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].TripID != "A" || rows[0].StopSequence != 1 {
		t.Errorf("rows not ordered by trip then sequence: %+v", rows[0])
	}
	if rows[0].StopName != "First Av" {
		t.Errorf("StopName = %q, want joined name", rows[0].StopName)
	}
	// Unknown stop ids pass through with an empty name.
	if rows[1].StopID != "S9" || rows[1].StopName != "" {
		t.Errorf("row for unknown stop = %+v", rows[1])
	}
}

func TestFlatten_NilLookup(t *testing.T) {
	rows := Flatten(sampleLogbook(), nil)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := Flatten(sampleLogbook(), nameMap{"S1": "First Av"})
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 rows", len(lines))
	}
	if lines[0] != strings.Join(csvHeader, ",") {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "A,S1,First Av,1,100,105,105,arrived" {
		t.Errorf("row 1 = %q", lines[1])
	}
	// Unfinalized records leave finalized_time empty.
	if !strings.Contains(lines[2], ",210,,scheduled") {
		t.Errorf("row 2 = %q, want empty finalized_time", lines[2])
	}
}

func TestSQLite_WriteLogbookRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "logbooks.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer db.Close()

	rows := Flatten(sampleLogbook(), nil)
	runID, err := db.WriteLogbook(ctx, "7", rows)
	if err != nil {
		t.Fatalf("WriteLogbook failed: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run id")
	}

	var n int
	if err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM logbook_records WHERE run_id = ?", runID).Scan(&n); err != nil {
		t.Fatalf("count records: %v", err)
	}
	if n != len(rows) {
		t.Errorf("stored %d records, want %d", n, len(rows))
	}

	var finalized interface{}
	if err := db.conn.QueryRowContext(ctx,
		"SELECT finalized_time FROM logbook_records WHERE run_id = ? AND trip_id = 'B'", runID).
		Scan(&finalized); err != nil {
		t.Fatalf("read record: %v", err)
	}
	if finalized != nil {
		t.Errorf("unfinalized record stored with finalized_time = %v, want NULL", finalized)
	}

	// A second export of the same feed is a distinct run.
	runID2, err := db.WriteLogbook(ctx, "7", rows)
	if err != nil {
		t.Fatalf("second WriteLogbook failed: %v", err)
	}
	if runID2 == runID {
		t.Errorf("run ids should differ between exports")
	}
}
