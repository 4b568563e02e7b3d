package export

import (
	"github.com/theoremus-urban-solutions/gtfsrt-logbook/logbook"
)

// NameLookup resolves stop ids to human-readable names. gtfs.StopNames
// satisfies it; absent entries flatten to an empty name.
type NameLookup interface {
	Lookup(stopID string) (string, bool)
}

// Row is one flattened stop visit.
type Row struct {
	TripID            string
	StopID            string
	StopName          string
	StopSequence      int
	FirstSeenEstimate int64
	LastSeenEstimate  int64
	FinalizedTime     int64 // zero when the record never finalized
	Status            logbook.Status
}

// Flatten converts a logbook to rows, trips in lexical order and stops in
// sequence order, so output is deterministic across runs.
func Flatten(lb logbook.Logbook, names NameLookup) []Row {
	rows := make([]Row, 0, lb.RecordCount())
	for _, tripID := range lb.Trips() {
		for _, rec := range lb[tripID] {
			row := Row{
				TripID:            rec.TripID,
				StopID:            rec.StopID,
				StopSequence:      rec.StopSequence,
				FirstSeenEstimate: rec.FirstSeenEstimate,
				LastSeenEstimate:  rec.LastSeenEstimate,
				FinalizedTime:     rec.FinalizedTime,
				Status:            rec.Status,
			}
			if names != nil {
				if name, ok := names.Lookup(rec.StopID); ok {
					row.StopName = name
				}
			}
			rows = append(rows, row)
		}
	}
	return rows
}
