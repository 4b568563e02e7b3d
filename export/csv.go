package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

var csvHeader = []string{
	"trip_id", "stop_id", "stop_name", "stop_sequence",
	"first_seen_estimate", "last_seen_estimate", "finalized_time", "status",
}

// WriteCSV writes rows as CSV with a header line. Epoch columns are plain
// seconds; an unfinalized record leaves finalized_time empty.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		finalized := ""
		if row.FinalizedTime != 0 {
			finalized = strconv.FormatInt(row.FinalizedTime, 10)
		}
		rec := []string{
			row.TripID,
			row.StopID,
			row.StopName,
			strconv.Itoa(row.StopSequence),
			strconv.FormatInt(row.FirstSeenEstimate, 10),
			strconv.FormatInt(row.LastSeenEstimate, 10),
			finalized,
			string(row.Status),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes rows to a file, creating or truncating it.
func WriteCSVFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	if err := WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
