package gtfs

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// StopNames is the stop_id -> stop_name lookup table.
type StopNames map[string]string

// Lookup returns the human-readable name for a stop id, and whether the
// stop is known at all.
func (s StopNames) Lookup(stopID string) (string, bool) {
	name, ok := s[stopID]
	return name, ok
}

// NewStopNamesFromCSV reads a stops.txt CSV.
func NewStopNamesFromCSV(r io.Reader) (StopNames, error) {
	rec, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read stops csv: %w", err)
	}
	if len(rec) == 0 {
		return StopNames{}, nil
	}
	head := rec[0]
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	sID := idx("stop_id")
	sN := idx("stop_name")
	if sID < 0 || sN < 0 {
		return nil, fmt.Errorf("stops csv missing stop_id or stop_name column")
	}
	names := make(StopNames, len(rec)-1)
	for _, row := range rec[1:] {
		if len(row) <= sID || len(row) <= sN {
			continue
		}
		names[row[sID]] = row[sN]
	}
	return names, nil
}

// NewStopNamesFromFile reads a stops.txt on disk.
func NewStopNamesFromFile(path string) (StopNames, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stops file: %w", err)
	}
	defer f.Close()
	return NewStopNamesFromCSV(f)
}

// NewStopNamesFromZip reads stops.txt out of a local GTFS zip.
func NewStopNamesFromZip(path string) (StopNames, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open gtfs zip: %w", err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if strings.ToLower(f.Name) != "stops.txt" {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open stops.txt in zip: %w", err)
		}
		defer r.Close()
		return NewStopNamesFromCSV(r)
	}
	return nil, fmt.Errorf("gtfs zip has no stops.txt")
}
