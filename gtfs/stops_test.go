package gtfs_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theoremus-urban-solutions/gtfsrt-logbook/gtfs"
)

const stopsCSV = "stop_id,stop_name,stop_lat,stop_lon\n" +
	"701,Flushing-Main St,40.7596,-73.8303\n" +
	"702,Mets-Willets Point,40.7547,-73.8456\n"

func TestNewStopNamesFromCSV(t *testing.T) {
	names, err := gtfs.NewStopNamesFromCSV(strings.NewReader(stopsCSV))
	if err != nil {
		t.Fatalf("NewStopNamesFromCSV failed: %v", err)
	}
	if name, ok := names.Lookup("701"); !ok || name != "Flushing-Main St" {
		t.Errorf("Lookup(701) = %q, %v", name, ok)
	}
	if _, ok := names.Lookup("999"); ok {
		t.Errorf("unknown stop id should not resolve")
	}
}

func TestNewStopNamesFromCSV_MissingColumns(t *testing.T) {
	_, err := gtfs.NewStopNamesFromCSV(strings.NewReader("stop_code,zone\nA,1\n"))
	if err == nil {
		t.Fatal("expected error for csv without stop_id/stop_name")
	}
}

func TestNewStopNamesFromZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gtfs.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("stops.txt")
	if _, err := w.Write([]byte(stopsCSV)); err != nil {
		t.Fatalf("write stops.txt: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	names, err := gtfs.NewStopNamesFromZip(path)
	if err != nil {
		t.Fatalf("NewStopNamesFromZip failed: %v", err)
	}
	if name, _ := names.Lookup("702"); name != "Mets-Willets Point" {
		t.Errorf("Lookup(702) = %q", name)
	}
}
