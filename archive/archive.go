package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/gtfsrt-logbook/gtfsrt"
)

const snapshotSuffix = ".gtfs"

// SnapshotName is the metadata carried by an archived snapshot filename.
type SnapshotName struct {
	Name       string
	FeedID     string
	CapturedAt int64 // epoch seconds, UTC
}

// ParseSnapshotName derives feed identifier and capture timestamp from a
// filename of the form gtfs_{feed}_{YYYYMMDD}_{HHMMSS}.gtfs. It returns
// false for names that do not follow the convention; callers skip those.
func ParseSnapshotName(name string) (SnapshotName, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, snapshotSuffix) {
		return SnapshotName{}, false
	}
	parts := strings.Split(strings.TrimSuffix(base, snapshotSuffix), "_")
	if len(parts) != 4 || parts[0] != "gtfs" || parts[1] == "" {
		return SnapshotName{}, false
	}
	t, err := time.ParseInLocation("20060102_150405", parts[2]+"_"+parts[3], time.UTC)
	if err != nil {
		return SnapshotName{}, false
	}
	return SnapshotName{Name: base, FeedID: parts[1], CapturedAt: t.Unix()}, true
}

// ReadDir reads every snapshot file in dir and returns the payloads grouped
// by feed identifier, each group sorted chronologically. Files whose names
// do not follow the snapshot convention are ignored.
func ReadDir(dir string) (map[string][]gtfsrt.RawSnapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list snapshot directory: %w", err)
	}

	var names []SnapshotName
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if sn, ok := ParseSnapshotName(e.Name()); ok {
			names = append(names, sn)
		}
	}
	sortNames(names)

	feeds := map[string][]gtfsrt.RawSnapshot{}
	for _, sn := range names {
		payload, err := os.ReadFile(filepath.Join(dir, sn.Name))
		if err != nil {
			return nil, fmt.Errorf("read snapshot %s: %w", sn.Name, err)
		}
		feeds[sn.FeedID] = append(feeds[sn.FeedID], gtfsrt.RawSnapshot{
			Payload:    payload,
			CapturedAt: sn.CapturedAt,
		})
	}
	return feeds, nil
}

// ReadZip reads every snapshot entry in a zip archive, grouped and sorted
// the same way as ReadDir.
func ReadZip(path string) (map[string][]gtfsrt.RawSnapshot, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot archive: %w", err)
	}
	defer zr.Close()

	type entry struct {
		SnapshotName
		file *zip.File
	}
	var entries []entry
	for _, f := range zr.File {
		if sn, ok := ParseSnapshotName(f.Name); ok {
			entries = append(entries, entry{SnapshotName: sn, file: f})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CapturedAt != entries[j].CapturedAt {
			return entries[i].CapturedAt < entries[j].CapturedAt
		}
		return entries[i].Name < entries[j].Name
	})

	feeds := map[string][]gtfsrt.RawSnapshot{}
	for _, e := range entries {
		rc, err := e.file.Open()
		if err != nil {
			return nil, fmt.Errorf("open snapshot %s: %w", e.Name, err)
		}
		payload, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read snapshot %s: %w", e.Name, err)
		}
		feeds[e.FeedID] = append(feeds[e.FeedID], gtfsrt.RawSnapshot{
			Payload:    payload,
			CapturedAt: e.CapturedAt,
		})
	}
	return feeds, nil
}

func sortNames(names []SnapshotName) {
	sort.Slice(names, func(i, j int) bool {
		if names[i].CapturedAt != names[j].CapturedAt {
			return names[i].CapturedAt < names[j].CapturedAt
		}
		return names[i].Name < names[j].Name
	})
}
