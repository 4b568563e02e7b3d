package logbook

import (
	"fmt"
	"log"
	"strings"
)

// Warning type constants
const (
	// WarningConflictingFinalization fires when two chunks finalized the
	// same record at different times; the earlier one is kept.
	WarningConflictingFinalization = "conflicting_finalization"

	// WarningNoEventTime fires on a prediction update carrying neither an
	// arrival nor a departure time.
	WarningNoEventTime = "no_event_time"

	// WarningDuplicateSequence fires when one snapshot reports the same
	// (trip_id, stop_sequence) pair more than once; only the first
	// occurrence is folded.
	WarningDuplicateSequence = "duplicate_sequence"
)

// warningInfo holds aggregated information about a specific warning type
type warningInfo struct {
	count    int
	examples []string
}

// WarningAggregator collects non-fatal anomalies during a fold or merge and
// outputs consolidated summaries instead of one log line per occurrence.
type WarningAggregator struct {
	warnings map[string]*warningInfo
}

// NewWarningAggregator creates a new warning aggregator
func NewWarningAggregator() *WarningAggregator {
	return &WarningAggregator{
		warnings: make(map[string]*warningInfo),
	}
}

// Add records a warning occurrence with an example record key
func (w *WarningAggregator) Add(warningType, exampleKey string) {
	if w.warnings[warningType] == nil {
		w.warnings[warningType] = &warningInfo{
			examples: make([]string, 0, 3),
		}
	}

	info := w.warnings[warningType]
	info.count++

	// Store up to 3 examples
	if len(info.examples) < 3 {
		info.examples = append(info.examples, exampleKey)
	}
}

// LogAll outputs all collected warnings in consolidated format
func (w *WarningAggregator) LogAll(stage string) {
	for warningType, info := range w.warnings {
		log.Printf("%s", w.formatWarningMessage(warningType, stage, info))
	}
}

func (w *WarningAggregator) formatWarningMessage(warningType, stage string, info *warningInfo) string {
	var description, action string

	switch warningType {
	case WarningConflictingFinalization:
		description = "records finalized at conflicting times across chunks"
		action = "Keeping the earlier finalization"
	case WarningNoEventTime:
		description = "stop time updates with neither arrival nor departure time"
		action = "Leaving last seen estimate unchanged"
	case WarningDuplicateSequence:
		description = "snapshots repeating a (trip, stop_sequence) pair"
		action = "Keeping the first occurrence"
	default:
		description = "unknown issue"
		action = "Continuing with fallback behavior"
	}

	examplesStr := strings.Join(info.examples, ", ")

	return fmt.Sprintf("Stage %s encountered %s (%d occurrences). %s. Examples: %s",
		stage, description, info.count, action, examplesStr)
}

// recordKey formats a (trip_id, stop_sequence) pair for warning examples.
func recordKey(tripID string, seq int) string {
	return fmt.Sprintf("%s/%d", tripID, seq)
}
