// Package internal holds plumbing shared by the gtfsrt-logbook binaries.
package internal

import (
	"log"
	"os"
)

// InitLogging routes the standard logger to stdout with microsecond
// timestamps. Reconstruction runs are batch jobs whose stdout is usually
// captured, so timestamps double as coarse per-stage timing.
func InitLogging() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}
