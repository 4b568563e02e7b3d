package pipeline

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/theoremus-urban-solutions/gtfsrt-logbook/gtfsrt"
	"github.com/theoremus-urban-solutions/gtfsrt-logbook/logbook"
	"github.com/theoremus-urban-solutions/gtfsrt-logbook/metrics"
)

// Options controls reconstruction.
type Options struct {
	// Chunks is the number of contiguous segments each feed's snapshot
	// sequence is split into for parallel, bounded-memory folding.
	// Values below 1 fall back to DefaultChunks.
	Chunks int
}

// DefaultChunks matches the archival workflow of splitting a day of
// snapshots into four six-hour segments.
const DefaultChunks = 4

// Result is the outcome of reconstructing one feed.
type Result struct {
	FeedID      string
	Logbook     logbook.Logbook
	Timestamps  []int64
	ParseErrors []gtfsrt.ParseError
	RecordsCut  int

	// Err is set on per-feed contract violations (chunk ordering) or
	// context cancellation; other feeds are unaffected.
	Err error
}

// SplitChunks partitions snapshots into n contiguous segments. Segment
// boundaries step by len/n and the last segment absorbs the remainder, so
// chunks abut exactly and preserve input order.
func SplitChunks(snaps []gtfsrt.RawSnapshot, n int) [][]gtfsrt.RawSnapshot {
	if n < 1 {
		n = DefaultChunks
	}
	if n > len(snaps) {
		n = len(snaps)
	}
	if n <= 1 {
		return [][]gtfsrt.RawSnapshot{snaps}
	}
	step := len(snaps) / n
	chunks := make([][]gtfsrt.RawSnapshot, 0, n)
	for i := 0; i < n; i++ {
		start := i * step
		end := start + step
		if i == n-1 {
			end = len(snaps)
		}
		chunks = append(chunks, snaps[start:end])
	}
	return chunks
}

// RunFeed reconstructs one feed's logbook. Snapshots must already be in
// chronological order; RunFeed splits them into chunks, folds each chunk in
// its own goroutine, merges the chunk results, and cuts cancellations.
// ParseError indexes refer to positions in the full input sequence.
func RunFeed(ctx context.Context, feedID string, snaps []gtfsrt.RawSnapshot, opts Options, m *metrics.Collector) *Result {
	res := &Result{FeedID: feedID}

	chunks := SplitChunks(snaps, opts.Chunks)
	results := make([]logbook.ChunkResult, len(chunks))
	chunkErrs := make([][]gtfsrt.ParseError, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []gtfsrt.RawSnapshot) {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			start := time.Now()
			lb, ts, errs := logbook.Build(chunk)
			results[i] = logbook.ChunkResult{Logbook: lb, Timestamps: ts}
			chunkErrs[i] = errs
			if m != nil {
				m.ChunkBuildDuration.Observe(time.Since(start).Seconds())
			}
		}(i, chunk)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	// Rebase per-chunk parse error indexes onto the full input sequence.
	offset := 0
	for i, chunk := range chunks {
		for _, pe := range chunkErrs[i] {
			pe.SnapshotIndex += offset
			res.ParseErrors = append(res.ParseErrors, pe)
		}
		offset += len(chunk)
	}

	mergeStart := time.Now()
	merged, timestamps, err := logbook.Merge(results)
	if err != nil {
		res.Err = err
		return res
	}
	if m != nil {
		m.MergeDuration.Observe(time.Since(mergeStart).Seconds())
	}

	cut := logbook.CutCancellations(merged)
	res.Logbook = cut
	res.Timestamps = timestamps
	res.RecordsCut = merged.RecordCount() - cut.RecordCount()

	if m != nil {
		m.SnapshotsDecoded.WithLabelValues(feedID).Add(float64(len(timestamps)))
		m.ParseErrors.WithLabelValues(feedID).Add(float64(len(res.ParseErrors)))
		m.TripsReconstructed.WithLabelValues(feedID).Add(float64(len(cut)))
		m.RecordsCut.WithLabelValues(feedID).Add(float64(res.RecordsCut))
	}
	return res
}

// Run reconstructs every feed concurrently and returns results ordered by
// feed identifier. A failure in one feed never affects another.
func Run(ctx context.Context, feeds map[string][]gtfsrt.RawSnapshot, opts Options, m *metrics.Collector) []*Result {
	feedIDs := make([]string, 0, len(feeds))
	for id := range feeds {
		feedIDs = append(feedIDs, id)
	}
	sort.Strings(feedIDs)

	results := make([]*Result, len(feedIDs))
	var wg sync.WaitGroup
	for i, id := range feedIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			r := RunFeed(ctx, id, feeds[id], opts, m)
			if r.Err != nil {
				log.Printf("feed %s: reconstruction failed: %v", id, r.Err)
			}
			results[i] = r
		}(i, id)
	}
	wg.Wait()
	return results
}
