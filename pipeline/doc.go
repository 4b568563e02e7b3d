// Package pipeline orchestrates logbook reconstruction per feed: it
// partitions a feed's snapshots into contiguous chunks, folds the chunks in
// parallel, merges the results in chronological order, and applies the
// cancellation cut.
//
// Chunking exists for bounded memory: each chunk task owns its slice of the
// input and its own accumulator, so peak memory follows the chunk size, not
// the full time range, and no mutable state is shared between tasks. The
// merge step is the single synchronization point per feed; feeds themselves
// are mutually independent and run concurrently.
package pipeline
