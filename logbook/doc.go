// Package logbook reconstructs continuous per-trip stop histories from a
// chronologically ordered sequence of GTFS-RT snapshots.
//
// No single snapshot carries a trip's full history: each one is an
// independent report of the stops a trip is still predicted to make, plus
// event times that have already passed. The builder folds snapshots in
// order, creating a record the first time a (trip, stop_sequence) pair is
// sighted, revising its prediction on every later sighting, and finalizing
// it once the event is observed. Finalization is one-way: a finalized
// record is never rewritten by later snapshots.
//
// Large time ranges are processed in bounded memory by folding contiguous
// chunks independently and recombining them with Merge. Merge is
// associative, so chunks can be reduced sequentially or tree-shaped.
//
// CutCancellations post-processes a merged logbook, removing records for
// stops a trip demonstrably never served.
package logbook
