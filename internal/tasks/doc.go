// Package tasks runs the batch import loop with real-time progress reporting.
//
// # Import Loop
//
// [ImportEngine.Run] imports a batch of files one at a time, in the order given:
//   - Expands directories into video files ([library.Discover])
//   - Copies and registers each file through [Importer]
//   - Records failures and keeps going with the next file
//   - Returns an [ImportResult] with the imported records and the failures
//
// # Progress Reporting
//
// Progress flows through a channel of [ProgressUpdate] values (phase, step counters, message, optional data).
// Updates use select with default so a slow reader never blocks the loop.
//
// # History
//
// When a [models.BatchStore] is provided each finished run is recorded; a failure to record is logged and does not fail the run.
package tasks
