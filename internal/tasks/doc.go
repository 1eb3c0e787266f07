// Package tasks runs long catalog operations with real-time progress reporting.
//
// # Core Operations
//
// The [SyncEngine] interface defines two operations:
//
//  1. [SyncEngine.Sync] : Mirror the content catalog locally
//     - Fetches the track list (written through to the store by the cached repository)
//     - Fetches every content detail with a rate-limited worker pool
//     - Optionally computes and caches waveform amplitudes
//
//  2. [SyncEngine.BulkExport] : Export content details to files
//     - Writes Markdown, text or JSON per item with a worker pool
//     - Writes an export_manifest.json summarising successes and failures
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
