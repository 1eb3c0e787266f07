// Package repositories implements the track data sources and their SQLite cache.
//
// Key Implementations:
//   - [RemoteTrackRepository] : content backend over HTTP, listing a fixed status
//   - [TrackStore] : tracks, details and waveform amplitudes keyed by content id
//   - [CachedTrackRepository] : write-through cache with offline fallback
//
// All store tables support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
// Upserts clear deleted_at, so a track that reappears upstream is revived rather than duplicated.
package repositories
