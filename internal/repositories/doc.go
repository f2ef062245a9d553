// Package repositories implements SQLite persistence for the video library.
//
// Key Implementations:
//   - [KVStore] : string key to string value store (the kv_store table)
//   - [VideoRepository] : the ordered video list, kept as one JSON array under [VideosKey]
//   - [BatchRepository] : import run history (the import_batches table)
//
// The video list is written as a single blob so the library can be read back in one call; there is no per-record row.
package repositories
