// Package tasks implements operational jobs over the song catalogue with progress reporting.
//
// # Core Operations
//
//  1. [Seeder.Seed] : fill both collections with random songs built from fixed
//     sample pools (1-3 singers, 1-6 tags, 1-4 links). The whole seed runs in one
//     transaction and can clear existing rows first.
//
//  2. [Seeder.Truncate] : delete every record of the chosen collections.
//
//  3. [BulkImport] : create many songs through a [SongCreator] (usually the API
//     client) with a worker pool and a rate limiter. Items that fail validation or
//     are rejected by the server are collected into the result instead of
//     stopping the import.
//
// # Progress Reporting
//
// All operations accept an optional progress channel. The [ProgressUpdate] struct
// contains phase, step counters and a message. Updates use select with default to
// prevent blocking.
package tasks
