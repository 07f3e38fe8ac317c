// Package repositories implements persistence for the two song collections.
//
// Each collection is a table of `(id, data)` rows where data holds the JSON encoded
// record without its id. Queries are fixed templates selected by collection and
// rebound for the database dialect, so no SQL is assembled from request input.
//
// Key Implementations:
//   - [Store] : owns the connection pool and hands out request-scoped connections
//   - [SongRepository] : key-based CRUD for one collection over any [Querier]
//
// A [SongRepository] accepts a *sql.DB, *sql.Conn or *sql.Tx, so handlers can run a
// sequence of statements on the single connection acquired through [Store.WithConn].
package repositories
