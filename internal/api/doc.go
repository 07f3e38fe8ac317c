// Package api implements the HTTP handlers of the song catalogue.
//
// # Routes
//
//	POST /login          issue a bearer token for the operator credential
//	GET  /health         database reachability
//	GET  /songs, /todo   list a collection
//	POST /{c}/new        create a song in a collection (auth)
//	POST /songs/update   partial update, looking in songs then todo (auth)
//	POST /todo/update    partial update in todo only (auth)
//	POST /move           move ids between collections (auth)
//	POST /{c}/delete     delete ids from a collection (auth)
//
// Errors are written as `{"detail": "..."}`. Bulk operations never fail for
// missing ids; they answer `{"not_found": [...]}` and still apply the rest.
//
// Every handler that touches the database acquires one connection for the
// request through [repositories.Store.WithConn].
package api
