// Package services implements the [Service] client for the songlist REST API.
//
// # API Client
//
// [APIService] wraps an [http.Client]. Raw [APIService.Get] and [APIService.Post] calls
// return an [APIResponse] for debugging, and the typed methods decode responses into
// package models types.
//
// Authenticated calls go through an oauth2 transport built from a static bearer
// token ([APIService.WithToken]); the server only checks the Authorization header.
//
// # Error Handling
//
// Non-2xx responses become an [*APIError] carrying the status and the server's
// `detail` message. It matches sentinel errors from the shared package:
//   - [shared.ErrAPIRequest] : every failed response
//   - [shared.ErrNotAuthenticated] : 401
//   - [shared.ErrSongNotFound] : 404
//   - [shared.ErrInvalidInput] : 400 and 422
package services
