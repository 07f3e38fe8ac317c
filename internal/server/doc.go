// Package server provides HTTP routing, middleware, and the serving lifecycle for the catalogue API.
//
// # Router Infrastructure
//
// [NewRouter] builds a chi router with the global middleware stack and mounts every
// [Handler] passed to it. Handlers own their route definitions through
// [Handler.Mount], which keeps route tables next to the handler implementation.
//
// The global stack, in order:
//   - request id (chi middleware.RequestID), echoed in the X-Request-ID header
//   - real client address (middleware.RealIP)
//   - request logging through charmbracelet/log ([RequestLogger])
//   - panic recovery (middleware.Recoverer)
//   - trailing slash removal (middleware.StripSlashes), so `/songs/` and `/songs` match
//   - CORS (go-chi/cors)
//
// # Lifecycle
//
// [Server] wraps [http.Server]. [Server.Run] serves until its context is cancelled and
// then shuts down gracefully within the configured timeout.
package server
