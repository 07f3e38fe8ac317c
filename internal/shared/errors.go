package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")

	// Store errors
	ErrSongNotFound       = fmt.Errorf("song not found")
	ErrUnsupportedDriver  = fmt.Errorf("unsupported database driver")
	ErrNoMigrations       = fmt.Errorf("no migrations to rollback")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrAPIRequest         = fmt.Errorf("API request failed")

	// Input validation errors
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrInvalidDirection = fmt.Errorf("invalid direction value")
	ErrMissingArgument  = fmt.Errorf("missing required argument")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
)
