// Package auth guards the write endpoints with a single operator credential.
//
// A [Gate] checks the configured username and password, issues HS256 bearer
// tokens and verifies them in [Gate.Middleware]. Tokens carry the username as
// their subject and expire after the configured number of weeks.
package auth
