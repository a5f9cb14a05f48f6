package server

import "net/http"

// AuthInfo is passed to an AuthenticateFunc during the WebSocket
// upgrade handshake (spec §4.6): the underlying request, its parsed
// query parameters, and the Origin header.
type AuthInfo struct {
	Request *http.Request
	Query   map[string][]string
	Origin  string
}

// AuthenticateFunc gates connection admission. Returning (false, nil)
// rejects the upgrade with 401; returning a non-nil error is treated as
// an internal error and rejects with 500 (spec §7).
type AuthenticateFunc func(info AuthInfo) (bool, error)
