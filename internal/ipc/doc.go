// Package ipc is the presentation boundary: a local JSON-over-HTTP API the
// UI talks to.
//
// Domain failures never surface as transport errors. They are answered
// with status 200 and a {"error": "..."} body so the caller can render the
// failure as state; only malformed requests get a 400.
package ipc
