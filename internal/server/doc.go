// Package server exposes the streaming delivery endpoint and the
// host-facing browse/play HTTP API.
//
// The delivery endpoint is gated by the process-wide capability token:
// requests with a stale or missing token are rejected before any catalog
// work happens. Single-URL resolutions redirect; containers render an
// application/x-mpegurl manifest enumerating each member's delivery URL.
package server
