// Package http executes transfers on top of net/http.
//
// The Executor translates a transport.Transfer into an *http.Request, runs it
// through a chain of round trippers (User-Agent and request ID injection,
// debug logging) and maps Go errors onto native transport error codes.
// Request and response bodies can be throttled and observed for progress reporting.
package http
