// Package client is a small facade over the request builder.
// A Client carries a base URL and the configured defaults (timeouts,
// redirects, default headers, TLS client authentication, speed limits) and
// stamps them onto every request it creates, so callers never share
// process-wide state.
package client
