// Package status is a static registry of HTTP status codes.
// It maps a numeric code to its reason phrase and class
// (informational, success, redirection, client error, server error),
// marks the WebDAV extension codes, and decides which codes count as errors.
package status
