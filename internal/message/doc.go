// Package message holds the pieces shared by outbound requests and inbound responses:
// a case-insensitive multi-value header bag, content type resolution and
// TLS client authentication settings.
package message
