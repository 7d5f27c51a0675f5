// Package utils provides small helpers shared by the transport, request and command layers:
// User-Agent providers, text content type detection, file checks and safe integer conversion.
package utils
