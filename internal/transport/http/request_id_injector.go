package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/oshokin/httpreq/internal/logger"
)

// RequestIDInjector is an http.RoundTripper that tags every request with an X-Request-Id header.
// The identifier is also attached to the request context so that log lines can be correlated.
type RequestIDInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
}

// NewRequestIDInjector creates and returns a new instance of RequestIDInjector.
func NewRequestIDInjector(next http.RoundTripper) http.RoundTripper {
	return &RequestIDInjector{next: next}
}

// RoundTrip sets a fresh request ID unless the caller supplied one.
// It implements the http.RoundTripper interface.
func (t *RequestIDInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	requestID := req.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()

		// RoundTrippers must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set(requestIDHeader, requestID)
	}

	ctx := logger.WithKV(req.Context(), "request_id", requestID)

	return t.next.RoundTrip(req.WithContext(ctx))
}
