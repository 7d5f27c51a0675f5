package http

import (
	"net/http"

	"github.com/oshokin/httpreq/internal/utils"
)

// UserAgentInjector is an http.RoundTripper that fills in a missing User-Agent header.
// Requests that already carry one, for example from a user supplied header line, keep it.
type UserAgentInjector struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// userAgentProvider provides the User-Agent string to inject.
	userAgentProvider utils.UserAgentProvider
}

// NewUserAgentInjector creates and returns a new instance of UserAgentInjector.
// A nil provider falls back to DefaultUserAgent.
func NewUserAgentInjector(next http.RoundTripper, userAgentProvider utils.UserAgentProvider) http.RoundTripper {
	if userAgentProvider == nil {
		userAgentProvider = utils.NewSimpleUserAgentProvider(DefaultUserAgent())
	}

	return &UserAgentInjector{
		next:              next,
		userAgentProvider: userAgentProvider,
	}
}

// RoundTrip injects the User-Agent header if it is missing and forwards the request.
// It implements the http.RoundTripper interface.
func (t *UserAgentInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	if _, ok := req.Header[userAgentHeader]; !ok {
		req = req.Clone(req.Context())
		req.Header.Set(userAgentHeader, t.userAgentProvider.GetUserAgent())
	}

	return t.next.RoundTrip(req)
}
