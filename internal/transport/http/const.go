package http

import (
	"time"

	"github.com/oshokin/httpreq/internal/version"
)

const (
	// DefaultConnectTimeout bounds connection setup when no connect timeout is configured.
	DefaultConnectTimeout = 30 * time.Second

	// DefaultCertificateCacheSize is the number of parsed client key pairs kept in memory.
	DefaultCertificateCacheSize = 16

	// readChunkSize is the buffer size used to pull request and response bodies.
	readChunkSize = 32 * 1024

	userAgentHeader     = "User-Agent"
	requestIDHeader     = "X-Request-Id"
	contentLengthHeader = "Content-Length"
	hostHeader          = "Host"
)

// DefaultUserAgent returns the User-Agent sent when none is configured.
func DefaultUserAgent() string {
	return "httpreq/" + version.Version
}
