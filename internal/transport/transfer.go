package transport

import (
	"io"
	"net/http"
)

// UnknownSize marks a body whose length cannot be determined in advance.
const UnknownSize int64 = -1

// Marker selects how the engine derives the request method.
type Marker uint8

const (
	// MarkerGet is the default: GET, or PUT for uploads.
	MarkerGet Marker = iota
	// MarkerPost sends a POST.
	MarkerPost
	// MarkerCustom sends Transfer.CustomMethod verbatim.
	MarkerCustom
)

// ClientAuth holds TLS client certificate paths and their passwords.
type ClientAuth struct {
	// Certificate is the path to the client certificate (PEM or PKCS#12).
	Certificate string
	// CertificatePassword unlocks an encrypted certificate.
	CertificatePassword string
	// Key is the path to the private key. Empty when the certificate file holds the key.
	Key string
	// KeyPassword unlocks an encrypted private key.
	KeyPassword string
}

// IsZero reports whether no client certificate is configured.
func (a ClientAuth) IsZero() bool {
	return a.Certificate == "" && a.Key == ""
}

// Source is the closed set of request body sources: FixedSource, StreamSource and PullSource.
type Source interface {
	// Len returns the body length in bytes, or UnknownSize.
	Len() int64

	isSource()
}

// FixedSource is a body fully held in memory.
type FixedSource struct {
	// Data is the body.
	Data []byte
}

// StreamSource is a body read from a stream.
type StreamSource struct {
	// Reader produces the body.
	Reader io.Reader
	// Length is the number of bytes Reader produces, or UnknownSize.
	Length int64
}

// PullSource is a body pulled through a callback in bounded chunks.
// An empty chunk with a nil error ends the body.
type PullSource struct {
	// Read returns up to maxLength bytes.
	Read func(maxLength int) ([]byte, error)
	// Length is the total number of bytes, or UnknownSize.
	Length int64
}

// Len implements Source.
func (s FixedSource) Len() int64 { return int64(len(s.Data)) }

// Len implements Source.
func (s StreamSource) Len() int64 { return s.Length }

// Len implements Source.
func (s PullSource) Len() int64 { return s.Length }

func (FixedSource) isSource()  {}
func (StreamSource) isSource() {}
func (PullSource) isSource()   {}

// HeaderFunc receives one raw response header line, including its line break.
// It must return len(line); any other value aborts the transfer.
type HeaderFunc func(line []byte) int

// Transfer is one fully resolved exchange.
type Transfer struct {
	// URL is the absolute target URL, query string included.
	URL string
	// Marker selects the method derivation.
	Marker Marker
	// CustomMethod is the verb sent when Marker is MarkerCustom.
	CustomMethod string
	// Upload marks a body sent from a stream or pull source.
	Upload bool
	// Headers are raw "Name: value" lines.
	Headers []string
	// Body is the request body, nil for none.
	Body Source
	// HeaderFunc receives every response header line. Optional.
	HeaderFunc HeaderFunc
	// NonFatalStatuses lists error statuses that must not be reported as CodeHTTPReturnedError.
	NonFatalStatuses []int
	// ClientAuth configures TLS client authentication.
	ClientAuth ClientAuth
	// Options holds engine options.
	Options map[Option]any
}

// Method resolves the request method from the marker.
func (t *Transfer) Method() string {
	switch {
	case t.Marker == MarkerCustom && t.CustomMethod != "":
		return t.CustomMethod
	case t.Marker == MarkerPost:
		return http.MethodPost
	case t.Upload:
		return http.MethodPut
	default:
		return http.MethodGet
	}
}

// Result is the outcome of a transfer.
type Result struct {
	// StatusCode is the final HTTP status, zero if no response was received.
	StatusCode int
	// Body is the complete response body.
	Body []byte
	// Code is the native error code, CodeOK on success.
	Code ErrorCode
	// Message describes the error, empty on success.
	Message string
	// Err is the underlying error, nil on success.
	Err error
}

// Failed reports whether the transfer failed at the transport level.
func (r *Result) Failed() bool {
	return r.Code != CodeOK
}
