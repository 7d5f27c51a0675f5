package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/oshokin/httpreq/internal/config"
	"github.com/oshokin/httpreq/internal/logger"
	"github.com/oshokin/httpreq/internal/utils"
)

// LogTransport is an http.RoundTripper that dumps requests and responses at debug level.
// Bodies are dumped only when they are textual, of known size and not marked binary,
// so streamed uploads are never buffered for logging.
type LogTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// maxLogLength is the maximum length of logged request/response data.
	maxLogLength uint64
}

// binaryTransferKey marks a request context whose bodies must not be dumped.
type binaryTransferKey struct{}

// Static error definitions for better error handling.
var (
	// ErrNilRequest indicates that the HTTP request is nil.
	ErrNilRequest = errors.New("request is nil")
)

// NewLogTransport creates and returns a new instance of LogTransport.
// If maxLogLength is 0, it defaults to config.DefaultMaxLogLength.
func NewLogTransport(next http.RoundTripper, maxLogLength uint64) http.RoundTripper {
	if maxLogLength == 0 {
		maxLogLength = config.DefaultMaxLogLength
	}

	return &LogTransport{
		next:         next,
		maxLogLength: maxLogLength,
	}
}

// WithBinaryTransfer marks the context so that LogTransport skips body dumps.
func WithBinaryTransfer(ctx context.Context) context.Context {
	return context.WithValue(ctx, binaryTransferKey{}, true)
}

func isBinaryTransfer(ctx context.Context) bool {
	binary, _ := ctx.Value(binaryTransferKey{}).(bool)

	return binary
}

// RoundTrip executes a single HTTP transaction and logs the request and response.
// It implements the http.RoundTripper interface.
func (t *LogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	// Skip logging if the logger is not at debug level.
	if !logger.IsDebugLevel() {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()

	requestDump := t.dumpRequest(req)

	startTime := time.Now()

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(startTime)

	if err != nil {
		logger.Debugf(ctx, "Request failed: %s %s | Error: %v", req.Method, req.URL.String(), err)

		return nil, err
	}

	responseDump := t.dumpResponse(ctx, resp)

	logger.Debugf(ctx, "%s %s [%d] %s\nRequest: %s\nResponse: %s",
		req.Method, req.URL.Redacted(), resp.StatusCode, duration, requestDump, responseDump)

	return resp, nil
}

func (t *LogTransport) dumpRequest(req *http.Request) string {
	withBody := req.GetBody != nil &&
		req.ContentLength >= 0 &&
		uint64(req.ContentLength) <= t.maxLogLength &&
		t.isTextBody(req.Context(), req.Header.Get("Content-Type"))

	dump, err := httputil.DumpRequestOut(req, withBody)
	if err != nil {
		return err.Error()
	}

	return t.truncate(dump)
}

func (t *LogTransport) dumpResponse(ctx context.Context, resp *http.Response) string {
	withBody := resp.ContentLength >= 0 &&
		uint64(resp.ContentLength) <= t.maxLogLength &&
		t.isTextBody(ctx, resp.Header.Get("Content-Type"))

	dump, err := httputil.DumpResponse(resp, withBody)
	if err != nil {
		return err.Error()
	}

	return t.truncate(dump)
}

func (t *LogTransport) isTextBody(ctx context.Context, contentType string) bool {
	return !isBinaryTransfer(ctx) && utils.IsTextContentType(contentType)
}

func (t *LogTransport) truncate(data []byte) string {
	if uint64(len(data)) > t.maxLogLength {
		return string(data[:t.maxLogLength]) + "... [truncated]"
	}

	return string(data)
}
