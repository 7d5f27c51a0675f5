package http

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/httpreq/internal/config"
)

func newLogTransport(maxLogLength uint64) *LogTransport {
	transport, _ := NewLogTransport(http.DefaultTransport, maxLogLength).(*LogTransport)

	return transport
}

func TestNewLogTransport(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(config.DefaultMaxLogLength), newLogTransport(0).maxLogLength)
	assert.Equal(t, uint64(42), newLogTransport(42).maxLogLength)

	resp, err := newLogTransport(0).RoundTrip(nil) //nolint:bodyclose // Nil on error.
	require.ErrorIs(t, err, ErrNilRequest)
	assert.Nil(t, resp)
}

func TestLogTransport_DumpRequest(t *testing.T) {
	t.Parallel()

	newRequest := func(ctx context.Context, contentType string) *http.Request {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://example.com/upload",
			bytes.NewReader([]byte(`{"secret":"body"}`)))
		require.NoError(t, err)

		req.Header.Set("Content-Type", contentType)

		return req
	}

	transport := newLogTransport(1024)

	textDump := transport.dumpRequest(newRequest(context.Background(), "application/json"))
	assert.Contains(t, textDump, "POST /upload")
	assert.Contains(t, textDump, `{"secret":"body"}`)

	binaryDump := transport.dumpRequest(newRequest(context.Background(), "application/octet-stream"))
	assert.NotContains(t, binaryDump, `{"secret":"body"}`)

	markedDump := transport.dumpRequest(newRequest(WithBinaryTransfer(context.Background()), "application/json"))
	assert.NotContains(t, markedDump, `{"secret":"body"}`)

	// Streams of unknown size are never buffered for logging.
	streamed, err := http.NewRequestWithContext(context.Background(), http.MethodPost, "http://example.com/",
		strings.NewReader("stream"))
	require.NoError(t, err)

	streamed.GetBody = nil
	streamed.ContentLength = -1

	assert.NotContains(t, transport.dumpRequest(streamed), "stream")
}

func TestLogTransport_Truncate(t *testing.T) {
	t.Parallel()

	transport := newLogTransport(4)

	assert.Equal(t, "abcd... [truncated]", transport.truncate([]byte("abcdef")))
	assert.Equal(t, "abc", transport.truncate([]byte("abc")))
}
