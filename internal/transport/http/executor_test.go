package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/httpreq/internal/transport"
	"github.com/oshokin/httpreq/internal/utils"
)

func newTestExecutor(t *testing.T) transport.Executor {
	t.Helper()

	executor, err := NewExecutor(ExecutorSettings{
		UserAgentProvider: utils.NewSimpleUserAgentProvider("executor-test/1.0"),
	})
	require.NoError(t, err)

	return executor
}

// echoHandler answers with the method, request body and selected request properties.
func echoHandler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	w.Header().Set("Content-Type", "text/plain")
	w.Header().Add("X-Multi", "one")
	w.Header().Add("X-Multi", "two")
	w.Header().Set("X-Method", r.Method)
	w.Header().Set("X-Host", r.Host)
	w.Header().Set("X-User-Agent", r.Header.Get("User-Agent"))
	w.Header().Set("X-Custom", r.Header.Get("X-Custom"))
	w.Header().Set("X-Transfer-Encoding", strings.Join(r.TransferEncoding, ","))
	w.Header().Set("X-Content-Length", strconv.FormatInt(r.ContentLength, 10))

	_, _ = w.Write(body)
}

// headerRecorder collects the lines passed to a HeaderFunc.
type headerRecorder struct {
	lines []string
}

func (h *headerRecorder) record(line []byte) int {
	h.lines = append(h.lines, string(line))

	return len(line)
}

func (h *headerRecorder) has(line string) bool {
	for _, l := range h.lines {
		if strings.EqualFold(l, line+"\r\n") {
			return true
		}
	}

	return false
}

func TestExecutor_Get(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(echoHandler))
	defer server.Close()

	recorder := &headerRecorder{}

	result := newTestExecutor(t).Execute(context.Background(), &transport.Transfer{
		URL:        server.URL + "/path?x=1",
		Headers:    []string{"X-Custom: value", "Host: example.test", "malformed"},
		HeaderFunc: recorder.record,
	})

	require.Equal(t, transport.CodeOK, result.Code, result.Message)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Empty(t, result.Body)

	require.NotEmpty(t, recorder.lines)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n", recorder.lines[0])
	assert.Equal(t, "\r\n", recorder.lines[len(recorder.lines)-1])
	assert.True(t, recorder.has("X-Method: GET"))
	assert.True(t, recorder.has("X-Custom: value"))
	assert.True(t, recorder.has("X-Host: example.test"))
	assert.True(t, recorder.has("X-User-Agent: executor-test/1.0"))
	assert.True(t, recorder.has("X-Multi: one"))
	assert.True(t, recorder.has("X-Multi: two"))
}

func TestExecutor_Methods(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(echoHandler))
	t.Cleanup(server.Close)

	tests := []struct {
		name              string
		transfer          transport.Transfer
		wantMethod        string
		wantBody          string
		wantContentLength string
		wantChunked       bool
	}{
		{
			name:              "post with fixed body",
			transfer:          transport.Transfer{Marker: transport.MarkerPost, Body: transport.FixedSource{Data: []byte("a=1")}},
			wantMethod:        "POST",
			wantBody:          "a=1",
			wantContentLength: "3",
		},
		{
			name: "custom verb with sized stream",
			transfer: transport.Transfer{
				Marker:       transport.MarkerCustom,
				CustomMethod: "PATCH",
				Upload:       true,
				Body:         transport.StreamSource{Reader: strings.NewReader("streamed"), Length: 8},
			},
			wantMethod:        "PATCH",
			wantBody:          "streamed",
			wantContentLength: "8",
		},
		{
			name: "custom verb with unsized pull source",
			transfer: transport.Transfer{
				Marker:       transport.MarkerCustom,
				CustomMethod: "POST",
				Upload:       true,
				Body: transport.PullSource{
					Read:   chunks("pulled ", "in ", "pieces"),
					Length: transport.UnknownSize,
				},
			},
			wantMethod:        "POST",
			wantBody:          "pulled in pieces",
			wantContentLength: "-1",
			wantChunked:       true,
		},
		{
			name: "upload without custom verb",
			transfer: transport.Transfer{
				Upload: true,
				Body:   transport.StreamSource{Reader: strings.NewReader("put"), Length: transport.UnknownSize},
			},
			wantMethod:        "PUT",
			wantBody:          "put",
			wantContentLength: "-1",
			wantChunked:       true,
		},
		{
			name: "explicit content length header",
			transfer: transport.Transfer{
				Marker:  transport.MarkerPost,
				Headers: []string{"Content-Length: 5"},
				Body:    transport.StreamSource{Reader: strings.NewReader("hello"), Length: transport.UnknownSize},
			},
			wantMethod:        "POST",
			wantBody:          "hello",
			wantContentLength: "5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			recorder := &headerRecorder{}

			transfer := tt.transfer
			transfer.URL = server.URL
			transfer.HeaderFunc = recorder.record

			result := newTestExecutor(t).Execute(context.Background(), &transfer)

			require.Equal(t, transport.CodeOK, result.Code, result.Message)
			assert.Equal(t, tt.wantBody, string(result.Body))
			assert.True(t, recorder.has("X-Method: "+tt.wantMethod))
			assert.True(t, recorder.has("X-Content-Length: "+tt.wantContentLength), recorder.lines)
			assert.Equal(t, tt.wantChunked, recorder.has("X-Transfer-Encoding: chunked"))
		})
	}
}

func TestExecutor_StatusHandling(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))
	defer server.Close()

	executor := newTestExecutor(t)

	fatal := executor.Execute(context.Background(), &transport.Transfer{URL: server.URL})
	assert.Equal(t, transport.CodeHTTPReturnedError, fatal.Code)
	assert.Equal(t, http.StatusNotFound, fatal.StatusCode)
	assert.Contains(t, fatal.Message, "404")

	nonFatal := executor.Execute(context.Background(), &transport.Transfer{
		URL:              server.URL,
		NonFatalStatuses: []int{http.StatusNotFound},
	})
	assert.Equal(t, transport.CodeOK, nonFatal.Code)
	assert.Equal(t, http.StatusNotFound, nonFatal.StatusCode)
	assert.Equal(t, "missing", string(nonFatal.Body))
}

func TestExecutor_Redirects(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/end", http.StatusFound)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("arrived"))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	executor := newTestExecutor(t)

	notFollowed := executor.Execute(context.Background(), &transport.Transfer{URL: server.URL + "/start"})
	assert.Equal(t, transport.CodeOK, notFollowed.Code)
	assert.Equal(t, http.StatusFound, notFollowed.StatusCode)

	followed := executor.Execute(context.Background(), &transport.Transfer{
		URL:     server.URL + "/start",
		Options: map[transport.Option]any{transport.OptFollowRedirects: true},
	})
	assert.Equal(t, transport.CodeOK, followed.Code)
	assert.Equal(t, "arrived", string(followed.Body))

	looped := executor.Execute(context.Background(), &transport.Transfer{
		URL: server.URL + "/loop",
		Options: map[transport.Option]any{
			transport.OptFollowRedirects: true,
			transport.OptMaxRedirects:    3,
		},
	})
	assert.Equal(t, transport.CodeTooManyRedirects, looped.Code)
}

func TestExecutor_TransportFailures(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	closedAddress := listener.Addr().String()
	require.NoError(t, listener.Close())

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}

		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(slow.Close)

	hangup := newHangupServer(t)

	tlsServer := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(tlsServer.Close)

	tests := []struct {
		name     string
		transfer transport.Transfer
		want     transport.ErrorCode
	}{
		{
			name:     "unsupported protocol",
			transfer: transport.Transfer{URL: "ftp://example.com/file"},
			want:     transport.CodeUnsupportedProtocol,
		},
		{
			name:     "malformed URL",
			transfer: transport.Transfer{URL: "http://%zz"},
			want:     transport.CodeURLMalformat,
		},
		{
			name:     "unresolvable host",
			transfer: transport.Transfer{URL: "http://host.that.does.not.exist.invalid/"},
			want:     transport.CodeCouldNotResolveHost,
		},
		{
			name:     "connection refused",
			transfer: transport.Transfer{URL: "http://" + closedAddress},
			want:     transport.CodeCouldNotConnect,
		},
		{
			name: "timeout",
			transfer: transport.Transfer{
				URL:     slow.URL,
				Options: map[transport.Option]any{transport.OptTimeout: 100 * time.Millisecond},
			},
			want: transport.CodeOperationTimedOut,
		},
		{
			name:     "empty reply",
			transfer: transport.Transfer{URL: "http://" + hangup},
			want:     transport.CodeGotNothing,
		},
		{
			name:     "untrusted certificate",
			transfer: transport.Transfer{URL: tlsServer.URL},
			want:     transport.CodePeerFailedVerify,
		},
		{
			name: "missing client certificate",
			transfer: transport.Transfer{
				URL:        tlsServer.URL,
				ClientAuth: transport.ClientAuth{Certificate: "/nonexistent/cert.pem"},
			},
			want: transport.CodeSSLCertProblem,
		},
		{
			name: "missing CA bundle",
			transfer: transport.Transfer{
				URL:     tlsServer.URL,
				Options: map[transport.Option]any{transport.OptCAFile: "/nonexistent/ca.pem"},
			},
			want: transport.CodeSSLCACertBadFile,
		},
		{
			name: "invalid proxy",
			transfer: transport.Transfer{
				URL:     slow.URL,
				Options: map[transport.Option]any{transport.OptProxyURL: "::not a url"},
			},
			want: transport.CodeCouldNotResolveProxy,
		},
		{
			name: "failing upload source",
			transfer: transport.Transfer{
				URL:    slow.URL,
				Marker: transport.MarkerPost,
				Upload: true,
				Body: transport.StreamSource{
					Reader: iotest.ErrReader(errors.New("disk gone")),
					Length: transport.UnknownSize,
				},
			},
			want: transport.CodeReadError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := newTestExecutor(t).Execute(context.Background(), &tt.transfer)

			assert.Equal(t, tt.want, result.Code, result.Message)
			assert.NotEmpty(t, result.Message)
			require.Error(t, result.Err)
			assert.Equal(t, result.Message, result.Err.Error())
		})
	}
}

func TestExecutor_InsecureSkipVerify(t *testing.T) {
	t.Parallel()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("secure"))
	}))
	defer server.Close()

	result := newTestExecutor(t).Execute(context.Background(), &transport.Transfer{
		URL:     server.URL,
		Options: map[transport.Option]any{transport.OptInsecureSkipVerify: true},
	})

	require.Equal(t, transport.CodeOK, result.Code, result.Message)
	assert.Equal(t, "secure", string(result.Body))
}

func TestExecutor_HeaderCallbackAbort(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(echoHandler))
	defer server.Close()

	result := newTestExecutor(t).Execute(context.Background(), &transport.Transfer{
		URL:        server.URL,
		HeaderFunc: func([]byte) int { return 0 },
	})

	assert.Equal(t, transport.CodeWriteError, result.Code)
}

func TestExecutor_ProgressAndLimits(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(echoHandler))
	defer server.Close()

	payload := bytes.Repeat([]byte("0123456789"), 100)

	var uploaded, downloaded bytes.Buffer

	result := newTestExecutor(t).Execute(context.Background(), &transport.Transfer{
		URL:    server.URL,
		Marker: transport.MarkerPost,
		Body:   transport.FixedSource{Data: payload},
		Options: map[transport.Option]any{
			transport.OptUploadProgress:     &uploaded,
			transport.OptDownloadProgress:   &downloaded,
			transport.OptUploadSpeedLimit:   int64(1 << 20),
			transport.OptDownloadSpeedLimit: int64(1 << 20),
			transport.OptBinaryTransfer:     true,
		},
	})

	require.Equal(t, transport.CodeOK, result.Code, result.Message)
	assert.Equal(t, payload, result.Body)
	assert.Equal(t, payload, uploaded.Bytes())
	assert.Equal(t, payload, downloaded.Bytes())
}

func TestExecutor_UserAgentOption(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(echoHandler))
	defer server.Close()

	recorder := &headerRecorder{}

	result := newTestExecutor(t).Execute(context.Background(), &transport.Transfer{
		URL:        server.URL,
		HeaderFunc: recorder.record,
		Options:    map[transport.Option]any{transport.OptUserAgent: "custom/2.0"},
	})

	require.Equal(t, transport.CodeOK, result.Code, result.Message)
	assert.True(t, recorder.has("X-User-Agent: custom/2.0"))
}

// newHangupServer accepts connections and closes them without answering.
func newHangupServer(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		for {
			conn, acceptErr := listener.Accept()
			if acceptErr != nil {
				return
			}

			buf := make([]byte, 1024)
			_, _ = conn.Read(buf)
			_ = conn.Close()
		}
	}()

	return listener.Addr().String()
}

func chunks(parts ...string) func(int) ([]byte, error) {
	return func(maxLength int) ([]byte, error) {
		if len(parts) == 0 {
			return nil, nil
		}

		part := parts[0]
		if len(part) > maxLength {
			parts[0] = part[maxLength:]

			return []byte(part[:maxLength]), nil
		}

		parts = parts[1:]

		return []byte(part), nil
	}
}
