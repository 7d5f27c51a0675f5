package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/httpreq/internal/client"
	"github.com/oshokin/httpreq/internal/config"
	"github.com/oshokin/httpreq/internal/request"
	"github.com/oshokin/httpreq/internal/transport"
)

// echoHandler replies with a JSON description of the received request.
func echoHandler(t *testing.T) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Echo", "yes")

		if strings.HasSuffix(r.URL.Path, "/missing") {
			w.WriteHeader(http.StatusNotFound)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"method":        r.Method,
			"path":          r.URL.Path,
			"query":         r.URL.RawQuery,
			"content_type":  r.Header.Get("Content-Type"),
			"authorization": r.Header.Get("Authorization"),
			"custom":        r.Header.Get("X-Custom"),
			"body":          string(body),
		})
	}
}

func newTestConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.BaseURL = baseURL
	require.NoError(t, config.ValidateConfig(cfg))

	return cfg
}

func decodeEcho(t *testing.T, out []byte) map[string]any {
	t.Helper()

	var echo map[string]any
	require.NoError(t, json.Unmarshal(out, &echo))

	return echo
}

func TestExecuteRootCommand(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(echoHandler(t))
	t.Cleanup(server.Close)

	cfg := newTestConfig(t, server.URL+"/api")

	t.Run("get with params and headers", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		err := ExecuteRootCommand(context.Background(), cfg, &RequestOptions{
			URL:     "items",
			Params:  []string{"page=2"},
			Headers: []string{"X-Custom: value"},
			Bearer:  "token",
		}, &out)
		require.NoError(t, err)

		echo := decodeEcho(t, out.Bytes())
		assert.Equal(t, http.MethodGet, echo["method"])
		assert.Equal(t, "/api/items", echo["path"])
		assert.Equal(t, "page=2", echo["query"])
		assert.Equal(t, "value", echo["custom"])
		assert.Equal(t, "Bearer token", echo["authorization"])
	})

	t.Run("json data with basic auth", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		err := ExecuteRootCommand(context.Background(), cfg, &RequestOptions{
			URL:  server.URL + "/other",
			Data: `{"name":"x"}`,
			JSON: true,
			User: "alice:secret",
		}, &out)
		require.NoError(t, err)

		echo := decodeEcho(t, out.Bytes())
		assert.Equal(t, http.MethodPost, echo["method"])
		assert.Equal(t, "/other", echo["path"])
		assert.Equal(t, "application/json", echo["content_type"])
		assert.Equal(t, `{"name":"x"}`, echo["body"])
		assert.Equal(t, "Basic YWxpY2U6c2VjcmV0", echo["authorization"])
	})

	t.Run("multipart form", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "upload.txt")
		require.NoError(t, os.WriteFile(path, []byte("file content"), 0o600))

		var out bytes.Buffer

		err := ExecuteRootCommand(context.Background(), cfg, &RequestOptions{
			URL:    "upload",
			Method: "put",
			Form:   []string{"title=report", "doc=@" + path},
		}, &out)
		require.NoError(t, err)

		echo := decodeEcho(t, out.Bytes())
		assert.Equal(t, http.MethodPut, echo["method"])
		assert.Contains(t, echo["content_type"], "multipart/form-data; boundary=")
		assert.Contains(t, echo["body"], "file content")
		assert.Contains(t, echo["body"], `filename="upload.txt"`)
	})

	t.Run("include prints status line and headers", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		err := ExecuteRootCommand(context.Background(), cfg, &RequestOptions{
			URL:     "items",
			Include: true,
		}, &out)
		require.NoError(t, err)

		assert.Contains(t, out.String(), "HTTP/1.1 200 OK")
		assert.Contains(t, out.String(), "x-echo")
		assert.Contains(t, out.String(), `"method":"GET"`)
	})

	t.Run("query extracts a json path", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		err := ExecuteRootCommand(context.Background(), cfg, &RequestOptions{
			URL:   "items",
			Query: "path",
		}, &out)
		require.NoError(t, err)
		assert.Equal(t, "/api/items\n", out.String())

		err = ExecuteRootCommand(context.Background(), cfg, &RequestOptions{
			URL:   "items",
			Query: "nothing.here",
		}, &bytes.Buffer{})
		require.ErrorIs(t, err, ErrNoMatch)
	})

	t.Run("output saves the body", func(t *testing.T) {
		t.Parallel()

		var (
			out  bytes.Buffer
			path = filepath.Join(t.TempDir(), "response.json")
		)

		err := ExecuteRootCommand(context.Background(), cfg, &RequestOptions{
			URL:    "items",
			Output: path,
		}, &out)
		require.NoError(t, err)
		assert.Empty(t, out.String())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "/api/items", decodeEcho(t, content)["path"])
	})

	t.Run("error status prints the body and fails", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer

		err := ExecuteRootCommand(context.Background(), cfg, &RequestOptions{URL: "missing"}, &out)
		require.ErrorIs(t, err, request.ErrResponse)

		var responseErr *request.ResponseError
		require.ErrorAs(t, err, &responseErr)
		assert.Equal(t, http.StatusNotFound, responseErr.Response.StatusCode())
		assert.Equal(t, "/api/missing", decodeEcho(t, out.Bytes())["path"])
	})

	t.Run("conflicting bodies", func(t *testing.T) {
		t.Parallel()

		err := ExecuteRootCommand(context.Background(), cfg, &RequestOptions{
			URL:  "items",
			Data: "a=1",
			Form: []string{"b=2"},
		}, &bytes.Buffer{})
		require.ErrorIs(t, err, ErrConflictingBody)
	})

	t.Run("body with a bodyless method", func(t *testing.T) {
		t.Parallel()

		err := ExecuteRootCommand(context.Background(), cfg, &RequestOptions{
			URL:    "items",
			Method: http.MethodGet,
			Data:   "a=1",
		}, &bytes.Buffer{})
		require.ErrorIs(t, err, request.ErrInvalidArgument)
	})

	t.Run("invalid method", func(t *testing.T) {
		t.Parallel()

		err := ExecuteRootCommand(context.Background(), cfg, &RequestOptions{
			URL:    "items",
			Method: "FETCH",
		}, &bytes.Buffer{})
		require.ErrorIs(t, err, request.ErrInvalidArgument)
	})
}

func TestAttachProgress(t *testing.T) {
	t.Parallel()

	c, err := client.NewClient(nil, nil)
	require.NoError(t, err)

	r, err := c.Post("http://example.com/upload", "payload", nil, nil)
	require.NoError(t, err)

	var progress bytes.Buffer

	attachProgress(r, &progress)

	value, _ := r.Option(transport.OptUploadProgress)
	upload, ok := value.(io.Writer)
	require.True(t, ok)

	value, _ = r.Option(transport.OptDownloadProgress)
	download, ok := value.(io.Writer)
	require.True(t, ok)

	_, err = upload.Write([]byte("payload"))
	require.NoError(t, err)

	_, err = download.Write([]byte("response"))
	require.NoError(t, err)

	assert.Contains(t, progress.String(), "Uploading")
	assert.Contains(t, progress.String(), "Downloading")
}

func TestExecuteConfigCommands(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, ExecuteConfigInitCommand(context.Background(), path, false))
	require.ErrorIs(t, ExecuteConfigInitCommand(context.Background(), path, false), config.ErrConfigExists)
	require.NoError(t, ExecuteConfigInitCommand(context.Background(), path, true))

	require.NoError(t, ExecuteConfigSetCommand(context.Background(), path, "base_url", "https://example.com"))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.BaseURL)

	err = ExecuteConfigSetCommand(context.Background(), path, "unknown_key", "x")
	require.ErrorIs(t, err, config.ErrUnknownKey)

	err = ExecuteConfigSetCommand(context.Background(), path, "timeout", "-5s")
	require.ErrorIs(t, err, config.ErrInvalidTimeout)
}
