package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/httpreq/internal/logger"
	"github.com/oshokin/httpreq/internal/transport"
	"github.com/oshokin/httpreq/internal/utils"
)

// ExecutorSettings configures an Executor.
type ExecutorSettings struct {
	// MaxLogLength caps the size of debug request/response dumps.
	MaxLogLength uint64
	// CertificateCacheSize is the number of parsed client key pairs to keep.
	CertificateCacheSize int
	// UserAgentProvider supplies the default User-Agent. Nil means DefaultUserAgent.
	UserAgentProvider utils.UserAgentProvider
}

// Executor runs transfers with net/http.
// Every transfer gets its own transport, so no connection is reused between transfers.
type Executor struct {
	// settings holds the executor configuration.
	settings ExecutorSettings
	// base is cloned for every transfer.
	base *http.Transport
	// certificates caches parsed client certificates.
	certificates *certificateStore
}

// NewExecutor creates and returns a new net/http backed transport.Executor.
func NewExecutor(settings ExecutorSettings) (transport.Executor, error) {
	certificates, err := newCertificateStore(settings.CertificateCacheSize)
	if err != nil {
		return nil, err
	}

	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		base = &http.Transport{Proxy: http.ProxyFromEnvironment}
	}

	return &Executor{
		settings:     settings,
		base:         base,
		certificates: certificates,
	}, nil
}

// Execute runs the transfer to completion and reports its outcome.
func (e *Executor) Execute(ctx context.Context, transfer *transport.Transfer) *transport.Result {
	startTime := time.Now()

	result := e.execute(ctx, transfer)

	logger.DebugKV(ctx, "Transfer finished",
		"method", transfer.Method(),
		"url", transfer.URL,
		"status", result.StatusCode,
		"code", int(result.Code),
		"duration", time.Since(startTime))

	return result
}

func (e *Executor) execute(ctx context.Context, transfer *transport.Transfer) *transport.Result {
	target, err := url.Parse(transfer.URL)
	if err != nil {
		return failure(transport.CodeURLMalformat, err)
	}

	if target.Scheme != "http" && target.Scheme != "https" {
		return failure(transport.CodeUnsupportedProtocol,
			fmt.Errorf("protocol %q not supported", target.Scheme))
	}

	if target.Host == "" {
		return failure(transport.CodeURLMalformat, fmt.Errorf("no host in URL %q", transfer.URL))
	}

	client, err := e.newClient(transfer)
	if err != nil {
		return failure(classifyError(err), err)
	}

	defer client.CloseIdleConnections()

	if transfer.BoolOption(transport.OptBinaryTransfer, false) {
		ctx = WithBinaryTransfer(ctx)
	}

	body, source, length := newRequestBody(ctx, transfer)

	req, err := http.NewRequestWithContext(ctx, transfer.Method(), target.String(), body)
	if err != nil {
		return failure(transport.CodeURLMalformat, err)
	}

	if body != nil {
		req.ContentLength = length
	}

	applyHeaders(ctx, req, transfer.Headers)

	resp, err := client.Do(req)
	if err != nil {
		if source != nil && source.Err() != nil {
			return failure(transport.CodeReadError, source.Err())
		}

		return failure(classifyError(err), err)
	}

	defer resp.Body.Close() //nolint:errcheck // Body is fully read below.

	if err = emitHeaders(transfer.HeaderFunc, resp); err != nil {
		return failure(transport.CodeWriteError, err)
	}

	data, err := readResponseBody(ctx, resp.Body, transfer)
	if err != nil {
		result := failure(transport.CodeRecvError, err)
		if code := classifyError(err); code == transport.CodeOperationTimedOut || code == transport.CodeAbortedByCallback {
			result.Code = code
		}

		result.StatusCode = resp.StatusCode

		return result
	}

	result := &transport.Result{
		StatusCode: resp.StatusCode,
		Body:       data,
	}

	if resp.StatusCode >= http.StatusBadRequest && !slices.Contains(transfer.NonFatalStatuses, resp.StatusCode) {
		result.Code = transport.CodeHTTPReturnedError
		result.Message = fmt.Sprintf("The requested URL returned error: %d", resp.StatusCode)
	}

	return result
}

// newClient builds a single-use client honoring the transfer options.
func (e *Executor) newClient(transfer *transport.Transfer) (*http.Client, error) {
	base := e.base.Clone()

	connectTimeout := transfer.DurationOption(transport.OptConnectTimeout)
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}

	dialer := &net.Dialer{Timeout: connectTimeout}

	base.DialContext = dialer.DialContext
	base.TLSHandshakeTimeout = connectTimeout
	base.DisableKeepAlives = true

	tlsConfig, err := e.tlsConfig(transfer)
	if err != nil {
		return nil, err
	}

	base.TLSClientConfig = tlsConfig

	if proxy := transfer.StringOption(transport.OptProxyURL); proxy != "" {
		proxyURL, parseErr := url.Parse(proxy)
		if parseErr != nil || proxyURL.Host == "" {
			return nil, fmt.Errorf("%w: %q", errProxy, proxy)
		}

		base.Proxy = http.ProxyURL(proxyURL)
	}

	userAgentProvider := e.settings.UserAgentProvider
	if userAgent := transfer.StringOption(transport.OptUserAgent); userAgent != "" {
		userAgentProvider = utils.NewSimpleUserAgentProvider(userAgent)
	}

	return &http.Client{
		Transport: NewUserAgentInjector(
			NewRequestIDInjector(
				NewLogTransport(base, e.settings.MaxLogLength)),
			userAgentProvider),
		Timeout:       transfer.DurationOption(transport.OptTimeout),
		CheckRedirect: redirectPolicy(transfer),
	}, nil
}

func (e *Executor) tlsConfig(transfer *transport.Transfer) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: transfer.BoolOption(transport.OptInsecureSkipVerify, false), //nolint:gosec // Opt-in.
	}

	if caFile := transfer.StringOption(transport.OptCAFile); caFile != "" {
		pool, err := loadCAPool(caFile)
		if err != nil {
			return nil, err
		}

		tlsConfig.RootCAs = pool
	}

	if !transfer.ClientAuth.IsZero() {
		cert, err := e.certificates.Load(transfer.ClientAuth)
		if err != nil {
			return nil, err
		}

		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// redirectPolicy returns a CheckRedirect function. Redirects are not followed unless enabled.
func redirectPolicy(transfer *transport.Transfer) func(*http.Request, []*http.Request) error {
	follow := transfer.BoolOption(transport.OptFollowRedirects, false)
	maxRedirects := transfer.IntOption(transport.OptMaxRedirects, transport.DefaultMaxRedirects)

	return func(_ *http.Request, via []*http.Request) error {
		if !follow {
			return http.ErrUseLastResponse
		}

		if maxRedirects >= 0 && int64(len(via)) > maxRedirects {
			return fmt.Errorf("%w: %d", errTooManyRedirects, maxRedirects)
		}

		return nil
	}
}

// newRequestBody turns the transfer body into a reader and its length.
// Streaming sources are wrapped so that their own failures can be told apart from network ones.
func newRequestBody(ctx context.Context, transfer *transport.Transfer) (io.Reader, *sourceReader, int64) {
	var reader io.Reader

	switch body := transfer.Body.(type) {
	case transport.FixedSource:
		if len(body.Data) == 0 {
			return nil, nil, 0
		}

		// A plain bytes.Reader lets net/http replay the body on redirects.
		if !needsWrapping(transfer) {
			return bytes.NewReader(body.Data), nil, body.Len()
		}

		reader = bytes.NewReader(body.Data)
	case transport.StreamSource:
		if body.Reader == nil {
			return nil, nil, 0
		}

		reader = body.Reader
	case transport.PullSource:
		if body.Read == nil {
			return nil, nil, 0
		}

		reader = &pullReader{read: body.Read}
	default:
		return nil, nil, 0
	}

	if progress := transfer.WriterOption(transport.OptUploadProgress); progress != nil {
		reader = io.TeeReader(reader, progress)
	}

	source := &sourceReader{
		r: newThrottledReader(ctx, reader, transfer.IntOption(transport.OptUploadSpeedLimit, 0)),
	}

	return source, source, transfer.Body.Len()
}

func needsWrapping(transfer *transport.Transfer) bool {
	return transfer.WriterOption(transport.OptUploadProgress) != nil ||
		transfer.IntOption(transport.OptUploadSpeedLimit, 0) > 0
}

// applyHeaders copies raw header lines onto the request.
// Content-Length and Host are request fields in net/http rather than headers.
func applyHeaders(ctx context.Context, req *http.Request, lines []string) {
	for _, line := range lines {
		name, value, found := utils.SplitPair(line, ":")
		if !found || name == "" {
			logger.Warnf(ctx, "Skipping malformed header line %q", line)

			continue
		}

		switch {
		case strings.EqualFold(name, contentLengthHeader):
			length, err := strconv.ParseInt(value, 10, 64)
			if err != nil || length < 0 {
				logger.Warnf(ctx, "Skipping invalid Content-Length %q", value)

				continue
			}

			if req.Body != nil {
				req.ContentLength = length
			}
		case strings.EqualFold(name, hostHeader):
			req.Host = value
		default:
			req.Header.Add(name, value)
		}
	}
}

// emitHeaders replays the status line, every header line and the closing blank line.
func emitHeaders(fn transport.HeaderFunc, resp *http.Response) error {
	if fn == nil {
		return nil
	}

	lines := make([]string, 0, len(resp.Header)+2)
	lines = append(lines, resp.Proto+" "+resp.Status+"\r\n")

	for _, name := range slices.Sorted(maps.Keys(resp.Header)) {
		for _, value := range resp.Header[name] {
			lines = append(lines, name+": "+value+"\r\n")
		}
	}

	lines = append(lines, "\r\n")

	for _, line := range lines {
		if n := fn([]byte(line)); n != len(line) {
			return fmt.Errorf("%w: %q", errHeaderAborted, strings.TrimSpace(line))
		}
	}

	return nil
}

func readResponseBody(ctx context.Context, body io.Reader, transfer *transport.Transfer) ([]byte, error) {
	reader := newThrottledReader(ctx, body, transfer.IntOption(transport.OptDownloadSpeedLimit, 0))

	if progress := transfer.WriterOption(transport.OptDownloadProgress); progress != nil {
		reader = io.TeeReader(reader, progress)
	}

	return io.ReadAll(reader)
}

func failure(code transport.ErrorCode, err error) *transport.Result {
	return &transport.Result{
		Code:    code,
		Message: err.Error(),
		Err:     err,
	}
}
