package request

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/httpreq/internal/formdata"
	"github.com/oshokin/httpreq/internal/logger"
	"github.com/oshokin/httpreq/internal/message"
	"github.com/oshokin/httpreq/internal/status"
	"github.com/oshokin/httpreq/internal/transport"
	http_transport "github.com/oshokin/httpreq/internal/transport/http"
	"github.com/oshokin/httpreq/internal/utils"
)

//nolint:gochecknoglobals // Lazily created engine shared by requests without an explicit executor.
var defaultExecutor = sync.OnceValues(func() (transport.Executor, error) {
	return http_transport.NewExecutor(http_transport.ExecutorSettings{})
})

// Run executes the request and blocks until the exchange completes.
// A 4xx or 5xx status yields a *ResponseError carrying the response;
// transport failures yield *UnresolvableHostError or *TransferError.
// Run does not modify the request, but stream and multipart bodies are consumed.
func (r *Request) Run(ctx context.Context) (*Response, error) {
	executor := r.executor
	if executor == nil {
		var err error

		executor, err = defaultExecutor()
		if err != nil {
			return nil, fmt.Errorf("failed to create default executor: %w", err)
		}
	}

	transfer, err := r.newTransfer()
	if err != nil {
		return nil, err
	}

	collector := newHeaderCollector()
	transfer.HeaderFunc = collector.collect

	logger.DebugKV(ctx, "Running request",
		"method", r.method,
		"url", redactURL(transfer.URL),
		"body", bodyKind(r.body))

	startTime := time.Now()

	result := executor.Execute(ctx, transfer)
	if result == nil {
		result = &transport.Result{Code: transport.CodeGotNothing, Message: "executor returned no result"}
	}

	response := NewResponse(result.StatusCode, result.Body, collector.headers)

	if err = classify(r.url, result, response); err != nil {
		if result.Failed() {
			logger.WarnKV(ctx, "Request failed",
				"method", r.method,
				"url", redactURL(transfer.URL),
				"code", int(result.Code),
				"error", err)
		} else {
			logger.DebugKV(ctx, "Request returned error status",
				"method", r.method,
				"url", redactURL(transfer.URL),
				"status", result.StatusCode)
		}

		return nil, err
	}

	logger.DebugKV(ctx, "Request finished",
		"status", result.StatusCode,
		"bytes", len(result.Body),
		"duration", time.Since(startTime))

	return response, nil
}

// newTransfer resolves the request into a transfer without modifying it.
func (r *Request) newTransfer() (*transport.Transfer, error) {
	headers := r.headers.Clone()

	transfer := &transport.Transfer{
		URL:              r.url,
		NonFatalStatuses: status.ErrorCodes(),
		ClientAuth:       transport.ClientAuth(*r.clientAuth),
		Options:          maps.Clone(r.options),
	}

	if len(r.query) > 0 {
		transfer.URL += "?" + r.query.Encode()
	}

	switch r.method {
	case message.MethodGet:
		transfer.Marker = transport.MarkerGet
	case message.MethodPost:
		transfer.Marker = transport.MarkerPost
	default:
		transfer.Marker = transport.MarkerCustom
		transfer.CustomMethod = r.method
	}

	if hasBody(r.body) && message.AllowsBody(r.method) {
		source, err := r.newSource(headers)
		if err != nil {
			return nil, err
		}

		if _, ok := source.(transport.FixedSource); !ok {
			transfer.Upload = true
			transfer.Marker = transport.MarkerCustom
			transfer.CustomMethod = r.method
		}

		if length := source.Len(); !headers.Has(message.HeaderContentLength) && length != transport.UnknownSize {
			headers.Set(message.HeaderContentLength, strconv.FormatInt(length, 10))
		}

		transfer.Body = source
	}

	transfer.Headers = headers.Lines()

	return transfer, nil
}

// newSource picks the body source. Multipart encoders also set the Content-Type on headers.
func (r *Request) newSource(headers *message.Headers) (transport.Source, error) {
	switch body := r.body.(type) {
	case *formdata.Encoder:
		if !body.IsSealed() {
			if err := body.Seal(); err != nil {
				return nil, err
			}
		}

		headers.Set(message.HeaderContentType, body.ContentType())

		return transport.PullSource{Read: body.Read, Length: body.ContentLength()}, nil
	case io.Reader:
		length := streamLength(body)
		if declared, ok := declaredLength(headers); ok {
			length = declared
		}

		return transport.StreamSource{Reader: body, Length: length}, nil
	default:
		data, err := encodeBody(body, r.ContentType())
		if err != nil {
			return nil, err
		}

		return transport.FixedSource{Data: data}, nil
	}
}

// streamLength returns the number of unread bytes in r, or transport.UnknownSize.
func streamLength(r io.Reader) int64 {
	switch stream := r.(type) {
	case interface{ Len() int }:
		return int64(stream.Len())
	case *os.File:
		stat, err := stream.Stat()
		if err != nil || !stat.Mode().IsRegular() {
			return transport.UnknownSize
		}

		offset, err := stream.Seek(0, io.SeekCurrent)
		if err != nil {
			return transport.UnknownSize
		}

		return stat.Size() - offset
	default:
		return transport.UnknownSize
	}
}

func declaredLength(headers *message.Headers) (int64, bool) {
	value, ok := headers.Get(message.HeaderContentLength)
	if !ok {
		return 0, false
	}

	length, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || length < 0 {
		return 0, false
	}

	return length, true
}

func bodyKind(body any) string {
	switch body.(type) {
	case nil:
		return "none"
	case *formdata.Encoder:
		return "multipart"
	case io.Reader:
		return "stream"
	default:
		return "buffer"
	}
}

func redactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	return parsed.Redacted()
}

// headerCollector gathers response header lines into a case-insensitive bag.
type headerCollector struct {
	// headers receives every well-formed header line.
	headers *message.Headers
}

func newHeaderCollector() *headerCollector {
	return &headerCollector{headers: message.NewHeaders()}
}

// collect splits a line on its first colon. Lines without one, such as the
// status line and the blank terminator, are acknowledged and skipped.
func (c *headerCollector) collect(line []byte) int {
	name, value, found := utils.SplitPair(string(line), ":")
	if found && name != "" {
		c.headers.Add(strings.ToLower(name), value)
	}

	return len(line)
}
