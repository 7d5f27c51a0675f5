package client

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/oshokin/httpreq/internal/config"
	"github.com/oshokin/httpreq/internal/message"
	"github.com/oshokin/httpreq/internal/request"
	"github.com/oshokin/httpreq/internal/transport"
	http_transport "github.com/oshokin/httpreq/internal/transport/http"
	"github.com/oshokin/httpreq/internal/utils"
)

// Client defines the shorthand request constructors.
type Client interface {
	// BaseURL returns the URL that relative request URLs are resolved against.
	BaseURL() string
	// Request creates a request with optional query parameters, headers and body.
	// The body is ignored for methods that cannot carry one.
	Request(method, rawURL string, query, headers map[string]string, body any) (*request.Request, error)
	// Get creates a GET request.
	Get(rawURL string, query, headers map[string]string) (*request.Request, error)
	// Head creates a HEAD request.
	Head(rawURL string, query, headers map[string]string) (*request.Request, error)
	// Delete creates a DELETE request.
	Delete(rawURL string, query, headers map[string]string) (*request.Request, error)
	// Post creates a POST request with a body.
	Post(rawURL string, body any, query, headers map[string]string) (*request.Request, error)
	// Put creates a PUT request with a body.
	Put(rawURL string, body any, query, headers map[string]string) (*request.Request, error)
	// Patch creates a PATCH request with a body.
	Patch(rawURL string, body any, query, headers map[string]string) (*request.Request, error)
}

// ClientImpl implements the Client interface.
type ClientImpl struct {
	// cfg contains the validated configuration.
	cfg *config.Config
	// baseURL is the base URL for relative request URLs, empty for none.
	baseURL string
	// executor runs every request created by the client.
	executor transport.Executor
}

// NewClient creates a client from a validated configuration.
// A nil executor is replaced with a net/http executor configured from cfg.
func NewClient(cfg *config.Config, executor transport.Executor) (Client, error) {
	if cfg == nil {
		cfg = config.Default()
		if err := config.ValidateConfig(cfg); err != nil {
			return nil, err
		}
	}

	if executor == nil {
		settings := http_transport.ExecutorSettings{
			MaxLogLength:         cfg.ParsedMaxLogLength,
			CertificateCacheSize: int(cfg.CertificateCacheSize),
		}

		if cfg.UserAgent != "" {
			settings.UserAgentProvider = utils.NewSimpleUserAgentProvider(cfg.UserAgent)
		}

		var err error

		executor, err = http_transport.NewExecutor(settings)
		if err != nil {
			return nil, fmt.Errorf("failed to create executor: %w", err)
		}
	}

	baseURL := cfg.BaseURL
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &ClientImpl{
		cfg:      cfg,
		baseURL:  baseURL,
		executor: executor,
	}, nil
}

// BaseURL returns the base URL with a trailing slash, or an empty string.
func (c *ClientImpl) BaseURL() string {
	return c.baseURL
}

// Request creates a request with the client defaults applied.
func (c *ClientImpl) Request(
	method, rawURL string,
	query, headers map[string]string,
	body any,
) (*request.Request, error) {
	r, err := request.New(method, c.ResolveURL(rawURL))
	if err != nil {
		return nil, err
	}

	r.WithExecutor(c.executor)

	if err = c.applyDefaults(r); err != nil {
		return nil, err
	}

	if len(query) > 0 {
		r.WithParams(query)
	}

	if len(headers) > 0 {
		r.WithHeaders(headers, true)
	}

	if body != nil && message.AllowsBody(r.Method()) {
		if err = r.WithBody(body); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Get creates a GET request.
func (c *ClientImpl) Get(rawURL string, query, headers map[string]string) (*request.Request, error) {
	return c.Request(message.MethodGet, rawURL, query, headers, nil)
}

// Head creates a HEAD request.
func (c *ClientImpl) Head(rawURL string, query, headers map[string]string) (*request.Request, error) {
	return c.Request(message.MethodHead, rawURL, query, headers, nil)
}

// Delete creates a DELETE request.
func (c *ClientImpl) Delete(rawURL string, query, headers map[string]string) (*request.Request, error) {
	return c.Request(message.MethodDelete, rawURL, query, headers, nil)
}

// Post creates a POST request with a body.
func (c *ClientImpl) Post(rawURL string, body any, query, headers map[string]string) (*request.Request, error) {
	return c.Request(message.MethodPost, rawURL, query, headers, body)
}

// Put creates a PUT request with a body.
func (c *ClientImpl) Put(rawURL string, body any, query, headers map[string]string) (*request.Request, error) {
	return c.Request(message.MethodPut, rawURL, query, headers, body)
}

// Patch creates a PATCH request with a body.
func (c *ClientImpl) Patch(rawURL string, body any, query, headers map[string]string) (*request.Request, error) {
	return c.Request(message.MethodPatch, rawURL, query, headers, body)
}

// ResolveURL prefixes rawURL with the base URL unless rawURL is absolute.
func (c *ClientImpl) ResolveURL(rawURL string) string {
	if c.baseURL == "" || isAbsoluteURL(rawURL) {
		return rawURL
	}

	return c.baseURL + strings.TrimLeft(rawURL, "/")
}

//nolint:cyclop // Each configuration default is a separate branch.
func (c *ClientImpl) applyDefaults(r *request.Request) error {
	cfg := c.cfg

	for _, name := range slices.Sorted(maps.Keys(cfg.DefaultHeaders)) {
		r.WithHeader(name, cfg.DefaultHeaders[name], true)
	}

	r.FollowRedirects(cfg.FollowRedirects)

	if cfg.MaxRedirects > 0 {
		r.WithOption(transport.OptMaxRedirects, cfg.MaxRedirects)
	}

	if cfg.ParsedTimeout > 0 {
		r.WithOption(transport.OptTimeout, cfg.ParsedTimeout)
	}

	if cfg.ParsedConnectTimeout > 0 {
		r.WithOption(transport.OptConnectTimeout, cfg.ParsedConnectTimeout)
	}

	if cfg.InsecureSkipVerify {
		r.WithOption(transport.OptInsecureSkipVerify, true)
	}

	if cfg.CAFile != "" {
		r.WithOption(transport.OptCAFile, cfg.CAFile)
	}

	if cfg.ProxyURL != "" {
		r.WithOption(transport.OptProxyURL, cfg.ProxyURL)
	}

	if cfg.ParsedUploadSpeedLimit > 0 {
		r.WithOption(transport.OptUploadSpeedLimit, cfg.ParsedUploadSpeedLimit)
	}

	if cfg.ParsedDownloadSpeedLimit > 0 {
		r.WithOption(transport.OptDownloadSpeedLimit, cfg.ParsedDownloadSpeedLimit)
	}

	if cfg.ClientCertificate != "" {
		if err := r.WithClientCertificate(cfg.ClientCertificate, false); err != nil {
			return err
		}

		r.WithClientCertificatePassword(cfg.ClientCertificatePassword)
	}

	if cfg.ClientKey != "" {
		if err := r.WithClientKey(cfg.ClientKey, false); err != nil {
			return err
		}

		r.WithClientKeyPassword(cfg.ClientKeyPassword)
	}

	return nil
}

func isAbsoluteURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)

	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
