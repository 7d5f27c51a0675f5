package request

import (
	"encoding/base64"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/httpreq/internal/message"
	"github.com/oshokin/httpreq/internal/transport"
	"github.com/oshokin/httpreq/internal/utils"
)

// Request is a mutable HTTP request builder.
// A Request is not safe for concurrent use; build one per logical request.
type Request struct {
	message.Message

	// headers is the header bag shared with the embedded Message.
	headers *message.Headers
	// clientAuth is the TLS client authentication shared with the embedded Message.
	clientAuth *message.ClientAuth
	// method is the upper-cased request method.
	method string
	// url is the target URL without its query string.
	url string
	// query holds the query parameters appended on Run.
	query url.Values
	// body is the request body, nil for none.
	body any
	// options are passed to the executor verbatim.
	options map[transport.Option]any
	// executor runs the transfer. Nil means the shared default executor.
	executor transport.Executor
}

// New creates a request for the given method and URL.
// The method is case-insensitive and must be one of message.Methods().
// A query string in rawURL is moved into the query parameters.
func New(method, rawURL string) (*Request, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if !message.IsValidMethod(method) {
		return nil, fmt.Errorf("%w: unsupported request method %q", ErrInvalidArgument, method)
	}

	var (
		headers    = message.NewHeaders()
		clientAuth = &message.ClientAuth{}
	)

	r := &Request{
		Message:    message.New(headers, clientAuth),
		headers:    headers,
		clientAuth: clientAuth,
		method:     method,
		query:      url.Values{},
		options:    make(map[transport.Option]any),
	}

	return r.WithURL(rawURL), nil
}

// Method returns the request method.
func (r *Request) Method() string {
	return r.method
}

// URL returns the target URL without the query string.
func (r *Request) URL() string {
	return r.url
}

// WithURL sets the target URL. Its query string, if any, is merged into
// the query parameters, replacing parameters with the same name.
// A name repeated in the query string keeps its last value.
func (r *Request) WithURL(rawURL string) *Request {
	base, rawQuery, found := strings.Cut(rawURL, "?")
	r.url = base

	if !found {
		return r
	}

	rawQuery, _, _ = strings.Cut(rawQuery, "#")

	// A partially malformed query still yields every well-formed pair.
	parsed, _ := url.ParseQuery(rawQuery)
	for name, values := range parsed {
		r.query.Set(name, values[len(values)-1])
	}

	return r
}

// WithExecutor sets the engine that runs the request.
func (r *Request) WithExecutor(executor transport.Executor) *Request {
	r.executor = executor

	return r
}

// WithHeader adds a header value, or replaces every existing value when replace is set.
func (r *Request) WithHeader(name, value string, replace bool) *Request {
	if replace {
		r.headers.Set(name, value)
	} else {
		r.headers.Add(name, value)
	}

	return r
}

// WithHeaders applies WithHeader to every entry, in name order.
func (r *Request) WithHeaders(headers map[string]string, replaceAll bool) *Request {
	for _, name := range slices.Sorted(maps.Keys(headers)) {
		r.WithHeader(name, headers[name], replaceAll)
	}

	return r
}

// WithoutHeader removes every value of a header.
func (r *Request) WithoutHeader(name string) *Request {
	r.headers.Del(name)

	return r
}

// WithParam sets a query parameter, replacing any previous values.
func (r *Request) WithParam(name, value string) *Request {
	r.query.Set(name, value)

	return r
}

// WithParams sets several query parameters.
func (r *Request) WithParams(params map[string]string) *Request {
	for name, value := range params {
		r.query.Set(name, value)
	}

	return r
}

// Param returns the first value of a query parameter.
func (r *Request) Param(name string) (string, bool) {
	if !r.query.Has(name) {
		return "", false
	}

	return r.query.Get(name), true
}

// WithoutParam removes a query parameter.
func (r *Request) WithoutParam(name string) *Request {
	r.query.Del(name)

	return r
}

// Params returns a copy of the query parameters.
func (r *Request) Params() url.Values {
	params := make(url.Values, len(r.query))
	for name, values := range r.query {
		params[name] = slices.Clone(values)
	}

	return params
}

// WithOption sets an engine option.
func (r *Request) WithOption(opt transport.Option, value any) *Request {
	r.options[opt] = value

	return r
}

// WithoutOption removes an engine option.
func (r *Request) WithoutOption(opt transport.Option) *Request {
	delete(r.options, opt)

	return r
}

// Option returns an engine option.
func (r *Request) Option(opt transport.Option) (any, bool) {
	value, ok := r.options[opt]

	return value, ok
}

// Options returns a copy of the engine options.
func (r *Request) Options() map[transport.Option]any {
	return maps.Clone(r.options)
}

// WithTimeout limits both the whole exchange and the connection setup.
func (r *Request) WithTimeout(timeout time.Duration) *Request {
	r.options[transport.OptTimeout] = timeout
	r.options[transport.OptConnectTimeout] = timeout

	return r
}

// Timeout returns the exchange timeout, zero if none is set.
func (r *Request) Timeout() time.Duration {
	timeout, _ := r.options[transport.OptTimeout].(time.Duration)

	return timeout
}

// FollowRedirects enables or disables following 3xx responses.
func (r *Request) FollowRedirects(follow bool) *Request {
	r.options[transport.OptFollowRedirects] = follow

	return r
}

// WithContentType replaces the Content-Type header.
func (r *Request) WithContentType(contentType string) *Request {
	return r.WithHeader(message.HeaderContentType, contentType, true)
}

// AsJSON switches the content type to JSON, or to plain text when asJSON is false.
func (r *Request) AsJSON(asJSON bool) *Request {
	if asJSON {
		return r.WithContentType(message.ContentTypeJSON)
	}

	return r.WithContentType(message.ContentTypeText)
}

// AsBlob marks the body as binary. The content type becomes
// application/octet-stream only if it is still the form default.
func (r *Request) AsBlob(asBlob bool) *Request {
	if r.ContentType() == message.ContentTypeForm {
		r.WithContentType(message.ContentTypeBinary)
	}

	return r.WithOption(transport.OptBinaryTransfer, asBlob)
}

// WithBody sets the request body. Supported bodies are strings, byte slices,
// maps (form or JSON encoded), io.Reader streams and *formdata.Encoder.
func (r *Request) WithBody(body any) error {
	if !message.AllowsBody(r.method) {
		return fmt.Errorf("%w: %s requests cannot carry a body", ErrInvalidArgument, r.method)
	}

	r.body = body

	return nil
}

// WithBodyLength sets the body and declares its length in the Content-Length header.
func (r *Request) WithBodyLength(body any, length int64) error {
	if err := r.WithBody(body); err != nil {
		return err
	}

	r.WithHeader(message.HeaderContentLength, strconv.FormatInt(length, 10), true)

	return nil
}

// WithoutBody removes the body and the Content-Length header.
func (r *Request) WithoutBody() *Request {
	r.body = nil

	return r.WithoutHeader(message.HeaderContentLength)
}

// Body returns the body as it was set.
func (r *Request) Body() any {
	return r.body
}

// WithAuthorization adds an Authorization header. Basic credentials are
// base64 encoded; Bearer, Digest and OAuth credentials are sent verbatim
// and password is ignored.
func (r *Request) WithAuthorization(scheme, usernameOrToken, password string) error {
	var credentials string

	switch scheme {
	case message.AuthorizationBasic:
		credentials = base64.StdEncoding.EncodeToString([]byte(usernameOrToken + ":" + password))
	case message.AuthorizationBearer, message.AuthorizationDigest, message.AuthorizationOAuth:
		credentials = usernameOrToken
	default:
		return fmt.Errorf("%w: unsupported authorization type %q", ErrInvalidArgument, scheme)
	}

	r.WithHeader(message.HeaderAuthorization, scheme+" "+credentials, false)

	return nil
}

// WithClientCertificate sets the TLS client certificate path.
// Unless force is set, the file must exist.
func (r *Request) WithClientCertificate(path string, force bool) error {
	if err := checkFile(path, force); err != nil {
		return err
	}

	r.clientAuth.Certificate = path

	return nil
}

// WithClientCertificatePassword sets the password of the client certificate.
func (r *Request) WithClientCertificatePassword(password string) *Request {
	r.clientAuth.CertificatePassword = password

	return r
}

// WithClientKey sets the TLS client key path.
// Unless force is set, the file must exist.
func (r *Request) WithClientKey(path string, force bool) error {
	if err := checkFile(path, force); err != nil {
		return err
	}

	r.clientAuth.Key = path

	return nil
}

// WithClientKeyPassword sets the password of the client key.
func (r *Request) WithClientKeyPassword(password string) *Request {
	r.clientAuth.KeyPassword = password

	return r
}

func checkFile(path string, force bool) error {
	if force {
		return nil
	}

	exists, err := utils.IsFileExist(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	if !exists {
		return fmt.Errorf("%w: file %q does not exist", ErrInvalidArgument, path)
	}

	return nil
}
