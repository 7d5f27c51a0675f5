package request

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/oshokin/httpreq/internal/formdata"
	"github.com/oshokin/httpreq/internal/transport"
)

// Static error definitions for better error handling.
var (
	// ErrInvalidArgument indicates a bad method, authorization scheme, body or file path.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotImplemented indicates a body that cannot be encoded without streaming.
	ErrNotImplemented = errors.New("not implemented")
	// ErrParse indicates a response body that does not match its content type.
	ErrParse = errors.New("parse error")
	// ErrHTTPClient is the parent of every error reported after an exchange.
	ErrHTTPClient = errors.New("HTTP client error")
	// ErrResponse indicates that the server answered with an error status.
	ErrResponse = errors.New("response error")
	// ErrUnresolvableHost indicates that the host name could not be resolved.
	ErrUnresolvableHost = errors.New("could not resolve host")
	// ErrSSLCertificate indicates a TLS handshake or certificate failure.
	ErrSSLCertificate = errors.New("SSL connection failed")
	// ErrConnection indicates that the remote server could not be reached or dropped the exchange.
	ErrConnection = errors.New("unable to connect to remote server")
)

// maxErrorBodyLength caps the part of a response body quoted in ResponseError messages.
const maxErrorBodyLength = 256

//nolint:gochecknoglobals // Immutable classification tables.
var (
	sslErrorCodes = []transport.ErrorCode{
		transport.CodeSSLConnectError,
		transport.CodePeerFailedVerify,
		transport.CodeSSLCACertBadFile,
		transport.CodeSSLCertProblem,
		transport.CodeSSLCipher,
		transport.CodeSSLEngineNotFound,
		transport.CodeSSLEngineSetFailed,
		transport.CodeSSLPinnedPubKeyMatch,
	}
	connectionErrorCodes = []transport.ErrorCode{
		transport.CodeCouldNotConnect,
		transport.CodeTooManyRedirects,
		transport.CodeGotNothing,
		transport.CodeFailedInit,
		transport.CodeReadError,
		transport.CodeRecvError,
	}
)

// ResponseError is returned when the exchange succeeded but the status is 4xx or 5xx.
type ResponseError struct {
	// Response is the complete response, error body included.
	Response *Response
}

// Error implements error.
func (e *ResponseError) Error() string {
	body := e.Response.BodyString()
	if len(body) > maxErrorBodyLength {
		body = body[:maxErrorBodyLength] + "..."
	}

	return fmt.Sprintf("%v: status %d %s: %q",
		ErrResponse, e.Response.StatusCode(), e.Response.StatusText(), body)
}

// Unwrap makes ResponseError match ErrResponse and ErrHTTPClient.
func (e *ResponseError) Unwrap() []error {
	return []error{ErrResponse, ErrHTTPClient}
}

// UnresolvableHostError is returned when the host name of the request URL could not be resolved.
type UnresolvableHostError struct {
	// Host is the host name taken from the request URL.
	Host string
	// Code is the native transport error code.
	Code transport.ErrorCode
	// Message is the transport error message.
	Message string
}

// Error implements error.
func (e *UnresolvableHostError) Error() string {
	return fmt.Sprintf("%v %s", ErrUnresolvableHost, e.Host)
}

// Unwrap makes UnresolvableHostError match ErrUnresolvableHost and ErrHTTPClient.
func (e *UnresolvableHostError) Unwrap() []error {
	return []error{ErrUnresolvableHost, ErrHTTPClient}
}

// TransferError is returned for every other transport failure.
type TransferError struct {
	// Kind is ErrSSLCertificate, ErrConnection, formdata.ErrIO or ErrHTTPClient.
	Kind error
	// Code is the native transport error code.
	Code transport.ErrorCode
	// Message is the transport error message.
	Message string
	// StatusCode is the HTTP status received before the failure, zero if none.
	StatusCode int
	// Cause is the underlying error reported by the engine, if any.
	Cause error
}

// Error implements error.
func (e *TransferError) Error() string {
	if errors.Is(e.Kind, formdata.ErrIO) {
		return fmt.Sprintf("failed to read request body: %s", e.Message)
	}

	if errors.Is(e.Kind, ErrSSLCertificate) || errors.Is(e.Kind, ErrConnection) {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}

	return fmt.Sprintf("request failed with status %d (transport error %d: %s)",
		e.StatusCode, int(e.Code), e.Message)
}

// Unwrap makes TransferError match its Kind, ErrHTTPClient and its Cause.
func (e *TransferError) Unwrap() []error {
	errs := []error{ErrHTTPClient}

	if e.Kind != nil && !errors.Is(e.Kind, ErrHTTPClient) {
		errs = append(errs, e.Kind)
	}

	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}

	return errs
}

// classify turns a finished transfer into nil or one of the error kinds.
// A transfer fails when the engine reports an error code or the status is 4xx/5xx.
// An engine that rejects an error status on its own still yields a ResponseError,
// and a failing request body is reported as formdata.ErrIO rather than a connection error.
func classify(rawURL string, result *transport.Result, response *Response) error {
	if !result.Failed() && result.StatusCode/100 <= 3 {
		return nil
	}

	switch {
	case !result.Failed(),
		result.Code == transport.CodeHTTPReturnedError && result.StatusCode >= http.StatusBadRequest:
		return &ResponseError{Response: response}
	case result.Code == transport.CodeReadError && result.Err != nil:
		return newTransferError(formdata.ErrIO, result)
	case result.Code == transport.CodeCouldNotResolveHost:
		return &UnresolvableHostError{
			Host:    hostname(rawURL),
			Code:    result.Code,
			Message: result.Message,
		}
	case slices.Contains(sslErrorCodes, result.Code):
		return newTransferError(ErrSSLCertificate, result)
	case slices.Contains(connectionErrorCodes, result.Code):
		return newTransferError(ErrConnection, result)
	default:
		return newTransferError(ErrHTTPClient, result)
	}
}

func newTransferError(kind error, result *transport.Result) *TransferError {
	return &TransferError{
		Kind:       kind,
		Code:       result.Code,
		Message:    result.Message,
		StatusCode: result.StatusCode,
		Cause:      result.Err,
	}
}

func hostname(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return parsed.Hostname()
}
