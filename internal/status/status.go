package status

import (
	"fmt"
	"slices"
)

// Class groups status codes by their first digit.
type Class uint8

const (
	// ClassUnknown is reported for codes outside the 100-599 range.
	ClassUnknown Class = iota
	// ClassInformational covers 1xx codes.
	ClassInformational
	// ClassSuccess covers 2xx codes.
	ClassSuccess
	// ClassRedirection covers 3xx codes.
	ClassRedirection
	// ClassClientError covers 4xx codes.
	ClassClientError
	// ClassServerError covers 5xx codes.
	ClassServerError
)

// Status codes known to the registry, including common non-standard ones.
const (
	Continue           = 100
	SwitchingProtocols = 101
	Processing         = 102
	EarlyHints         = 103

	OK                          = 200
	Created                     = 201
	Accepted                    = 202
	NonAuthoritativeInformation = 203
	NoContent                   = 204
	ResetContent                = 205
	PartialContent              = 206
	MultiStatus                 = 207
	AlreadyReported             = 208
	IMUsed                      = 226

	MultipleChoices   = 300
	MovedPermanently  = 301
	Found             = 302
	SeeOther          = 303
	NotModified       = 304
	UseProxy          = 305
	SwitchProxy       = 306
	TemporaryRedirect = 307
	PermanentRedirect = 308

	BadRequest                  = 400
	Unauthorized                = 401
	PaymentRequired             = 402
	Forbidden                   = 403
	NotFound                    = 404
	MethodNotAllowed            = 405
	NotAcceptable               = 406
	ProxyAuthenticationRequired = 407
	RequestTimeout              = 408
	Conflict                    = 409
	Gone                        = 410
	LengthRequired              = 411
	PreconditionFailed          = 412
	PayloadTooLarge             = 413
	URITooLong                  = 414
	UnsupportedMediaType        = 415
	RangeNotSatisfiable         = 416
	ExpectationFailed           = 417
	ImATeapot                   = 418
	PageExpired                 = 419
	MisdirectedRequest          = 421
	UnprocessableEntity         = 422
	Locked                      = 423
	FailedDependency            = 424
	UpgradeRequired             = 426
	PreconditionRequired        = 428
	TooManyRequests             = 429
	RequestHeaderFieldsTooLarge = 431
	UnavailableForLegalReasons  = 451
	RequestHeaderTooLarge       = 494
	HTTPRequestSentToHTTPSPort  = 497
	ClientClosedRequest         = 499

	InternalServerError           = 500
	NotImplemented                = 501
	BadGateway                    = 502
	ServiceUnavailable            = 503
	GatewayTimeout                = 504
	HTTPVersionNotSupported       = 505
	VariantAlsoNegotiates         = 506
	InsufficientStorage           = 507
	LoopDetected                  = 508
	BandwidthLimitExceeded        = 509
	NotExtended                   = 510
	NetworkAuthenticationRequired = 511
	InvalidSSLCertificate         = 526
	SiteIsFrozen                  = 530
	NetworkReadTimeoutError       = 598
)

//nolint:gochecknoglobals // Immutable lookup table.
var messages = map[int]string{
	Continue:           "Continue",
	SwitchingProtocols: "Switching Protocols",
	Processing:         "Processing",
	EarlyHints:         "Early Hints",

	OK:                          "OK",
	Created:                     "Created",
	Accepted:                    "Accepted",
	NonAuthoritativeInformation: "Non-Authoritative Information",
	NoContent:                   "No Content",
	ResetContent:                "Reset Content",
	PartialContent:              "Partial Content",
	MultiStatus:                 "Multi-Status",
	AlreadyReported:             "Already Reported",
	IMUsed:                      "IM Used",

	MultipleChoices:   "Multiple Choices",
	MovedPermanently:  "Moved Permanently",
	Found:             "Found",
	SeeOther:          "See Other",
	NotModified:       "Not Modified",
	UseProxy:          "Use Proxy",
	SwitchProxy:       "Switch Proxy",
	TemporaryRedirect: "Temporary Redirect",
	PermanentRedirect: "Permanent Redirect",

	BadRequest:                  "Bad Request",
	Unauthorized:                "Unauthorized",
	PaymentRequired:             "Payment Required",
	Forbidden:                   "Forbidden",
	NotFound:                    "Not Found",
	MethodNotAllowed:            "Method Not Allowed",
	NotAcceptable:               "Not Acceptable",
	ProxyAuthenticationRequired: "Proxy Authentication Required",
	RequestTimeout:              "Request Timeout",
	Conflict:                    "Conflict",
	Gone:                        "Gone",
	LengthRequired:              "Length Required",
	PreconditionFailed:          "Precondition Failed",
	PayloadTooLarge:             "Request Entity Too Large",
	URITooLong:                  "Request-URI Too Long",
	UnsupportedMediaType:        "Unsupported Media Type",
	RangeNotSatisfiable:         "Requested Range Not Satisfiable",
	ExpectationFailed:           "Expectation Failed",
	ImATeapot:                   "I'm a teapot",
	PageExpired:                 "Page Expired",
	MisdirectedRequest:          "Misdirected Request",
	UnprocessableEntity:         "Unprocessable Entity",
	Locked:                      "Locked",
	FailedDependency:            "Failed Dependency",
	UpgradeRequired:             "Upgrade Required",
	PreconditionRequired:        "Precondition Required",
	TooManyRequests:             "Too Many Requests",
	RequestHeaderFieldsTooLarge: "Request Header Fields Too Large",
	UnavailableForLegalReasons:  "Unavailable For Legal Reasons",
	RequestHeaderTooLarge:       "Request Header Too Large",
	HTTPRequestSentToHTTPSPort:  "HTTP Request Sent to HTTPS Port",
	ClientClosedRequest:         "Client Closed Request",

	InternalServerError:           "Internal Server Error",
	NotImplemented:                "Not Implemented",
	BadGateway:                    "Bad Gateway",
	ServiceUnavailable:            "Service Unavailable",
	GatewayTimeout:                "Gateway Timeout",
	HTTPVersionNotSupported:       "HTTP Version Not Supported",
	VariantAlsoNegotiates:         "Variant Also Negotiates",
	InsufficientStorage:           "Insufficient Storage",
	LoopDetected:                  "Loop Detected",
	BandwidthLimitExceeded:        "Bandwidth Limit Exceeded",
	NotExtended:                   "Not Extended",
	NetworkAuthenticationRequired: "Network Authentication Required",
	InvalidSSLCertificate:         "Invalid SSL Certificate",
	SiteIsFrozen:                  "Site is frozen",
	NetworkReadTimeoutError:       "Network read timeout error",
}

//nolint:gochecknoglobals // Immutable lookup table.
var webDAVCodes = map[int]struct{}{
	Processing:          {},
	MultiStatus:         {},
	AlreadyReported:     {},
	UnprocessableEntity: {},
	Locked:              {},
	FailedDependency:    {},
	InsufficientStorage: {},
	LoopDetected:        {},
}

// Message returns the reason phrase of a code, or an empty string for unknown codes.
func Message(code int) string {
	return messages[code]
}

// HeaderLine renders a status line such as "HTTP/1.1 404 Not Found".
func HeaderLine(code int, httpVersion string) string {
	return fmt.Sprintf("HTTP/%s %d %s", httpVersion, code, Message(code))
}

// IsKnown reports whether the registry has a reason phrase for code.
func IsKnown(code int) bool {
	_, ok := messages[code]

	return ok
}

// IsError reports whether code denotes a client or server error.
func IsError(code int) bool {
	return code >= BadRequest
}

// IsWebDAV reports whether code was introduced by the WebDAV extensions.
func IsWebDAV(code int) bool {
	_, ok := webDAVCodes[code]

	return ok
}

// ClassOf returns the class of code.
func ClassOf(code int) Class {
	if code < 100 || code > 599 {
		return ClassUnknown
	}

	return Class(code / 100)
}

// Codes returns the known codes of a class in ascending order.
func Codes(class Class) []int {
	result := make([]int, 0, len(messages))

	for code := range messages {
		if ClassOf(code) == class {
			result = append(result, code)
		}
	}

	slices.Sort(result)

	return result
}

// WebDAVCodes returns the WebDAV extension codes in ascending order.
func WebDAVCodes() []int {
	result := make([]int, 0, len(webDAVCodes))
	for code := range webDAVCodes {
		result = append(result, code)
	}

	slices.Sort(result)

	return result
}

// ErrorCodes returns every known client and server error code in ascending order.
func ErrorCodes() []int {
	return append(Codes(ClassClientError), Codes(ClassServerError)...)
}

// String implements fmt.Stringer.
func (c Class) String() string {
	switch c {
	case ClassInformational:
		return "informational"
	case ClassSuccess:
		return "success"
	case ClassRedirection:
		return "redirection"
	case ClassClientError:
		return "client error"
	case ClassServerError:
		return "server error"
	case ClassUnknown:
		return "unknown"
	}

	return "unknown"
}
