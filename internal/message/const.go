package message

import "slices"

// Authorization schemes understood by the request builder.
const (
	// AuthorizationBasic encodes "user:password" in base64.
	AuthorizationBasic = "Basic"
	// AuthorizationBearer sends a token verbatim.
	AuthorizationBearer = "Bearer"
	// AuthorizationDigest sends precomputed digest credentials verbatim.
	AuthorizationDigest = "Digest"
	// AuthorizationOAuth sends OAuth credentials verbatim.
	AuthorizationOAuth = "OAuth"
)

// Content types with special body handling.
const (
	ContentTypeBinary    = "application/octet-stream"
	ContentTypeForm      = "application/x-www-form-urlencoded"
	ContentTypeJSON      = "application/json"
	ContentTypeJSONUTF8  = "application/json; charset=utf-8"
	ContentTypeMultipart = "multipart/form-data"
	ContentTypeText      = "text/plain"
)

// Well-known header names.
const (
	HeaderAuthorization = "Authorization"
	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
)

// Supported request methods.
const (
	MethodDelete = "DELETE"
	MethodGet    = "GET"
	MethodHead   = "HEAD"
	MethodPatch  = "PATCH"
	MethodPost   = "POST"
	MethodPut    = "PUT"
)

//nolint:gochecknoglobals // Immutable method sets.
var (
	methods         = []string{MethodGet, MethodDelete, MethodHead, MethodPost, MethodPut, MethodPatch}
	methodsWithBody = []string{MethodPost, MethodPut, MethodPatch}
)

// IsValidMethod reports whether method, in upper case, is supported.
func IsValidMethod(method string) bool {
	return slices.Contains(methods, method)
}

// AllowsBody reports whether requests with the given method may carry a body.
func AllowsBody(method string) bool {
	return slices.Contains(methodsWithBody, method)
}

// Methods returns the supported request methods.
func Methods() []string {
	return slices.Clone(methods)
}
