package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/oshokin/httpreq/internal/message"
	"github.com/oshokin/httpreq/internal/status"
)

// Response is the outcome of an exchange: status, body and the collected headers.
type Response struct {
	message.Message

	// statusCode is the final HTTP status.
	statusCode int
	// body is the complete response body.
	body []byte
}

// NewResponse creates a response. A nil header bag is treated as empty.
func NewResponse(statusCode int, body []byte, headers *message.Headers) *Response {
	return &Response{
		Message:    message.New(headers, nil),
		statusCode: statusCode,
		body:       body,
	}
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// StatusText returns the reason phrase of the status code.
func (r *Response) StatusText() string {
	return status.Message(r.statusCode)
}

// Body returns the raw response body.
func (r *Response) Body() []byte {
	return r.body
}

// BodyString returns the response body as a string.
func (r *Response) BodyString() string {
	return string(r.body)
}

// Stream returns a fresh reader over the response body.
func (r *Response) Stream() io.Reader {
	return bytes.NewReader(r.body)
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return status.ClassOf(r.statusCode) == status.ClassSuccess
}

// IsRedirect reports a 3xx status.
func (r *Response) IsRedirect() bool {
	return status.ClassOf(r.statusCode) == status.ClassRedirection
}

// IsClientError reports a 4xx status.
func (r *Response) IsClientError() bool {
	return status.ClassOf(r.statusCode) == status.ClassClientError
}

// IsServerError reports a 5xx status.
func (r *Response) IsServerError() bool {
	return status.ClassOf(r.statusCode) == status.ClassServerError
}

// ParsedBody decodes the body according to its media type:
// JSON becomes a generic value, plain text a string and anything else an io.Reader.
func (r *Response) ParsedBody() (any, error) {
	switch mediaType(r.Header(message.HeaderContentType)) {
	case message.ContentTypeJSON:
		var parsed any

		if err := r.JSON(&parsed); err != nil {
			return nil, err
		}

		return parsed, nil
	case message.ContentTypeText:
		return r.BodyString(), nil
	default:
		return r.Stream(), nil
	}
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("%w: invalid response JSON: %w", ErrParse, err)
	}

	return nil
}

// Query extracts a value from a JSON body using a gjson path such as "data.items.0.id".
func (r *Response) Query(path string) gjson.Result {
	return gjson.GetBytes(r.body, path)
}

// mediaType strips parameters from a content type and lowercases it.
func mediaType(contentType string) string {
	value, _, _ := strings.Cut(contentType, ";")

	return strings.ToLower(strings.TrimSpace(value))
}
