package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/oshokin/httpreq/internal/formdata"
	"github.com/oshokin/httpreq/internal/message"
)

// EncodedBody returns the body encoded for the current content type.
//
// Streams are read to the end and multipart encoders are sealed and buffered.
// Other bodies are encoded as JSON, form data or text depending on the
// content type; strings and byte slices are always sent as they are.
// Multipart content needs a *formdata.Encoder body and fails with
// ErrNotImplemented otherwise.
func (r *Request) EncodedBody() ([]byte, error) {
	return encodeBody(r.body, r.ContentType())
}

func encodeBody(body any, contentType string) ([]byte, error) {
	switch value := body.(type) {
	case nil:
		return nil, nil
	case *formdata.Encoder:
		return value.Bytes()
	case io.Reader:
		data, err := io.ReadAll(value)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}

		return data, nil
	}

	switch mediaType(contentType) {
	case message.ContentTypeJSON:
		return encodeJSON(body)
	case message.ContentTypeForm:
		if values, ok := formValues(body); ok {
			return []byte(values.Encode()), nil
		}

		return rawBody(body, contentType)
	case message.ContentTypeText:
		if raw, err := rawBody(body, contentType); err == nil {
			return raw, nil
		}

		return []byte(fmt.Sprint(body)), nil
	case message.ContentTypeMultipart:
		return nil, fmt.Errorf("%w: multipart bodies must be built with formdata.Encoder", ErrNotImplemented)
	default:
		return rawBody(body, contentType)
	}
}

// encodeJSON marshals without escaping HTML characters. Pre-encoded strings
// and byte slices are passed through.
func encodeJSON(body any) ([]byte, error) {
	switch value := body.(type) {
	case string:
		return []byte(value), nil
	case []byte:
		return value, nil
	case json.RawMessage:
		return value, nil
	}

	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(body); err != nil {
		return nil, fmt.Errorf("%w: failed to encode JSON body: %w", ErrInvalidArgument, err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func rawBody(body any, contentType string) ([]byte, error) {
	switch value := body.(type) {
	case string:
		return []byte(value), nil
	case []byte:
		return value, nil
	case fmt.Stringer:
		return []byte(value.String()), nil
	default:
		return nil, fmt.Errorf("%w: cannot encode %T as %q", ErrInvalidArgument, body, contentType)
	}
}

func formValues(body any) (url.Values, bool) {
	switch value := body.(type) {
	case url.Values:
		return value, true
	case map[string][]string:
		return url.Values(value), true
	case map[string]string:
		values := make(url.Values, len(value))
		for name, v := range value {
			values.Set(name, v)
		}

		return values, true
	case map[string]any:
		values := make(url.Values, len(value))
		for name, v := range value {
			values[name] = formField(v)
		}

		return values, true
	default:
		return nil, false
	}
}

func formField(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{""}
	case bool:
		if v {
			return []string{"1"}
		}

		return []string{"0"}
	case []string:
		return v
	case []any:
		fields := make([]string, 0, len(v))
		for _, item := range v {
			fields = append(fields, formField(item)...)
		}

		return fields
	case float64:
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}
	default:
		return []string{fmt.Sprint(v)}
	}
}

// hasBody reports whether body carries content worth sending.
func hasBody(body any) bool {
	switch value := body.(type) {
	case nil:
		return false
	case string:
		return value != ""
	case []byte:
		return len(value) > 0
	default:
		return true
	}
}
