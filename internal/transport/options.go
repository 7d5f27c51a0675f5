package transport

import (
	"io"
	"time"
)

// Option names an engine option.
type Option string

// Engine options. The comment states the expected value type.
const (
	// OptFollowRedirects (bool) follows 3xx responses. Off by default.
	OptFollowRedirects Option = "follow_redirects"
	// OptMaxRedirects (int) caps the number of followed redirects.
	OptMaxRedirects Option = "max_redirects"
	// OptTimeout (time.Duration or seconds as int) limits the whole exchange.
	OptTimeout Option = "timeout"
	// OptConnectTimeout (time.Duration or seconds as int) limits connection setup.
	OptConnectTimeout Option = "connect_timeout"
	// OptBinaryTransfer (bool) marks the body as binary; bodies are then never dumped to logs.
	OptBinaryTransfer Option = "binary_transfer"
	// OptInsecureSkipVerify (bool) disables server certificate verification.
	OptInsecureSkipVerify Option = "insecure_skip_verify"
	// OptCAFile (string) is a PEM bundle of trusted certificate authorities.
	OptCAFile Option = "ca_file"
	// OptProxyURL (string) routes the exchange through a proxy.
	OptProxyURL Option = "proxy_url"
	// OptUploadSpeedLimit (int64, bytes per second) throttles the request body.
	OptUploadSpeedLimit Option = "upload_speed_limit"
	// OptDownloadSpeedLimit (int64, bytes per second) throttles the response body.
	OptDownloadSpeedLimit Option = "download_speed_limit"
	// OptUploadProgress (io.Writer) receives a copy of every uploaded byte.
	OptUploadProgress Option = "upload_progress"
	// OptDownloadProgress (io.Writer) receives a copy of every downloaded byte.
	OptDownloadProgress Option = "download_progress"
	// OptUserAgent (string) overrides the default User-Agent.
	OptUserAgent Option = "user_agent"
)

// DefaultMaxRedirects is used when OptMaxRedirects is not set.
const DefaultMaxRedirects = 10

// BoolOption returns a boolean option, or def if it is unset or of another type.
func (t *Transfer) BoolOption(opt Option, def bool) bool {
	if value, ok := t.Options[opt].(bool); ok {
		return value
	}

	return def
}

// StringOption returns a string option, or an empty string.
func (t *Transfer) StringOption(opt Option) string {
	value, _ := t.Options[opt].(string)

	return value
}

// IntOption returns an integer option, or def if it is unset or not an integer.
func (t *Transfer) IntOption(opt Option, def int64) int64 {
	switch value := t.Options[opt].(type) {
	case int:
		return int64(value)
	case int32:
		return int64(value)
	case int64:
		return value
	case uint32:
		return int64(value)
	default:
		return def
	}
}

// DurationOption returns a duration option. Plain integers are read as seconds.
func (t *Transfer) DurationOption(opt Option) time.Duration {
	switch value := t.Options[opt].(type) {
	case time.Duration:
		return value
	case int:
		return time.Duration(value) * time.Second
	case int64:
		return time.Duration(value) * time.Second
	case float64:
		return time.Duration(value * float64(time.Second))
	default:
		return 0
	}
}

// WriterOption returns an io.Writer option, or nil.
func (t *Transfer) WriterOption(opt Option) io.Writer {
	value, _ := t.Options[opt].(io.Writer)

	return value
}
