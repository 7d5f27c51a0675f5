package app

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/httpreq/internal/formdata"
	"github.com/oshokin/httpreq/internal/message"
	"github.com/oshokin/httpreq/internal/utils"
)

// Static error definitions for better error handling.
var (
	// ErrInvalidHeader indicates a header option without a colon.
	ErrInvalidHeader = errors.New("header must look like 'Name: value'")
	// ErrInvalidFormField indicates a form option without an equals sign.
	ErrInvalidFormField = errors.New("form field must look like 'name=value' or 'name=@path'")
	// ErrConflictingBody indicates that both --data and --form were given.
	ErrConflictingBody = errors.New("--data and --form cannot be combined")
	// ErrNoMatch indicates that the --query path matched nothing in the response.
	ErrNoMatch = errors.New("query matched nothing")
)

// stdinPath makes --data read the body from standard input.
const stdinPath = "-"

// RequestOptions holds the per-invocation request settings taken from the command line.
type RequestOptions struct {
	// Method is the request method. Empty means POST with a body and GET without.
	Method string
	// URL is the target, absolute or relative to the configured base URL.
	URL string
	// Headers are "Name: value" lines.
	Headers []string
	// Params are "name=value" query parameters.
	Params []string
	// Data is the raw body, or "@path" to stream a file ("@-" for standard input).
	Data string
	// Form are multipart fields: "name=value" or "name=@path[;type=mime]".
	Form []string
	// JSON marks the body as JSON.
	JSON bool
	// Blob marks the body as binary.
	Blob bool
	// User is "user:password" for basic authorization.
	User string
	// Bearer is a bearer token.
	Bearer string
	// Include prints the status line and response headers before the body.
	Include bool
	// Output saves the body to a file instead of printing it.
	Output string
	// Query prints only the value at this JSON path.
	Query string
	// Progress shows upload and download progress bars.
	Progress bool
}

// method resolves the request method.
func (o *RequestOptions) method() string {
	if o.Method != "" {
		return strings.ToUpper(o.Method)
	}

	if o.Data != "" || len(o.Form) > 0 {
		return message.MethodPost
	}

	return message.MethodGet
}

func parseHeaders(lines []string) ([][2]string, error) {
	headers := make([][2]string, 0, len(lines))

	for _, line := range lines {
		name, value, found := utils.SplitPair(line, ":")
		if !found || name == "" {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidHeader, line)
		}

		headers = append(headers, [2]string{name, value})
	}

	return headers, nil
}

func parseParams(pairs []string) map[string]string {
	params := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		name, value, _ := strings.Cut(pair, "=")
		params[name] = value
	}

	return params
}

// openedFiles closes every file opened while building a body.
type openedFiles []*os.File

func (f openedFiles) Close() {
	for _, file := range f {
		_ = file.Close()
	}
}

// newFormBody builds a multipart encoder. Files are streamed with their size.
func newFormBody(fields []string) (*formdata.Encoder, openedFiles, error) {
	var (
		enc   = formdata.NewEncoder()
		files openedFiles
	)

	for _, field := range fields {
		name, value, found := strings.Cut(field, "=")
		if !found || name == "" {
			files.Close()

			return nil, nil, fmt.Errorf("%w: '%s'", ErrInvalidFormField, field)
		}

		if !strings.HasPrefix(value, "@") {
			if err := enc.AddField(name, value); err != nil {
				files.Close()

				return nil, nil, err
			}

			continue
		}

		file, contentType, size, err := openFormFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			files.Close()

			return nil, nil, err
		}

		files = append(files, file)

		err = enc.AddFile(name, formdata.Sized{Content: file, Length: size}, contentType, filepath.Base(file.Name()))
		if err != nil {
			files.Close()

			return nil, nil, err
		}
	}

	return enc, files, nil
}

// openFormFile opens "path[;type=mime]" and guesses the content type from the extension when absent.
func openFormFile(value string) (*os.File, string, int64, error) {
	path, params, _ := strings.Cut(value, ";")

	contentType := ""
	if key, value, found := utils.SplitPair(params, "="); found && key == "type" {
		contentType = value
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
	}

	if contentType == "" {
		contentType = message.ContentTypeBinary
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, "", 0, fmt.Errorf("failed to open form file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()

		return nil, "", 0, fmt.Errorf("failed to stat form file: %w", err)
	}

	return file, contentType, stat.Size(), nil
}

// newDataBody returns the raw body, or an open file for "@path".
func newDataBody(data string) (any, openedFiles, error) {
	if !strings.HasPrefix(data, "@") {
		return data, nil, nil
	}

	path := strings.TrimPrefix(data, "@")
	if path == stdinPath {
		return os.Stdin, nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open data file: %w", err)
	}

	return file, openedFiles{file}, nil
}
