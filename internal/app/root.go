package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/oshokin/httpreq/internal/client"
	"github.com/oshokin/httpreq/internal/config"
	"github.com/oshokin/httpreq/internal/constants"
	"github.com/oshokin/httpreq/internal/formdata"
	"github.com/oshokin/httpreq/internal/logger"
	"github.com/oshokin/httpreq/internal/message"
	"github.com/oshokin/httpreq/internal/request"
	"github.com/oshokin/httpreq/internal/status"
	"github.com/oshokin/httpreq/internal/transport"
)

const (
	// httpVersion is printed in the status line of --include output.
	httpVersion = "1.1"

	progressBarWidth    = 10
	progressBarThrottle = 65 * time.Millisecond
	progressBarSpinner  = 14
)

// ExecuteRootCommand builds the request described by opts, runs it and writes the response to out.
// A response with an error status is still printed before its error is returned.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, opts *RequestOptions, out io.Writer) error {
	c, err := client.NewClient(cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize client: %w", err)
	}

	r, files, err := buildRequest(c, opts)
	if err != nil {
		return err
	}

	defer files.Close()

	if opts.Progress && logger.Level() <= zap.InfoLevel {
		attachProgress(r, os.Stderr)
	}

	response, runErr := r.Run(ctx)
	if runErr != nil {
		var responseErr *request.ResponseError
		if !errors.As(runErr, &responseErr) {
			return runErr
		}

		response = responseErr.Response
	}

	if err = printResponse(ctx, response, opts, out); err != nil {
		return err
	}

	return runErr
}

func buildRequest(c client.Client, opts *RequestOptions) (*request.Request, openedFiles, error) {
	if opts.Data != "" && len(opts.Form) > 0 {
		return nil, nil, ErrConflictingBody
	}

	headers, err := parseHeaders(opts.Headers)
	if err != nil {
		return nil, nil, err
	}

	r, err := c.Request(opts.method(), opts.URL, parseParams(opts.Params), nil, nil)
	if err != nil {
		return nil, nil, err
	}

	for _, header := range headers {
		r.WithHeader(header[0], header[1], false)
	}

	if err = applyAuthorization(r, opts); err != nil {
		return nil, nil, err
	}

	if opts.JSON {
		r.AsJSON(true)
	}

	if opts.Blob {
		r.AsBlob(true)
	}

	var (
		body  any
		files openedFiles
	)

	switch {
	case len(opts.Form) > 0:
		body, files, err = newFormBody(opts.Form)
	case opts.Data != "":
		body, files, err = newDataBody(opts.Data)
	}

	if err != nil {
		return nil, nil, err
	}

	if body != nil {
		if err = r.WithBody(body); err != nil {
			files.Close()

			return nil, nil, err
		}
	}

	return r, files, nil
}

func applyAuthorization(r *request.Request, opts *RequestOptions) error {
	if opts.User != "" {
		user, password, _ := strings.Cut(opts.User, ":")

		if err := r.WithAuthorization(message.AuthorizationBasic, user, password); err != nil {
			return err
		}
	}

	if opts.Bearer != "" {
		if err := r.WithAuthorization(message.AuthorizationBearer, opts.Bearer, ""); err != nil {
			return err
		}
	}

	return nil
}

// attachProgress wires progress bars drawn on w into the transfer options.
// w must not be the writer that receives the response body.
func attachProgress(r *request.Request, w io.Writer) {
	var uploadSize int64 = -1

	switch body := r.Body().(type) {
	case *formdata.Encoder:
		if body.IsSealed() || body.Seal() == nil {
			uploadSize = body.ContentLength()
		}
	case *os.File:
		if stat, err := body.Stat(); err == nil && stat.Mode().IsRegular() {
			uploadSize = stat.Size()
		}
	}

	if r.Body() != nil {
		r.WithOption(transport.OptUploadProgress, newProgressBar(uploadSize, "Uploading", w))
	}

	r.WithOption(transport.OptDownloadProgress, newProgressBar(-1, "Downloading", w))
}

// newProgressBar mirrors progressbar.DefaultBytes with an explicit output.
func newProgressBar(size int64, description string, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		size,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(progressBarWidth),
		progressbar.OptionThrottle(progressBarThrottle),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSpinnerType(progressBarSpinner),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func printResponse(ctx context.Context, response *request.Response, opts *RequestOptions, out io.Writer) error {
	if opts.Include {
		printHead(response, out)
	}

	switch {
	case opts.Query != "":
		result := response.Query(opts.Query)
		if !result.Exists() {
			return fmt.Errorf("%w: '%s'", ErrNoMatch, opts.Query)
		}

		_, err := fmt.Fprintln(out, result.String())

		return err
	case opts.Output != "":
		if err := os.WriteFile(opts.Output, response.Body(), constants.DefaultFilePermissions); err != nil {
			return fmt.Errorf("failed to save response body: %w", err)
		}

		logger.Infof(ctx, "Saved %s to '%s'", humanize.Bytes(uint64(len(response.Body()))), opts.Output)

		return nil
	default:
		_, err := out.Write(response.Body())

		return err
	}
}

// printHead writes the status line, colored by class, and the response headers.
func printHead(response *request.Response, out io.Writer) {
	statusColor := color.New(color.FgGreen, color.Bold)

	switch status.ClassOf(response.StatusCode()) {
	case status.ClassRedirection:
		statusColor = color.New(color.FgCyan, color.Bold)
	case status.ClassClientError:
		statusColor = color.New(color.FgYellow, color.Bold)
	case status.ClassServerError, status.ClassUnknown:
		statusColor = color.New(color.FgRed, color.Bold)
	}

	statusColor.Fprintln(out, status.HeaderLine(response.StatusCode(), httpVersion))

	headers := response.Headers()
	nameColor := color.New(color.FgCyan).SprintFunc()

	for _, name := range headers.Names() {
		for _, value := range headers.Values(name) {
			fmt.Fprintf(out, "%s: %s\n", nameColor(name), value)
		}
	}

	fmt.Fprintln(out)
}
