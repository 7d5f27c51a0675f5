package http

import (
	"context"
	"errors"
	"io"
	"sync"

	"golang.org/x/time/rate"
)

// throttledReader limits the throughput of the wrapped reader.
type throttledReader struct {
	// ctx aborts waiting for the limiter.
	ctx context.Context //nolint:containedctx // The reader outlives no request; it is bound to one.
	// r is the underlying reader.
	r io.Reader
	// limiter hands out byte tokens.
	limiter *rate.Limiter
}

// newThrottledReader wraps r so that it yields at most bytesPerSecond bytes per second.
// A non-positive limit returns r unchanged.
func newThrottledReader(ctx context.Context, r io.Reader, bytesPerSecond int64) io.Reader {
	if bytesPerSecond <= 0 {
		return r
	}

	burst := int(min(bytesPerSecond, readChunkSize))

	return &throttledReader{
		ctx:     ctx,
		r:       r,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), burst),
	}
}

// Read implements io.Reader.
func (r *throttledReader) Read(p []byte) (int, error) {
	if burst := r.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}

	n, err := r.r.Read(p)
	if n > 0 {
		if waitErr := r.limiter.WaitN(r.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}

	return n, err
}

// pullReader adapts a bounded pull callback to io.Reader.
type pullReader struct {
	// read returns up to maxLength bytes; an empty chunk ends the stream.
	read func(maxLength int) ([]byte, error)
	// pending holds bytes returned beyond what the last Read could take.
	pending []byte
}

// Read implements io.Reader.
func (r *pullReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if len(r.pending) == 0 {
		chunk, err := r.read(len(p))
		if err != nil {
			return 0, err
		}

		if len(chunk) == 0 {
			return 0, io.EOF
		}

		r.pending = chunk
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]

	return n, nil
}

// sourceReader remembers the first failure of an upload source.
// net/http reads request bodies on its own goroutine, hence the lock.
type sourceReader struct {
	// r is the upload source.
	r io.Reader

	mu  sync.Mutex
	err error
}

// Read implements io.Reader.
func (r *sourceReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		r.mu.Lock()
		if r.err == nil {
			r.err = err
		}
		r.mu.Unlock()
	}

	return n, err
}

// Err returns the first non-EOF error returned by the source.
func (r *sourceReader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}
