package formdata

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// UnknownLength marks content whose size cannot be determined in advance.
const UnknownLength int64 = -1

// ReadFunc produces up to maxLength bytes of content per call.
// Returning an empty slice signals the end of the content.
type ReadFunc func(maxLength int) ([]byte, error)

// Sized wraps streaming content with its length in bytes.
// Without it readers, files and callbacks are treated as having unknown length.
type Sized struct {
	// Content is an io.Reader, *os.File, ReadFunc or func(int) ([]byte, error).
	Content any
	// Length is the exact number of bytes Content will produce.
	Length int64
}

// part is one contiguous piece of the body together with its declared length.
type part struct {
	// source produces the bytes of the part.
	source source
	// length is the size in bytes, or UnknownLength.
	length int64
}

// source is the closed set of content producers an encoder understands.
type source interface {
	isSource()
}

// bytesSource is literal in-memory content. Its read offset is tracked by the encoder.
type bytesSource []byte

// readerSource is a generic stream that tracks its own position.
type readerSource struct {
	r io.Reader
}

// fileSource is an open file handle. OS-level read failures surface as ErrIO.
type fileSource struct {
	f *os.File
}

// funcSource is a pull callback.
type funcSource struct {
	fn ReadFunc
}

func (bytesSource) isSource()  {}
func (readerSource) isSource() {}
func (fileSource) isSource()   {}
func (funcSource) isSource()   {}

// newPart converts user content into a part.
// Literal content always reports its real length; streaming content reports
// the length given through Sized, or UnknownLength.
func newPart(content any) (part, error) {
	length := UnknownLength

	if sized, ok := content.(Sized); ok {
		content = sized.Content

		if sized.Length >= 0 {
			length = sized.Length
		}
	}

	switch v := content.(type) {
	case string:
		return literalPart([]byte(v)), nil
	case []byte:
		data := make([]byte, len(v))
		copy(data, v)

		return literalPart(data), nil
	case *os.File:
		if v == nil {
			return part{}, fmt.Errorf("%w: nil file", ErrUnsupportedPartType)
		}

		return part{source: fileSource{f: v}, length: length}, nil
	case ReadFunc:
		if v == nil {
			return part{}, fmt.Errorf("%w: nil callback", ErrUnsupportedPartType)
		}

		return part{source: funcSource{fn: v}, length: length}, nil
	case func(int) ([]byte, error):
		if v == nil {
			return part{}, fmt.Errorf("%w: nil callback", ErrUnsupportedPartType)
		}

		return part{source: funcSource{fn: v}, length: length}, nil
	case io.Reader:
		return part{source: readerSource{r: v}, length: length}, nil
	case fmt.Stringer:
		return literalPart([]byte(v.String())), nil
	case bool:
		return literalPart([]byte(strconv.FormatBool(v))), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return literalPart(fmt.Append(nil, v)), nil
	default:
		return part{}, fmt.Errorf("%w: %T", ErrUnsupportedPartType, content)
	}
}

func literalPart(data []byte) part {
	return part{source: bytesSource(data), length: int64(len(data))}
}

// maxEmptyReads bounds consecutive (0, nil) reads before a stream is considered stuck.
const maxEmptyReads = 100

// readStream performs one bounded read from a stream-like source.
// Only io.EOF ends the stream; an empty result means it is exhausted.
func readStream(r io.Reader, maxLength int) ([]byte, error) {
	buf := make([]byte, maxLength)

	for range maxEmptyReads {
		n, err := r.Read(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}

		if n > 0 || err != nil {
			return buf[:n], nil
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrIO, io.ErrNoProgress)
}

// readCallback performs one bounded pull from a callback source.
func readCallback(fn ReadFunc, maxLength int) ([]byte, error) {
	data, err := fn(maxLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	if len(data) > maxLength {
		return nil, fmt.Errorf("%w: callback returned %d bytes, at most %d requested", ErrIO, len(data), maxLength)
	}

	return data, nil
}
