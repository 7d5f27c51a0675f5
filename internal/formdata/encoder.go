package formdata

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
)

const (
	// DefaultChunkSize is the read size Buffer uses when none is given.
	DefaultChunkSize = 8192

	// boundarySize is the number of random bytes behind a boundary.
	boundarySize = 12

	eol       = "\r\n"
	separator = "--"
)

// Encoder assembles a multipart/form-data body.
//
// The encoder goes through three states: building (parts may be appended),
// sealed (the closing delimiter is written and the body may be read) and
// buffered (the body has been collapsed into a single in-memory part).
// An Encoder is not safe for concurrent use.
type Encoder struct {
	// parts is the ordered body, headers and content interleaved.
	parts []part
	// boundary separates the parts and never changes.
	boundary string
	// contentLength is the total size, or UnknownLength once any part has unknown size.
	contentLength int64
	// sealed is set once the closing delimiter has been appended.
	sealed bool
	// buffered is set once the body has been collapsed by Buffer.
	buffered bool
	// index points at the part currently being read.
	index int
	// offset is the read position inside the current literal part.
	offset int
}

// NewEncoder creates an empty encoder with a fresh random boundary.
func NewEncoder() *Encoder {
	return newEncoderWithBoundary(generateBoundary())
}

// NewEncoderWithFields creates an encoder pre-populated with text fields.
// Fields are added in lexical order of their names.
func NewEncoderWithFields(fields map[string]any) (*Encoder, error) {
	enc := NewEncoder()

	if err := enc.AddFields(fields); err != nil {
		return nil, err
	}

	return enc, nil
}

func newEncoderWithBoundary(boundary string) *Encoder {
	return &Encoder{
		boundary: boundary,
	}
}

// AddField appends a form field. The value may be any content accepted by AddFile;
// scalars are written in their textual form.
func (e *Encoder) AddField(name string, value any) error {
	return e.addPart(name, value, "", "")
}

// AddFields appends several fields in lexical order of their names.
func (e *Encoder) AddFields(fields map[string]any) error {
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if err := e.AddField(name, fields[name]); err != nil {
			return err
		}
	}

	return nil
}

// AddFile appends a file attachment.
// Content may be a string, []byte, io.Reader, *os.File, ReadFunc or a Sized wrapper
// around a streaming source. An empty filename defaults to the field name.
func (e *Encoder) AddFile(name string, content any, contentType, filename string) error {
	if filename == "" {
		filename = name
	}

	return e.addPart(name, content, contentType, filename)
}

// Seal appends the closing delimiter. Nothing can be appended afterwards,
// and sealing twice is an error.
func (e *Encoder) Seal() error {
	if e.sealed {
		return fmt.Errorf("%w: encoder is already sealed", ErrInvalidState)
	}

	e.append(literalPart([]byte(separator + e.boundary + separator + eol)))
	e.sealed = true

	return nil
}

// Read returns up to maxLength bytes of the body, sealing the encoder first if needed.
// An empty result with a nil error means the body has been fully read.
// A non-positive maxLength returns an empty result and leaves the encoder untouched.
func (e *Encoder) Read(maxLength int) ([]byte, error) {
	if maxLength <= 0 {
		return []byte{}, nil
	}

	if !e.sealed {
		if err := e.Seal(); err != nil {
			return nil, err
		}
	}

	return e.readChunk(maxLength)
}

// Buffer drains every part into one contiguous buffer and replaces the part list with it.
// The encoder must be sealed. Later calls return the memoized buffer; the read
// cursor is rewound every time. Content already consumed through Read from
// streaming parts is not part of the result. The returned slice must not be modified.
func (e *Encoder) Buffer(chunkSize int) ([]byte, error) {
	if !e.sealed {
		return nil, fmt.Errorf("%w: can't buffer an unsealed encoder", ErrInvalidState)
	}

	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	if !e.buffered {
		e.rewind()

		var buf bytes.Buffer

		for {
			chunk, err := e.readChunk(chunkSize)
			if err != nil {
				return nil, err
			}

			if len(chunk) == 0 {
				break
			}

			buf.Write(chunk)
		}

		data := buf.Bytes()

		e.parts = []part{literalPart(data)}
		e.contentLength = int64(len(data))
		e.buffered = true
	}

	e.rewind()

	return []byte(e.parts[0].source.(bytesSource)), nil
}

// Bytes seals the encoder if necessary and returns the fully buffered body.
func (e *Encoder) Bytes() ([]byte, error) {
	if !e.sealed {
		if err := e.Seal(); err != nil {
			return nil, err
		}
	}

	return e.Buffer(DefaultChunkSize)
}

// ContentLength returns the total body size, or UnknownLength if any part
// was added without a known size.
func (e *Encoder) ContentLength() int64 {
	return e.contentLength
}

// ContentType returns the Content-Type header value for the body.
func (e *Encoder) ContentType() string {
	return "multipart/form-data; boundary=" + e.boundary
}

// Boundary returns the boundary token.
func (e *Encoder) Boundary() string {
	return e.boundary
}

// IsSealed reports whether the closing delimiter has been written.
func (e *Encoder) IsSealed() bool {
	return e.sealed
}

// IsBuffered reports whether the body has been collapsed into memory.
func (e *Encoder) IsBuffered() bool {
	return e.buffered
}

// addPart emits the boundary line, headers, content and trailing line break of one field.
// Content is validated before anything is appended so a failure leaves the encoder unchanged.
func (e *Encoder) addPart(name string, content any, contentType, filename string) error {
	if e.sealed {
		return fmt.Errorf("%w: can't add %q to a sealed encoder", ErrInvalidState, name)
	}

	body, err := newPart(content)
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}

	disposition := `Content-Disposition: form-data; name="` + name + `"`
	if filename != "" {
		disposition += `; filename="` + filename + `"`
	}

	e.append(literalPart([]byte(separator + e.boundary + eol)))
	e.append(literalPart([]byte(disposition + eol)))

	if contentType != "" {
		e.append(literalPart([]byte("Content-Type: " + contentType + eol)))
	}

	e.append(literalPart([]byte(eol)))
	e.append(body)
	e.append(literalPart([]byte(eol)))

	return nil
}

// append adds a part and updates the running length.
// A single part of unknown length makes the total unknown for good.
func (e *Encoder) append(p part) {
	e.parts = append(e.parts, p)

	switch {
	case e.contentLength == UnknownLength:
	case p.length == UnknownLength:
		e.contentLength = UnknownLength
	default:
		e.contentLength += p.length
	}
}

// readChunk drains the current part, moving on to the next one when it is exhausted.
func (e *Encoder) readChunk(maxLength int) ([]byte, error) {
	for e.index < len(e.parts) {
		data, err := e.readFromPart(maxLength)
		if err != nil {
			return nil, fmt.Errorf("read part %d: %w", e.index, err)
		}

		if len(data) > 0 {
			return data, nil
		}

		e.index++
		e.offset = 0
	}

	return []byte{}, nil
}

func (e *Encoder) readFromPart(maxLength int) ([]byte, error) {
	switch src := e.parts[e.index].source.(type) {
	case bytesSource:
		n := min(maxLength, len(src)-e.offset)
		if n <= 0 {
			return nil, nil
		}

		chunk := src[e.offset : e.offset+n]
		e.offset += n

		return chunk, nil
	case readerSource:
		return readStream(src.r, maxLength)
	case fileSource:
		return readStream(src.f, maxLength)
	case funcSource:
		return readCallback(src.fn, maxLength)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedPartType, src)
	}
}

func (e *Encoder) rewind() {
	e.index = 0
	e.offset = 0
}

func generateBoundary() string {
	raw := make([]byte, boundarySize)

	// crypto/rand.Read never returns an error; it aborts the program instead.
	_, _ = rand.Read(raw)

	return hex.EncodeToString(raw)
}
