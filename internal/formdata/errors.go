package formdata

import "errors"

var (
	// ErrInvalidState indicates an operation that is not allowed in the encoder's current state,
	// such as appending to a sealed encoder or buffering an unsealed one.
	ErrInvalidState = errors.New("invalid encoder state")
	// ErrUnsupportedPartType indicates content of a kind the encoder cannot stream.
	ErrUnsupportedPartType = errors.New("unsupported part type")
	// ErrIO indicates that reading part content failed.
	ErrIO = errors.New("part read failed")
)
