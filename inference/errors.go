// Package inference - Errors returned by detection sessions.
package inference

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when an operation is called before the session reached the state
	// it requires.
	ErrInvalidState = errors.New("invalid session state")
	// ErrIndexOutOfRange is returned for a device index outside the enumerated device list.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrModelLoadFailed is returned when the runtime cannot read or validate a model.
	ErrModelLoadFailed = errors.New("model load failed")
	// ErrInvalidDimensions is returned for image dimensions that do not yield a usable input.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrInvalidInput is returned for a frame whose buffer does not match the configured size.
	ErrInvalidInput = errors.New("invalid input")
	// ErrShapeMismatch is returned when the network output does not match the anchor table.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// StateError describes an operation attempted in the wrong session state.
type StateError struct {
	// Op is the rejected operation.
	Op string
	// State is the state the session was in.
	State State
	// Want is the least advanced state the operation accepts.
	Want State
}

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v: session is %s, requires %s", e.Op, ErrInvalidState, e.State, e.Want)
}

// Is matches ErrInvalidState.
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// IndexError describes an out of range device index.
type IndexError struct {
	Index int
	Len   int
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: device index %d, %d devices available", ErrIndexOutOfRange, e.Index, e.Len)
}

// Is matches ErrIndexOutOfRange.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}
