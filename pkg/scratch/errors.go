package scratch

import (
	"github.com/pkg/errors"
)

// ErrConnectionClosed is reported when the receive loop ends.
var ErrConnectionClosed = errors.New("connection closed")

// ConnectionError is a transport failure while sending or connecting.
type ConnectionError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *ConnectionError) Error() string {
	return "scratch " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the transport error.
func (e *ConnectionError) Unwrap() error { return e.Err }

// Cause implements the causer interface of pkg/errors.
func (e *ConnectionError) Cause() error { return e.Err }

// ClosedError carries the reason the receive loop stopped.
// errors.Is(err, ErrConnectionClosed) is true for it.
type ClosedError struct {
	Err error
}

// Error implements error.
func (e *ClosedError) Error() string {
	if e.Err == nil {
		return ErrConnectionClosed.Error()
	}
	return ErrConnectionClosed.Error() + ": " + e.Err.Error()
}

// Is matches ErrConnectionClosed.
func (e *ClosedError) Is(target error) bool { return target == ErrConnectionClosed }

// Unwrap returns the error which stopped the loop.
func (e *ClosedError) Unwrap() error { return e.Err }
