package gpu

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle reports an allocation that returned None or use of an unknown handle.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrBindOrder reports an operation issued without the binding it depends on.
	ErrBindOrder = errors.New("binding order violation")

	// ErrDeleteBound reports deletion of an object that is still bound.
	ErrDeleteBound = errors.New("object deleted while bound")

	// ErrDisposed reports use of a resource after its Dispose.
	ErrDisposed = errors.New("resource used after dispose")
)

// DriverStateError is a programmer error against the graphics context: an invalid handle or
// a binding-order violation. It is raised with panic, never returned, because continuing on a
// corrupted context is worse than stopping.
type DriverStateError struct {
	// Op is the driver operation that detected the violation.
	Op string

	// Handle is the object involved, or None.
	Handle Handle

	// Err is the violation class (ErrInvalidHandle, ErrBindOrder, ErrDeleteBound, ErrDisposed).
	Err error

	// Detail is free-form context.
	Detail string
}

func (e *DriverStateError) Error() string {
	msg := fmt.Sprintf("gpu: %s: %v", e.Op, e.Err)
	if e.Handle != None {
		msg += fmt.Sprintf(" (handle %d)", e.Handle)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *DriverStateError) Unwrap() error {
	return e.Err
}

// Violation panics with a DriverStateError.
//
// Parameters:
//   - op: the operation name
//   - h: the handle involved, or None
//   - err: the violation class
//   - format: optional detail format string followed by its arguments
func Violation(op string, h Handle, err error, format string, args ...any) {
	panic(&DriverStateError{
		Op:     op,
		Handle: h,
		Err:    err,
		Detail: fmt.Sprintf(format, args...),
	})
}

// MustHandle asserts that an allocation produced a usable handle and returns it.
//
// Parameters:
//   - op: the allocating operation, used in the panic message
//   - h: the handle returned by the driver
//
// Returns:
//   - Handle: h, unchanged
func MustHandle(op string, h Handle) Handle {
	if h == None {
		Violation(op, h, ErrInvalidHandle, "driver returned no object")
	}
	return h
}
