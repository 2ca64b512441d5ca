package taskstore

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Every error returned by a Store operation is an *OpError
// that matches exactly one of these with errors.Is.
var (
	// ErrUnauthenticated means no owner is signed in.
	ErrUnauthenticated = errors.New("not signed in")

	// ErrNotFound means the owner has no task document.
	ErrNotFound = errors.New("task document not found")

	// ErrTransport means a gateway call failed and the document is unchanged.
	ErrTransport = errors.New("remote request failed")

	// ErrPartialRemove means a remove was interrupted after at least one
	// successful sub-write. The in-memory list is unchanged; Load before retrying.
	ErrPartialRemove = errors.New("remove interrupted")

	// ErrIndexOutOfRange means the index does not address a task.
	ErrIndexOutOfRange = errors.New("task index out of range")
)

// OpError describes a failed Store operation.
type OpError struct {
	// Op is the operation name (see the Op constants).
	Op string

	// Kind is one of the Err* failure kinds.
	Kind error

	// Index is the 0-based task index the operation addressed, or -1.
	Index int

	// Applied counts the remote sub-writes that succeeded before the failure.
	Applied int

	// Err is the underlying gateway error, if any.
	Err error
}

func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Index >= 0 {
		fmt.Fprintf(&b, " [%d]", e.Index)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if errors.Is(e.Kind, ErrPartialRemove) {
		fmt.Fprintf(&b, " after %d write(s)", e.Applied)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the failure kind and the cause to errors.Is and errors.As.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
