package shaping

import (
	"fmt"

	"lanekit/shaperd/pkg/policy"
)

// UnsupportedKindError indicates a descriptor kind the compiler cannot
// translate. It is raised before any scheduler operation runs.
type UnsupportedKindError struct {
	Kind policy.Kind
}

// Error returns the error message.
func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported policy kind: %q", e.Kind)
}

// ApplyError indicates a compiled operation failed against the kernel. The
// interface is left holding the operations that succeeded before Position;
// there is no rollback.
type ApplyError struct {
	Op       Operation
	Position int // zero-based index into the compiled sequence
	Total    int
	Cause    error
}

// Error returns the error message.
func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply failed at operation %d/%d (%s): %v",
		e.Position+1, e.Total, e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ApplyError) Unwrap() error {
	return e.Cause
}

// ClearError indicates removing the existing root configuration failed for
// a reason other than "nothing to remove".
type ClearError struct {
	Iface string
	Cause error
}

// Error returns the error message.
func (e *ClearError) Error() string {
	return fmt.Sprintf("clear failed on %s: %v", e.Iface, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ClearError) Unwrap() error {
	return e.Cause
}
