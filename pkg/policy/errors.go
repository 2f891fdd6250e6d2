package policy

import "fmt"

// NotFoundError indicates a policy name absent from the catalog.
type NotFoundError struct {
	Name string
}

// Error returns the error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("policy not found: %q", e.Name)
}

// LoadError indicates a malformed catalog entry. Loading stops at the first
// malformed entry; the process must not serve from a partial catalog.
type LoadError struct {
	// Entry is the offending policy name; empty when the file itself is
	// unreadable or not valid YAML.
	Entry  string
	Reason string
	Cause  error
}

// Error returns the error message.
func (e *LoadError) Error() string {
	msg := "catalog load failed"
	if e.Entry != "" {
		msg = fmt.Sprintf("catalog entry %q invalid", e.Entry)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}
