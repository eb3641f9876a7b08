package schema

import "fmt"

// Error reports a validation failure in provider output. Field is a path
// into the decoded batch, such as "items[2].severity".
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema: %s: %s", e.Field, e.Reason)
}

func fieldErr(field, format string, args ...any) *Error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}
