package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a requested draft doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the caller may not use the wizard
	// in a scope or does not own the draft.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidState is returned when a wizard transition is not allowed.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrConcurrentModify is returned when optimistic locking fails.
	ErrConcurrentModify = errors.New("concurrent modification")

	// ErrInvalidArgument is returned when an argument is malformed.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthenticated is returned when no identity accompanies a request.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// FieldErrors maps a field name to a user-facing error message.
type FieldErrors map[string]string

// Add records msg for field unless the field already has an error.
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; ok {
		return
	}
	fe[field] = msg
}

// ValidationError reports per-field problems with a step submission. The
// caller corrects the fields and resubmits the same step.
type ValidationError struct {
	Step   int
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("validation failed")
	for i, name := range names {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(e.Fields[name])
	}
	return b.String()
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
