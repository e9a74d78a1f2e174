package application

import (
	"errors"
	"sort"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrUnauthenticated is returned when no valid principal could be resolved.
	ErrUnauthenticated = errors.New("application: unauthenticated")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique resource is created twice.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrConflict is returned when a delete is blocked by dependent records.
	ErrConflict = errors.New("application: conflict")
	// ErrInvalidCredentials is returned when login credentials do not match.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAccountDisabled is returned for deactivated users.
	ErrAccountDisabled = errors.New("application: account disabled")
	// ErrRateLimited is returned when a caller exceeded its request budget.
	ErrRateLimited = errors.New("application: rate limited")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Messages returns the recorded messages ordered by field name.
func (v *ValidationError) Messages() []string {
	if !v.HasErrors() {
		return nil
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, v.FieldErrors[field])
	}
	return out
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// conflictError carries a user facing message for 409 responses.
type conflictError struct {
	sentinel error
	message  string
}

func (c *conflictError) Error() string { return c.message }

func (c *conflictError) Unwrap() error { return c.sentinel }

func alreadyExists(message string) error {
	return &conflictError{sentinel: ErrAlreadyExists, message: message}
}

func conflict(message string) error {
	return &conflictError{sentinel: ErrConflict, message: message}
}

// UserMessage returns the caller facing message attached to err, if any.
func UserMessage(err error) string {
	var cErr *conflictError
	if errors.As(err, &cErr) {
		return cErr.message
	}
	return ""
}

func singleFieldError(field, message string) *ValidationError {
	vErr := &ValidationError{}
	vErr.add(field, message)
	return vErr
}
