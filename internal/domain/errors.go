package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidCredentials is a password check that failed.
	ErrInvalidCredentials = errors.New("the provided credentials were invalid")
	// ErrDuplicate is a write rejected by a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate")
)

// NotFoundError is a missing resource. It matches ErrNotFound.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " couldn't be found" }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// ValidationError reports rejected input, keyed by request field.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Fields)
}

// Validation collects field errors and yields nil when there are none.
type Validation struct {
	fields map[string]string
}

// Add records msg for field unless the field already has an error.
func (v *Validation) Add(field, msg string) {
	if v.fields == nil {
		v.fields = make(map[string]string)
	}
	if _, ok := v.fields[field]; !ok {
		v.fields[field] = msg
	}
}

func (v *Validation) Has(field string) bool {
	_, ok := v.fields[field]
	return ok
}

func (v *Validation) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Message: "Bad Request", Fields: v.fields}
}

// RuleError is a request that is well formed but not allowed.
type RuleError struct {
	Message string
}

func (e *RuleError) Error() string { return e.Message }

// ConflictError is a write that collides with existing state.
type ConflictError struct {
	Message string
	Fields  map[string]string
}

func (e *ConflictError) Error() string { return e.Message }
