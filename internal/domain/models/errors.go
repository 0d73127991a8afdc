package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicate indicates a product with the same name and category already exists.
	ErrDuplicate = errors.New("duplicate product")
	// ErrNotFound indicates the targeted record does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrEmptyExport indicates an export was requested for an empty product set.
	ErrEmptyExport = errors.New("nothing to export")
	// ErrForbidden indicates the session lacks the capability for the requested action.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated indicates the caller has no valid session.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// FieldError describes one violated field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is reported when product fields break their constraints.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// DuplicateError is returned when the store rejects a (name, category) collision.
type DuplicateError struct {
	Name     string
	Category string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("product %q already exists in category %q", e.Name, e.Category)
}

// Is lets errors.Is(err, ErrDuplicate) match.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// StoreError covers network, authorization and unclassified record store failures.
type StoreError struct {
	Op      string
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	var b strings.Builder
	b.WriteString("store ")
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status=%d", e.Status)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " code=%s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, " message=%s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// EmptyExportError is raised by callers before formatting when no rows qualify.
type EmptyExportError struct {
	ReportType string
}

func (e *EmptyExportError) Error() string {
	return fmt.Sprintf("nothing to export for %s report", e.ReportType)
}

// Is lets errors.Is(err, ErrEmptyExport) match.
func (e *EmptyExportError) Is(target error) bool {
	return target == ErrEmptyExport
}
