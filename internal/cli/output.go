package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mamadbah2/inventory/internal/domain/models"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0
	ExitFailure = 1 // store, broker or unexpected failures
	ExitUsage   = 2 // bad flags, bad input, missing credentials
	ExitDenied  = 3 // authentication or permission failures
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err, picking the exit code from its kind.
func WrapExitError(message string, err error) *ExitError {
	var verr *models.ValidationError
	code := ExitFailure
	switch {
	case errors.As(err, &verr), errors.Is(err, models.ErrEmptyExport):
		code = ExitUsage
	case errors.Is(err, models.ErrUnauthenticated), errors.Is(err, models.ErrForbidden):
		code = ExitDenied
	}
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// response is the JSON envelope of every command.
type response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// emit writes data as a JSON envelope, or calls text for human output.
func emit(w io.Writer, format string, data any, text func(w io.Writer)) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response{Status: "ok", Data: data})
	}
	text(w)
	return nil
}
