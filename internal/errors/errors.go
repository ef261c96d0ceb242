package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents an uwu error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrInvalidConfig      ErrorCode = "INVALID_CONFIG"      // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrPatternCompilation ErrorCode = "PATTERN_COMPILATION" // 500
	ErrPatternMatch       ErrorCode = "PATTERN_MATCH"       // 500
	ErrBufferIO           ErrorCode = "BUFFER_IO"           // 500
	ErrIO                 ErrorCode = "IO"                  // 500
	ErrUnknown            ErrorCode = "UNKNOWN"             // 500
)

// Process exit codes used by the CLI. Each error code maps to a distinct one.
const (
	ExitUnknown            = 1
	ExitInvalid            = 2
	ExitPatternCompilation = 3
	ExitPatternMatch       = 4
	ExitBufferIO           = 5
	ExitIO                 = 6
	ExitNotFound           = 7
)

// UwuError represents a structured error with code, status, exit code and details.
type UwuError struct {
	Code     ErrorCode
	Status   int
	ExitCode int
	Message  string
	Details  map[string]any
	Err      error
}

// Error implements the error interface.
func (e *UwuError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *UwuError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *UwuError {
	return &UwuError{
		Code:     ErrInvalidRequest,
		Status:   400,
		ExitCode: ExitInvalid,
		Message:  msg,
	}
}

// NewInvalidConfig creates a 400 error for an unusable engine configuration.
func NewInvalidConfig(field string, msg string) *UwuError {
	return &UwuError{
		Code:     ErrInvalidConfig,
		Status:   400,
		ExitCode: ExitInvalid,
		Message:  fmt.Sprintf("%s: %s", field, msg),
		Details:  map[string]any{"field": field},
	}
}

// NewNotFound creates a 404 error for a missing history record.
func NewNotFound(id string) *UwuError {
	return &UwuError{
		Code:     ErrNotFound,
		Status:   404,
		ExitCode: ExitNotFound,
		Message:  fmt.Sprintf("record not found: %s", id),
		Details:  map[string]any{"id": id},
	}
}

// NewPatternCompilation creates a 500 error for a pattern table that failed to build.
func NewPatternCompilation(table string, err error) *UwuError {
	return &UwuError{
		Code:     ErrPatternCompilation,
		Status:   500,
		ExitCode: ExitPatternCompilation,
		Message:  fmt.Sprintf("string matcher build error (%s): %v", table, err),
		Details:  map[string]any{"table": table},
		Err:      err,
	}
}

// NewPatternMatch creates a 500 error for a failed scan.
func NewPatternMatch(stage string, err error) *UwuError {
	return &UwuError{
		Code:     ErrPatternMatch,
		Status:   500,
		ExitCode: ExitPatternMatch,
		Message:  fmt.Sprintf("string matcher match error (%s): %v", stage, err),
		Details:  map[string]any{"stage": stage},
		Err:      err,
	}
}

// NewBufferIO creates a 500 error for a failed write into an output buffer.
func NewBufferIO(stage string, err error) *UwuError {
	return &UwuError{
		Code:     ErrBufferIO,
		Status:   500,
		ExitCode: ExitBufferIO,
		Message:  fmt.Sprintf("buffer write error (%s): %v", stage, err),
		Details:  map[string]any{"stage": stage},
		Err:      err,
	}
}

// NewIO creates a 500 error for adapter-level file or stream failures.
func NewIO(err error) *UwuError {
	msg := "IO error"
	if err != nil {
		msg = fmt.Sprintf("IO error: %v", err)
	}
	return &UwuError{
		Code:     ErrIO,
		Status:   500,
		ExitCode: ExitIO,
		Message:  msg,
		Err:      err,
	}
}

// NewUnknown creates a 500 error for unexpected failures.
func NewUnknown(err error) *UwuError {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &UwuError{
		Code:     ErrUnknown,
		Status:   500,
		ExitCode: ExitUnknown,
		Message:  msg,
		Err:      err,
	}
}

// As returns err as an *UwuError, wrapping foreign errors as UNKNOWN.
func As(err error) *UwuError {
	if err == nil {
		return nil
	}
	var uErr *UwuError
	if stderrors.As(err, &uErr) {
		return uErr
	}
	return NewUnknown(err)
}

// Is checks if an error is an UwuError with the given code.
func Is(err error, code ErrorCode) bool {
	var uErr *UwuError
	if stderrors.As(err, &uErr) {
		return uErr.Code == code
	}
	return false
}

// Message returns the message of the UwuError inside err, keeping any
// context added by wrapping (e.g. "item 2: text too large").
func Message(err error) string {
	uErr := As(err)
	if uErr == nil {
		return ""
	}
	prefix := strings.TrimSuffix(err.Error(), uErr.Error())
	if prefix == err.Error() {
		return uErr.Message
	}
	return prefix + uErr.Message
}
