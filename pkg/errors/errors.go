// Package errors defines common error types for the application.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown              = "UNKNOWN_ERROR"
	CodeTopologyPrecondition = "TOPOLOGY_PRECONDITION"
	CodeTransportFault       = "TRANSPORT_FAULT"
	CodeInternalConsistency  = "INTERNAL_CONSISTENCY"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeNotFound             = "NOT_FOUND"
	CodeTimeout              = "TIMEOUT_ERROR"
	CodeConfigError          = "CONFIG_ERROR"
	CodeStoreError           = "STORE_ERROR"
	CodeHistoryError         = "HISTORY_ERROR"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances.
var (
	// ErrTopologyPrecondition marks a violation of a precondition the
	// algorithm depends on: a forest that isn't 2:1 balanced, a face code
	// outside the 18-entry table, an element reporting an out-of-range
	// configuration index.
	ErrTopologyPrecondition = New(CodeTopologyPrecondition, "topology precondition violated")
	// ErrTransportFault marks a failure of the peer query/reply channel
	// substrate: a closed channel, a reply from an unexpected peer, a
	// duplicate reply.
	ErrTransportFault = New(CodeTransportFault, "transport fault")
	// ErrInternalConsistency marks a state the algorithm should never
	// reach: an owner-election tie left unresolved, a candidate with no
	// contributors, finalize writing past an element's slot count.
	ErrInternalConsistency = New(CodeInternalConsistency, "internal consistency violation")
	ErrInvalidInput         = New(CodeInvalidInput, "invalid input")
	ErrNotFound             = New(CodeNotFound, "resource not found")
	ErrTimeout              = New(CodeTimeout, "operation timeout")
	ErrConfigError          = New(CodeConfigError, "configuration error")
	ErrStoreError           = New(CodeStoreError, "store error")
	ErrHistoryError         = New(CodeHistoryError, "history error")
)

// IsTopologyPrecondition checks if the error is a topology precondition error.
func IsTopologyPrecondition(err error) bool {
	return errors.Is(err, ErrTopologyPrecondition)
}

// IsTransportFault checks if the error is a transport fault.
func IsTransportFault(err error) bool {
	return errors.Is(err, ErrTransportFault)
}

// IsInternalConsistency checks if the error is an internal consistency violation.
func IsInternalConsistency(err error) bool {
	return errors.Is(err, ErrInternalConsistency)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// ErrorInfo provides a name-to-code lookup for the taxonomy above.
var ErrorInfo = map[string]string{
	"TopologyPrecondition": CodeTopologyPrecondition,
	"TransportFault":       CodeTransportFault,
	"InternalConsistency":  CodeInternalConsistency,
	"StoreError":           CodeStoreError,
	"HistoryError":         CodeHistoryError,
}
