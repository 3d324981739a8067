package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound          = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists     = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation        = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation  = new(ErrCodeInvalidOperation, "invalid operation")
	ErrPermissionDenied  = new(ErrCodePermissionDenied, "permission denied")
	ErrHTTPClient        = new(ErrCodeHTTPClient, "http client error")
	ErrDatabase          = new(ErrCodeDatabase, "database error")
	ErrSystem            = new(ErrCodeSystemError, "system error")
	ErrIntegrity         = new(ErrCodeIntegrity, "integrity check failed")
	ErrInvalidTransition = new(ErrCodeInvalidTransition, "invalid status transition")
	ErrGateway           = new(ErrCodeGateway, "payment gateway error")
	ErrGatewayTimeout    = new(ErrCodeGatewayTimeout, "payment gateway timeout")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrHTTPClient:        http.StatusInternalServerError,
		ErrDatabase:          http.StatusInternalServerError,
		ErrNotFound:          http.StatusNotFound,
		ErrAlreadyExists:     http.StatusConflict,
		ErrValidation:        http.StatusBadRequest,
		ErrInvalidOperation:  http.StatusBadRequest,
		ErrInvalidTransition: http.StatusBadRequest,
		ErrPermissionDenied:  http.StatusForbidden,
		ErrIntegrity:         http.StatusInternalServerError,
		ErrGateway:           http.StatusBadGateway,
		ErrGatewayTimeout:    http.StatusGatewayTimeout,
		ErrSystem:            http.StatusInternalServerError,
	}
)

const (
	ErrCodeHTTPClient        = "http_client_error"
	ErrCodeSystemError       = "system_error"
	ErrCodeNotFound          = "not_found"
	ErrCodeAlreadyExists     = "already_exists"
	ErrCodeValidation        = "validation_error"
	ErrCodeInvalidOperation  = "invalid_operation"
	ErrCodePermissionDenied  = "permission_denied"
	ErrCodeDatabase          = "database_error"
	ErrCodeIntegrity         = "integrity_error"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeGateway           = "gateway_error"
	ErrCodeGatewayTimeout    = "gateway_timeout"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// new creates a new InternalError
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsIntegrity checks if an error is an integrity error (failed AEAD
// verification or a malformed ciphertext blob)
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrIntegrity)
}

// IsInvalidTransition checks if an error is an invalid status transition
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// IsGatewayTimeout checks if an error is a gateway timeout
func IsGatewayTimeout(err error) bool {
	return errors.Is(err, ErrGatewayTimeout)
}

// IsGateway checks if an error came from the payment gateway, timeouts included
func IsGateway(err error) bool {
	return errors.Is(err, ErrGateway) || errors.Is(err, ErrGatewayTimeout)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
