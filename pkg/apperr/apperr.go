package apperr

import (
	"errors"
	"fmt"
)

// Error codes for the ingestion pipeline and API surface.
const (
	// Sync-level errors abort the whole run.
	CodeCredentialsMissing = "CREDENTIALS_MISSING"
	CodeUpstreamAuthError  = "UPSTREAM_AUTH_ERROR"

	// Per-call errors.
	CodeTimeout               = "TIMEOUT"
	CodeUpstreamRequestError  = "UPSTREAM_REQUEST_ERROR"
	CodeClassificationFailure = "CLASSIFICATION_FAILURE"
	CodePersistenceError      = "PERSISTENCE_ERROR"

	// Generic API errors.
	CodeNotFound      = "NOT_FOUND"
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeInternalError = "INTERNAL_ERROR"
)

// AppError is a tagged error carrying a stable code so callers can branch on
// the error kind at the point of throw instead of inspecting messages.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the outermost AppError in err's chain, or
// CodeInternalError when err carries no code.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalError
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

func CredentialsMissing(message string) *AppError {
	if message == "" {
		message = "no credentials stored for this integration"
	}
	return New(CodeCredentialsMissing, message)
}

func UpstreamAuth(err error, message string) *AppError {
	if message == "" {
		message = "upstream rejected the stored credentials"
	}
	return Wrap(err, CodeUpstreamAuthError, message)
}

func Timeout(err error, message string) *AppError {
	if message == "" {
		message = "request exceeded its deadline"
	}
	return Wrap(err, CodeTimeout, message)
}

func UpstreamRequest(err error, message string) *AppError {
	if message == "" {
		message = "upstream request failed"
	}
	return Wrap(err, CodeUpstreamRequestError, message)
}

func ClassificationFailure(err error, message string) *AppError {
	if message == "" {
		message = "classifier did not return a usable decision"
	}
	return Wrap(err, CodeClassificationFailure, message)
}

func Persistence(err error, message string) *AppError {
	if message == "" {
		message = "persistence operation failed"
	}
	return Wrap(err, CodePersistenceError, message)
}
