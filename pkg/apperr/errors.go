// Package apperr is the error taxonomy for the EAS core (spec §7).
//
// Every distinguishable error kind maps either onto an HTTP status (the
// transport-level failures: malformed WBXML, auth, provisioning, rate
// limiting, internal errors) or is expected to be translated by the caller
// into an EAS-level Status code embedded in a WBXML response body (invalid
// sync key, store unavailable, per-item conflict). apperr itself only
// carries the HTTP-facing half of that split; EAS Status codes are defined
// in core/domain and emitted by core/service/sync and core/service/folder.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes, one per spec §7 kind.
const (
	CodeMalformedWBXML       = "MALFORMED_WBXML"
	CodeUnknownCommand       = "UNKNOWN_COMMAND"
	CodeAuthRequired         = "AUTH_REQUIRED"
	CodeAuthFailed           = "AUTH_FAILED"
	CodeProvisioningRequired = "PROVISIONING_REQUIRED"
	CodePolicyKeyMismatch    = "POLICY_KEY_MISMATCH"
	CodeRateLimited          = "RATE_LIMITED"
	CodeInternalError        = "INTERNAL_ERROR"
)

// AppError is a structured application error carrying an HTTP status.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"-"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`

	// RetryAfter is non-zero only for CodeRateLimited; the router writes it
	// as the Retry-After response header (spec §4.2).
	RetryAfter int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// HTTPStatus returns the HTTP status code for this error.
func (e *AppError) HTTPStatus() int { return e.Status }

func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// MalformedWBXML: decoder-level framing error. HTTP 400, empty body, not retried.
func MalformedWBXML(reason string) *AppError {
	return &AppError{
		Code:    CodeMalformedWBXML,
		Message: fmt.Sprintf("malformed WBXML: %s", reason),
		Status:  http.StatusBadRequest,
	}
}

// UnknownCommand: HTTP 501, not retried.
func UnknownCommand(cmd string) *AppError {
	return &AppError{
		Code:    CodeUnknownCommand,
		Message: fmt.Sprintf("unrecognized command: %s", cmd),
		Status:  http.StatusNotImplemented,
		Details: map[string]any{"cmd": cmd},
	}
}

// AuthRequired: missing Basic credentials. HTTP 401.
func AuthRequired() *AppError {
	return &AppError{Code: CodeAuthRequired, Message: "authentication required", Status: http.StatusUnauthorized}
}

// AuthFailed: invalid Basic credentials. HTTP 401, not retried without new credentials.
func AuthFailed() *AppError {
	return &AppError{Code: CodeAuthFailed, Message: "invalid credentials", Status: http.StatusUnauthorized}
}

// ProvisioningRequired: HTTP 449, device transitioned to UNPROVISIONED.
func ProvisioningRequired() *AppError {
	return &AppError{Code: CodeProvisioningRequired, Message: "provisioning required", Status: 449}
}

// PolicyKeyMismatch: HTTP 449, device transitioned back to UNPROVISIONED.
func PolicyKeyMismatch() *AppError {
	return &AppError{Code: CodePolicyKeyMismatch, Message: "stale policy key", Status: 449}
}

// RateLimited: HTTP 429 + Retry-After.
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    "rate limit exceeded",
		Status:     http.StatusTooManyRequests,
		RetryAfter: retryAfterSeconds,
	}
}

// Internal: HTTP 500; state is not mutated for the request that produced it.
func Internal(message string) *AppError {
	if message == "" {
		message = "internal server error"
	}
	return &AppError{Code: CodeInternalError, Message: message, Status: http.StatusInternalServerError}
}

func InternalWithError(err error) *AppError {
	return &AppError{Code: CodeInternalError, Message: "internal server error", Status: http.StatusInternalServerError, Err: err}
}

// As is a thin wrapper over errors.As for call sites that want to recover
// the concrete *AppError from a wrapped error chain.
func As(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}
