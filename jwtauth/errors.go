package jwtauth

import (
	"errors"
	"fmt"
)

// ErrorCode represents a token or gate failure kind
type ErrorCode string

const (
	ErrMissingCredential ErrorCode = "MISSING_CREDENTIAL"
	ErrMalformedToken    ErrorCode = "MALFORMED_TOKEN"
	ErrExpiredToken      ErrorCode = "EXPIRED_TOKEN"
	ErrNotYetValid       ErrorCode = "NOT_YET_VALID"
	ErrWrongTokenKind    ErrorCode = "WRONG_TOKEN_KIND"
	ErrMissingOwnerID    ErrorCode = "MISSING_OWNER_ID"
	ErrOwnerMismatch     ErrorCode = "OWNER_MISMATCH"
	ErrMissingContext    ErrorCode = "MISSING_CONTEXT"
	ErrConfigError       ErrorCode = "CONFIG_ERROR"
	ErrSigningFailed     ErrorCode = "SIGNING_FAILED"
)

// Client-facing messages. Internal detail never goes past these.
const (
	msgMissingHeader       = "Missing or invalid authorization header"
	msgInvalidAccessToken  = "Invalid access token"
	msgExpiredAccessToken  = "Access token has expired"
	msgAuthFailed          = "Authentication failed"
	msgMissingContext      = "Authentication context not found"
	msgBodyOwnerMissing    = "Owner ID is missing in request body"
	msgPathOwnerMissing    = "Owner ID parameter is missing"
	msgOwnerMismatch       = "Access denied: Token subject does not match owner ID"
	msgInvalidRefreshToken = "Invalid refresh token"
	msgExpiredRefreshToken = "Refresh token expired"
)

// ValidationError represents a token or gate failure with a code and a client-safe message
type ValidationError struct {
	Code     ErrorCode
	Message  string
	Internal error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *ValidationError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(code ErrorCode, message string, internal error) *ValidationError {
	return &ValidationError{
		Code:     code,
		Message:  message,
		Internal: internal,
	}
}

// CodeOf returns the ErrorCode carried by err, or "" when err is not a ValidationError.
func CodeOf(err error) ErrorCode {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Code
	}
	return ""
}

// getErrorCode extracts the error code for logs and metrics
func getErrorCode(err error) string {
	if code := CodeOf(err); code != "" {
		return string(code)
	}
	return "UNKNOWN"
}

// clientMessage returns the message that may be shown to the caller.
// Errors that are not ValidationErrors collapse to the generic message.
func clientMessage(err error) string {
	var valErr *ValidationError
	if errors.As(err, &valErr) && valErr.Message != "" {
		return valErr.Message
	}
	return msgAuthFailed
}
