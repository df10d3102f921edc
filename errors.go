package session

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	textCodeInvalidCredentials = "INVALID_CREDENTIALS"
	textCodeSessionExpired     = "SESSION_EXPIRED"
	textCodeUnverifiable       = "IDENTITY_UNVERIFIABLE"
	textCodeNetwork            = "NETWORK_UNAVAILABLE"
	textCodeMalformedResponse  = "MALFORMED_RESPONSE"
	textCodeLoginInFlight      = "LOGIN_IN_FLIGHT"
)

// ErrInvalidCredentials is returned when the backend rejects a credential exchange.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrSessionExpired is returned when an authenticated call comes back unauthorized.
var ErrSessionExpired = errors.New("session expired, please log in again", errors.CategoryAuthz).
	WithTextCode(textCodeSessionExpired).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityUnverifiable is the fail-closed hydration outcome: the persisted
// token could not be confirmed against the backend.
var ErrIdentityUnverifiable = errors.New("unable to verify identity", errors.CategoryAuth).
	WithTextCode(textCodeUnverifiable).
	WithCode(errors.CodeUnauthorized)

// ErrNetworkUnavailable is the generic retryable transport failure.
var ErrNetworkUnavailable = errors.New("network error, try again", errors.CategoryOperation).
	WithTextCode(textCodeNetwork)

// ErrMalformedResponse is returned when the backend payload cannot be decoded.
var ErrMalformedResponse = errors.New("unable to parse backend response", errors.CategoryOperation).
	WithTextCode(textCodeMalformedResponse)

// ErrLoginInFlight is returned when a login is submitted while a previous
// attempt is still pending.
var ErrLoginInFlight = errors.New("a login attempt is already in progress", errors.CategoryConflict).
	WithTextCode(textCodeLoginInFlight).
	WithCode(errors.CodeConflict)

// IsUnauthorizedError will check for auth/authz classified failures
func IsUnauthorizedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if stderrors.As(err, &richErr) {
		return richErr.Category == errors.CategoryAuth ||
			richErr.Category == errors.CategoryAuthz
	}
	return strings.Contains(err.Error(), "unauthorized")
}

// IsNetworkError will check for retryable transport failures
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if stderrors.As(err, &richErr) {
		return richErr.Category == errors.CategoryOperation
	}
	return false
}

// IsValidationError will check for backend input rejections
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if stderrors.As(err, &richErr) {
		return richErr.Category == errors.CategoryValidation ||
			richErr.Category == errors.CategoryBadInput
	}
	return false
}

// UserMessage extracts the user-facing message from a classified failure.
// Login and register forms surface this verbatim; anything unclassified
// degrades to the generic retryable message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var richErr *errors.Error
	if stderrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return ErrNetworkUnavailable.Message
}
