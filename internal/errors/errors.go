// Package errors provides custom error types for the pmctrack pipeline.
//
// The taxonomy follows the failure model of the scraper: session startup
// failures abort the whole batch, while everything else is recoverable at
// the single-token level and is normalized into the batch report.
package errors

import "fmt"

// SessionStartError indicates the headless browser session could not be
// started. This is the only fatal error class: no token is processed when
// it occurs.
type SessionStartError struct {
	Message string
	Err     error
}

func (e *SessionStartError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session start failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("session start failed: %s", e.Message)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *SessionStartError) Unwrap() error {
	return e.Err
}

// NewSessionStartError creates a new session start error with context
func NewSessionStartError(msg string, err error) *SessionStartError {
	return &SessionStartError{Message: msg, Err: err}
}

// InvalidTokenError indicates a raw token string failed format validation.
// The token never reaches the browser.
type InvalidTokenError struct {
	Raw string
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid token format: %q (must be 'T' followed by digits)", e.Raw)
}

// NewInvalidTokenError creates a new invalid token error
func NewInvalidTokenError(raw string) *InvalidTokenError {
	return &InvalidTokenError{Raw: raw}
}

// NoDataError indicates the portal rendered an explicit empty result for a
// token: either the no-data indicator appeared, or the result panel was
// entirely absent.
type NoDataError struct {
	Token string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data found for token %s", e.Token)
}

// NewNoDataError creates a new no data error
func NewNoDataError(token string) *NoDataError {
	return &NoDataError{Token: token}
}

// SearchTimeoutError indicates neither a populated result panel nor a
// no-data indicator appeared before the search timeout elapsed.
type SearchTimeoutError struct {
	Token string
	Err   error
}

func (e *SearchTimeoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("search timed out for token %s: %v", e.Token, e.Err)
	}
	return fmt.Sprintf("search timed out for token %s", e.Token)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *SearchTimeoutError) Unwrap() error {
	return e.Err
}

// NewSearchTimeoutError creates a new search timeout error
func NewSearchTimeoutError(token string, err error) *SearchTimeoutError {
	return &SearchTimeoutError{Token: token, Err: err}
}

// PortalError wraps failures reported by the portal itself or raised while
// driving it (navigation, element lookup, script evaluation).
type PortalError struct {
	Message string
	Err     error
}

func (e *PortalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("portal error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("portal error: %s", e.Message)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *PortalError) Unwrap() error {
	return e.Err
}

// NewPortalError creates a new portal error with context
func NewPortalError(msg string, err error) *PortalError {
	return &PortalError{Message: msg, Err: err}
}

// PersistError wraps a repository write failure for one token's outcome.
// It never blocks subsequent tokens and is never retried.
type PersistError struct {
	Token string
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist token %s: %v", e.Token, e.Err)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *PersistError) Unwrap() error {
	return e.Err
}

// NewPersistError creates a new persistence error
func NewPersistError(token string, err error) *PersistError {
	return &PersistError{Token: token, Err: err}
}

// IsSessionStart checks if the error is a fatal session start error
func IsSessionStart(err error) bool {
	_, ok := err.(*SessionStartError)
	return ok
}

// IsInvalidToken checks if the error is a token format error
func IsInvalidToken(err error) bool {
	_, ok := err.(*InvalidTokenError)
	return ok
}

// IsNoData checks if the error is a no data error
func IsNoData(err error) bool {
	_, ok := err.(*NoDataError)
	return ok
}

// IsSearchTimeout checks if the error is a search timeout error
func IsSearchTimeout(err error) bool {
	_, ok := err.(*SearchTimeoutError)
	return ok
}

// IsPersist checks if the error is a persistence error
func IsPersist(err error) bool {
	_, ok := err.(*PersistError)
	return ok
}
