package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ActionRequireFullLogin is the server directive telling the client that the
// simplified (phone only) login cannot be used for this number.
const ActionRequireFullLogin = "require_full_login"

// ErrSessionExpired is raised for every HTTP 401. The recovery path is run
// once by the API client; callers must not display it.
var ErrSessionExpired = errors.New("session expired")

// APIError is a non-2xx response with a structured body.
type APIError struct {
	StatusCode int
	Message    string
	Action     string         // machine-readable directive, e.g. ActionRequireFullLogin
	Body       map[string]any // full decoded error body
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Message
}

// ValidationError is a client-side precondition failure. No network call is
// issued when one is raised.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NetworkError is a transport failure before any response was obtained.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: backend unavailable: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// HasAction reports whether err is an APIError carrying the given directive.
func HasAction(err error, action string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Action == action
}

// UserMessage returns the text for the transient notification surface and
// whether anything should be shown at all. Session expiry is swallowed.
func UserMessage(err error) (string, bool) {
	if err == nil || IsSessionExpired(err) {
		return "", false
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message, true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error(), true
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Internal error: backend unavailable.", true
	}
	return err.Error(), true
}
