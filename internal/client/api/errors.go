package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/iudanet/fantasy11/internal/validation"
)

// Messages shown when the server did not provide one.
const (
	msgGeneric  = "Something went wrong. Please try again."
	msgNetwork  = "Could not reach the server. Check your connection and try again."
	msgNotFound = "Nothing here yet."
	msgAuth     = "Your session has expired. Please log in again."
)

// AuthError means the credentials or the session were rejected.
// Background refreshes convert it into a logout; explicit actions show Message.
type AuthError struct {
	Message string
	Status  int
}

func (e *AuthError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("auth: %s", e.Message)
	}
	return fmt.Sprintf("auth (%d): %s", e.Status, e.Message)
}

// NotFoundError is a missing contest, team or user. Views render it as an empty state.
type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.Message)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// NetworkError wraps transport failures and timeouts.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is any other non-2xx answer.
type ServerError struct {
	Message string
	Status  int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// statusError maps an HTTP status and the server message to the error taxonomy.
func statusError(status int, resource, message string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if message == "" {
			message = http.StatusText(status)
		}
		return &AuthError{Status: status, Message: message}
	case status == http.StatusNotFound:
		return &NotFoundError{Resource: resource, Message: message}
	default:
		if message == "" {
			message = http.StatusText(status)
		}
		return &ServerError{Status: status, Message: message}
	}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// UserMessage returns the text to show for err. Server-provided messages are
// preferred; every failure resolves to something displayable.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		verr *validation.Error
		aerr *AuthError
		nerr *NotFoundError
		serr *ServerError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case IsNetwork(err):
		return msgNetwork
	case errors.As(err, &aerr):
		if aerr.Message != "" {
			return aerr.Message
		}
		return msgAuth
	case errors.As(err, &nerr):
		if nerr.Message != "" {
			return nerr.Message
		}
		return msgNotFound
	case errors.As(err, &serr):
		if serr.Message != "" && serr.Status < http.StatusInternalServerError {
			return serr.Message
		}
		return msgGeneric
	case errors.Is(err, context.Canceled):
		return ""
	}
	return msgGeneric
}
