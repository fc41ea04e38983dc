package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

var (
	// ErrUnauthorized matches any 401 response (expired or invalid token).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound matches any 404 response.
	ErrNotFound = errors.New("not found")
	// ErrMalformedResponse is a 2xx response whose body is not what the
	// endpoint returns, such as an HTML proxy page.
	ErrMalformedResponse = errors.New("malformed response")
)

const defaultErrorMessage = "API request failed"

// Error is a non-2xx backend response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// newError builds an Error from a response body, preferring the backend's
// "error" field, then "message".
func newError(status int, body []byte) *Error {
	msg := defaultErrorMessage
	if gjson.ValidBytes(body) {
		if v := gjson.GetBytes(body, "error"); v.Type == gjson.String && v.Str != "" {
			msg = v.Str
		} else if v := gjson.GetBytes(body, "message"); v.Type == gjson.String && v.Str != "" {
			msg = v.Str
		}
	}
	return &Error{Status: status, Message: msg}
}

// StatusText is a short label for logs.
func (e *Error) StatusText() string {
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}
