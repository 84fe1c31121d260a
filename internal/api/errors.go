package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups failures by who is at fault
type Kind int

const (
	KindNetwork Kind = iota // request never got a response
	KindClient              // 4xx
	KindServer              // 5xx
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Sentinels for errors.Is. An *Error matches the one for its status.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

var statusSentinels = map[int]error{
	http.StatusUnauthorized: ErrUnauthorized,
	http.StatusForbidden:    ErrForbidden,
	http.StatusNotFound:     ErrNotFound,
	http.StatusConflict:     ErrConflict,
}

// Error is returned for every failed call. Status is 0 when the server could
// not be reached.
type Error struct {
	Status  int
	Message string // from the response body's "error" or "message" field
	Method  string
	Path    string
	Err     error // underlying transport error, if any
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	sentinel, ok := statusSentinels[e.Status]
	return ok && sentinel == target
}

// Kind classifies the failure
func (e *Error) Kind() Kind {
	switch {
	case e.Status == 0:
		return KindNetwork
	case e.Status >= 500:
		return KindServer
	default:
		return KindClient
	}
}

// UserMessage is what the UI shows: the server's own message when it sent
// one, otherwise a generic text for the status.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return GenericMessage(e.Status)
}

// GenericMessage returns the fallback text for a status code
func GenericMessage(status int) string {
	switch status {
	case 0:
		return "Connection error - check your network connection"
	case http.StatusBadRequest:
		return "Invalid data"
	case http.StatusUnauthorized:
		return "Session expired - please log in again"
	case http.StatusForbidden:
		return "You don't have permission to perform this action"
	case http.StatusNotFound:
		return "Item not found"
	case http.StatusConflict:
		return "The data conflicts with an existing item"
	}
	if status >= 500 {
		return "Server error - please try again later"
	}
	return "An unexpected error occurred"
}

// StatusOf returns the HTTP status carried by err, or -1 if err is not an
// API error.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return -1
}

// IsUnauthorized reports whether err is a 401
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// IsForbidden reports whether err is a 403
func IsForbidden(err error) bool {
	return StatusOf(err) == http.StatusForbidden
}

// IsNotFound reports whether err is a 404
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// UserMessage returns the text to show for any error
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return err.Error()
}
