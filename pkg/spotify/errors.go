package spotify

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error represents a non-2xx response from the Spotify Web API.
//
// The Error type carries the upstream HTTP status code, the message from the
// API's error envelope when one was present, and the raw response body
// verbatim. It implements error and supports errors.Is matching on status.
type Error struct {
	Status  int    // HTTP status code
	Message string // Message from the API error envelope, if any
	Body    []byte // Raw response body
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("spotify: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("spotify: unexpected status %d", e.Status)
}

// Is checks if the target error is a Spotify API error with the same status.
//
// This allows errors.Is() to match *Error values by status code. The
// ErrNotFound sentinel matches any *Error with status 404.
func (e *Error) Is(target error) bool {
	if target == ErrNotFound {
		return e.Status == http.StatusNotFound
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Status == t.Status
}

// errorEnvelope is the JSON error body returned by the API.
type errorEnvelope struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// newError builds an *Error from a failed response, extracting the API's
// message when the body carries the standard error envelope.
func newError(status int, body []byte) *Error {
	e := &Error{Status: status, Body: body}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		e.Message = env.Error.Message
	}
	return e
}

// IsNotFound reports whether err is an API error with status 404.
//
// Single-entity lookups use this to map a missing id to an absent result
// instead of a hard failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Predefined errors for missing configuration, invalid caller input and soft
// failure paths. Validation errors are returned before any network call is
// made.
var (
	// ErrNoToken is returned by NewClient when no bearer token was provided.
	ErrNoToken = errors.New("spotify: Token is required")

	// ErrNotFound matches any API error with status 404 via errors.Is.
	ErrNotFound = errors.New("spotify: not found")

	// ErrEmptyID is returned when an id argument or id list element is empty.
	ErrEmptyID = errors.New("spotify: empty id")

	// ErrMarketRequired is returned when an operation structurally requires a
	// market code and none was given. MarketFromToken is accepted.
	ErrMarketRequired = errors.New("spotify: market is required")

	// ErrInvalidLimit is returned when a limit argument is outside the range
	// the endpoint supports.
	ErrInvalidLimit = errors.New("spotify: invalid limit")

	// ErrInvalidArgument is returned for out-of-range or disallowed argument
	// values other than limits.
	ErrInvalidArgument = errors.New("spotify: invalid argument")

	// ErrFieldMissing is returned when a field is absent from an entity's
	// record even after a refresh.
	ErrFieldMissing = errors.New("spotify: field missing")

	// ErrNoActiveDevice is returned by player operations when no device is
	// active. Callers typically treat this as non-fatal.
	ErrNoActiveDevice = errors.New("spotify: no active device")
)
