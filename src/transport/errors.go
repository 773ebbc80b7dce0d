package transport

import (
	"errors"
	"fmt"
	"net/http"

	"ci-reaper/src/provider"
	"ci-reaper/src/sanitize"
)

// ErrNotUTF8 is wrapped by DecodeError when a response body is not valid UTF-8.
var ErrNotUTF8 = errors.New("response body is not valid UTF-8")

// RequestError is a network-level failure: the request never produced a response.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusError is returned for any status other than 200 or 204.
// Body holds the full response body; Error shows a sanitized snippet of it.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Code)
	if snippet := sanitize.Snippet(e.Body); snippet != "" {
		msg += ": " + snippet
	}
	return msg
}

// Unwrap maps well-known status codes to the provider sentinels.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return provider.ErrAuthFailed
	case http.StatusNotFound:
		return provider.ErrNotFound
	case http.StatusTooManyRequests:
		return provider.ErrRateLimited
	}
	return nil
}

// DecodeError is returned when a success response cannot be decoded.
// RawBody keeps the payload so malformed responses can be inspected.
type DecodeError struct {
	URL     string
	RawBody []byte
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v: %s", e.URL, e.Err, sanitize.Snippet(string(e.RawBody)))
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
