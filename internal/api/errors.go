package api

import (
	"errors"
	"fmt"
)

// ErrTokenExpired is returned before any request is sent when the bearer
// token's exp claim is in the past.
var ErrTokenExpired = errors.New("access token expired")

// Error is a non-2xx response. Message is the backend's "message" field,
// or the endpoint's generic failure text.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// DecodeError reports a response body that is not valid JSON or does not
// match the expected shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
