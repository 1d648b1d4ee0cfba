package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goliatone/go-tripform/pkg/trip"
)

var (
	// ErrInvalidBaseURL is returned by New for unusable service URLs.
	ErrInvalidBaseURL = errors.New("client: invalid base url")
	// ErrUnhealthy is returned by Health when the service answers with a
	// status other than "ok".
	ErrUnhealthy = errors.New("client: service reported unhealthy")
)

// TransportError reports that the request never produced an HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("client: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Op     string
	Code   int
	Detail string
	// Fields holds service side validation failures keyed by canonical
	// field name, when the body could be mapped.
	Fields trip.FieldErrors
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("client: %s: planning service returned %d", e.Op, e.StatusCode())
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// StatusCode returns the HTTP status, defaulting to 500 for zero values.
func (e *StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// DecodeError reports a response body that could not be decoded or that
// violates the service contract.
type DecodeError struct {
	Op   string
	Code int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("client: %s: decode response (status %d): %v", e.Op, e.Code, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StatusCode returns the status of the undecodable response.
func (e *DecodeError) StatusCode() int { return e.Code }
