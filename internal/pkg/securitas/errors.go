package securitas

import (
	"encoding/json"
	"fmt"
	"time"
)

// ConnectionError indicates that the API endpoint could not be reached
// (DNS, TLS, refused connection).  It is not retried automatically.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error with URL %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// DecodeError indicates the API returned something that is not JSON.
type DecodeError struct {
	Err  error
	Body []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding API response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// APIError is a GraphQL level error.  Raw holds the complete response
// payload because some flows (device validation) need to dig structured
// data out of the error response.
type APIError struct {
	Message string
	Raw     json.RawMessage
}

func (e *APIError) Error() string {
	return e.Message
}

// LoginError indicates the API rejected the credentials or session.
type LoginError struct {
	Message string
	Raw     json.RawMessage
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login failed: %s", e.Message)
}

// OperationTimeoutError indicates a polled operation was still in the
// WAIT state when the caller's timeout budget ran out.
type OperationTimeoutError struct {
	Operation   string
	ReferenceID string
	Timeout     time.Duration
}

func (e *OperationTimeoutError) Error() string {
	return fmt.Sprintf("operation %s (reference %s) still pending after %s",
		e.Operation, e.ReferenceID, e.Timeout)
}
