package client

import (
	"errors"
	"fmt"
	"net"
)

// ErrInvalidToken is returned when the platform rejects the access token.
// The polling loop treats it as fatal.
var ErrInvalidToken = errors.New("invalid access token")

// ErrInvalidParameters marks a client-side contract violation detected
// before any request is made.
var ErrInvalidParameters = errors.New("invalid parameters")

// APIError is a non-2xx platform response.
type APIError struct {
	Code int
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform error: code=%d body=%s", e.Code, e.Body)
}

// TransportError wraps a connect or read failure on the way to the
// platform. The polling loop backs off and retries these.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a request timeout, which the polling
// loop treats as the normal end of a long-poll cycle.
func IsTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
