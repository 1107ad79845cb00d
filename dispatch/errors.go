package dispatch

import (
	"fmt"
)

// StateSnapshot captures the FSM view of the failing update's routing
// key at the moment an error was reported.
type StateSnapshot struct {
	ChatID int64
	UserID int64
	State  string
	Data   map[string]any
}

// HandlerError reports a failure raised by a handler function. The
// update is still considered handled; the dispatcher logs the error and
// keeps serving subsequent updates.
type HandlerError struct {
	RouterID string
	Handler  string
	Update   string
	Snapshot StateSnapshot
	Cause    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s (router %s) failed on %s: %v", e.Handler, e.RouterID, e.Update, e.Cause)
}

func (e *HandlerError) Unwrap() error { return e.Cause }

// MiddlewareError reports a failure raised by a filter or a middleware,
// before or after the handler itself ran.
type MiddlewareError struct {
	RouterID string
	Update   string
	Snapshot StateSnapshot
	Cause    error
}

func (e *MiddlewareError) Error() string {
	return fmt.Sprintf("middleware failed on %s (router %s): %v", e.Update, e.RouterID, e.Cause)
}

func (e *MiddlewareError) Unwrap() error { return e.Cause }
