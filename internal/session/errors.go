package session

import "errors"

// ErrNoActiveConnection is returned by query operations when the session
// holds no live handle. No driver call is made in that case.
var ErrNoActiveConnection = errors.New("no active connection")

// ErrDuplicateParameter is returned when a prepared query binds the same
// parameter name twice. Rejected before any driver call.
var ErrDuplicateParameter = errors.New("duplicate query parameter name")

// DriverConnectError wraps a driver failure during handle open. The
// message is the driver's own, verbatim, so it can surface in user-facing
// status text unchanged.
type DriverConnectError struct {
	Err error
}

func (e *DriverConnectError) Error() string { return e.Err.Error() }

func (e *DriverConnectError) Unwrap() error { return e.Err }

// DriverQueryError wraps a driver failure during query execution, with
// the driver's message kept verbatim.
type DriverQueryError struct {
	Err error
}

func (e *DriverQueryError) Error() string { return e.Err.Error() }

func (e *DriverQueryError) Unwrap() error { return e.Err }
