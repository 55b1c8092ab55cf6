package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/INTARYNX/sqlwayfarer-sub001/internal/credstore"
	"github.com/INTARYNX/sqlwayfarer-sub001/internal/logger"
)

// Result mirrors credstore.Result: lifecycle operations report outcomes
// as data so the caller can render status inline.
type Result = credstore.Result

// Session owns at most one live database handle and executes the
// connect/test/disconnect/query lifecycle against it. Lifecycle
// operations are serialized through an internal mutex so two overlapping
// connects cannot race to set the active handle; queries run against a
// snapshot of the handle and rely on the driver's documented safety for
// concurrent requests.
type Session struct {
	driver  Driver
	secrets SecretSource

	mu     sync.Mutex
	active Handle
}

// New creates a disconnected session. secrets may be nil, in which case
// no stored-password substitution happens in BuildConnectionString.
func New(driver Driver, secrets SecretSource) *Session {
	return &Session{driver: driver, secrets: secrets}
}

// TestConnection opens an ephemeral handle and immediately closes it.
// It never touches the active handle, so a failed probe cannot disturb
// an established connection.
func (s *Session) TestConnection(ctx context.Context, cfg credstore.Profile) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	connString, err := s.BuildConnectionString(ctx, cfg)
	if err != nil {
		return Result{Success: false, Message: "Connection test failed: " + err.Error()}
	}

	h, err := s.driver.Connect(ctx, connString)
	if err != nil {
		cerr := &DriverConnectError{Err: err}
		return Result{Success: false, Message: "Connection test failed: " + cerr.Error()}
	}
	if err := h.Close(ctx); err != nil {
		logger.Warn("closing test connection", "error", err)
	}
	return Result{Success: true, Message: "Connection test successful!"}
}

// Connect establishes the active handle. An existing handle is closed
// first; a close failure during this implicit reconnect does not abort
// the new attempt but is logged and superseded. On failure the session
// is left with no handle, never a half-assigned one.
func (s *Session) Connect(ctx context.Context, cfg credstore.Profile) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		if err := s.active.Close(ctx); err != nil {
			logger.Warn("closing previous connection before reconnect", "error", err)
		}
		s.active = nil
	}

	connString, err := s.BuildConnectionString(ctx, cfg)
	if err != nil {
		return Result{Success: false, Message: "Connection failed: " + err.Error()}
	}

	h, err := s.driver.Connect(ctx, connString)
	if err != nil {
		cerr := &DriverConnectError{Err: err}
		logger.Error("connect failed", "name", cfg.Name, "error", err)
		return Result{Success: false, Message: "Connection failed: " + cerr.Error()}
	}

	s.active = h
	logger.Info("connected", "name", cfg.Name)
	return Result{Success: true, Message: "Connected successfully!"}
}

// Disconnect closes and clears the active handle. It is idempotent: with
// no handle it still reports success. A close error is reported as a
// failure, but the handle is cleared regardless so it can never dangle.
func (s *Session) Disconnect(ctx context.Context) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return Result{Success: true, Message: "No active connection to disconnect"}
	}

	h := s.active
	s.active = nil
	if err := h.Close(ctx); err != nil {
		return Result{Success: false, Message: "Disconnect failed: " + err.Error()}
	}
	return Result{Success: true, Message: "Disconnected successfully!"}
}

// IsConnected reports whether an active handle is present.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// ActiveConnection returns the live handle for query dispatch by
// collaborators, or nil when disconnected. A handle this session has
// closed is never returned.
func (s *Session) ActiveConnection() Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ExecuteQuery runs text against the active handle. Unlike the lifecycle
// operations, query failures propagate as errors.
func (s *Session) ExecuteQuery(ctx context.Context, text string) (*QueryResult, error) {
	h := s.ActiveConnection()
	if h == nil {
		return nil, ErrNoActiveConnection
	}
	res, err := h.Request().Query(ctx, text)
	if err != nil {
		return nil, &DriverQueryError{Err: err}
	}
	return res, nil
}

// ExecutePreparedQuery binds each parameter in slice order, then runs
// text against the active handle. Duplicate parameter names are rejected
// before any driver call.
func (s *Session) ExecutePreparedQuery(ctx context.Context, text string, params []Parameter) (*QueryResult, error) {
	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParameter, p.Name)
		}
		seen[p.Name] = struct{}{}
	}

	h := s.ActiveConnection()
	if h == nil {
		return nil, ErrNoActiveConnection
	}

	req := h.Request()
	for _, p := range params {
		req = req.Input(p.Name, p.Value)
	}
	res, err := req.Query(ctx, text)
	if err != nil {
		return nil, &DriverQueryError{Err: err}
	}
	return res, nil
}

// Dispose tears the session down for shutdown. Any close error is logged
// and swallowed: dispose must always complete.
func (s *Session) Dispose(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return
	}
	if err := s.active.Close(ctx); err != nil {
		logger.Error("closing connection during dispose", "error", err)
	}
	s.active = nil
}
