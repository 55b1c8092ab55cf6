package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/INTARYNX/sqlwayfarer-sub001/internal/credstore"
)

// fakeDriver records every handle it opens so tests can assert the
// single-handle invariant.
type fakeDriver struct {
	handles      []*fakeHandle
	connectErr   error
	nextCloseErr error
	lastConnStr  string
}

func (d *fakeDriver) Connect(ctx context.Context, connString string) (Handle, error) {
	d.lastConnStr = connString
	if d.connectErr != nil {
		return nil, d.connectErr
	}
	h := &fakeHandle{closeErr: d.nextCloseErr}
	d.nextCloseErr = nil
	d.handles = append(d.handles, h)
	return h, nil
}

func (d *fakeDriver) openCount() int {
	n := 0
	for _, h := range d.handles {
		if !h.closed {
			n++
		}
	}
	return n
}

type fakeHandle struct {
	closed   bool
	closeErr error
	queries  []string
	inputs   []Parameter
	queryErr error
}

func (h *fakeHandle) Close(ctx context.Context) error {
	h.closed = true
	return h.closeErr
}

func (h *fakeHandle) Request() Request {
	return &fakeRequest{handle: h}
}

type fakeRequest struct {
	handle *fakeHandle
}

func (r *fakeRequest) Input(name string, value any) Request {
	r.handle.inputs = append(r.handle.inputs, Parameter{Name: name, Value: value})
	return r
}

func (r *fakeRequest) Query(ctx context.Context, text string) (*QueryResult, error) {
	r.handle.queries = append(r.handle.queries, text)
	if r.handle.queryErr != nil {
		return nil, r.handle.queryErr
	}
	return &QueryResult{Columns: []string{"ok"}, Rows: []map[string]any{{"ok": 1}}, RowCount: 1}, nil
}

func TestConnect_Success(t *testing.T) {
	d := &fakeDriver{}
	s := New(d, nil)

	res := s.Connect(context.Background(), credstore.Profile{Server: "host"})
	if !res.Success {
		t.Fatalf("Connect: %s", res.Message)
	}
	if res.Message != "Connected successfully!" {
		t.Errorf("Connect: got message %q", res.Message)
	}
	if !s.IsConnected() {
		t.Error("IsConnected: false after successful connect")
	}
	if s.ActiveConnection() == nil {
		t.Error("ActiveConnection: nil after successful connect")
	}
}

func TestConnect_FailureClearsHandle(t *testing.T) {
	d := &fakeDriver{connectErr: errors.New("login failed for user 'u'")}
	s := New(d, nil)

	res := s.Connect(context.Background(), credstore.Profile{Server: "host"})
	if res.Success {
		t.Fatal("Connect: expected failure")
	}
	if res.Message != "Connection failed: login failed for user 'u'" {
		t.Errorf("Connect: got message %q", res.Message)
	}
	if s.IsConnected() {
		t.Error("IsConnected: true after failed connect")
	}
	if s.ActiveConnection() != nil {
		t.Error("ActiveConnection: non-nil after failed connect")
	}
}

func TestConnect_SingleHandleInvariant(t *testing.T) {
	ctx := context.Background()
	d := &fakeDriver{}
	s := New(d, nil)

	s.Connect(ctx, credstore.Profile{Server: "one"})
	s.Connect(ctx, credstore.Profile{Server: "two"})

	if len(d.handles) != 2 {
		t.Fatalf("driver opened %d handles, want 2", len(d.handles))
	}
	if !d.handles[0].closed {
		t.Error("first handle not closed on reconnect")
	}
	if d.handles[1].closed {
		t.Error("second handle closed unexpectedly")
	}
	if d.openCount() != 1 {
		t.Errorf("open handles: got %d, want exactly 1", d.openCount())
	}
	if s.ActiveConnection() != d.handles[1] {
		t.Error("active handle is not the second one")
	}
}

func TestConnect_CloseFailureDoesNotAbortReconnect(t *testing.T) {
	ctx := context.Background()
	d := &fakeDriver{}
	s := New(d, nil)

	s.Connect(ctx, credstore.Profile{Server: "one"})
	d.handles[0].closeErr = errors.New("socket already gone")

	res := s.Connect(ctx, credstore.Profile{Server: "two"})
	if !res.Success {
		t.Fatalf("Connect: reconnect aborted by close failure: %s", res.Message)
	}
	if d.openCount() != 1 {
		t.Errorf("open handles: got %d, want 1", d.openCount())
	}
}

func TestConnect_ReconnectAfterFailureKeepsNothing(t *testing.T) {
	ctx := context.Background()
	d := &fakeDriver{}
	s := New(d, nil)

	s.Connect(ctx, credstore.Profile{Server: "one"})
	d.connectErr = errors.New("host unreachable")
	res := s.Connect(ctx, credstore.Profile{Server: "two"})

	if res.Success {
		t.Fatal("Connect: expected failure")
	}
	// The old handle was closed before the failed attempt, and nothing
	// replaced it: the session is cleanly disconnected.
	if s.IsConnected() {
		t.Error("IsConnected: true after failed reconnect")
	}
	if d.openCount() != 0 {
		t.Errorf("open handles: got %d, want 0", d.openCount())
	}
}

func TestConnect_SecretErrorOnReconnectClosesOldHandle(t *testing.T) {
	ctx := context.Background()
	d := &fakeDriver{}
	secrets := &mapSecrets{secrets: map[string]string{"one": "pw"}}
	s := New(d, secrets)

	s.Connect(ctx, credstore.Profile{Name: "one", Server: "host", Username: "u"})

	secrets.err = errors.New("secret medium offline")
	res := s.Connect(ctx, credstore.Profile{Name: "two", Server: "other", Username: "u"})
	if res.Success {
		t.Fatal("Connect: expected failure from secret source")
	}
	if res.Message != "Connection failed: secret medium offline" {
		t.Errorf("Connect: got message %q", res.Message)
	}
	// The old handle is torn down before the string is built, so a failed
	// reconnect never leaves the session connected to the previous target.
	if s.IsConnected() {
		t.Error("IsConnected: true after failed reconnect")
	}
	if !d.handles[0].closed {
		t.Error("old handle not closed before failed reconnect")
	}
	if d.openCount() != 0 {
		t.Errorf("open handles: got %d, want 0", d.openCount())
	}
}

func TestDisconnect_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := New(&fakeDriver{}, nil)

	for i := 0; i < 2; i++ {
		res := s.Disconnect(ctx)
		if !res.Success {
			t.Fatalf("Disconnect #%d: %s", i+1, res.Message)
		}
	}
	if s.IsConnected() {
		t.Error("IsConnected: true after disconnects")
	}
}

func TestDisconnect_ClosesAndClears(t *testing.T) {
	ctx := context.Background()
	d := &fakeDriver{}
	s := New(d, nil)

	s.Connect(ctx, credstore.Profile{Server: "host"})
	res := s.Disconnect(ctx)
	if !res.Success {
		t.Fatalf("Disconnect: %s", res.Message)
	}
	if !d.handles[0].closed {
		t.Error("handle not closed")
	}
	if s.IsConnected() {
		t.Error("IsConnected: true after disconnect")
	}
}

func TestDisconnect_CloseErrorStillClears(t *testing.T) {
	ctx := context.Background()
	d := &fakeDriver{}
	s := New(d, nil)

	s.Connect(ctx, credstore.Profile{Server: "host"})
	d.handles[0].closeErr = errors.New("close timed out")

	res := s.Disconnect(ctx)
	if res.Success {
		t.Fatal("Disconnect: expected failure when close errors")
	}
	if !strings.Contains(res.Message, "close timed out") {
		t.Errorf("Disconnect: got message %q", res.Message)
	}
	if s.IsConnected() {
		t.Error("handle left dangling after failed close")
	}
	if s.ActiveConnection() != nil {
		t.Error("ActiveConnection: non-nil after failed close")
	}
}

func TestTestConnection_EphemeralProbe(t *testing.T) {
	ctx := context.Background()
	d := &fakeDriver{}
	s := New(d, nil)

	res := s.TestConnection(ctx, credstore.Profile{Server: "host"})
	if !res.Success {
		t.Fatalf("TestConnection: %s", res.Message)
	}
	if res.Message != "Connection test successful!" {
		t.Errorf("TestConnection: got message %q", res.Message)
	}
	if len(d.handles) != 1 || !d.handles[0].closed {
		t.Error("probe handle not opened and closed exactly once")
	}
	if s.IsConnected() {
		t.Error("TestConnection promoted the probe to active")
	}
}

func TestTestConnection_FailureDoesNotTouchActiveHandle(t *testing.T) {
	ctx := context.Background()
	d := &fakeDriver{}
	s := New(d, nil)

	s.Connect(ctx, credstore.Profile{Server: "host"})
	active := s.ActiveConnection()

	d.connectErr = errors.New("timeout")
	res := s.TestConnection(ctx, credstore.Profile{Server: "other"})
	if res.Success {
		t.Fatal("TestConnection: expected failure")
	}
	if res.Message != "Connection test failed: timeout" {
		t.Errorf("TestConnection: got message %q", res.Message)
	}
	if !s.IsConnected() || s.ActiveConnection() != active {
		t.Error("failed probe mutated the active handle")
	}
}

func TestExecuteQuery_NoActiveConnection(t *testing.T) {
	d := &fakeDriver{}
	s := New(d, nil)

	_, err := s.ExecuteQuery(context.Background(), "SELECT 1")
	if !errors.Is(err, ErrNoActiveConnection) {
		t.Fatalf("ExecuteQuery: got %v, want ErrNoActiveConnection", err)
	}
	if len(d.handles) != 0 {
		t.Error("ExecuteQuery performed a driver call with no active handle")
	}
}

func TestExecuteQuery_DriverErrorPropagates(t *testing.T) {
	ctx := context.Background()
	d := &fakeDriver{}
	s := New(d, nil)

	s.Connect(ctx, credstore.Profile{Server: "host"})
	d.handles[0].queryErr = errors.New("syntax error near 'FORM'")

	_, err := s.ExecuteQuery(ctx, "SELECT * FORM t")
	var qerr *DriverQueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("ExecuteQuery: got %T, want *DriverQueryError", err)
	}
	if err.Error() != "syntax error near 'FORM'" {
		t.Errorf("ExecuteQuery: driver message not verbatim: %q", err.Error())
	}
}

func TestExecutePreparedQuery_BindsInOrder(t *testing.T) {
	ctx := context.Background()
	d := &fakeDriver{}
	s := New(d, nil)

	s.Connect(ctx, credstore.Profile{Server: "host"})
	params := []Parameter{
		{Name: "schema", Value: "dbo"},
		{Name: "table", Value: "users"},
	}
	if _, err := s.ExecutePreparedQuery(ctx, "SELECT 1", params); err != nil {
		t.Fatalf("ExecutePreparedQuery: %v", err)
	}

	got := d.handles[0].inputs
	if len(got) != 2 || got[0].Name != "schema" || got[1].Name != "table" {
		t.Errorf("parameters bound out of order: %+v", got)
	}
}

func TestExecutePreparedQuery_DuplicateName(t *testing.T) {
	ctx := context.Background()
	d := &fakeDriver{}
	s := New(d, nil)

	s.Connect(ctx, credstore.Profile{Server: "host"})
	params := []Parameter{
		{Name: "p", Value: 1},
		{Name: "p", Value: 2},
	}
	_, err := s.ExecutePreparedQuery(ctx, "SELECT 1", params)
	if !errors.Is(err, ErrDuplicateParameter) {
		t.Fatalf("ExecutePreparedQuery: got %v, want ErrDuplicateParameter", err)
	}
	if len(d.handles[0].queries) != 0 {
		t.Error("duplicate parameter reached the driver")
	}
}

func TestDispose_SwallowsCloseError(t *testing.T) {
	ctx := context.Background()
	d := &fakeDriver{}
	s := New(d, nil)

	s.Connect(ctx, credstore.Profile{Server: "host"})
	d.handles[0].closeErr = errors.New("broken pipe")

	s.Dispose(ctx) // must not panic or propagate
	if s.IsConnected() {
		t.Error("IsConnected: true after dispose")
	}
}

func TestDispose_Disconnected(t *testing.T) {
	s := New(&fakeDriver{}, nil)
	s.Dispose(context.Background())
	if s.IsConnected() {
		t.Error("IsConnected: true after dispose")
	}
}

func TestConnect_UsesStoredSecret(t *testing.T) {
	d := &fakeDriver{}
	secrets := &mapSecrets{secrets: map[string]string{"prod": "hunter2"}}
	s := New(d, secrets)

	res := s.Connect(context.Background(), credstore.Profile{Name: "prod", Server: "host", Username: "sa"})
	if !res.Success {
		t.Fatalf("Connect: %s", res.Message)
	}
	if d.lastConnStr != "Server=host;User Id=sa;Password=hunter2" {
		t.Errorf("Connect: connection string %q", d.lastConnStr)
	}
}
