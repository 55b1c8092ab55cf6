// Package bridge exposes the connection lifecycle to a UI panel as a
// command-discriminated request/response interface. Every response
// echoes the command so the panel can correlate it.
package bridge

import (
	"context"
	"encoding/json"

	"github.com/INTARYNX/sqlwayfarer-sub001/internal/credstore"
	"github.com/INTARYNX/sqlwayfarer-sub001/internal/session"
)

// Commands understood by Handle.
const (
	CmdLoadConnections          = "loadConnections"
	CmdSaveConnection           = "saveConnection"
	CmdDeleteConnection         = "deleteConnection"
	CmdTestConnection           = "testConnection"
	CmdConnect                  = "connect"
	CmdLoadConnectionForDisplay = "loadConnectionForDisplay"
)

// PasswordPlaceholder signals to a form that a password exists but is
// stored separately and will not be echoed.
const PasswordPlaceholder = "********"

// Request is one command from the UI layer.
type Request struct {
	Command string             `json:"command"`
	Name    string             `json:"name,omitempty"`
	Config  *credstore.Profile `json:"config,omitempty"`
}

// Response is the answer to one Request.
type Response struct {
	Command             string              `json:"command"`
	Success             bool                `json:"success"`
	Message             string              `json:"message,omitempty"`
	Connections         []credstore.Profile `json:"connections,omitempty"`
	Connection          *credstore.Profile  `json:"connection,omitempty"`
	PasswordPlaceholder string              `json:"passwordPlaceholder,omitempty"`
}

// Bridge dispatches UI commands to the credential store and session.
type Bridge struct {
	store   *credstore.Store
	session *session.Session
}

// New creates a Bridge over an initialized store and a session.
func New(store *credstore.Store, sess *session.Session) *Bridge {
	return &Bridge{store: store, session: sess}
}

// Handle dispatches one request. Unknown commands and missing payloads
// come back as failed responses, never panics or errors: the UI renders
// every outcome the same way.
func (b *Bridge) Handle(ctx context.Context, req Request) Response {
	switch req.Command {
	case CmdLoadConnections:
		return Response{
			Command:     req.Command,
			Success:     true,
			Connections: b.store.GetSavedConnections(),
		}

	case CmdSaveConnection:
		if req.Config == nil {
			return Response{Command: req.Command, Success: false, Message: "missing connection config"}
		}
		res := b.store.SaveConnection(ctx, *req.Config)
		return Response{Command: req.Command, Success: res.Success, Message: res.Message}

	case CmdDeleteConnection:
		res := b.store.DeleteConnection(ctx, req.Name)
		return Response{Command: req.Command, Success: res.Success, Message: res.Message}

	case CmdTestConnection:
		if req.Config == nil {
			return Response{Command: req.Command, Success: false, Message: "missing connection config"}
		}
		res := b.session.TestConnection(ctx, *req.Config)
		return Response{Command: req.Command, Success: res.Success, Message: res.Message}

	case CmdConnect:
		if req.Config == nil {
			return Response{Command: req.Command, Success: false, Message: "missing connection config"}
		}
		res := b.session.Connect(ctx, *req.Config)
		return Response{Command: req.Command, Success: res.Success, Message: res.Message}

	case CmdLoadConnectionForDisplay:
		p, ok := b.store.GetConnection(req.Name)
		if !ok {
			err := &credstore.NotFoundError{Name: req.Name}
			return Response{Command: req.Command, Success: false, Message: err.Error()}
		}
		p.Password = ""
		resp := Response{Command: req.Command, Success: true, Connection: &p}
		if pw, err := b.store.GetConnectionPassword(ctx, req.Name); err == nil && pw != "" {
			resp.PasswordPlaceholder = PasswordPlaceholder
		}
		return resp

	default:
		return Response{Command: req.Command, Success: false, Message: "unknown command '" + req.Command + "'"}
	}
}

// HandleJSON decodes one JSON request, dispatches it, and encodes the
// response. Malformed requests produce a failed response rather than an
// error so the transport can stay fire-and-forget.
func (b *Bridge) HandleJSON(ctx context.Context, data []byte) []byte {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		out, _ := json.Marshal(Response{Success: false, Message: "malformed request: " + err.Error()})
		return out
	}
	out, _ := json.Marshal(b.Handle(ctx, req))
	return out
}
