package session

import (
	"context"
	"time"
)

// Driver opens database handles from a finished connection string. All
// driver calls are fallible and perform network I/O.
type Driver interface {
	Connect(ctx context.Context, connString string) (Handle, error)
}

// Handle is one live database connection.
type Handle interface {
	Close(ctx context.Context) error
	Request() Request
}

// Request builds and executes a single query against a handle.
// Input binds a named parameter and returns the request for chaining.
type Request interface {
	Input(name string, value any) Request
	Query(ctx context.Context, text string) (*QueryResult, error)
}

// Parameter is one named query parameter. Slice order is binding order.
type Parameter struct {
	Name  string
	Value any
}

// QueryResult holds the rows produced by a query.
type QueryResult struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"rowCount"`
	Duration time.Duration    `json:"duration"`
}
