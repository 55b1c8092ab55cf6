// Package sqldriver implements the session driver contract on top of
// database/sql, with SQL Server (go-mssqldb) and PostgreSQL (pgx)
// drivers registered.
package sqldriver

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"  // registers "pgx"
	_ "github.com/microsoft/go-mssqldb" // registers "sqlserver"

	"github.com/INTARYNX/sqlwayfarer-sub001/internal/logger"
	"github.com/INTARYNX/sqlwayfarer-sub001/internal/session"
)

// Options tunes the handles the driver opens.
type Options struct {
	// DriverName is the database/sql driver used for ADO-style
	// connection strings. Defaults to "sqlserver". postgres:// strings
	// always route to pgx regardless.
	DriverName string
	// PingTimeout bounds the reachability check during Connect.
	// Defaults to 15s.
	PingTimeout time.Duration
	// MaxOpenConns bounds each handle's underlying pool. The session
	// holds a single handle, so this stays small. Defaults to 2.
	MaxOpenConns int
}

// Driver opens database/sql-backed handles.
type Driver struct {
	opts Options
}

// New creates a Driver, filling zero options with defaults.
func New(opts Options) *Driver {
	if opts.DriverName == "" {
		opts.DriverName = "sqlserver"
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 15 * time.Second
	}
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 2
	}
	return &Driver{opts: opts}
}

// driverNameFor picks the database/sql driver from the connection
// string's shape: postgres URLs go to pgx, everything else to the
// configured default.
func (d *Driver) driverNameFor(connString string) string {
	if strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://") {
		return "pgx"
	}
	return d.opts.DriverName
}

// Connect opens a handle and verifies reachability with a ping. sql.Open
// alone does not dial, so without the ping a bad host or password would
// surface only on the first query.
func (d *Driver) Connect(ctx context.Context, connString string) (session.Handle, error) {
	name := d.driverNameFor(connString)
	db, err := sql.Open(name, connString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(d.opts.MaxOpenConns)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, d.opts.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("database handle opened", "driver", name)
	return &dbHandle{db: db}, nil
}

type dbHandle struct {
	db *sql.DB
}

func (h *dbHandle) Close(ctx context.Context) error {
	return h.db.Close()
}

func (h *dbHandle) Request() session.Request {
	return &dbRequest{db: h.db}
}

type dbRequest struct {
	db   *sql.DB
	args []any
}

// Input binds a named parameter. SQL Server queries reference it as
// @name; parameters bind in the order Input was called.
func (r *dbRequest) Input(name string, value any) session.Request {
	r.args = append(r.args, sql.Named(name, value))
	return r
}

// Query executes text and scans every row into a column-name keyed map,
// normalizing []byte cells to strings for text columns.
func (r *dbRequest) Query(ctx context.Context, text string) (*session.QueryResult, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, text, r.args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &session.QueryResult{
		Columns:  columns,
		Rows:     results,
		RowCount: len(results),
		Duration: time.Since(start),
	}, nil
}
