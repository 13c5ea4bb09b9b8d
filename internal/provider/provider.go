package provider

import (
	"context"
	"errors"

	"db-mirror/internal/schema"
)

// Capabilities are the optional operations an engine adapter declares.
// The core queries these before choosing a strategy and never assumes one.
type Capabilities struct {
	Transactions bool
	Truncate     bool
	BulkInsert   bool
	Upsert       bool
}

var (
	// ErrUpsertUnsupported is returned when upsert reconciliation is
	// requested against a session that does not declare the capability.
	ErrUpsertUnsupported = errors.New("target does not support upsert")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session is closed")
)

// RowReader is one sequential, finite, cancellable read stream over a table.
// Next returns io.EOF when the stream is exhausted.
type RowReader interface {
	Next(ctx context.Context) (schema.Row, error)
	Close() error
}

// DDLGenerator is the slice of a session the diff engine needs: turning
// model objects into the target engine's DDL text.
type DDLGenerator interface {
	GenerateCreateTable(t *schema.Table) string
	GenerateAddColumn(t *schema.Table, c *schema.Column) string
}

// Session is the capability surface the core consumes from one live
// database connection. One session per operation lifetime; concurrent
// reuse across operations is the caller's problem to prevent.
type Session interface {
	DDLGenerator

	Introspect(ctx context.Context) (*schema.Database, error)

	ReadTable(ctx context.Context, t *schema.Table) (RowReader, error)
	Truncate(ctx context.Context, t *schema.Table) error

	// InsertBatch is a no-op on empty input.
	InsertBatch(ctx context.Context, t *schema.Table, rows []schema.Row) error

	// Upsert reconciles a single row by the given key columns. An empty
	// key engages full-row matching (NULL matches NULL, skip-if-present).
	// Fails with ErrUpsertUnsupported unless the capability is declared.
	Upsert(ctx context.Context, t *schema.Table, row schema.Row, keyColumns []string) error

	// ExecuteCommand is the generic escape hatch for direct statements.
	ExecuteCommand(ctx context.Context, sqlText string) error

	Capabilities() Capabilities
	Close() error
}
