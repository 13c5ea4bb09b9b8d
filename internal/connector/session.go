package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"db-mirror/internal/dialect"
	"db-mirror/internal/provider"
	"db-mirror/internal/schema"
)

// maxBindArgs caps placeholders per bulk statement. SQL Server rejects
// statements past 2100 parameters, MySQL past 65535; one conservative
// ceiling keeps the chunking engine-independent.
const maxBindArgs = 1000

// Session is the database/sql-backed provider.Session, parameterized by a
// dialect. One live connection pool, single-reader/single-writer use per
// operation.
type Session struct {
	db         *sql.DB
	d          dialect.Dialect
	schemaName string
	closed     bool
}

var _ provider.Session = (*Session)(nil)

// Open connects and resolves the working schema name for introspection.
func Open(d dialect.Dialect, dsn string) (*Session, error) {
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	schemaName := d.DefaultSchema()
	if schemaName == "" && d.Name() == "mysql" {
		if err := db.QueryRow("SELECT DATABASE()").Scan(&schemaName); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to get database name: %w", err)
		}
		if schemaName == "" {
			db.Close()
			return nil, fmt.Errorf("no database selected in DSN")
		}
	}

	return &Session{db: db, d: d, schemaName: schemaName}, nil
}

// NewSession wraps an already-open handle. Tests use this with sqlmock.
func NewSession(db *sql.DB, d dialect.Dialect, schemaName string) *Session {
	return &Session{db: db, d: d, schemaName: schemaName}
}

func (s *Session) Dialect() dialect.Dialect { return s.d }

func (s *Session) Capabilities() provider.Capabilities { return s.d.Capabilities() }

func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Session) GenerateCreateTable(t *schema.Table) string {
	return s.d.CreateTableSQL(t)
}

func (s *Session) GenerateAddColumn(t *schema.Table, c *schema.Column) string {
	return s.d.AddColumnSQL(t, c)
}

func (s *Session) ExecuteCommand(ctx context.Context, sqlText string) error {
	if s.closed {
		return provider.ErrSessionClosed
	}
	if _, err := s.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func (s *Session) Truncate(ctx context.Context, t *schema.Table) error {
	if s.closed {
		return provider.ErrSessionClosed
	}
	if _, err := s.db.ExecContext(ctx, s.d.TruncateSQL(t)); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", t.QualifiedName(), err)
	}
	return nil
}

func (s *Session) ReadTable(ctx context.Context, t *schema.Table) (provider.RowReader, error) {
	if s.closed {
		return nil, provider.ErrSessionClosed
	}
	rows, err := s.db.QueryContext(ctx, s.d.SelectSQL(t))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t.QualifiedName(), err)
	}
	return newRowReader(rows, t), nil
}

func (s *Session) InsertBatch(ctx context.Context, t *schema.Table, rows []schema.Row) error {
	if s.closed {
		return provider.ErrSessionClosed
	}
	if len(rows) == 0 {
		return nil
	}
	cols := rows[0].Columns()

	if !s.d.Capabilities().BulkInsert {
		query := s.d.InsertSQL(t, cols)
		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := s.db.ExecContext(ctx, query, rowArgs(row)...); err != nil {
				return fmt.Errorf("failed to insert into %s: %w", t.QualifiedName(), err)
			}
		}
		return nil
	}

	perStmt := maxBindArgs / len(cols)
	if perStmt < 1 {
		perStmt = 1
	}
	for start := 0; start < len(rows); start += perStmt {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + perStmt
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]
		query, args := s.multiInsert(t, cols, chunk)
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", t.QualifiedName(), err)
		}
	}
	return nil
}

// multiInsert renders INSERT INTO t (cols) VALUES (...), (...) with the
// dialect's placeholders numbered across the whole statement.
func (s *Session) multiInsert(t *schema.Table, cols []string, rows []schema.Row) (string, []interface{}) {
	tuples := make([]string, len(rows))
	args := make([]interface{}, 0, len(rows)*len(cols))
	n := 0
	for i, row := range rows {
		ph := make([]string, len(cols))
		for j := range cols {
			ph[j] = s.d.Placeholder(n)
			n++
		}
		tuples[i] = "(" + strings.Join(ph, ", ") + ")"
		args = append(args, rowArgs(row)...)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		dialect.QualifyTable(s.d, t),
		strings.Join(dialect.QuoteAll(s.d, cols), ", "),
		strings.Join(tuples, ", "))
	return query, args
}

func rowArgs(row schema.Row) []interface{} {
	args := make([]interface{}, row.Len())
	for i := 0; i < row.Len(); i++ {
		args[i] = row.At(i).Arg()
	}
	return args
}
