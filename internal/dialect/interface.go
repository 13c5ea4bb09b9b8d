package dialect

import (
	"db-mirror/internal/provider"
	"db-mirror/internal/schema"
)

// Dialect abstracts database-specific SQL: introspection queries, the
// native<->canonical type mapping, identifier quoting, placeholders, and
// DDL/DML text generation. The core never templates SQL itself.
type Dialect interface {
	Name() string
	DriverName() string
	DefaultSchema() string
	Capabilities() provider.Capabilities

	// Metadata Queries (Schema Introspection).
	// Each takes the schema name as its single bind parameter and yields
	// rows in the unified column order the introspection scan expects.
	TablesQuery() string
	ColumnsQuery() string
	PrimaryKeysQuery() string

	// Identifiers & Parameters
	QuoteIdent(name string) string
	Placeholder(index int) string // Returns ?, $1, @p1, :1 etc.

	// Type Mapping
	MapToCanonical(nativeType string) schema.CanonicalType
	ToSQLType(col *schema.Column) string

	// DDL Generation
	CreateTableSQL(t *schema.Table) string
	AddColumnSQL(t *schema.Table, c *schema.Column) string

	// DML Generation
	SelectSQL(t *schema.Table) string
	InsertSQL(t *schema.Table, cols []string) string
	TruncateSQL(t *schema.Table) string
}
