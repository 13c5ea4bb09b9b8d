package dialect

import (
	"fmt"

	"db-mirror/internal/provider"
	"db-mirror/internal/schema"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string          { return "postgres" }
func (d *PostgresDialect) DriverName() string    { return "postgres" }
func (d *PostgresDialect) DefaultSchema() string { return "public" }

func (d *PostgresDialect) Capabilities() provider.Capabilities {
	return provider.Capabilities{Transactions: true, Truncate: true, BulkInsert: true, Upsert: true}
}

func (d *PostgresDialect) TablesQuery() string {
	return `SELECT table_schema, table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE' ORDER BY table_name`
}

func (d *PostgresDialect) ColumnsQuery() string {
	// udt_name carries the real type (int4, timestamptz) where data_type
	// reports standard names; serials are detected off the default.
	return `SELECT
    c.table_schema,
    c.table_name,
    c.column_name,
    c.udt_name,
    c.character_maximum_length,
    c.numeric_precision,
    c.numeric_scale,
    c.is_nullable,
    CASE
        WHEN c.is_identity = 'YES' THEN 'identity'
        WHEN c.column_default LIKE 'nextval%' THEN 'identity'
        ELSE ''
    END
FROM information_schema.columns c
WHERE c.table_schema = $1
ORDER BY c.table_name, c.ordinal_position`
}

func (d *PostgresDialect) PrimaryKeysQuery() string {
	return `SELECT kcu.table_schema, kcu.table_name, kcu.column_name FROM information_schema.key_column_usage kcu JOIN information_schema.table_constraints tc ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema WHERE kcu.table_schema = $1 AND tc.constraint_type = 'PRIMARY KEY' ORDER BY kcu.table_name, kcu.ordinal_position`
}

func (d *PostgresDialect) QuoteIdent(name string) string { return `"` + name + `"` }

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

func (d *PostgresDialect) MapToCanonical(nativeType string) schema.CanonicalType {
	switch normalizeNative(nativeType) {
	case "int2", "int4", "smallint", "integer", "int", "serial", "smallserial":
		return schema.TypeInt32
	case "int8", "bigint", "bigserial":
		return schema.TypeInt64
	case "numeric", "decimal", "money":
		return schema.TypeDecimal
	case "float4", "float8", "real", "double precision":
		return schema.TypeDouble
	case "bool", "boolean":
		return schema.TypeBoolean
	case "date", "timestamp", "time":
		return schema.TypeDateTime
	case "timestamptz", "timetz":
		return schema.TypeDateTimeOffset
	case "uuid":
		return schema.TypeGuid
	case "json", "jsonb":
		return schema.TypeJSON
	case "bytea":
		return schema.TypeBinary
	default:
		return schema.TypeString
	}
}

func (d *PostgresDialect) ToSQLType(col *schema.Column) string {
	switch col.Type {
	case schema.TypeInt32:
		return "INTEGER"
	case schema.TypeInt64:
		return "BIGINT"
	case schema.TypeDecimal:
		p, s := col.Precision, col.Scale
		if p == 0 {
			p, s = DefaultPrecision, DefaultScale
		}
		return fmt.Sprintf("NUMERIC(%d,%d)", p, s)
	case schema.TypeDouble:
		return "DOUBLE PRECISION"
	case schema.TypeBoolean:
		return "BOOLEAN"
	case schema.TypeDateTime:
		return "TIMESTAMP"
	case schema.TypeDateTimeOffset:
		return "TIMESTAMPTZ"
	case schema.TypeGuid:
		return "UUID"
	case schema.TypeJSON:
		return "JSONB"
	case schema.TypeBinary:
		return "BYTEA"
	default:
		if col.Length > 0 && col.Length <= 10485760 {
			return fmt.Sprintf("VARCHAR(%d)", col.Length)
		}
		return "TEXT"
	}
}

func (d *PostgresDialect) CreateTableSQL(t *schema.Table) string {
	return BuildCreateTable(d, t)
}

func (d *PostgresDialect) AddColumnSQL(t *schema.Table, c *schema.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", QualifyTable(d, t), ColumnDDL(d, c))
}

func (d *PostgresDialect) SelectSQL(t *schema.Table) string { return BuildSelect(d, t) }

func (d *PostgresDialect) InsertSQL(t *schema.Table, cols []string) string {
	return BuildInsert(d, t, cols)
}

func (d *PostgresDialect) TruncateSQL(t *schema.Table) string {
	return fmt.Sprintf("TRUNCATE TABLE %s", QualifyTable(d, t))
}
