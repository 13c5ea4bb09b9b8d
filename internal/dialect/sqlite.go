package dialect

import (
	"fmt"
	"strings"

	"db-mirror/internal/provider"
	"db-mirror/internal/schema"
)

type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string          { return "sqlite" }
func (d *SQLiteDialect) DriverName() string    { return "sqlite" }
func (d *SQLiteDialect) DefaultSchema() string { return "" }

func (d *SQLiteDialect) Capabilities() provider.Capabilities {
	// No TRUNCATE statement; full-mode sync soft-degrades to plain inserts.
	return provider.Capabilities{Transactions: true, Truncate: false, BulkInsert: true, Upsert: true}
}

func (d *SQLiteDialect) TablesQuery() string {
	return `SELECT '', name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND ? IS NOT NULL ORDER BY name`
}

func (d *SQLiteDialect) ColumnsQuery() string {
	// pragma_table_info carries no length/precision metadata; sizes stay
	// zero and the type mapping works off the declared type name alone.
	return `
SELECT '', m.name, ti.name, ti.type, NULL, NULL, NULL,
       CASE WHEN ti."notnull" = 0 THEN 'YES' ELSE 'NO' END,
       CASE WHEN ti.pk = 1 AND LOWER(ti.type) = 'integer' THEN 'identity' ELSE '' END
FROM sqlite_master m
JOIN pragma_table_info(m.name) ti
WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%' AND ? IS NOT NULL
ORDER BY m.name, ti.cid`
}

func (d *SQLiteDialect) PrimaryKeysQuery() string {
	return `
SELECT '', m.name, ti.name
FROM sqlite_master m
JOIN pragma_table_info(m.name) ti
WHERE m.type = 'table' AND m.name NOT LIKE 'sqlite_%' AND ti.pk > 0 AND ? IS NOT NULL
ORDER BY m.name, ti.pk`
}

func (d *SQLiteDialect) QuoteIdent(name string) string { return `"` + name + `"` }
func (d *SQLiteDialect) Placeholder(index int) string  { return "?" }

func (d *SQLiteDialect) MapToCanonical(nativeType string) schema.CanonicalType {
	t := normalizeNative(nativeType)
	switch t {
	case "integer", "int", "tinyint", "smallint", "mediumint":
		return schema.TypeInt32
	case "bigint":
		return schema.TypeInt64
	case "decimal", "numeric":
		return schema.TypeDecimal
	case "real", "float", "double":
		return schema.TypeDouble
	case "boolean", "bool":
		return schema.TypeBoolean
	case "date", "datetime", "timestamp":
		return schema.TypeDateTime
	case "uuid", "guid":
		return schema.TypeGuid
	case "json", "jsonb":
		return schema.TypeJSON
	case "blob":
		return schema.TypeBinary
	}
	// Declared types are free-form; fall back on affinity keywords.
	switch {
	case strings.Contains(t, "int"):
		return schema.TypeInt64
	case strings.Contains(t, "char"), strings.Contains(t, "clob"), strings.Contains(t, "text"):
		return schema.TypeString
	case strings.Contains(t, "blob"):
		return schema.TypeBinary
	case strings.Contains(t, "real"), strings.Contains(t, "floa"), strings.Contains(t, "doub"):
		return schema.TypeDouble
	default:
		return schema.TypeString
	}
}

func (d *SQLiteDialect) ToSQLType(col *schema.Column) string {
	switch col.Type {
	case schema.TypeInt32, schema.TypeInt64, schema.TypeBoolean:
		return "INTEGER"
	case schema.TypeDecimal:
		return "NUMERIC"
	case schema.TypeDouble:
		return "REAL"
	case schema.TypeDateTime, schema.TypeDateTimeOffset:
		return "DATETIME"
	case schema.TypeGuid:
		return "TEXT"
	case schema.TypeJSON:
		return "TEXT"
	case schema.TypeBinary:
		return "BLOB"
	default:
		return "TEXT"
	}
}

func (d *SQLiteDialect) CreateTableSQL(t *schema.Table) string {
	return BuildCreateTable(d, t)
}

func (d *SQLiteDialect) AddColumnSQL(t *schema.Table, c *schema.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", QualifyTable(d, t), ColumnDDL(d, c))
}

func (d *SQLiteDialect) SelectSQL(t *schema.Table) string { return BuildSelect(d, t) }

func (d *SQLiteDialect) InsertSQL(t *schema.Table, cols []string) string {
	return BuildInsert(d, t, cols)
}

func (d *SQLiteDialect) TruncateSQL(t *schema.Table) string {
	// Closest equivalent; only used when a caller forces it through the
	// escape hatch, the capability flag keeps the syncer away from it.
	return fmt.Sprintf("DELETE FROM %s", QualifyTable(d, t))
}
