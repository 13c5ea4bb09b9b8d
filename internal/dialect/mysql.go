package dialect

import (
	"fmt"

	"db-mirror/internal/provider"
	"db-mirror/internal/schema"
)

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string          { return "mysql" }
func (d *MysqlDialect) DriverName() string    { return "mysql" }
func (d *MysqlDialect) DefaultSchema() string { return "" }

func (d *MysqlDialect) Capabilities() provider.Capabilities {
	return provider.Capabilities{Transactions: true, Truncate: true, BulkInsert: true, Upsert: true}
}

func (d *MysqlDialect) TablesQuery() string {
	return `SELECT TABLE_SCHEMA, TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`
}

func (d *MysqlDialect) ColumnsQuery() string {
	return `SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE, IS_NULLABLE, EXTRA FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? ORDER BY TABLE_NAME, ORDINAL_POSITION`
}

func (d *MysqlDialect) PrimaryKeysQuery() string {
	return `SELECT s.TABLE_SCHEMA, s.TABLE_NAME, s.COLUMN_NAME FROM information_schema.KEY_COLUMN_USAGE s JOIN information_schema.TABLE_CONSTRAINTS tc ON s.CONSTRAINT_NAME = tc.CONSTRAINT_NAME AND s.TABLE_SCHEMA = tc.TABLE_SCHEMA AND s.TABLE_NAME = tc.TABLE_NAME WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY' AND s.TABLE_SCHEMA = ? ORDER BY s.TABLE_NAME, s.ORDINAL_POSITION`
}

func (d *MysqlDialect) QuoteIdent(name string) string { return "`" + name + "`" }
func (d *MysqlDialect) Placeholder(index int) string  { return "?" }

func (d *MysqlDialect) MapToCanonical(nativeType string) schema.CanonicalType {
	switch normalizeNative(nativeType) {
	case "tinyint", "smallint", "mediumint", "int", "integer", "year":
		return schema.TypeInt32
	case "bigint":
		return schema.TypeInt64
	case "decimal", "numeric":
		return schema.TypeDecimal
	case "float", "double", "real":
		return schema.TypeDouble
	case "bit", "bool", "boolean":
		return schema.TypeBoolean
	case "date", "datetime":
		return schema.TypeDateTime
	case "timestamp":
		return schema.TypeDateTimeOffset
	case "json":
		return schema.TypeJSON
	case "binary", "varbinary", "tinyblob", "blob", "mediumblob", "longblob":
		return schema.TypeBinary
	default:
		return schema.TypeString
	}
}

func (d *MysqlDialect) ToSQLType(col *schema.Column) string {
	switch col.Type {
	case schema.TypeInt32:
		return "INT"
	case schema.TypeInt64:
		return "BIGINT"
	case schema.TypeDecimal:
		p, s := col.Precision, col.Scale
		if p == 0 {
			p, s = DefaultPrecision, DefaultScale
		}
		return fmt.Sprintf("DECIMAL(%d,%d)", p, s)
	case schema.TypeDouble:
		return "DOUBLE"
	case schema.TypeBoolean:
		return "TINYINT(1)"
	case schema.TypeDateTime:
		return "DATETIME"
	case schema.TypeDateTimeOffset:
		return "TIMESTAMP"
	case schema.TypeGuid:
		return "CHAR(36)"
	case schema.TypeJSON:
		return "JSON"
	case schema.TypeBinary:
		return "LONGBLOB"
	default:
		// varchar rows cap out at 16383 chars on utf8mb4, spill into TEXT.
		if col.Length > 0 && col.Length <= 16383 {
			return fmt.Sprintf("VARCHAR(%d)", col.Length)
		}
		return "LONGTEXT"
	}
}

func (d *MysqlDialect) CreateTableSQL(t *schema.Table) string {
	return BuildCreateTable(d, t)
}

func (d *MysqlDialect) AddColumnSQL(t *schema.Table, c *schema.Column) string {
	return BuildAddColumn(d, t, c)
}

func (d *MysqlDialect) SelectSQL(t *schema.Table) string { return BuildSelect(d, t) }

func (d *MysqlDialect) InsertSQL(t *schema.Table, cols []string) string {
	return BuildInsert(d, t, cols)
}

func (d *MysqlDialect) TruncateSQL(t *schema.Table) string {
	return fmt.Sprintf("TRUNCATE TABLE %s", QualifyTable(d, t))
}
