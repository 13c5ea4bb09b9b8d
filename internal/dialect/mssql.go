package dialect

import (
	"fmt"

	"db-mirror/internal/provider"
	"db-mirror/internal/schema"
)

type MSSQLDialect struct{}

func (d *MSSQLDialect) Name() string          { return "sqlserver" }
func (d *MSSQLDialect) DriverName() string    { return "sqlserver" }
func (d *MSSQLDialect) DefaultSchema() string { return "dbo" }

func (d *MSSQLDialect) Capabilities() provider.Capabilities {
	return provider.Capabilities{Transactions: true, Truncate: true, BulkInsert: true, Upsert: true}
}

func (d *MSSQLDialect) TablesQuery() string {
	return `SELECT TABLE_SCHEMA, TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`
}

func (d *MSSQLDialect) ColumnsQuery() string {
	// COLUMNPROPERTY is the reliable identity signal; INFORMATION_SCHEMA
	// alone does not expose it.
	return `
		SELECT
			c.TABLE_SCHEMA,
			c.TABLE_NAME,
			c.COLUMN_NAME,
			c.DATA_TYPE,
			c.CHARACTER_MAXIMUM_LENGTH,
			c.NUMERIC_PRECISION,
			c.NUMERIC_SCALE,
			c.IS_NULLABLE,
			CASE WHEN COLUMNPROPERTY(OBJECT_ID(c.TABLE_SCHEMA + '.' + c.TABLE_NAME), c.COLUMN_NAME, 'IsIdentity') = 1 THEN 'identity' ELSE '' END
		FROM INFORMATION_SCHEMA.COLUMNS c
		WHERE c.TABLE_SCHEMA = @p1
		ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION
	`
}

func (d *MSSQLDialect) PrimaryKeysQuery() string {
	return `SELECT kcu.TABLE_SCHEMA, kcu.TABLE_NAME, kcu.COLUMN_NAME FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY' AND kcu.TABLE_SCHEMA = @p1 ORDER BY kcu.TABLE_NAME, kcu.ORDINAL_POSITION`
}

func (d *MSSQLDialect) QuoteIdent(name string) string { return "[" + name + "]" }

func (d *MSSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}

func (d *MSSQLDialect) MapToCanonical(nativeType string) schema.CanonicalType {
	switch normalizeNative(nativeType) {
	case "tinyint", "smallint", "int":
		return schema.TypeInt32
	case "bigint":
		return schema.TypeInt64
	case "decimal", "numeric", "money", "smallmoney":
		return schema.TypeDecimal
	case "float", "real":
		return schema.TypeDouble
	case "bit":
		return schema.TypeBoolean
	case "date", "datetime", "datetime2", "smalldatetime", "time":
		return schema.TypeDateTime
	case "datetimeoffset":
		return schema.TypeDateTimeOffset
	case "uniqueidentifier":
		return schema.TypeGuid
	case "binary", "varbinary", "image", "timestamp", "rowversion":
		return schema.TypeBinary
	default:
		return schema.TypeString
	}
}

func (d *MSSQLDialect) ToSQLType(col *schema.Column) string {
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
		return "FLOAT"
	case schema.TypeBoolean:
		return "BIT"
	case schema.TypeDateTime:
		return "DATETIME2"
	case schema.TypeDateTimeOffset:
		return "DATETIMEOFFSET"
	case schema.TypeGuid:
		return "UNIQUEIDENTIFIER"
	case schema.TypeJSON:
		return "NVARCHAR(MAX)"
	case schema.TypeBinary:
		return "VARBINARY(MAX)"
	default:
		if col.Length > 0 && col.Length <= 4000 {
			return fmt.Sprintf("NVARCHAR(%d)", col.Length)
		}
		return "NVARCHAR(MAX)"
	}
}

func (d *MSSQLDialect) CreateTableSQL(t *schema.Table) string {
	return BuildCreateTable(d, t)
}

func (d *MSSQLDialect) AddColumnSQL(t *schema.Table, c *schema.Column) string {
	return BuildAddColumn(d, t, c)
}

func (d *MSSQLDialect) SelectSQL(t *schema.Table) string { return BuildSelect(d, t) }

func (d *MSSQLDialect) InsertSQL(t *schema.Table, cols []string) string {
	return BuildInsert(d, t, cols)
}

func (d *MSSQLDialect) TruncateSQL(t *schema.Table) string {
	return fmt.Sprintf("TRUNCATE TABLE %s", QualifyTable(d, t))
}
