package dialect

import (
	"fmt"

	"db-mirror/internal/provider"
	"db-mirror/internal/schema"
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string          { return "oracle" }
func (d *OracleDialect) DriverName() string    { return "oracle" }
func (d *OracleDialect) DefaultSchema() string { return "" }

func (d *OracleDialect) Capabilities() provider.Capabilities {
	// Multi-row VALUES lists are not Oracle syntax, so batches degrade to
	// row-at-a-time inserts inside one flush.
	return provider.Capabilities{Transactions: true, Truncate: true, BulkInsert: false, Upsert: true}
}

func (d *OracleDialect) TablesQuery() string {
	// USER_TABLES lists tables owned by the connected user; the dummy
	// clause consumes the schema bind argument standard callers pass.
	return `SELECT USER, TABLE_NAME FROM USER_TABLES WHERE :1 IS NOT NULL ORDER BY TABLE_NAME`
}

func (d *OracleDialect) ColumnsQuery() string {
	return `
SELECT
    USER,
    t.TABLE_NAME,
    t.COLUMN_NAME,
    CASE
        WHEN t.DATA_TYPE = 'NUMBER' AND COALESCE(t.DATA_SCALE, 0) > 0 THEN 'DECIMAL'
        WHEN t.DATA_TYPE = 'NUMBER' AND COALESCE(t.DATA_PRECISION, 38) > 10 THEN 'BIGINT'
        WHEN t.DATA_TYPE = 'NUMBER' THEN 'INTEGER'
        ELSE t.DATA_TYPE
    END,
    t.CHAR_LENGTH,
    t.DATA_PRECISION,
    t.DATA_SCALE,
    CASE WHEN t.NULLABLE = 'Y' THEN 'YES' ELSE 'NO' END,
    CASE WHEN t.IDENTITY_COLUMN = 'YES' THEN 'identity' ELSE '' END
FROM USER_TAB_COLUMNS t
WHERE :1 IS NOT NULL
ORDER BY t.TABLE_NAME, t.COLUMN_ID`
}

func (d *OracleDialect) PrimaryKeysQuery() string {
	return `
SELECT USER, cc.TABLE_NAME, cc.COLUMN_NAME
FROM USER_CONS_COLUMNS cc
JOIN USER_CONSTRAINTS uc ON cc.CONSTRAINT_NAME = uc.CONSTRAINT_NAME
WHERE uc.CONSTRAINT_TYPE = 'P' AND :1 IS NOT NULL
ORDER BY cc.TABLE_NAME, cc.POSITION`
}

func (d *OracleDialect) QuoteIdent(name string) string { return `"` + name + `"` }

func (d *OracleDialect) Placeholder(index int) string {
	return fmt.Sprintf(":%d", index+1)
}

func (d *OracleDialect) MapToCanonical(nativeType string) schema.CanonicalType {
	switch normalizeNative(nativeType) {
	case "smallint", "integer", "int":
		return schema.TypeInt32
	case "bigint":
		return schema.TypeInt64
	case "number", "decimal", "numeric":
		return schema.TypeDecimal
	case "binary_float", "binary_double", "float", "real":
		return schema.TypeDouble
	case "date", "timestamp":
		return schema.TypeDateTime
	case "timestamp with time zone", "timestamp with local time zone":
		return schema.TypeDateTimeOffset
	case "raw", "long raw", "blob":
		return schema.TypeBinary
	case "json":
		return schema.TypeJSON
	default:
		return schema.TypeString
	}
}

func (d *OracleDialect) ToSQLType(col *schema.Column) string {
	switch col.Type {
	case schema.TypeInt32:
		return "NUMBER(10)"
	case schema.TypeInt64:
		return "NUMBER(19)"
	case schema.TypeDecimal:
		p, s := col.Precision, col.Scale
		if p == 0 {
			p, s = DefaultPrecision, DefaultScale
		}
		return fmt.Sprintf("NUMBER(%d,%d)", p, s)
	case schema.TypeDouble:
		return "BINARY_DOUBLE"
	case schema.TypeBoolean:
		return "NUMBER(1)"
	case schema.TypeDateTime:
		return "TIMESTAMP"
	case schema.TypeDateTimeOffset:
		return "TIMESTAMP WITH TIME ZONE"
	case schema.TypeGuid:
		return "VARCHAR2(36)"
	case schema.TypeJSON:
		return "CLOB"
	case schema.TypeBinary:
		return "BLOB"
	default:
		if col.Length > 0 && col.Length <= 4000 {
			return fmt.Sprintf("VARCHAR2(%d)", col.Length)
		}
		return "CLOB"
	}
}

func (d *OracleDialect) CreateTableSQL(t *schema.Table) string {
	return BuildCreateTable(d, t)
}

func (d *OracleDialect) AddColumnSQL(t *schema.Table, c *schema.Column) string {
	return BuildAddColumn(d, t, c)
}

func (d *OracleDialect) SelectSQL(t *schema.Table) string { return BuildSelect(d, t) }

func (d *OracleDialect) InsertSQL(t *schema.Table, cols []string) string {
	return BuildInsert(d, t, cols)
}

func (d *OracleDialect) TruncateSQL(t *schema.Table) string {
	return fmt.Sprintf("TRUNCATE TABLE %s", QualifyTable(d, t))
}
