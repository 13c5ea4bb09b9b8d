package dialect

import (
	"fmt"
	"strings"

	"db-mirror/internal/schema"
)

// Defaults applied when a numeric column carries no size metadata.
const (
	DefaultPrecision = 18
	DefaultScale     = 2
)

// GeneratePlaceholders builds a comma-separated list of n placeholders
// using the dialect's placeholder function.
func GeneratePlaceholders(count int, placeholderFunc func(int) string) string {
	placeholders := make([]string, count)
	for i := 0; i < count; i++ {
		placeholders[i] = placeholderFunc(i)
	}
	return strings.Join(placeholders, ", ")
}

// QualifyTable renders schema.table with the dialect's quoting, dropping
// the schema part when empty.
func QualifyTable(d Dialect, t *schema.Table) string {
	if t.Schema == "" {
		return d.QuoteIdent(t.Name)
	}
	return d.QuoteIdent(t.Schema) + "." + d.QuoteIdent(t.Name)
}

// QuoteAll quotes every identifier in names.
func QuoteAll(d Dialect, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = d.QuoteIdent(n)
	}
	return out
}

// ColumnDDL renders one column definition: name, type, nullability.
func ColumnDDL(d Dialect, c *schema.Column) string {
	var b strings.Builder
	b.WriteString(d.QuoteIdent(c.Name))
	b.WriteString(" ")
	b.WriteString(d.ToSQLType(c))
	if c.Nullable {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}

// BuildCreateTable is the shared CREATE TABLE shape. Engines with a
// standard column-list + PRIMARY KEY clause syntax delegate here.
func BuildCreateTable(d Dialect, t *schema.Table) string {
	parts := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		parts = append(parts, ColumnDDL(d, c))
	}
	if t.PrimaryKey != nil {
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(QuoteAll(d, t.PrimaryKey.Columns()), ", ")))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", QualifyTable(d, t), strings.Join(parts, ", "))
}

// BuildAddColumn is the shared ALTER TABLE ... ADD COLUMN shape.
func BuildAddColumn(d Dialect, t *schema.Table, c *schema.Column) string {
	return fmt.Sprintf("ALTER TABLE %s ADD %s", QualifyTable(d, t), ColumnDDL(d, c))
}

// BuildSelect is the shared full-table read.
func BuildSelect(d Dialect, t *schema.Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = d.QuoteIdent(c.Name)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), QualifyTable(d, t))
}

// BuildInsert is the shared single/multi-column INSERT with placeholders.
func BuildInsert(d Dialect, t *schema.Table, cols []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QualifyTable(d, t), strings.Join(QuoteAll(d, cols), ", "), vals)
}

// normalizeNative lowercases a native type name and strips any size
// suffix: "VARCHAR(200)" -> "varchar", "NUMBER(10,2)" -> "number".
func normalizeNative(nativeType string) string {
	t := strings.ToLower(strings.TrimSpace(nativeType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
