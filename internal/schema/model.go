package schema

import (
	"fmt"
	"sort"
	"strings"
)

type Database struct {
	Name   string
	Tables []*Table
}

// FindTable looks a table up by (schema, table), case-insensitive.
func (d *Database) FindTable(schemaName, tableName string) *Table {
	for _, t := range d.Tables {
		if strings.EqualFold(t.Schema, schemaName) && strings.EqualFold(t.Name, tableName) {
			return t
		}
	}
	return nil
}

// SortTables orders tables by (schema, table), case-insensitive.
// Introspection order is not stable across calls, so diff and sync
// callers normalize through this before comparing.
func (d *Database) SortTables() {
	sort.Slice(d.Tables, func(i, j int) bool {
		a, b := d.Tables[i], d.Tables[j]
		as, bs := strings.ToLower(a.Schema), strings.ToLower(b.Schema)
		if as != bs {
			return as < bs
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

type Table struct {
	Schema     string
	Name       string
	Columns    []*Column
	PrimaryKey *PrimaryKey // nil when the table has none
}

// QualifiedName returns "schema.table", or just "table" when the schema is empty.
func (t *Table) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Key is the normalized map key for case-insensitive (schema, table) lookups.
func (t *Table) Key() string {
	return strings.ToUpper(t.Schema) + "." + strings.ToUpper(t.Name)
}

// FindColumn looks a column up by name, case-insensitive.
func (t *Table) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// IdentityColumn returns the first auto-increment/identity column, or nil.
func (t *Table) IdentityColumn() *Column {
	for _, c := range t.Columns {
		if c.AutoIncrement {
			return c
		}
	}
	return nil
}

type Column struct {
	Name          string
	Type          CanonicalType
	NativeType    string // as reported by the source engine, diagnostic only
	Nullable      bool
	Length        int // 0 = unspecified
	Precision     int // 0 = unspecified
	Scale         int // 0 = unspecified
	AutoIncrement bool
}

// PrimaryKey is a non-empty ordered list of column names. Order is
// significant for composite keys, so the columns are kept behind an
// accessor to stay immutable after construction.
type PrimaryKey struct {
	columns []string
}

func NewPrimaryKey(columns ...string) (*PrimaryKey, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("primary key requires at least one column")
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &PrimaryKey{columns: cols}, nil
}

func (pk *PrimaryKey) Columns() []string {
	cols := make([]string, len(pk.columns))
	copy(cols, pk.columns)
	return cols
}

// Contains reports whether name is part of the key, case-insensitive.
func (pk *PrimaryKey) Contains(name string) bool {
	for _, c := range pk.columns {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
