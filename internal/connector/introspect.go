package connector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"db-mirror/internal/provider"
	"db-mirror/internal/schema"
)

// Introspect reads the live catalog into the schema model. Tables come
// back sorted by (schema, table) so diff and sync see a stable order.
func (s *Session) Introspect(ctx context.Context) (*schema.Database, error) {
	if s.closed {
		return nil, provider.ErrSessionClosed
	}

	// Engines whose introspection queries only consume the bind argument
	// through a dummy clause still need a non-null value.
	arg := s.schemaName
	if arg == "" {
		arg = "-"
	}

	tableMap := make(map[string]*schema.Table)
	var tables []*schema.Table

	// --- Step 1: Fetch Tables ---
	rows, err := s.db.QueryContext(ctx, s.d.TablesQuery(), arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var schemaName, tableName sql.NullString
		if err := rows.Scan(&schemaName, &tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		if !tableName.Valid {
			continue
		}
		t := &schema.Table{Schema: schemaName.String, Name: tableName.String}
		tableMap[t.Key()] = t
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	rows.Close()

	// --- Step 2: Fetch Columns ---
	colRows, err := s.db.QueryContext(ctx, s.d.ColumnsQuery(), arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer colRows.Close()

	for colRows.Next() {
		var sName, tName, cName, dType, isNull, extra sql.NullString
		var cLen, cPrec, cScale sql.NullInt64

		if err := colRows.Scan(&sName, &tName, &cName, &dType, &cLen, &cPrec, &cScale, &isNull, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan column (table: %s): %w", tName.String, err)
		}
		if !tName.Valid || !cName.Valid {
			continue
		}

		t, ok := tableMap[tableKey(sName.String, tName.String)]
		if !ok {
			continue
		}

		autoInc := false
		if extra.Valid {
			extraLower := strings.ToLower(extra.String)
			autoInc = strings.Contains(extraLower, "auto_increment") ||
				strings.Contains(extraLower, "identity") ||
				strings.Contains(extraLower, "nextval")
		}

		t.Columns = append(t.Columns, &schema.Column{
			Name:          cName.String,
			Type:          s.d.MapToCanonical(dType.String),
			NativeType:    dType.String,
			Nullable:      isNull.String == "YES",
			Length:        int(cLen.Int64),
			Precision:     int(cPrec.Int64),
			Scale:         int(cScale.Int64),
			AutoIncrement: autoInc,
		})
	}
	if err := colRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}
	colRows.Close()

	// --- Step 3: Fetch Primary Keys (ordered by key position) ---
	pkRows, err := s.db.QueryContext(ctx, s.d.PrimaryKeysQuery(), arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query primary keys: %w", err)
	}
	defer pkRows.Close()

	pkCols := make(map[string][]string)
	for pkRows.Next() {
		var sName, tName, cName sql.NullString
		if err := pkRows.Scan(&sName, &tName, &cName); err != nil {
			return nil, fmt.Errorf("failed to scan primary key: %w", err)
		}
		if !tName.Valid || !cName.Valid {
			continue
		}
		key := tableKey(sName.String, tName.String)
		pkCols[key] = append(pkCols[key], cName.String)
	}
	if err := pkRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating primary keys: %w", err)
	}

	for key, cols := range pkCols {
		t, ok := tableMap[key]
		if !ok {
			continue
		}
		pk, err := schema.NewPrimaryKey(cols...)
		if err != nil {
			return nil, fmt.Errorf("malformed primary key on %s: %w", t.QualifiedName(), err)
		}
		t.PrimaryKey = pk
	}

	db := &schema.Database{Name: s.schemaName, Tables: tables}
	db.SortTables()
	return db, nil
}

func tableKey(schemaName, tableName string) string {
	return strings.ToUpper(schemaName) + "." + strings.ToUpper(tableName)
}
