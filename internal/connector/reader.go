package connector

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"db-mirror/internal/schema"
)

// rowReader adapts sql.Rows into the provider stream, folding raw driver
// values into tagged schema values steered by the column's canonical type.
type rowReader struct {
	rows  *sql.Rows
	cols  []string
	types []schema.CanonicalType
}

func newRowReader(rows *sql.Rows, t *schema.Table) *rowReader {
	cols := make([]string, len(t.Columns))
	types := make([]schema.CanonicalType, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Name
		types[i] = c.Type
	}
	return &rowReader{rows: rows, cols: cols, types: types}
}

func (r *rowReader) Next(ctx context.Context) (schema.Row, error) {
	if err := ctx.Err(); err != nil {
		return schema.Row{}, err
	}
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return schema.Row{}, fmt.Errorf("row stream failed: %w", err)
		}
		return schema.Row{}, io.EOF
	}

	raw := make([]interface{}, len(r.cols))
	ptrs := make([]interface{}, len(r.cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return schema.Row{}, fmt.Errorf("failed to scan row: %w", err)
	}

	vals := make([]schema.Value, len(r.cols))
	for i, v := range raw {
		vals[i] = schema.FromScan(v, r.types[i])
	}
	return schema.NewRow(r.cols, vals)
}

func (r *rowReader) Close() error { return r.rows.Close() }
