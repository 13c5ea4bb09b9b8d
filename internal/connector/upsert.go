package connector

import (
	"context"
	"fmt"
	"strings"

	"db-mirror/internal/dialect"
	"db-mirror/internal/provider"
	"db-mirror/internal/schema"
)

// Upsert reconciles one row. With key columns: probe by key equality, then
// UPDATE the non-key columns or INSERT. Without: full-row match with NULL
// treated as equal to NULL, skip when an identical row already exists.
func (s *Session) Upsert(ctx context.Context, t *schema.Table, row schema.Row, keyColumns []string) error {
	if s.closed {
		return provider.ErrSessionClosed
	}
	if !s.d.Capabilities().Upsert {
		return fmt.Errorf("engine %s: %w", s.d.Name(), provider.ErrUpsertUnsupported)
	}
	if len(keyColumns) == 0 {
		return s.upsertFullRow(ctx, t, row)
	}
	return s.upsertByKey(ctx, t, row, keyColumns)
}

func (s *Session) upsertByKey(ctx context.Context, t *schema.Table, row schema.Row, keyColumns []string) error {
	keyArgs := make([]interface{}, 0, len(keyColumns))
	for _, k := range keyColumns {
		v, ok := row.Value(k)
		if !ok {
			return fmt.Errorf("row for %s is missing key column %q", t.QualifiedName(), k)
		}
		keyArgs = append(keyArgs, v.Arg())
	}

	nonKey := make([]string, 0, row.Len())
	nonKeyArgs := make([]interface{}, 0, row.Len())
	for i, c := range row.Columns() {
		if containsFold(keyColumns, c) {
			continue
		}
		nonKey = append(nonKey, c)
		nonKeyArgs = append(nonKeyArgs, row.At(i).Arg())
	}

	where := s.whereEquals(keyColumns, len(nonKey))
	probe := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s",
		dialect.QualifyTable(s.d, t), s.whereEquals(keyColumns, 0))

	var n int
	if err := s.db.QueryRowContext(ctx, probe, keyArgs...).Scan(&n); err != nil {
		return fmt.Errorf("failed to probe %s by key: %w", t.QualifiedName(), err)
	}

	if n == 0 {
		query := s.d.InsertSQL(t, row.Columns())
		if _, err := s.db.ExecContext(ctx, query, rowArgs(row)...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", t.QualifiedName(), err)
		}
		return nil
	}

	// Key-only tables have nothing to update once the key matches.
	if len(nonKey) == 0 {
		return nil
	}

	sets := make([]string, len(nonKey))
	for i, c := range nonKey {
		sets[i] = fmt.Sprintf("%s = %s", s.d.QuoteIdent(c), s.d.Placeholder(i))
	}
	update := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		dialect.QualifyTable(s.d, t), strings.Join(sets, ", "), where)
	args := append(nonKeyArgs, keyArgs...)
	if _, err := s.db.ExecContext(ctx, update, args...); err != nil {
		return fmt.Errorf("failed to update %s by key: %w", t.QualifiedName(), err)
	}
	return nil
}

func (s *Session) upsertFullRow(ctx context.Context, t *schema.Table, row schema.Row) error {
	// NULL-safe match: null values become IS NULL predicates and consume
	// no bind argument.
	preds := make([]string, 0, row.Len())
	args := make([]interface{}, 0, row.Len())
	n := 0
	for i, c := range row.Columns() {
		v := row.At(i)
		if v.IsNull() {
			preds = append(preds, fmt.Sprintf("%s IS NULL", s.d.QuoteIdent(c)))
			continue
		}
		preds = append(preds, fmt.Sprintf("%s = %s", s.d.QuoteIdent(c), s.d.Placeholder(n)))
		args = append(args, v.Arg())
		n++
	}

	probe := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s",
		dialect.QualifyTable(s.d, t), strings.Join(preds, " AND "))
	var count int
	if err := s.db.QueryRowContext(ctx, probe, args...).Scan(&count); err != nil {
		return fmt.Errorf("failed to probe %s by row: %w", t.QualifiedName(), err)
	}
	if count > 0 {
		return nil
	}

	query := s.d.InsertSQL(t, row.Columns())
	if _, err := s.db.ExecContext(ctx, query, rowArgs(row)...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", t.QualifiedName(), err)
	}
	return nil
}

// whereEquals builds "k1 = ph AND k2 = ph" with placeholders starting at
// offset, for dialects with positional parameter numbering.
func (s *Session) whereEquals(cols []string, offset int) string {
	preds := make([]string, len(cols))
	for i, c := range cols {
		preds[i] = fmt.Sprintf("%s = %s", s.d.QuoteIdent(c), s.d.Placeholder(offset+i))
	}
	return strings.Join(preds, " AND ")
}

func containsFold(list []string, name string) bool {
	for _, s := range list {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}
