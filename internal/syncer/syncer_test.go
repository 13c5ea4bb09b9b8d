package syncer_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"db-mirror/internal/provider"
	"db-mirror/internal/schema"
	"db-mirror/internal/syncer"

	"github.com/brianvoe/gofakeit/v6"
)

// fakeReader feeds a fixed slice of rows and can cancel the operation's
// context after a set number of reads to simulate mid-stream cancellation.
type fakeReader struct {
	rows        []schema.Row
	pos         int
	cancelAfter int
	cancel      context.CancelFunc
}

func (r *fakeReader) Next(ctx context.Context) (schema.Row, error) {
	if err := ctx.Err(); err != nil {
		return schema.Row{}, err
	}
	if r.cancel != nil && r.pos == r.cancelAfter {
		r.cancel()
		return schema.Row{}, context.Canceled
	}
	if r.pos >= len(r.rows) {
		return schema.Row{}, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}

func (r *fakeReader) Close() error { return nil }

// fakeSession records every call the syncer makes.
type fakeSession struct {
	caps     provider.Capabilities
	source   map[string][]schema.Row // rows served per table name
	stored   map[string][]schema.Row // rows written per table name
	ops      []string                // ordered operation log: "truncate t", "insert t 5000", ...
	failRow  int                     // fail InsertBatch when this many rows are already stored (0 = never)
	cancelAt int                     // reader cancels after this many reads (0 = never)
	cancel   context.CancelFunc
}

func newFakeSession(caps provider.Capabilities) *fakeSession {
	return &fakeSession{
		caps:   caps,
		source: make(map[string][]schema.Row),
		stored: make(map[string][]schema.Row),
	}
}

func (s *fakeSession) Introspect(ctx context.Context) (*schema.Database, error) {
	return nil, errors.New("not used")
}
func (s *fakeSession) GenerateCreateTable(t *schema.Table) string                 { return "" }
func (s *fakeSession) GenerateAddColumn(t *schema.Table, c *schema.Column) string { return "" }
func (s *fakeSession) ExecuteCommand(ctx context.Context, sqlText string) error   { return nil }
func (s *fakeSession) Capabilities() provider.Capabilities                        { return s.caps }
func (s *fakeSession) Close() error                                               { return nil }

func (s *fakeSession) ReadTable(ctx context.Context, t *schema.Table) (provider.RowReader, error) {
	r := &fakeReader{rows: s.source[t.Name]}
	if s.cancelAt > 0 {
		r.cancelAfter = s.cancelAt
		r.cancel = s.cancel
	}
	return r, nil
}

func (s *fakeSession) Truncate(ctx context.Context, t *schema.Table) error {
	s.stored[t.Name] = nil
	s.ops = append(s.ops, "truncate "+t.Name)
	return nil
}

func (s *fakeSession) InsertBatch(ctx context.Context, t *schema.Table, rows []schema.Row) error {
	if len(rows) == 0 {
		s.ops = append(s.ops, "insert "+t.Name+" 0")
		return nil
	}
	if s.failRow > 0 && len(s.stored[t.Name]) >= s.failRow {
		return errors.New("disk full")
	}
	s.stored[t.Name] = append(s.stored[t.Name], rows...)
	s.ops = append(s.ops, fmt.Sprintf("insert %s %d", t.Name, len(rows)))
	return nil
}

func (s *fakeSession) Upsert(ctx context.Context, t *schema.Table, row schema.Row, keyColumns []string) error {
	if !s.caps.Upsert {
		return provider.ErrUpsertUnsupported
	}
	s.ops = append(s.ops, fmt.Sprintf("upsert %s key=%s", t.Name, strings.Join(keyColumns, ",")))
	if len(keyColumns) == 0 {
		// Full-row match: skip when an identical row already exists.
		for _, existing := range s.stored[t.Name] {
			if existing.Equal(row) {
				return nil
			}
		}
		s.stored[t.Name] = append(s.stored[t.Name], row)
		return nil
	}
	for i, existing := range s.stored[t.Name] {
		match := true
		for _, k := range keyColumns {
			a, _ := existing.Value(k)
			b, _ := row.Value(k)
			if !a.Equal(b) {
				match = false
				break
			}
		}
		if match {
			s.stored[t.Name][i] = row
			return nil
		}
	}
	s.stored[t.Name] = append(s.stored[t.Name], row)
	return nil
}

func makeRows(t *testing.T, n int) []schema.Row {
	t.Helper()
	gofakeit.Seed(11)
	rows := make([]schema.Row, n)
	for i := range rows {
		row, err := schema.NewRow(
			[]string{"id", "name"},
			[]schema.Value{schema.IntValue(int64(i + 1)), schema.TextValue(gofakeit.Name())},
		)
		if err != nil {
			t.Fatalf("failed to build row: %v", err)
		}
		rows[i] = row
	}
	return rows
}

func simpleTable(name string) *schema.Table {
	return &schema.Table{Name: name, Columns: []*schema.Column{
		{Name: "id", Type: schema.TypeInt64},
		{Name: "name", Type: schema.TypeString, Length: 200},
	}}
}

func bothSchemas(tables ...*schema.Table) (*schema.Database, *schema.Database) {
	src := &schema.Database{Name: "src", Tables: tables}
	tgtTables := make([]*schema.Table, len(tables))
	for i, t := range tables {
		clone := *t
		tgtTables[i] = &clone
	}
	return src, &schema.Database{Name: "tgt", Tables: tgtTables}
}

func allCaps() provider.Capabilities {
	return provider.Capabilities{Transactions: true, Truncate: true, BulkInsert: true, Upsert: true}
}

func TestBatchSizing(t *testing.T) {
	tbl := simpleTable("users")
	srcSchema, tgtSchema := bothSchemas(tbl)

	source := newFakeSession(allCaps())
	source.source["users"] = makeRows(t, 12000)
	target := newFakeSession(allCaps())

	var snapshots []syncer.Progress
	results, err := syncer.Sync(context.Background(), source, target, srcSchema, tgtSchema,
		syncer.Options{Mode: syncer.ModeAppend, BatchSize: 5000},
		func(p syncer.Progress) { snapshots = append(snapshots, p) })
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	wantOps := []string{"insert users 5000", "insert users 5000", "insert users 2000"}
	if len(target.ops) != 3 {
		t.Fatalf("Expected 3 InsertBatch calls, got %v", target.ops)
	}
	for i, want := range wantOps {
		if target.ops[i] != want {
			t.Errorf("Flush %d: expected %q, got %q", i, want, target.ops[i])
		}
	}

	// One snapshot per flush plus one at table completion.
	if len(snapshots) != 4 {
		t.Fatalf("Expected 4 progress snapshots, got %d", len(snapshots))
	}
	last := snapshots[len(snapshots)-1]
	if last.RowsSynced != 12000 || last.TablesCompleted != 1 || last.TablesTotal != 1 {
		t.Errorf("Unexpected final snapshot: %+v", last)
	}

	if results[0].Rows != 12000 || results[0].Batches != 3 {
		t.Errorf("Unexpected result: %+v", results[0])
	}
}

func TestBatchSizeClamped(t *testing.T) {
	tbl := simpleTable("users")
	srcSchema, tgtSchema := bothSchemas(tbl)

	source := newFakeSession(allCaps())
	source.source["users"] = makeRows(t, 10)
	target := newFakeSession(allCaps())

	// Non-positive batch size must clamp to the default, not spin or panic.
	_, err := syncer.Sync(context.Background(), source, target, srcSchema, tgtSchema,
		syncer.Options{Mode: syncer.ModeAppend, BatchSize: -3}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(target.ops) != 1 || target.ops[0] != "insert users 10" {
		t.Errorf("Expected one trailing flush of 10 rows, got %v", target.ops)
	}
}

func TestFullModeTruncatesOncePerTable(t *testing.T) {
	a, b := simpleTable("a"), simpleTable("b")
	srcSchema, tgtSchema := bothSchemas(a, b)

	source := newFakeSession(allCaps())
	source.source["a"] = makeRows(t, 3)
	source.source["b"] = makeRows(t, 2)
	target := newFakeSession(allCaps())

	if _, err := syncer.Sync(context.Background(), source, target, srcSchema, tgtSchema,
		syncer.Options{Mode: syncer.ModeFull, BatchSize: 100}, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{"truncate a", "insert a 3", "truncate b", "insert b 2"}
	if len(target.ops) != len(want) {
		t.Fatalf("Unexpected op sequence: %v", target.ops)
	}
	for i := range want {
		if target.ops[i] != want[i] {
			t.Errorf("Op %d: expected %q, got %q", i, want[i], target.ops[i])
		}
	}
}

func TestAppendModeNeverTruncates(t *testing.T) {
	tbl := simpleTable("users")
	srcSchema, tgtSchema := bothSchemas(tbl)

	source := newFakeSession(allCaps())
	source.source["users"] = makeRows(t, 5)
	target := newFakeSession(allCaps())

	if _, err := syncer.Sync(context.Background(), source, target, srcSchema, tgtSchema,
		syncer.Options{Mode: syncer.ModeAppend}, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, op := range target.ops {
		if strings.HasPrefix(op, "truncate") {
			t.Errorf("Append mode must never truncate, got %v", target.ops)
		}
	}
}

func TestFullModeWithoutTruncateSupportDegradesSilently(t *testing.T) {
	tbl := simpleTable("users")
	srcSchema, tgtSchema := bothSchemas(tbl)

	source := newFakeSession(allCaps())
	source.source["users"] = makeRows(t, 5)
	caps := allCaps()
	caps.Truncate = false
	target := newFakeSession(caps)
	target.stored["users"] = makeRows(t, 5) // pre-existing rows survive

	if _, err := syncer.Sync(context.Background(), source, target, srcSchema, tgtSchema,
		syncer.Options{Mode: syncer.ModeFull}, nil); err != nil {
		t.Fatalf("Soft degrade must not error: %v", err)
	}
	if len(target.stored["users"]) != 10 {
		t.Errorf("Expected duplicated rows after skipped truncate, got %d", len(target.stored["users"]))
	}
}

func TestEmptyTableFlushesNothing(t *testing.T) {
	tbl := simpleTable("empty")
	srcSchema, tgtSchema := bothSchemas(tbl)

	source := newFakeSession(allCaps())
	target := newFakeSession(allCaps())

	var snapshots []syncer.Progress
	if _, err := syncer.Sync(context.Background(), source, target, srcSchema, tgtSchema,
		syncer.Options{Mode: syncer.ModeAppend},
		func(p syncer.Progress) { snapshots = append(snapshots, p) }); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(target.ops) != 0 {
		t.Errorf("A zero-row table must issue no writes, got %v", target.ops)
	}
	// Completion snapshot still fires.
	if len(snapshots) != 1 || snapshots[0].RowsSynced != 0 || snapshots[0].TablesCompleted != 1 {
		t.Errorf("Expected one completion snapshot with zero rows, got %+v", snapshots)
	}
}

func TestUpsertWithoutCapabilityFailsFast(t *testing.T) {
	tbl := simpleTable("users")
	srcSchema, tgtSchema := bothSchemas(tbl)

	source := newFakeSession(allCaps())
	caps := allCaps()
	caps.Upsert = false
	target := newFakeSession(caps)

	_, err := syncer.Sync(context.Background(), source, target, srcSchema, tgtSchema,
		syncer.Options{Mode: syncer.ModeAppend, Upsert: true}, nil)
	if !errors.Is(err, provider.ErrUpsertUnsupported) {
		t.Errorf("Expected ErrUpsertUnsupported before any table work, got %v", err)
	}
	if len(target.ops) != 0 {
		t.Error("Capability mismatch must fail before any write")
	}
}

func TestUpsertKeyPrecedence(t *testing.T) {
	pk, _ := schema.NewPrimaryKey("id")
	withPK := simpleTable("with_pk")
	withPK.PrimaryKey = pk
	withIdentity := simpleTable("with_identity")
	withIdentity.Columns[0].AutoIncrement = true
	bare := simpleTable("bare")

	srcSchema, tgtSchema := bothSchemas(withPK, withIdentity, bare)

	source := newFakeSession(allCaps())
	for _, name := range []string{"with_pk", "with_identity", "bare"} {
		source.source[name] = makeRows(t, 1)
	}
	target := newFakeSession(allCaps())

	if _, err := syncer.Sync(context.Background(), source, target, srcSchema, tgtSchema,
		syncer.Options{Mode: syncer.ModeAppend, Upsert: true}, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := map[string]string{
		"bare":          "upsert bare key=",
		"with_identity": "upsert with_identity key=id",
		"with_pk":       "upsert with_pk key=id",
	}
	for _, op := range target.ops {
		for name, expected := range want {
			if strings.Contains(op, name) && op != expected {
				t.Errorf("Table %s: expected %q, got %q", name, expected, op)
			}
		}
	}
}

func TestUpsertFullRowIdempotence(t *testing.T) {
	tbl := simpleTable("log") // no PK, no identity: full-row fallback
	srcSchema, tgtSchema := bothSchemas(tbl)

	row, _ := schema.NewRow([]string{"id", "name"},
		[]schema.Value{schema.IntValue(1), schema.NullValue()})

	source := newFakeSession(allCaps())
	source.source["log"] = []schema.Row{row}
	target := newFakeSession(allCaps())

	for i := 0; i < 2; i++ {
		if _, err := syncer.Sync(context.Background(), source, target, srcSchema, tgtSchema,
			syncer.Options{Mode: syncer.ModeAppend, Upsert: true}, nil); err != nil {
			t.Fatalf("Sync %d failed: %v", i+1, err)
		}
	}
	if len(target.stored["log"]) != 1 {
		t.Errorf("Re-syncing an identical row must stay idempotent, got %d rows", len(target.stored["log"]))
	}
}

func TestCancellationMidStream(t *testing.T) {
	tbl := simpleTable("users")
	srcSchema, tgtSchema := bothSchemas(tbl)

	ctx, cancel := context.WithCancel(context.Background())
	source := newFakeSession(allCaps())
	source.source["users"] = makeRows(t, 100)
	source.cancelAt = 10
	source.cancel = cancel
	target := newFakeSession(allCaps())

	_, err := syncer.Sync(ctx, source, target, srcSchema, tgtSchema,
		syncer.Options{Mode: syncer.ModeAppend, BatchSize: 5}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected a cancellation failure, got %v", err)
	}
	// Two full batches flushed before the signal; nothing after it.
	if len(target.stored["users"]) != 10 {
		t.Errorf("Expected 10 rows flushed before cancellation, got %d", len(target.stored["users"]))
	}
}

func TestWriteFailureAbortsSync(t *testing.T) {
	a, b := simpleTable("a"), simpleTable("b")
	srcSchema, tgtSchema := bothSchemas(a, b)

	source := newFakeSession(allCaps())
	source.source["a"] = makeRows(t, 6)
	source.source["b"] = makeRows(t, 6)
	target := newFakeSession(allCaps())
	target.failRow = 3 // second flush on table a fails

	results, err := syncer.Sync(context.Background(), source, target, srcSchema, tgtSchema,
		syncer.Options{Mode: syncer.ModeAppend, BatchSize: 3}, nil)
	if err == nil {
		t.Fatal("Expected the write failure to abort the sync")
	}
	// First flushed batch remains committed, table b is never reached.
	if len(target.stored["a"]) != 3 {
		t.Errorf("Expected the flushed batch to persist, got %d rows", len(target.stored["a"]))
	}
	if len(target.stored["b"]) != 0 {
		t.Error("Expected no writes to later tables after the abort")
	}
	if len(results) != 0 {
		t.Errorf("Expected no completed table results, got %v", results)
	}
}

func TestTableFilter(t *testing.T) {
	a, b := simpleTable("keep"), simpleTable("skip")
	srcSchema, tgtSchema := bothSchemas(a, b)

	source := newFakeSession(allCaps())
	source.source["keep"] = makeRows(t, 1)
	source.source["skip"] = makeRows(t, 1)
	target := newFakeSession(allCaps())

	results, err := syncer.Sync(context.Background(), source, target, srcSchema, tgtSchema,
		syncer.Options{Mode: syncer.ModeAppend, Tables: []string{"KEEP"}}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Table != "keep" {
		t.Errorf("Expected only the filtered table, got %v", results)
	}
	if len(target.stored["skip"]) != 0 {
		t.Error("Filtered-out table must not be written")
	}
}

func TestParseMode(t *testing.T) {
	if m, err := syncer.ParseMode("Append"); err != nil || m != syncer.ModeAppend {
		t.Errorf("Expected append mode, got %v / %v", m, err)
	}
	if _, err := syncer.ParseMode("replace"); err == nil {
		t.Error("Expected an error for unknown modes")
	}
}
