package connector_test

import (
	"context"
	"io"
	"testing"

	"db-mirror/internal/connector"
	"db-mirror/internal/dialect"
	"db-mirror/internal/schema"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockSession(t *testing.T, engine, schemaName string) (*connector.Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return connector.NewSession(db, dialect.GetDialect(engine), schemaName), mock
}

func usersTable() *schema.Table {
	return &schema.Table{Name: "users", Columns: []*schema.Column{
		{Name: "id", Type: schema.TypeInt64},
		{Name: "name", Type: schema.TypeString, Length: 200, Nullable: true},
	}}
}

func TestIntrospect(t *testing.T) {
	s, mock := newMockSession(t, "mysql", "testdb")
	d := dialect.GetDialect("mysql")

	mock.ExpectQuery(d.TablesQuery()).WithArgs("testdb").WillReturnRows(
		sqlmock.NewRows([]string{"TABLE_SCHEMA", "TABLE_NAME"}).
			AddRow("testdb", "orders").
			AddRow("testdb", "users"))

	cols := []string{"TABLE_SCHEMA", "TABLE_NAME", "COLUMN_NAME", "DATA_TYPE", "CHARACTER_MAXIMUM_LENGTH", "NUMERIC_PRECISION", "NUMERIC_SCALE", "IS_NULLABLE", "EXTRA"}
	mock.ExpectQuery(d.ColumnsQuery()).WithArgs("testdb").WillReturnRows(
		sqlmock.NewRows(cols).
			AddRow("testdb", "orders", "id", "bigint", nil, 19, 0, "NO", "auto_increment").
			AddRow("testdb", "orders", "total", "decimal", nil, 10, 2, "NO", "").
			AddRow("testdb", "users", "id", "int", nil, 10, 0, "NO", "").
			AddRow("testdb", "users", "name", "varchar", 200, nil, nil, "YES", ""))

	mock.ExpectQuery(d.PrimaryKeysQuery()).WithArgs("testdb").WillReturnRows(
		sqlmock.NewRows([]string{"TABLE_SCHEMA", "TABLE_NAME", "COLUMN_NAME"}).
			AddRow("testdb", "orders", "id"))

	got, err := s.Introspect(context.Background())
	if err != nil {
		t.Fatalf("Introspect failed: %v", err)
	}
	if len(got.Tables) != 2 {
		t.Fatalf("Expected 2 tables, got %d", len(got.Tables))
	}

	orders := got.FindTable("testdb", "orders")
	if orders == nil {
		t.Fatal("Expected to find orders")
	}
	if orders.PrimaryKey == nil || orders.PrimaryKey.Columns()[0] != "id" {
		t.Errorf("Expected primary key on orders.id, got %+v", orders.PrimaryKey)
	}
	id := orders.FindColumn("id")
	if id.Type != schema.TypeInt64 || !id.AutoIncrement {
		t.Errorf("Expected auto-increment int64 id, got %+v", id)
	}
	total := orders.FindColumn("total")
	if total.Type != schema.TypeDecimal || total.Precision != 10 || total.Scale != 2 {
		t.Errorf("Unexpected total column: %+v", total)
	}

	users := got.FindTable("testdb", "users")
	if users.PrimaryKey != nil {
		t.Error("users has no primary key")
	}
	name := users.FindColumn("name")
	if name == nil || !name.Nullable || name.Length != 200 {
		t.Errorf("Unexpected name column: %+v", name)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInsertBatchEmptyIsNoOp(t *testing.T) {
	s, mock := newMockSession(t, "mysql", "testdb")

	if err := s.InsertBatch(context.Background(), usersTable(), nil); err != nil {
		t.Fatalf("Empty batch must be a no-op, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Empty batch issued a write: %v", err)
	}
}

func TestInsertBatchBulk(t *testing.T) {
	s, mock := newMockSession(t, "mysql", "testdb")

	rows := make([]schema.Row, 3)
	for i := range rows {
		rows[i], _ = schema.NewRow([]string{"id", "name"},
			[]schema.Value{schema.IntValue(int64(i + 1)), schema.TextValue("n")})
	}

	mock.ExpectExec("INSERT INTO `users` (`id`, `name`) VALUES (?, ?), (?, ?), (?, ?)").
		WithArgs(int64(1), "n", int64(2), "n", int64(3), "n").
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := s.InsertBatch(context.Background(), usersTable(), rows); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertByKeyUpdatesExisting(t *testing.T) {
	s, mock := newMockSession(t, "mysql", "testdb")

	row, _ := schema.NewRow([]string{"id", "name"},
		[]schema.Value{schema.IntValue(7), schema.TextValue("kim")})

	mock.ExpectQuery("SELECT COUNT(*) FROM `users` WHERE `id` = ?").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("UPDATE `users` SET `name` = ? WHERE `id` = ?").
		WithArgs("kim", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Upsert(context.Background(), usersTable(), row, []string{"id"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertByKeyInsertsMissing(t *testing.T) {
	s, mock := newMockSession(t, "mysql", "testdb")

	row, _ := schema.NewRow([]string{"id", "name"},
		[]schema.Value{schema.IntValue(7), schema.TextValue("kim")})

	mock.ExpectQuery("SELECT COUNT(*) FROM `users` WHERE `id` = ?").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `users` (`id`, `name`) VALUES (?, ?)").
		WithArgs(int64(7), "kim").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.Upsert(context.Background(), usersTable(), row, []string{"id"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertFullRowSkipsIdenticalWithNull(t *testing.T) {
	s, mock := newMockSession(t, "mysql", "testdb")

	row, _ := schema.NewRow([]string{"id", "name"},
		[]schema.Value{schema.IntValue(7), schema.NullValue()})

	// NULL values become IS NULL predicates and consume no bind argument.
	mock.ExpectQuery("SELECT COUNT(*) FROM `users` WHERE `id` = ? AND `name` IS NULL").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	if err := s.Upsert(context.Background(), usersTable(), row, nil); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Identical row must be skipped without an insert: %v", err)
	}
}

func TestTruncate(t *testing.T) {
	s, mock := newMockSession(t, "mysql", "testdb")

	mock.ExpectExec("TRUNCATE TABLE `users`").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := s.Truncate(context.Background(), usersTable()); err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestReadTableFoldsValues(t *testing.T) {
	s, mock := newMockSession(t, "mysql", "testdb")
	d := dialect.GetDialect("mysql")
	tbl := usersTable()

	mock.ExpectQuery(d.SelectSQL(tbl)).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), []byte("kim")).
			AddRow(int64(2), nil))

	reader, err := s.ReadTable(context.Background(), tbl)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	defer reader.Close()

	ctx := context.Background()
	first, err := reader.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if v, _ := first.Value("name"); v.Kind != schema.KindText || v.Text != "kim" {
		t.Errorf("Expected []byte folded to text, got %+v", v)
	}

	second, err := reader.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if v, _ := second.Value("name"); !v.IsNull() {
		t.Error("Expected null name on second row")
	}

	if _, err := reader.Next(ctx); err != io.EOF {
		t.Errorf("Expected io.EOF at stream end, got %v", err)
	}
}

func TestExecuteCommand(t *testing.T) {
	s, mock := newMockSession(t, "mysql", "testdb")

	mock.ExpectExec("DROP VIEW legacy_view").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := s.ExecuteCommand(context.Background(), "DROP VIEW legacy_view"); err != nil {
		t.Fatalf("ExecuteCommand failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
