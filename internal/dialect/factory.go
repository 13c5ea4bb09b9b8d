package dialect

// Factory returns the appropriate Dialect implementation for an engine name.
func GetDialect(engine string) Dialect {
	switch engine {
	case "postgres":
		return &PostgresDialect{}
	case "sqlserver", "mssql":
		return &MSSQLDialect{}
	case "oracle":
		return &OracleDialect{}
	case "sqlite":
		return &SQLiteDialect{}
	default: // mysql
		return &MysqlDialect{}
	}
}

// All lists one instance of every supported dialect.
func All() []Dialect {
	return []Dialect{
		&MysqlDialect{},
		&PostgresDialect{},
		&MSSQLDialect{},
		&OracleDialect{},
		&SQLiteDialect{},
	}
}

// Ensure interface implementation
var _ Dialect = (*MysqlDialect)(nil)
var _ Dialect = (*PostgresDialect)(nil)
var _ Dialect = (*MSSQLDialect)(nil)
var _ Dialect = (*OracleDialect)(nil)
var _ Dialect = (*SQLiteDialect)(nil)
