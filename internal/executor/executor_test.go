package executor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldIgnoreDDLError(t *testing.T) {
	testCases := []struct {
		name     string
		dialect  string
		err      error
		expected bool
	}{
		{"PG: Duplicate Table (CREATE)", "postgres", errors.New(`ERROR: relation "my_table" already exists (sqlstate 42P07)`), true},
		{"PG: Duplicate Constraint", "postgres", errors.New(`ERROR: constraint "my_constraint" for relation "my_table" already exists (sqlstate 42710)`), true},
		{"PG: Index Does Not Exist (DROP IF EXISTS)", "postgres", errors.New(`ERROR: index "non_existent_index" does not exist (sqlstate 42704)`), true},
		{"PG: Table Does Not Exist (message fallback)", "postgres", errors.New(`ERROR: table "non_existent_table" does not exist`), true},
		{"PG: Real syntax error", "postgres", errors.New(`ERROR: syntax error at or near "INVALID" (sqlstate 42601)`), false},
		{"PG: Nil error", "postgres", nil, false},

		{"MySQL: Duplicate key name", "mysql", errors.New("Error 1061 (42000): Duplicate key name 'idx_name'"), true},
		{"MySQL: Table already exists", "mysql", errors.New("Error 1050 (42S01): Table 'my_table' already exists"), true},
		{"MySQL: Unknown table (DROP)", "mysql", errors.New("Error 1051 (42S02): Unknown table 'my_db.my_table'"), true},
		{"MySQL: Real syntax error", "mysql", errors.New("Error 1064 (42000): You have an error in your SQL syntax..."), false},

		{"SQLite: Index already exists", "sqlite", errors.New("index idx_test already exists"), true},
		{"SQLite: No such table (DROP)", "sqlite", errors.New("no such table: table_gone"), true},
		{"SQLite: Real syntax error", "sqlite", errors.New(`near "SLECT": syntax error`), false},

		{"SQLServer: Object already exists", "sqlserver", errors.New("there is already an object named 'users' in the database"), true},
		{"SQLServer: Real error", "sqlserver", errors.New("invalid column name 'foo'"), false},

		{"Unknown dialect: real error", "oracle", errors.New("ORA-00942: table or view does not exist"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, shouldIgnoreDDLError(tc.dialect, tc.err))
		})
	}
}
