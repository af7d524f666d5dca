package db

import (
	"context"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDialect(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		driver   string
	}{
		{"sqlite", "sqlite", "sqlite3"},
		{"", "sqlite", "sqlite3"},
		{"PostgreSQL", "postgres", "postgres"},
		{"mariadb", "mysql", "mysql"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDialect(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Name())
			assert.Equal(t, tt.driver, d.DriverName())
			assert.Equal(t, tt.expected, d.MigrationsSubdir())
		})
	}

	_, err := NewDialect("oracle")
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	d := NewSQLiteDialect()
	assert.Equal(t, "file:x.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL", d.DSN(Config{Path: "file:x.db"}))
	assert.Contains(t, d.DSN(Config{Path: "file:x.db?cache=shared"}), "cache=shared&_busy_timeout=5000")
}

func TestMySQLDSN_ForcesParseTime(t *testing.T) {
	d := NewMySQLDialect()
	assert.Contains(t, d.DSN(Config{URL: "drums:secret@tcp(localhost:3306)/drumdungeon"}), "parseTime=true")
}

func TestUpsertSuffix(t *testing.T) {
	cols := []string{"total", "attendance"}

	assert.Equal(t,
		"ON CONFLICT (student_id) DO UPDATE SET total = excluded.total, attendance = excluded.attendance",
		NewSQLiteDialect().UpsertSuffix([]string{"student_id"}, cols))
	assert.Equal(t,
		NewSQLiteDialect().UpsertSuffix([]string{"student_id"}, cols),
		NewPostgresDialect().UpsertSuffix([]string{"student_id"}, cols))
	assert.Equal(t,
		"ON DUPLICATE KEY UPDATE total = VALUES(total), attendance = VALUES(attendance)",
		NewMySQLDialect().UpsertSuffix([]string{"student_id"}, cols))
}

func TestInsertIgnoreSuffix(t *testing.T) {
	assert.Equal(t, "ON CONFLICT (student_id, medal) DO NOTHING", NewPostgresDialect().InsertIgnoreSuffix([]string{"student_id", "medal"}))
	assert.Equal(t, "ON DUPLICATE KEY UPDATE student_id = student_id", NewMySQLDialect().InsertIgnoreSuffix([]string{"student_id", "medal"}))
}

func TestPlaceholders(t *testing.T) {
	query, _, err := squirrel.StatementBuilder.PlaceholderFormat(NewPostgresDialect().Placeholder()).
		Select("id").From("students").Where(squirrel.Eq{"username": "alice"}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM students WHERE username = $1", query)
}

func TestSplitStatements(t *testing.T) {
	script := "-- comment\nCREATE TABLE a (\n  id INT\n);\n\nCREATE INDEX i ON a(id);\n"
	stmts := splitStatements(script)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (\n  id INT\n)", stmts[0])
	assert.Equal(t, "CREATE INDEX i ON a(id)", stmts[1])
}

func TestOpen_SQLiteMemoryAppliesMigrations(t *testing.T) {
	database, err := Open(Config{Type: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	defer database.Close()

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 2, count)

	var table string
	require.NoError(t, database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'xp_categories'`).Scan(&table))

	require.NoError(t, database.applyMigrations(context.Background()))
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 2, count, "re-running is a no-op")
}
