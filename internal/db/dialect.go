package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// Dialect hides the differences between the relational engines the mirror can run on.
type Dialect interface {
	// Name is the DB_TYPE value selecting this dialect.
	Name() string

	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// DSN returns the data source name for the connection.
	DSN(cfg Config) string

	// Placeholder is the bind variable style squirrel should emit.
	Placeholder() squirrel.PlaceholderFormat

	// ConfigureConnection applies pool and session settings after the first ping.
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the directory under migrations/ holding this engine's schema.
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL that creates the schema_migrations table.
	CreateMigrationsTableQuery() string

	// UpsertSuffix turns an INSERT into an insert-or-update keyed on conflictCols.
	UpsertSuffix(conflictCols, updateCols []string) string

	// InsertIgnoreSuffix turns an INSERT into a no-op when conflictCols already exist.
	InsertIgnoreSuffix(conflictCols []string) string
}

// Config selects and locates the relational store.
type Config struct {
	Type string
	// Path is used by sqlite.
	Path string
	// URL is used by postgres and mysql.
	URL string
}

// NewDialect returns the dialect registered for name.
func NewDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite", "sqlite3", "":
		return NewSQLiteDialect(), nil
	case "postgres", "postgresql":
		return NewPostgresDialect(), nil
	case "mysql", "mariadb":
		return NewMySQLDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", name)
	}
}

// onConflictUpsert is shared by the engines that speak ON CONFLICT.
func onConflictUpsert(conflictCols, updateCols []string) string {
	sets := make([]string, len(updateCols))
	for i, c := range updateCols {
		sets[i] = fmt.Sprintf("%s = excluded.%s", c, c)
	}
	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(conflictCols, ", "), strings.Join(sets, ", "))
}

func onConflictIgnore(conflictCols []string) string {
	return fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(conflictCols, ", "))
}
