package db

import (
	"database/sql"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDialect implements Dialect for SQLite
type SQLiteDialect struct{}

func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

func (d *SQLiteDialect) DSN(cfg Config) string {
	sep := "?"
	if strings.Contains(cfg.Path, "?") {
		sep = "&"
	}
	return cfg.Path + sep + "_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"
}

func (d *SQLiteDialect) Placeholder() squirrel.PlaceholderFormat {
	return squirrel.Question
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	// Single writer; also keeps :memory: databases on one connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	return nil
}

func (d *SQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at DATETIME DEFAULT CURRENT_TIMESTAMP)`
}

func (d *SQLiteDialect) UpsertSuffix(conflictCols, updateCols []string) string {
	return onConflictUpsert(conflictCols, updateCols)
}

func (d *SQLiteDialect) InsertIgnoreSuffix(conflictCols []string) string {
	return onConflictIgnore(conflictCols)
}
