package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL and MariaDB
type MySQLDialect struct{}

func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) Name() string { return "mysql" }

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN accepts a driver DSN and forces parseTime so DATE columns scan as time.Time.
func (d *MySQLDialect) DSN(cfg Config) string {
	parsed, err := mysql.ParseDSN(cfg.URL)
	if err != nil {
		return cfg.URL
	}
	parsed.ParseTime = true
	return parsed.FormatDSN()
}

func (d *MySQLDialect) Placeholder() squirrel.PlaceholderFormat {
	return squirrel.Question
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1;"); err != nil {
		return err
	}
	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(255) PRIMARY KEY, applied_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6))`
}

func (d *MySQLDialect) UpsertSuffix(_, updateCols []string) string {
	sets := make([]string, len(updateCols))
	for i, c := range updateCols {
		sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
	}
	return "ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
}

// InsertIgnoreSuffix rewrites the key to itself, which MySQL treats as a no-op update.
func (d *MySQLDialect) InsertIgnoreSuffix(conflictCols []string) string {
	return fmt.Sprintf("ON DUPLICATE KEY UPDATE %s = %s", conflictCols[0], conflictCols[0])
}
