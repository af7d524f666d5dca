package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/vytor/drumdungeon/internal/gamification"
)

type Config struct {
	Addr                 string
	DataDir              string
	LogLevel             string
	DBEnabled            bool
	DBType               string
	DBPath               string
	DatabaseURL          string
	RedisURL             string
	WorkerCount          int
	QueueSize            int
	ReconcileConcurrency int
	Policy               gamification.Policy
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	policy := gamification.DefaultPolicy()
	policy.LevelBaseXP = envIntOr("LEVEL_BASE_XP", policy.LevelBaseXP)
	policy.LevelIncrementXP = envIntOr("LEVEL_INCREMENT_XP", policy.LevelIncrementXP)
	policy.AttendanceXP = envIntOr("ATTENDANCE_XP", policy.AttendanceXP)
	policy.MonthlyBonusXP = envIntOr("MONTHLY_BONUS_XP", policy.MonthlyBonusXP)
	policy.MonthlyBonusThreshold = envIntOr("MONTHLY_BONUS_THRESHOLD", policy.MonthlyBonusThreshold)
	policy.DefaultExerciseXP = envIntOr("DEFAULT_EXERCISE_XP", policy.DefaultExerciseXP)
	policy.MilestonesOnPractice = envBoolOr("MILESTONES_ON_PRACTICE", policy.MilestonesOnPractice)

	return Config{
		Addr:                 envOr("ADDR", ":8080"),
		DataDir:              envOr("DATA_DIR", "data"),
		LogLevel:             envOr("LOG_LEVEL", "INFO"),
		DBEnabled:            envBoolOr("DB_ENABLED", true),
		DBType:               strings.ToLower(envOr("DB_TYPE", "sqlite")),
		DBPath:               envOr("DB_PATH", "file:drumdungeon.db"),
		DatabaseURL:          envOr("DATABASE_URL", ""),
		RedisURL:             envOr("REDIS_URL", ""),
		WorkerCount:          envIntOr("WORKER_COUNT", 2),
		QueueSize:            envIntOr("QUEUE_SIZE", 64),
		ReconcileConcurrency: envIntOr("RECONCILE_CONCURRENCY", 4),
		Policy:               policy,
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}

	if c.DBEnabled {
		switch c.DBType {
		case "sqlite":
			if c.DBPath == "" {
				errs = append(errs, errors.New("DB_PATH cannot be empty when DB_TYPE=sqlite"))
			}
		case "postgres", "mysql":
			if c.DatabaseURL == "" {
				errs = append(errs, fmt.Errorf("DATABASE_URL is required when DB_TYPE=%s", c.DBType))
			}
		default:
			errs = append(errs, fmt.Errorf("DB_TYPE must be sqlite, postgres or mysql, got %q", c.DBType))
		}
	}

	if c.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("WORKER_COUNT must be at least 1, got %d", c.WorkerCount))
	}
	if c.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("QUEUE_SIZE must be at least 1, got %d", c.QueueSize))
	}
	if c.ReconcileConcurrency < 1 {
		errs = append(errs, fmt.Errorf("RECONCILE_CONCURRENCY must be at least 1, got %d", c.ReconcileConcurrency))
	}
	if err := c.Policy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("policy: %w", err))
	}

	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
