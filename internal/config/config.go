package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

type Config struct {
	ServerPort string

	// Ledger store backend: postgres, sqlite or memory
	Backend string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	SQLitePath string

	// Kafka feed for committed ledger entries; empty brokers disable it
	KafkaBrokers []string
	KafkaTopic   string
}

func Load() *Config {
	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		Backend:    getEnv("LEDGER_BACKEND", BackendPostgres),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "office_ledger"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		SQLitePath: getEnv("SQLITE_DB_PATH", "./data/office-ledger.db"),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "ledger.entries"),
	}
}

func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.ServerPort); err != nil {
		problems = append(problems, fmt.Sprintf("invalid server port %q: must be a number", c.ServerPort))
	} else if port < 0 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid server port %d: must be between 0 and 65535", port))
	}

	switch c.Backend {
	case BackendPostgres, BackendSQLite, BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("invalid ledger backend %q: must be one of postgres, sqlite, memory", c.Backend))
	}

	if c.Backend == BackendSQLite && c.SQLitePath == "" {
		problems = append(problems, "sqlite database path cannot be empty when using the sqlite backend")
	}

	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		problems = append(problems, "kafka topic cannot be empty when brokers are configured")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
