package helper

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection parameters for PostgreSQL
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration builds a configuration from environment variables.
// A .env file in the working directory is loaded first if present.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	// Missing .env is fine, envs may be set directly
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		Database: os.Getenv("DB_DATABASE"),
		Username: os.Getenv("DB_USERNAME"),
		Password: os.Getenv("DB_PASSWORD"),
		Schema:   os.Getenv("DB_SCHEMA"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}

	if config.Host == "" || config.Port == "" || config.Database == "" || config.Username == "" {
		return nil, fmt.Errorf("incomplete database configuration, need DB_HOST, DB_PORT, DB_DATABASE and DB_USERNAME")
	}
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config, nil
}

// ConnectionString returns the lib/pq DSN for the configuration
func (c *DatabaseConfiguration) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s dbname=%s user=%s password=%s search_path=%s sslmode=%s",
		c.Host, c.Port, c.Database, c.Username, c.Password, c.Schema, c.SSLMode,
	)
}

// Database wraps the sql.DB instance together with its configuration and logger
type Database struct {
	Name     string
	Config   *DatabaseConfiguration
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens the connection and verifies it with a ping.
// Connection failures are fatal, the core cannot run without its index store.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	db, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		log.Panicf("error opening database connection: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Panicf("error pinging database: %v", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host))

	return &Database{
		Name:     name,
		Config:   config,
		Instance: db,
		Logger:   logger,
	}
}

// Close closes the underlying database connection
func (d *Database) Close() error {
	if d.Instance != nil {
		return d.Instance.Close()
	}
	return nil
}

// NewTestDatabase creates a database connection with a quiet logger for tests
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	opts := PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelError,
		},
	}
	logger := slog.New(NewPrettyHandler(os.Stdout, opts))
	return NewDatabase("test", config, logger)
}

// SetTestDatabaseConfigEnvs sets the database environment variables for tests
// pointing at a local container on the given port
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", port)
	t.Setenv("DB_DATABASE", "database")
	t.Setenv("DB_USERNAME", "user")
	t.Setenv("DB_PASSWORD", "password")
	t.Setenv("DB_SCHEMA", "public")
	t.Setenv("DB_SSLMODE", "disable")
}
