package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Driver names as registered with database/sql. DriverSQLite is the
// mattn/go-sqlite3 driver with Unicode-aware lower/upper (see sqlite.go).
const (
	DriverSQLite   = "sqlite3_unicode"
	DriverPostgres = "pgx"
)

type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

func DefaultConfig() Config {
	if u := os.Getenv("DATABASE_URL"); u != "" {
		return ParseURL(u)
	}

	// local default: ~/.mdblog/blog.db
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return Config{
		Driver:       DriverSQLite,
		DSN:          filepath.Join(home, ".mdblog", "blog.db"),
		MaxOpenConns: 5,
	}
}

// ParseURL maps a DATABASE_URL value onto a driver. postgres:// and
// postgresql:// go to pgx, sqlite:// is stripped, anything else is handed
// to sqlite3 as a path or file: URI.
func ParseURL(raw string) Config {
	raw = strings.TrimSpace(raw)
	cfg := Config{MaxOpenConns: 5}

	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		cfg.Driver = DriverPostgres
		cfg.DSN = raw
	case strings.HasPrefix(raw, "sqlite://"):
		cfg.Driver = DriverSQLite
		cfg.DSN = strings.TrimPrefix(raw, "sqlite://")
	default:
		cfg.Driver = DriverSQLite
		cfg.DSN = raw
	}
	return cfg
}

func EnsureDataDir(cfg Config) error {
	if cfg.Driver != DriverSQLite {
		return nil
	}
	if cfg.DSN == ":memory:" || strings.HasPrefix(cfg.DSN, "file:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(cfg.DSN), 0o755)
}

func Open(cfg Config) (*sql.DB, error) {
	if err := EnsureDataDir(cfg); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.Driver == DriverSQLite {
		if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma journal_mode: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	return db, nil
}

func MustOpen(cfg Config) *sql.DB {
	db, err := Open(cfg)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	return db
}
