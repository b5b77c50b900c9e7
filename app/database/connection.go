package database

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/huandu/go-sqlbuilder"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB wraps the connection pool with the dialect it speaks.
type DB struct {
	*sql.DB
	Driver string
	Flavor sqlbuilder.Flavor
}

type Options struct {
	Driver   string
	Path     string // sqlite only
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

func NewConnection(opts Options) (*DB, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return openSQLite(opts.Path)
	case DriverPostgres:
		return openPostgres(opts)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", opts.Driver)
	}
}

func openSQLite(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is required")
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY under concurrent requests.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &DB{DB: sqlDB, Driver: DriverSQLite, Flavor: sqlbuilder.SQLite}, nil
}

func openPostgres(opts Options) (*DB, error) {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(opts.User, opts.Password),
		Host:     net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port)),
		Path:     "/" + opts.Name,
		RawQuery: "sslmode=disable",
	}

	sqlDB, err := sql.Open("pgx", dsn.String())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	return &DB{DB: sqlDB, Driver: DriverPostgres, Flavor: sqlbuilder.PostgreSQL}, nil
}
