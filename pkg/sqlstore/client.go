package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

// Client wraps a database/sql handle together with its dialect
type Client struct {
	db      *sql.DB
	dialect Dialect
}

// Config holds destination database connection configuration
type Config struct {
	Driver   string
	Server   string
	Port     string
	Database string // file path for sqlite3
	User     string
	Password string
}

// NewClient opens and verifies a database connection
func NewClient(cfg Config) (*Client, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := cfg.DSN(dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name, err)
	}

	if dialect.Name == SQLite.Name {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}

	// Verify connectivity
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to verify %s connectivity: %w", dialect.Name, err)
	}

	return &Client{db: db, dialect: dialect}, nil
}

// DSN builds the driver-specific data source name
func (cfg Config) DSN(d Dialect) (string, error) {
	switch d.Name {
	case SQLServer.Name:
		q := url.Values{}
		q.Set("database", cfg.Database)
		q.Set("TrustServerCertificate", "true")
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     net.JoinHostPort(cfg.Server, cfg.Port),
			RawQuery: q.Encode(),
		}
		return u.String(), nil
	case Postgres.Name:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cfg.User, cfg.Password),
			Host:   net.JoinHostPort(cfg.Server, cfg.Port),
			Path:   "/" + cfg.Database,
		}
		return u.String(), nil
	case MySQL.Name:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Server, cfg.Port)
		mc.DBName = cfg.Database
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	case SQLite.Name:
		if cfg.Database == "" {
			return "", fmt.Errorf("sqlstore: sqlite3 needs a database path")
		}
		return cfg.Database, nil
	default:
		return "", fmt.Errorf("sqlstore: unsupported driver %q", d.Name)
	}
}

// Wrap builds a Client around an already opened handle
func Wrap(db *sql.DB, dialect Dialect) *Client {
	return &Client{db: db, dialect: dialect}
}

// DB returns the underlying handle for repository use
func (c *Client) DB() *sql.DB {
	return c.db
}

// Dialect returns the SQL dialect of the connection
func (c *Client) Dialect() Dialect {
	return c.dialect
}

// Close closes the database connection
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
