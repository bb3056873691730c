package sqlstore

import (
	"fmt"
	"strings"
)

// Dialect covers the SQL differences between supported drivers
type Dialect struct {
	Name          string
	driverName    string
	quoteOpen     string
	quoteClose    string
	TextType      string
	IntType       string
	FloatType     string
	BoolType      string
	TimestampType string
	placeholder   func(n int) string
}

var (
	SQLServer = Dialect{
		Name:          "sqlserver",
		driverName:    "sqlserver",
		quoteOpen:     "[",
		quoteClose:    "]",
		TextType:      "NVARCHAR(MAX)",
		IntType:       "BIGINT",
		FloatType:     "FLOAT",
		BoolType:      "BIT",
		TimestampType: "DATETIME2",
		placeholder:   func(n int) string { return fmt.Sprintf("@p%d", n) },
	}
	Postgres = Dialect{
		Name:          "postgres",
		driverName:    "pgx",
		quoteOpen:     `"`,
		quoteClose:    `"`,
		TextType:      "TEXT",
		IntType:       "BIGINT",
		FloatType:     "DOUBLE PRECISION",
		BoolType:      "BOOLEAN",
		TimestampType: "TIMESTAMPTZ",
		placeholder:   func(n int) string { return fmt.Sprintf("$%d", n) },
	}
	MySQL = Dialect{
		Name:          "mysql",
		driverName:    "mysql",
		quoteOpen:     "`",
		quoteClose:    "`",
		TextType:      "TEXT",
		IntType:       "BIGINT",
		FloatType:     "DOUBLE",
		BoolType:      "BOOLEAN",
		TimestampType: "DATETIME(6)",
		placeholder:   func(int) string { return "?" },
	}
	SQLite = Dialect{
		Name:          "sqlite3",
		driverName:    "sqlite3",
		quoteOpen:     `"`,
		quoteClose:    `"`,
		TextType:      "TEXT",
		IntType:       "INTEGER",
		FloatType:     "REAL",
		BoolType:      "BOOLEAN",
		TimestampType: "TIMESTAMP",
		placeholder:   func(int) string { return "?" },
	}
)

// DialectFor resolves a DB_DRIVER value
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlserver", "mssql":
		return SQLServer, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

// Quote quotes a possibly schema-qualified identifier, e.g. stg.Contracts
func (d Dialect) Quote(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}

// QuoteIdent quotes a single identifier
func (d Dialect) QuoteIdent(ident string) string {
	escaped := strings.ReplaceAll(ident, d.quoteClose, d.quoteClose+d.quoteClose)
	return d.quoteOpen + escaped + d.quoteClose
}

// Placeholder returns the n-th (1-based) bind parameter marker
func (d Dialect) Placeholder(n int) string {
	return d.placeholder(n)
}

// Placeholders returns n comma-separated bind markers
func (d Dialect) Placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		marks[i] = d.placeholder(i + 1)
	}
	return strings.Join(marks, ", ")
}
