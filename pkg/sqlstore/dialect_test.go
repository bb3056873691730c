package sqlstore

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	tests := map[string]string{
		"":           "sqlserver",
		"SQLServer":  "sqlserver",
		"mssql":      "sqlserver",
		"postgres":   "postgres",
		"postgresql": "postgres",
		"mysql":      "mysql",
		"sqlite":     "sqlite3",
		"sqlite3":    "sqlite3",
	}
	for in, want := range tests {
		d, err := DialectFor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d.Name, in)
	}

	_, err := DialectFor("oracle")
	assert.Error(t, err)
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "[stg].[Contracts]", SQLServer.Quote("stg.Contracts"))
	assert.Equal(t, `"stg"."Contracts"`, Postgres.Quote("stg.Contracts"))
	assert.Equal(t, "`contracts`", MySQL.Quote("contracts"))
	assert.Equal(t, "[we]]ird]", SQLServer.QuoteIdent("we]ird"))
	assert.Equal(t, `"a""b"`, SQLite.QuoteIdent(`a"b`))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "@p1, @p2, @p3", SQLServer.Placeholders(3))
	assert.Equal(t, "$1, $2", Postgres.Placeholders(2))
	assert.Equal(t, "?, ?", MySQL.Placeholders(2))
	assert.Equal(t, "?", SQLite.Placeholder(1))
}

func TestDSN(t *testing.T) {
	cfg := Config{
		Server:   "db.local",
		Port:     "1433",
		Database: "staging",
		User:     "etl",
		Password: "p@ss word",
	}

	dsn, err := cfg.DSN(SQLServer)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "sqlserver://etl:"), dsn)
	assert.Contains(t, dsn, "@db.local:1433")
	assert.Contains(t, dsn, "database=staging")
	assert.Contains(t, dsn, "TrustServerCertificate=true")

	dsn, err = cfg.DSN(Postgres)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "postgres://etl:"), dsn)
	assert.True(t, strings.HasSuffix(dsn, "@db.local:1433/staging"), dsn)

	dsn, err = cfg.DSN(MySQL)
	require.NoError(t, err)
	assert.Contains(t, dsn, "etl:p@ss word@tcp(db.local:1433)/staging")
	assert.Contains(t, dsn, "parseTime=true")

	_, err = Config{}.DSN(SQLite)
	assert.Error(t, err)
}

func TestNewClient_SQLite(t *testing.T) {
	c, err := NewClient(Config{Driver: "sqlite3", Database: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, SQLite.Name, c.Dialect().Name)
	require.NoError(t, c.DB().Ping())
}

func TestNewClient_UnknownDriver(t *testing.T) {
	_, err := NewClient(Config{Driver: "db2"})
	assert.Error(t, err)
}
