package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultEnvFile is read when present and no other file is given
const DefaultEnvFile = ".env"

const (
	// DefaultTable is the destination when DB_TABLE is unset
	DefaultTable = "stg.Contracts"
	// DefaultFileTable replaces DefaultTable for sqlite, where a schema
	// prefix names an attached database
	DefaultFileTable = "contracts"
)

// Config contains runtime settings for one sync run
type Config struct {
	LogLevel string
	API      struct {
		Host      string
		URL       string
		GrantType string
		Username  string
		Password  string
		Key       string
		PageSize  int
		Timeout   time.Duration
	}
	DB struct {
		Driver   string // sqlserver, postgres, mysql, sqlite3
		Server   string
		Port     string
		Name     string
		User     string
		Password string
		Table    string
	}
	MaxPages       int
	Linger         time.Duration // delay before process teardown
	PushgatewayURL string
	TraceStdout    bool
}

// Load populates config from environment variables and, when present,
// KEY=value lines in envFile. Environment variables win over the file.
func Load(envFile string) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlserver")
	v.SetDefault("PAGE_SIZE", 100)
	v.SetDefault("MAX_PAGES", 0)
	v.SetDefault("HTTP_TIMEOUT", 30*time.Second)
	v.SetDefault("LINGER", 5*time.Second)
	v.SetDefault("TRACE_STDOUT", false)

	if err := readEnvFile(v, envFile); err != nil {
		return Config{}, err
	}

	var cfg Config
	cfg.LogLevel = v.GetString("LOG_LEVEL")

	cfg.API.Host = v.GetString("HOST")
	cfg.API.URL = v.GetString("API_URL")
	cfg.API.GrantType = v.GetString("GRANT_TYPE")
	cfg.API.Username = v.GetString("API_USERNAME")
	cfg.API.Password = v.GetString("API_PASSWORD")
	cfg.API.Key = v.GetString("API_KEY")
	cfg.API.PageSize = v.GetInt("PAGE_SIZE")
	cfg.API.Timeout = v.GetDuration("HTTP_TIMEOUT")

	cfg.DB.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	cfg.DB.Server = v.GetString("SERVER")
	cfg.DB.Port = v.GetString("PORT")
	cfg.DB.Name = v.GetString("DB")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.Table = v.GetString("DB_TABLE")
	if strings.TrimSpace(cfg.DB.Table) == "" {
		cfg.DB.Table = DefaultTable
		if cfg.fileDatabase() {
			cfg.DB.Table = DefaultFileTable
		}
	}

	cfg.MaxPages = v.GetInt("MAX_PAGES")
	cfg.Linger = v.GetDuration("LINGER")
	cfg.PushgatewayURL = v.GetString("PUSHGATEWAY_URL")
	cfg.TraceStdout = v.GetBool("TRACE_STDOUT")

	var missingVars []string
	require := func(key, val string) {
		if strings.TrimSpace(val) == "" {
			missingVars = append(missingVars, key)
		}
	}

	require("HOST", cfg.API.Host)
	require("API_URL", cfg.API.URL)
	require("GRANT_TYPE", cfg.API.GrantType)
	require("API_USERNAME", cfg.API.Username)
	require("API_PASSWORD", cfg.API.Password)
	require("API_KEY", cfg.API.Key)

	if !cfg.fileDatabase() {
		require("SERVER", cfg.DB.Server)
		require("PORT", cfg.DB.Port)
		require("DB_USER", cfg.DB.User)
		require("DB_PASSWORD", cfg.DB.Password)
	}
	require("DB", cfg.DB.Name)

	if len(missingVars) > 0 {
		return cfg, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	if cfg.API.PageSize <= 0 {
		return cfg, fmt.Errorf("PAGE_SIZE must be positive, got %d", cfg.API.PageSize)
	}

	return cfg, nil
}

func (c Config) fileDatabase() bool {
	return c.DB.Driver == "sqlite" || c.DB.Driver == "sqlite3"
}

// readEnvFile merges a dotenv file. A missing default file is fine; a
// missing explicitly named file is an error.
func readEnvFile(v *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}

	return nil
}
