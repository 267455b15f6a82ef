package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// ProviderYahoo selects the public Yahoo Finance chart endpoint.
	ProviderYahoo = "yahoo"
	// ProviderPostgres selects the daily_closes table filled by the ingest mode.
	ProviderPostgres = "postgres"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	MARKET_DATA_PROVIDER=yahoo
//	YAHOO_BASE_URL=https://query1.finance.yahoo.com/v8/finance/chart
//	UPSTREAM_TIMEOUT=10s
//	UPSTREAM_MAX_RETRIES=0
//	UPSTREAM_RATE_LIMIT=5
//	RATE_LIMIT_PER_MINUTE=60
//	CORS_ALLOW_ORIGINS=*
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=postgres
//	POSTGRES_PASSWORD=postgres
//	POSTGRES_DB=stockreturn
//	POSTGRES_SSLMODE=disable
type Config struct {
	Server     ServerConfig     // HTTP server configuration
	MarketData MarketDataConfig // Upstream price provider settings
	Postgres   PostgresConfig   // PostgreSQL connection settings
	Log        LogConfig        // Logger settings
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string   // The TCP port the HTTP server will listen on (e.g., "8080")
	RateLimitPerMinute int      // Inbound requests allowed per client IP per minute
	AllowOrigins       []string // Origins allowed to call the API from a browser
}

// MarketDataConfig describes where prices come from and how the upstream is protected.
//
// Fields:
//   - Provider: "yahoo" or "postgres".
//   - YahooBaseURL: chart endpoint; the symbol is appended as a path segment.
//   - Timeout: bound applied to both price lookups of a single request.
//   - MaxRetries: transport-level retries with exponential backoff (0 disables).
//   - RateLimit: outbound requests per second.
type MarketDataConfig struct {
	Provider     string
	YahooBaseURL string
	Timeout      time.Duration
	MaxRetries   int
	RateLimit    int
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// LogConfig mirrors LOG_LEVEL and LOG_PRETTY.
type LogConfig struct {
	Level  string
	Pretty bool
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	viper.SetDefault("CORS_ALLOW_ORIGINS", "*")

	viper.SetDefault("MARKET_DATA_PROVIDER", ProviderYahoo)
	viper.SetDefault("YAHOO_BASE_URL", "https://query1.finance.yahoo.com/v8/finance/chart")
	viper.SetDefault("UPSTREAM_TIMEOUT", "10s")
	viper.SetDefault("UPSTREAM_MAX_RETRIES", 0)
	viper.SetDefault("UPSTREAM_RATE_LIMIT", 5)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "stockreturn")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_PRETTY", false)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:               viper.GetString("SERVER_PORT"),
			RateLimitPerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
			AllowOrigins:       splitList(viper.GetString("CORS_ALLOW_ORIGINS")),
		},
		MarketData: MarketDataConfig{
			Provider:     strings.ToLower(strings.TrimSpace(viper.GetString("MARKET_DATA_PROVIDER"))),
			YahooBaseURL: strings.TrimRight(viper.GetString("YAHOO_BASE_URL"), "/"),
			Timeout:      viper.GetDuration("UPSTREAM_TIMEOUT"),
			MaxRetries:   viper.GetInt("UPSTREAM_MAX_RETRIES"),
			RateLimit:    viper.GetInt("UPSTREAM_RATE_LIMIT"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Pretty: viper.GetBool("LOG_PRETTY"),
		},
	}

	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()

	validateConfig()
}

// DSN builds the postgres:// connection string used by database/sql.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.DBName,
		p.SSLMode,
	)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// missingFields lists every required variable that is unset.
// Postgres settings are only required when the postgres provider is selected.
func missingFields(cfg Config) []string {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	switch cfg.MarketData.Provider {
	case ProviderYahoo:
		if cfg.MarketData.YahooBaseURL == "" {
			missing = append(missing, "YAHOO_BASE_URL")
		}
	case ProviderPostgres:
		if cfg.Postgres.Host == "" {
			missing = append(missing, "POSTGRES_HOST")
		}
		if cfg.Postgres.Port == 0 {
			missing = append(missing, "POSTGRES_PORT")
		}
		if cfg.Postgres.User == "" {
			missing = append(missing, "POSTGRES_USER")
		}
		if cfg.Postgres.DBName == "" {
			missing = append(missing, "POSTGRES_DB")
		}
	default:
		missing = append(missing, "MARKET_DATA_PROVIDER (yahoo|postgres)")
	}
	if cfg.MarketData.Timeout <= 0 {
		missing = append(missing, "UPSTREAM_TIMEOUT")
	}
	if cfg.MarketData.RateLimit <= 0 {
		missing = append(missing, "UPSTREAM_RATE_LIMIT")
	}

	return missing
}

// validateConfig terminates the application when required variables are missing.
func validateConfig() {
	if missing := missingFields(AppConfig); len(missing) > 0 {
		log.Fatalf("❌ Missing required environment variables: %v\n", missing)
	}
}
