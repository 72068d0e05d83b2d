package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	FetcherColly = "colly"
	FetcherHTTP  = "http"
)

// Config holds the settings shared by the server and the CLI.
type Config struct {
	Port string

	// Cooking book storage: Postgres when DatabaseURL is set, else a JSON file
	// when BookFile is set, else memory only.
	DatabaseURL string
	BookFile    string

	// Bearer token required by the import API; empty disables the check.
	APIToken string

	Fetcher           string
	UserAgent         string
	FetchTimeout      time.Duration
	HostRatePerSecond float64
	ImportParallelism int

	LogLevel        slog.Level
	ShutdownTimeout time.Duration
}

// Load returns the configuration from the environment, with defaults for
// everything unset or unparseable.
func Load() Config {
	cfg := Config{
		Port:              "8080",
		Fetcher:           FetcherColly,
		FetchTimeout:      15 * time.Second,
		HostRatePerSecond: 1,
		ImportParallelism: 4,
		LogLevel:          slog.LevelInfo,
		ShutdownTimeout:   30 * time.Second,
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.BookFile = os.Getenv("BOOK_FILE")
	cfg.APIToken = os.Getenv("API_TOKEN")
	cfg.UserAgent = os.Getenv("USER_AGENT")

	switch strings.ToLower(os.Getenv("FETCHER")) {
	case FetcherHTTP:
		cfg.Fetcher = FetcherHTTP
	case "", FetcherColly:
	default:
		slog.Warn("unknown FETCHER, using colly", "value", os.Getenv("FETCHER"))
	}

	if seconds, ok := positiveInt("FETCH_TIMEOUT_SECONDS"); ok {
		cfg.FetchTimeout = time.Duration(seconds) * time.Second
	}
	if seconds, ok := positiveInt("SHUTDOWN_TIMEOUT_SECONDS"); ok {
		cfg.ShutdownTimeout = time.Duration(seconds) * time.Second
	}
	if n, ok := positiveInt("IMPORT_PARALLELISM"); ok {
		cfg.ImportParallelism = n
	}
	if v := os.Getenv("HOST_RATE_PER_SECOND"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && rate > 0 {
			cfg.HostRatePerSecond = rate
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(v)); err == nil {
			cfg.LogLevel = level
		}
	}

	return cfg
}

func positiveInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
