package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the defaults every command starts from. Command flags
// override these values.
type Config struct {
	VenuesFile  string
	VendorsFile string

	DBDriver    string
	DatabaseURL string
	RedisURL    string

	BlobBaseURL string
	BlobToken   string

	SelectorsFile string
	MetricsFile   string

	ChromeBin       string
	Headless        bool
	LockFile        string
	PageDelay       time.Duration
	PageRandomDelay time.Duration
	RequestTimeout  time.Duration
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		VenuesFile:  getEnv("VENUES_FILE", "data/venues.json"),
		VendorsFile: getEnv("VENDORS_FILE", "data/photographers.json"),

		DBDriver:    getEnv("DB_DRIVER", "duckdb"),
		DatabaseURL: getEnv("DATABASE_URL", "data/directory.duckdb"),
		RedisURL:    getEnv("REDIS_URL", ""),

		BlobBaseURL: getEnv("BLOB_BASE_URL", "https://blob.vercel-storage.com"),
		BlobToken:   getEnv("BLOB_READ_WRITE_TOKEN", ""),

		SelectorsFile: getEnv("SELECTORS_FILE", ""),
		MetricsFile:   getEnv("METRICS_TEXTFILE", ""),

		ChromeBin:       getEnv("CHROME_BIN", ""),
		Headless:        getEnvBool("HEADLESS", true),
		LockFile:        getEnv("BROWSER_LOCK_FILE", "data/playwright.lock"),
		PageDelay:       getEnvDuration("PAGE_DELAY", 2*time.Second),
		PageRandomDelay: getEnvDuration("PAGE_RANDOM_DELAY", 3*time.Second),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
	}
}

// NewLogger builds the slog logger commands use: JSON lines for long
// scraping runs, plain text for the short maintenance commands.
func NewLogger(json, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		// Bare numbers are milliseconds.
		if ms := getEnvInt(key, -1); ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return fallback
}
