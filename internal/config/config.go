package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	DatabaseURL string
	// Provider
	Provider         string
	AlphaVantageBase string
	AlphaVantageKey  string
	RequestTimeout   time.Duration
	// Refresh policy
	FreshnessWindow time.Duration
	PacingInterval  time.Duration
	MaxBatchSymbols int
	// Worker
	WorkerPoll time.Duration
	// Redis (idempotency)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:              getEnv("ENV", "local"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		Provider:         getEnv("PROVIDER", "alphavantage"),
		AlphaVantageBase: getEnv("ALPHA_VANTAGE_BASE", "https://www.alphavantage.co"),
		AlphaVantageKey:  getEnv("ALPHA_VANTAGE_API_KEY", ""),
		RequestTimeout:   time.Duration(atoiDef(getEnv("REQUEST_TIMEOUT_MS", "10000"), 10000)) * time.Millisecond,
		FreshnessWindow:  time.Duration(atoiDef(getEnv("FRESHNESS_WINDOW_MIN", "15"), 15)) * time.Minute,
		PacingInterval:   time.Duration(atoiDef(getEnv("PACING_INTERVAL_MS", "12000"), 12000)) * time.Millisecond,
		MaxBatchSymbols:  atoiDef(getEnv("MAX_BATCH_SYMBOLS", "20"), 20),
		WorkerPoll:       time.Duration(atoiDef(getEnv("WORKER_POLL_MS", "900000"), 900000)) * time.Millisecond,
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          atoiDef(getEnv("REDIS_DB", "0"), 0),
		RedisTTL:         time.Duration(atoiDef(getEnv("IDEMPOTENCY_TTL_MS", "86400000"), 86400000)) * time.Millisecond,
	}
}
