package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все параметры запуска приложения.
type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	// RemoteStorage выбирает удалённое хранилище. Значение фиксируется при старте.
	RemoteStorage    bool
	DataDir          string
	GCSBucket        string
	GCSPublicBaseURL string
	GCSPublicRead    bool
	LocalFallback    bool
	StrictWrites     bool
	RemoteTimeout    time.Duration
	AllowedOrigins   []string
	RateLimitLimit   int64
	RateLimitPeriod  time.Duration
}

// Load читает переменные окружения и возвращает готовую конфигурацию.
func Load() (*Config, error) {
	// Загружаем .env только если он существует, иначе используем системные переменные.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("config: не удалось прочитать .env: %v", err)
	}

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:              env,
		HTTPPort:         getEnv("PORT", getEnv("HTTP_PORT", "3000")),
		DataDir:          getEnv("DATA_DIR", "./data/propostas"),
		GCSBucket:        strings.TrimSpace(getEnv("GCS_BUCKET", "")),
		GCSPublicBaseURL: strings.TrimRight(getEnv("GCS_PUBLIC_BASE_URL", "https://storage.googleapis.com"), "/"),
	}

	defaultLevel := "info"
	if env == "development" {
		defaultLevel = "debug"
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", defaultLevel)

	var err error
	if cfg.RemoteStorage, err = parseBool("REMOTE_STORAGE", false); err != nil {
		return nil, err
	}
	if cfg.GCSPublicRead, err = parseBool("GCS_PUBLIC_READ", true); err != nil {
		return nil, err
	}
	if cfg.LocalFallback, err = parseBool("LOCAL_FALLBACK", true); err != nil {
		return nil, err
	}
	if cfg.StrictWrites, err = parseBool("STRICT_WRITES", false); err != nil {
		return nil, err
	}
	if cfg.RemoteTimeout, err = parseDuration("REMOTE_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.RateLimitLimit, err = parseInt64("RATE_LIMIT_LIMIT", "60"); err != nil {
		return nil, err
	}
	if cfg.RateLimitPeriod, err = parseDuration("RATE_LIMIT_PERIOD", "1m"); err != nil {
		return nil, err
	}

	if cfg.RemoteStorage && cfg.GCSBucket == "" {
		return nil, fmt.Errorf("config: GCS_BUCKET обязателен при REMOTE_STORAGE=true")
	}

	// CORS allowed origins
	cfg.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	return cfg, nil
}

// IsProduction сообщает, запущено ли приложение в production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv возвращает значение переменной окружения или дефолт.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// parseBool читает булев флаг. Пустое значение означает дефолт.
func parseBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: не удалось распарсить %s=%q: %w", key, raw, err)
	}
	return v, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: не удалось распарсить длительность %s=%q: %w", key, raw, err)
	}
	return dur, nil
}

func parseInt64(key, fallback string) (int64, error) {
	raw := getEnv(key, fallback)
	num, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: не удалось распарсить число %s=%q: %w", key, raw, err)
	}
	return num, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
