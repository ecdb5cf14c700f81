// Пакет config — загрузка и валидация конфигурации Logsight
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Logsight.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Максимальный размер загружаемого файла в байтах
	MaxUploadSize int64

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- JWT (Identity Provider) ---

	// Ожидаемый issuer JWT
	JWTIssuer string
	// URL JWKS endpoint IdP
	JWTJWKSURL string
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration
	// Путь к CA-сертификату для TLS-соединений с IdP и reasoner (опционально)
	CACertPath string

	// --- Reasoner (внешний сервис анализа) ---

	// Базовый URL API reasoner
	ReasonerURL string
	// API-ключ reasoner
	ReasonerAPIKey string
	// Имя модели
	ReasonerModel string
	// Таймаут одного вызова reasoner
	ReasonerTimeout time.Duration

	// --- Кэш находок ---

	// Максимальное количество наборов находок в LRU-кэше
	InsightCacheSize int
	// TTL записи кэша
	InsightCacheTTL time.Duration

	// --- Мониторинг зависимостей ---

	// Имя группы в метриках topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// LS_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("LS_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("LS_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("LS_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// LS_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("LS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LS_LOG_LEVEL: %w", err)
	}

	// LS_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("LS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LS_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// LS_MAX_UPLOAD_SIZE — максимальный размер файла (по умолчанию 32 MiB)
	cfg.MaxUploadSize, err = getEnvInt64("LS_MAX_UPLOAD_SIZE", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("LS_MAX_UPLOAD_SIZE: %w", err)
	}
	if cfg.MaxUploadSize < 1 {
		return nil, fmt.Errorf("LS_MAX_UPLOAD_SIZE: значение должно быть положительным")
	}

	// --- PostgreSQL ---

	// LS_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("LS_DB_HOST")
	if err != nil {
		return nil, err
	}

	// LS_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("LS_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("LS_DB_PORT: %w", err)
	}

	// LS_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("LS_DB_NAME")
	if err != nil {
		return nil, err
	}

	// LS_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("LS_DB_USER")
	if err != nil {
		return nil, err
	}

	// LS_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("LS_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// LS_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("LS_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("LS_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- JWT ---

	// LS_JWT_JWKS_URL — обязательный
	cfg.JWTJWKSURL, err = getEnvRequired("LS_JWT_JWKS_URL")
	if err != nil {
		return nil, err
	}

	// LS_JWT_ISSUER — опциональный (пустой — issuer не проверяется)
	cfg.JWTIssuer = getEnvDefault("LS_JWT_ISSUER", "")

	// LS_JWT_LEEWAY — допустимое отклонение времени (по умолчанию 30s)
	cfg.JWTLeeway, err = getEnvDuration("LS_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LS_JWT_LEEWAY: %w", err)
	}

	// LS_CA_CERT_PATH — путь к CA-сертификату (опционально)
	cfg.CACertPath = getEnvDefault("LS_CA_CERT_PATH", "")

	// --- Reasoner ---

	// LS_REASONER_URL — обязательный
	cfg.ReasonerURL, err = getEnvRequired("LS_REASONER_URL")
	if err != nil {
		return nil, err
	}
	cfg.ReasonerURL = strings.TrimRight(cfg.ReasonerURL, "/")

	// LS_REASONER_API_KEY — обязательный
	cfg.ReasonerAPIKey, err = getEnvRequired("LS_REASONER_API_KEY")
	if err != nil {
		return nil, err
	}

	// LS_REASONER_MODEL — имя модели (по умолчанию gemini-2.5-flash)
	cfg.ReasonerModel = getEnvDefault("LS_REASONER_MODEL", "gemini-2.5-flash")

	// LS_REASONER_TIMEOUT — таймаут вызова (по умолчанию 60s)
	cfg.ReasonerTimeout, err = getEnvDuration("LS_REASONER_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LS_REASONER_TIMEOUT: %w", err)
	}

	// --- Кэш находок ---

	// LS_INSIGHT_CACHE_SIZE — размер LRU-кэша (по умолчанию 1024)
	cfg.InsightCacheSize, err = getEnvInt("LS_INSIGHT_CACHE_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("LS_INSIGHT_CACHE_SIZE: %w", err)
	}
	if cfg.InsightCacheSize < 1 {
		return nil, fmt.Errorf("LS_INSIGHT_CACHE_SIZE: значение должно быть положительным")
	}

	// LS_INSIGHT_CACHE_TTL — TTL записи кэша (по умолчанию 10m)
	cfg.InsightCacheTTL, err = getEnvDuration("LS_INSIGHT_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("LS_INSIGHT_CACHE_TTL: %w", err)
	}

	// --- Мониторинг зависимостей ---

	// LS_DEPHEALTH_GROUP — имя группы (по умолчанию logsight)
	cfg.DephealthGroup = getEnvDefault("LS_DEPHEALTH_GROUP", "logsight")

	// LS_DEPHEALTH_CHECK_INTERVAL — интервал проверки (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("LS_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LS_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// LS_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("LS_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("LS_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL
// (для лейблов topologymetrics, не для подключения).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
