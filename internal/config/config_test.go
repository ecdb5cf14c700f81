package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения и возвращает функцию для их очистки.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"LS_DB_HOST":          "localhost",
		"LS_DB_NAME":          "logsight",
		"LS_DB_USER":          "logsight",
		"LS_DB_PASSWORD":      "secret",
		"LS_JWT_JWKS_URL":     "https://idp.kryukov.lan/realms/logsight/protocol/openid-connect/certs",
		"LS_REASONER_URL":     "https://generativelanguage.googleapis.com",
		"LS_REASONER_API_KEY": "reasoner-secret",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, ожидается 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.MaxUploadSize != 32<<20 {
		t.Errorf("MaxUploadSize = %d, ожидается %d", cfg.MaxUploadSize, 32<<20)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, ожидается localhost", cfg.DBHost)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, ожидается 5432", cfg.DBPort)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, ожидается disable", cfg.DBSSLMode)
	}
	if cfg.JWTLeeway != 30*time.Second {
		t.Errorf("JWTLeeway = %v, ожидается 30s", cfg.JWTLeeway)
	}
	if cfg.ReasonerModel != "gemini-2.5-flash" {
		t.Errorf("ReasonerModel = %q, ожидается gemini-2.5-flash", cfg.ReasonerModel)
	}
	if cfg.ReasonerTimeout != 60*time.Second {
		t.Errorf("ReasonerTimeout = %v, ожидается 60s", cfg.ReasonerTimeout)
	}
	if cfg.InsightCacheSize != 1024 {
		t.Errorf("InsightCacheSize = %d, ожидается 1024", cfg.InsightCacheSize)
	}
	if cfg.InsightCacheTTL != 10*time.Minute {
		t.Errorf("InsightCacheTTL = %v, ожидается 10m", cfg.InsightCacheTTL)
	}
	if cfg.DephealthGroup != "logsight" {
		t.Errorf("DephealthGroup = %q, ожидается logsight", cfg.DephealthGroup)
	}
	if cfg.DephealthCheckInterval != 15*time.Second {
		t.Errorf("DephealthCheckInterval = %v, ожидается 15s", cfg.DephealthCheckInterval)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	envs := minimalEnvs()
	envs["LS_PORT"] = "9090"
	envs["LS_LOG_LEVEL"] = "debug"
	envs["LS_LOG_FORMAT"] = "text"
	envs["LS_MAX_UPLOAD_SIZE"] = "1048576"
	envs["LS_DB_PORT"] = "5433"
	envs["LS_DB_SSL_MODE"] = "require"
	envs["LS_JWT_ISSUER"] = "https://idp.kryukov.lan/realms/logsight"
	envs["LS_JWT_LEEWAY"] = "1m"
	envs["LS_CA_CERT_PATH"] = "/certs/ca.pem"
	envs["LS_REASONER_MODEL"] = "gemini-2.5-pro"
	envs["LS_REASONER_TIMEOUT"] = "90s"
	envs["LS_INSIGHT_CACHE_SIZE"] = "256"
	envs["LS_INSIGHT_CACHE_TTL"] = "5m"
	envs["LS_SHUTDOWN_TIMEOUT"] = "10s"
	setEnvs(t, envs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, ожидается 9090", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, ожидается Debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, ожидается text", cfg.LogFormat)
	}
	if cfg.MaxUploadSize != 1048576 {
		t.Errorf("MaxUploadSize = %d, ожидается 1048576", cfg.MaxUploadSize)
	}
	if cfg.DBPort != 5433 {
		t.Errorf("DBPort = %d, ожидается 5433", cfg.DBPort)
	}
	if cfg.DBSSLMode != "require" {
		t.Errorf("DBSSLMode = %q, ожидается require", cfg.DBSSLMode)
	}
	if cfg.JWTIssuer != "https://idp.kryukov.lan/realms/logsight" {
		t.Errorf("JWTIssuer = %q, ожидается https://idp.kryukov.lan/realms/logsight", cfg.JWTIssuer)
	}
	if cfg.JWTLeeway != time.Minute {
		t.Errorf("JWTLeeway = %v, ожидается 1m", cfg.JWTLeeway)
	}
	if cfg.CACertPath != "/certs/ca.pem" {
		t.Errorf("CACertPath = %q, ожидается /certs/ca.pem", cfg.CACertPath)
	}
	if cfg.ReasonerModel != "gemini-2.5-pro" {
		t.Errorf("ReasonerModel = %q, ожидается gemini-2.5-pro", cfg.ReasonerModel)
	}
	if cfg.ReasonerTimeout != 90*time.Second {
		t.Errorf("ReasonerTimeout = %v, ожидается 90s", cfg.ReasonerTimeout)
	}
	if cfg.InsightCacheSize != 256 {
		t.Errorf("InsightCacheSize = %d, ожидается 256", cfg.InsightCacheSize)
	}
	if cfg.InsightCacheTTL != 5*time.Minute {
		t.Errorf("InsightCacheTTL = %v, ожидается 5m", cfg.InsightCacheTTL)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 10s", cfg.ShutdownTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	requiredVars := []string{
		"LS_DB_HOST", "LS_DB_NAME", "LS_DB_USER", "LS_DB_PASSWORD",
		"LS_JWT_JWKS_URL", "LS_REASONER_URL", "LS_REASONER_API_KEY",
	}

	for _, missing := range requiredVars {
		t.Run(missing, func(t *testing.T) {
			envs := minimalEnvs()
			delete(envs, missing)
			// Очищаем все переменные окружения
			for k := range minimalEnvs() {
				os.Unsetenv(k)
			}
			setEnvs(t, envs)

			_, err := Load()
			if err == nil {
				t.Errorf("Load() не вернул ошибку при отсутствии %s", missing)
			}
		})
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"ноль", "0"},
		{"выше диапазона", "70000"},
		{"не число", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envs := minimalEnvs()
			envs["LS_PORT"] = tt.value
			for k := range minimalEnvs() {
				os.Unsetenv(k)
			}
			setEnvs(t, envs)

			_, err := Load()
			if err == nil {
				t.Errorf("Load() не вернул ошибку при LS_PORT=%q", tt.value)
			}
		})
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	envs := minimalEnvs()
	envs["LS_LOG_LEVEL"] = "verbose"
	for k := range minimalEnvs() {
		os.Unsetenv(k)
	}
	setEnvs(t, envs)

	_, err := Load()
	if err == nil {
		t.Error("Load() не вернул ошибку при LS_LOG_LEVEL=verbose")
	}
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	envs := minimalEnvs()
	envs["LS_LOG_FORMAT"] = "xml"
	for k := range minimalEnvs() {
		os.Unsetenv(k)
	}
	setEnvs(t, envs)

	_, err := Load()
	if err == nil {
		t.Error("Load() не вернул ошибку при LS_LOG_FORMAT=xml")
	}
}

func TestLoad_InvalidSSLMode(t *testing.T) {
	envs := minimalEnvs()
	envs["LS_DB_SSL_MODE"] = "prefer"
	for k := range minimalEnvs() {
		os.Unsetenv(k)
	}
	setEnvs(t, envs)

	_, err := Load()
	if err == nil {
		t.Error("Load() не вернул ошибку при LS_DB_SSL_MODE=prefer")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	envs := minimalEnvs()
	envs["LS_REASONER_TIMEOUT"] = "abc"
	for k := range minimalEnvs() {
		os.Unsetenv(k)
	}
	setEnvs(t, envs)

	_, err := Load()
	if err == nil {
		t.Error("Load() не вернул ошибку при LS_REASONER_TIMEOUT=abc")
	}
}

func TestLoad_InvalidCacheSize(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"ноль", "0"},
		{"отрицательный", "-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envs := minimalEnvs()
			envs["LS_INSIGHT_CACHE_SIZE"] = tt.value
			for k := range minimalEnvs() {
				os.Unsetenv(k)
			}
			setEnvs(t, envs)

			_, err := Load()
			if err == nil {
				t.Errorf("Load() не вернул ошибку при LS_INSIGHT_CACHE_SIZE=%q", tt.value)
			}
		})
	}
}

func TestLoad_ReasonerURLTrailingSlash(t *testing.T) {
	envs := minimalEnvs()
	envs["LS_REASONER_URL"] = "https://generativelanguage.googleapis.com/"
	for k := range minimalEnvs() {
		os.Unsetenv(k)
	}
	setEnvs(t, envs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}
	if cfg.ReasonerURL != "https://generativelanguage.googleapis.com" {
		t.Errorf("ReasonerURL = %q, ожидается без trailing slash", cfg.ReasonerURL)
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.example.com",
		DBPort:     5432,
		DBName:     "logsight",
		DBUser:     "user",
		DBPassword: "pass",
		DBSSLMode:  "disable",
	}
	expected := "host=db.example.com port=5432 dbname=logsight user=user password=pass sslmode=disable"
	if dsn := cfg.DatabaseDSN(); dsn != expected {
		t.Errorf("DatabaseDSN() = %q, ожидается %q", dsn, expected)
	}
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name   string
		format string
	}{
		{"json", "json"},
		{"text", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				LogLevel:  slog.LevelInfo,
				LogFormat: tt.format,
			}
			logger := SetupLogger(cfg)
			if logger == nil {
				t.Error("SetupLogger() вернул nil")
			}
		})
	}
}
