package middleware

import (
	"strings"
	"testing"
)

// TestNormalizePath — нормализация путей для лейблов метрик.
func TestNormalizePath(t *testing.T) {
	fp := strings.Repeat("ab", 32)

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"health live", "/health/live", "/health/live"},
		{"metrics", "/metrics", "/metrics"},
		{"список файлов", "/api/v1/files", "/api/v1/files"},
		{"файл по fingerprint", "/api/v1/files/" + fp, "/api/v1/files/{fingerprint}"},
		{"записи файла", "/api/v1/files/" + fp + "/logs", "/api/v1/files/{fingerprint}/logs"},
		{"анализ файла", "/api/v1/files/" + fp + "/analyse", "/api/v1/files/{fingerprint}/analyse"},
		{"не hex — без нормализации", "/api/v1/files/not-a-fingerprint", "/api/v1/files/not-a-fingerprint"},
		{"короткий hex — без нормализации", "/api/v1/files/abcdef", "/api/v1/files/abcdef"},
		{"неизвестный суффикс", "/api/v1/files/" + fp + "/unknown", "/api/v1/files/" + fp + "/unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.expected {
				t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.path, got, tt.expected)
			}
		})
	}
}

// TestIsHexFingerprint — распознавание SHA-256 hex.
func TestIsHexFingerprint(t *testing.T) {
	if !isHexFingerprint(strings.Repeat("0", 64)) {
		t.Error("64 hex-символа должны распознаваться")
	}
	if isHexFingerprint(strings.Repeat("0", 63)) {
		t.Error("63 символа не должны распознаваться")
	}
	if isHexFingerprint(strings.Repeat("g", 64)) {
		t.Error("не-hex символы не должны распознаваться")
	}
}
