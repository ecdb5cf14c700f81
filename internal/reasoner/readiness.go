package reasoner

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ReadinessChecker — проверка доступности внешнего сервиса анализа.
// Достаточно любого HTTP-ответа: сервис отвечает — сеть до него есть.
type ReadinessChecker struct {
	baseURL string
	client  *http.Client
}

// NewReadinessChecker создаёт checker доступности сервиса анализа.
func NewReadinessChecker(baseURL string, timeout time.Duration) *ReadinessChecker {
	return &ReadinessChecker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// CheckReady проверяет доступность сервиса анализа.
func (c *ReadinessChecker) CheckReady() (status, message string) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.baseURL+"/", http.NoBody)
	if err != nil {
		return "fail", "ошибка создания запроса: " + err.Error()
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "fail", fmt.Sprintf("сервис анализа недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "degraded", fmt.Sprintf("сервис анализа вернул статус %d", resp.StatusCode)
	}
	return "ok", "сервис анализа доступен"
}
