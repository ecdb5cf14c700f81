// Пакет reasoner — HTTP-клиент внешнего сервиса анализа логов
// (Gemini-совместимый API generateContent).
// Поддерживает TLS с кастомным CA (LS_CA_CERT_PATH).
package reasoner

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bigkaa/logsight/internal/domain/model"
)

// generateRequest — тело запроса generateContent.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
}

// generateResponse — ответ generateContent. Нас интересует только
// текст первого кандидата.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client — клиент сервиса анализа.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// New создаёт клиент сервиса анализа.
// caCertPath — путь к CA-сертификату для TLS (пустая строка — стандартный пул).
func New(baseURL, apiKey, model string, timeout time.Duration, caCertPath string, logger *slog.Logger) (*Client, error) {
	httpClient := &http.Client{Timeout: timeout}

	if caCertPath != "" {
		tlsConfig, err := buildTLSConfig(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("загрузка CA-сертификата reasoner: %w", err)
		}
		httpClient.Transport = &http.Transport{
			TLSClientConfig: tlsConfig,
		}
		logger.Info("CA-сертификат reasoner добавлен в пул доверия",
			slog.String("ca_cert", caCertPath),
		)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		timeout:    timeout,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "reasoner_client")),
	}, nil
}

// buildTLSConfig создаёт TLS-конфигурацию с кастомным CA.
func buildTLSConfig(caCertPath string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	caCertPool, err := x509.SystemCertPool()
	if err != nil {
		caCertPool = x509.NewCertPool()
	}
	caCertPool.AppendCertsFromPEM(caCert)

	return &tls.Config{
		RootCAs: caCertPool,
	}, nil
}

// BaseURL возвращает базовый URL сервиса анализа (для мониторинга зависимостей).
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Analyze отправляет записи журнала сервису анализа и возвращает
// проверенный список находок. Ответ, не прошедший валидацию по схеме,
// считается ошибкой вызова.
func (c *Client) Analyze(ctx context.Context, fingerprint string, entries []model.LogEntry) ([]model.Insight, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt, err := buildPrompt(entries)
	if err != nil {
		return nil, fmt.Errorf("сериализация записей журнала: %w", err)
	}

	reqBody := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			Temperature:      0,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("сериализация запроса generateContent: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("создание запроса generateContent: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос generateContent: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("сервис анализа вернул статус %d: %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("декодирование ответа generateContent: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("сервис анализа вернул пустой ответ")
	}

	text := genResp.Candidates[0].Content.Parts[0].Text

	insights, err := ParseInsights([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("валидация ответа сервиса анализа: %w", err)
	}

	c.logger.Debug("Анализ выполнен",
		slog.String("fingerprint", fingerprint),
		slog.Int("entries", len(entries)),
		slog.Int("insights", len(insights)),
		slog.Duration("duration", time.Since(start)),
	)

	return insights, nil
}

// promptEntry — запись журнала в том виде, в котором она передаётся
// сервису анализа: JSON-объект со всеми полями, включая referer.
type promptEntry struct {
	ID        int64   `json:"id"`
	Timestamp string  `json:"timestamp"`
	IP        string  `json:"ip"`
	Method    string  `json:"method"`
	URI       string  `json:"uri"`
	Status    int     `json:"status"`
	Bytes     int64   `json:"bytes"`
	UserAgent string  `json:"user_agent"`
	Referer   *string `json:"referer"`
}

// buildPrompt собирает текст запроса: инструкция + записи журнала
// JSON-массивом, с идентификаторами, чтобы находки могли на них ссылаться.
func buildPrompt(entries []model.LogEntry) (string, error) {
	wire := make([]promptEntry, len(entries))
	for i, e := range entries {
		wire[i] = promptEntry{
			ID:        e.ID,
			Timestamp: e.Timestamp.Format(time.RFC3339),
			IP:        e.IP,
			Method:    e.Method,
			URI:       e.URI,
			Status:    e.Status,
			Bytes:     e.Bytes,
			UserAgent: e.UserAgent,
			Referer:   e.Referer,
		}
	}

	serialized, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("You are a web server access log analyst. ")
	sb.WriteString("Analyze the log entries below and return a JSON array of findings. ")
	sb.WriteString("Each finding is an object with fields: ")
	sb.WriteString(`"type" (one of: security, anomaly, performance), `)
	sb.WriteString(`"title", "description", "severity" (one of: low, medium, high), `)
	sb.WriteString(`"recommendation", "confidence" (integer 0-100), `)
	sb.WriteString(`"anomaly_logs" (array of log entry ids involved, may be empty). `)
	sb.WriteString("Return only the JSON array, no prose. ")
	sb.WriteString("If nothing noteworthy is found, return an empty array.\n\n")
	sb.WriteString("Log entries (JSON array):\n")
	sb.Write(serialized)

	return sb.String(), nil
}
