package model

import "time"

// InsightCategory — категория находки. Закрытое перечисление.
type InsightCategory string

const (
	CategorySecurity    InsightCategory = "security"
	CategoryAnomaly     InsightCategory = "anomaly"
	CategoryPerformance InsightCategory = "performance"
)

// InsightSeverity — серьёзность находки. Закрытое перечисление.
type InsightSeverity string

const (
	SeverityLow    InsightSeverity = "low"
	SeverityMedium InsightSeverity = "medium"
	SeverityHigh   InsightSeverity = "high"
)

// Insight — одна находка анализа логов.
type Insight struct {
	// Category — security, anomaly или performance
	Category InsightCategory `json:"type"`
	// Title — краткий заголовок
	Title string `json:"title"`
	// Description — что произошло
	Description string `json:"description"`
	// Severity — low, medium или high
	Severity InsightSeverity `json:"severity"`
	// Recommendation — рекомендуемое действие
	Recommendation string `json:"recommendation"`
	// Confidence — уверенность модели, целое 0-100
	Confidence int `json:"confidence"`
	// AnomalyLogs — ID записей log_entries, на которых основана находка
	AnomalyLogs []int64 `json:"anomaly_logs"`
}

// InsightSet — кэшированный результат анализа одного файла.
// Хранится в таблице insight_sets, fingerprint уникален: на один файл
// существует не более одного набора находок.
type InsightSet struct {
	// ID — UUID набора
	ID string
	// FileFingerprint — fingerprint проанализированного файла
	FileFingerprint string
	// Insights — упорядоченный список находок (может быть пустым)
	Insights []Insight
	// CreatedAt — время создания набора
	CreatedAt time.Time
}
