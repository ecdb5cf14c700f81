// validate.go — валидация ответа сервиса анализа по OpenAPI-схеме.
// Схема закрытая: категории и уровни серьёзности вне перечислений,
// confidence вне диапазона 0-100 отклоняют весь ответ.
package reasoner

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/bigkaa/logsight/internal/domain/model"
)

//go:embed schema.json
var insightSchemaJSON []byte

var (
	insightSchema     *openapi3.Schema
	insightSchemaOnce sync.Once
)

// loadSchema разбирает встроенную схему находок. Схема статическая,
// ошибка разбора означает дефект сборки.
func loadSchema() *openapi3.Schema {
	insightSchemaOnce.Do(func() {
		var s openapi3.Schema
		if err := json.Unmarshal(insightSchemaJSON, &s); err != nil {
			panic(fmt.Sprintf("reasoner: разбор встроенной схемы: %v", err))
		}
		insightSchema = &s
	})
	return insightSchema
}

// ParseInsights разбирает и валидирует JSON-массив находок.
// Возвращает ошибку, если ответ не является валидным JSON или
// не соответствует схеме.
func ParseInsights(raw []byte) ([]model.Insight, error) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("ответ не является валидным JSON: %w", err)
	}

	if err := loadSchema().VisitJSON(value); err != nil {
		return nil, fmt.Errorf("ответ не соответствует схеме находок: %w", err)
	}

	var insights []model.Insight
	if err := json.Unmarshal(raw, &insights); err != nil {
		return nil, fmt.Errorf("декодирование находок: %w", err)
	}
	if insights == nil {
		insights = []model.Insight{}
	}
	for i := range insights {
		if insights[i].AnomalyLogs == nil {
			insights[i].AnomalyLogs = []int64{}
		}
	}

	return insights, nil
}
