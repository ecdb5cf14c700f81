// insights.go — обработчик анализа файлов.
package handlers

import (
	"errors"
	"net/http"

	apierrors "github.com/bigkaa/logsight/internal/api/errors"
	"github.com/bigkaa/logsight/internal/api/generated"
	"github.com/bigkaa/logsight/internal/domain/model"
	"github.com/bigkaa/logsight/internal/service"
)

// AnalyseFile — POST /api/v1/files/{fingerprint}/analyse.
// Запускает анализ файла внешним сервисом. Повторный вызов для того же
// fingerprint возвращает сохранённый набор находок без обращения
// к внешнему сервису.
func (h *APIHandler) AnalyseFile(w http.ResponseWriter, r *http.Request, fingerprint string) {
	owner := currentUser(r)
	if owner == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims")
		return
	}

	if !isFingerprint(fingerprint) {
		apierrors.ValidationError(w, "Некорректный fingerprint: ожидается 64 hex-символа")
		return
	}

	set, err := h.insights.Analyse(r.Context(), fingerprint, owner.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Файл не найден")
			return
		}
		if errors.Is(err, service.ErrReasonerUnavailable) {
			h.logger.Warn("Внешний сервис анализа недоступен", "fingerprint", fingerprint, "error", err)
			apierrors.ReasonerUnavailable(w, "Внешний сервис анализа недоступен")
			return
		}
		h.logger.Error("Ошибка анализа файла", "fingerprint", fingerprint, "error", err)
		apierrors.InternalError(w, "Ошибка анализа файла")
		return
	}

	writeJSON(w, http.StatusOK, mapInsightSet(set))
}

// mapInsightSet конвертирует domain model в generated API type.
func mapInsightSet(set *model.InsightSet) generated.InsightSet {
	items := make([]generated.Insight, len(set.Insights))
	for i, ins := range set.Insights {
		items[i] = generated.Insight{
			Type:           generated.InsightType(ins.Category),
			Title:          ins.Title,
			Description:    ins.Description,
			Severity:       generated.InsightSeverity(ins.Severity),
			Recommendation: ins.Recommendation,
			Confidence:     ins.Confidence,
		}
		if len(ins.AnomalyLogs) > 0 {
			logs := ins.AnomalyLogs
			items[i].AnomalyLogs = &logs
		}
	}

	return generated.InsightSet{
		Id:              set.ID,
		FileFingerprint: set.FileFingerprint,
		Insights:        items,
		CreatedAt:       set.CreatedAt,
	}
}
