// logs.go — обработчик записей журнала файла.
package handlers

import (
	"errors"
	"net/http"

	apierrors "github.com/bigkaa/logsight/internal/api/errors"
	"github.com/bigkaa/logsight/internal/api/generated"
	"github.com/bigkaa/logsight/internal/domain/model"
	"github.com/bigkaa/logsight/internal/service"
)

// ListFileLogs — GET /api/v1/files/{fingerprint}/logs.
// Возвращает распарсенные записи файла в порядке следования строк
// в исходном файле. Файл другого пользователя — 404.
func (h *APIHandler) ListFileLogs(w http.ResponseWriter, r *http.Request, fingerprint string, params generated.ListFileLogsParams) {
	owner := currentUser(r)
	if owner == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims")
		return
	}

	if !isFingerprint(fingerprint) {
		apierrors.ValidationError(w, "Некорректный fingerprint: ожидается 64 hex-символа")
		return
	}

	limit, offset := paginationDefaults(params.Limit, params.Offset)

	entries, total, err := h.ingest.ListLogs(r.Context(), fingerprint, owner.ID, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Файл не найден")
			return
		}
		h.logger.Error("Ошибка получения записей лога", "fingerprint", fingerprint, "error", err)
		apierrors.InternalError(w, "Ошибка получения записей лога")
		return
	}

	items := make([]generated.LogEntry, len(entries))
	for i := range entries {
		items[i] = mapLogEntry(&entries[i])
	}

	resp := generated.LogListResponse{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}

	writeJSON(w, http.StatusOK, resp)
}

// mapLogEntry конвертирует domain model в generated API type.
func mapLogEntry(e *model.LogEntry) generated.LogEntry {
	return generated.LogEntry{
		Id:        e.ID,
		Timestamp: e.Timestamp,
		Ip:        e.IP,
		Method:    e.Method,
		Uri:       e.URI,
		Status:    e.Status,
		Bytes:     e.Bytes,
		UserAgent: e.UserAgent,
		Referer:   e.Referer,
	}
}
