// files.go — обработчики /api/v1/files endpoints.
// Приём файлов логов: загрузка с дедупликацией, список, метаданные.
package handlers

import (
	"errors"
	"io"
	"net/http"

	apierrors "github.com/bigkaa/logsight/internal/api/errors"
	"github.com/bigkaa/logsight/internal/api/generated"
	"github.com/bigkaa/logsight/internal/api/middleware"
	"github.com/bigkaa/logsight/internal/domain/model"
	"github.com/bigkaa/logsight/internal/service"
)

// UploadFile — POST /api/v1/files.
// Принимает файл access-лога (multipart поле "file"). Повторная загрузка
// того же содержимого возвращает существующую запись со статусом 200.
func (h *APIHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r)
	if owner == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		apierrors.ValidationError(w, "Некорректный multipart запрос: "+err.Error())
		return
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		apierrors.ValidationError(w, "Поле file обязательно")
		return
	}
	defer part.Close()

	raw, err := io.ReadAll(part)
	if err != nil {
		h.logger.Error("Ошибка чтения загружаемого файла", "error", err)
		apierrors.InternalError(w, "Ошибка чтения файла")
		return
	}

	// Отображаемое имя: поле name, если задано, иначе имя из multipart
	fileName := header.Filename
	if name := r.FormValue("name"); name != "" {
		fileName = name
	}

	result, err := h.ingest.Ingest(r.Context(), owner, fileName, raw)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			apierrors.ValidationError(w, err.Error())
			return
		}
		h.logger.Error("Ошибка приёма файла", "file_name", fileName, "error", err)
		apierrors.InternalError(w, "Ошибка приёма файла")
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}

	writeJSON(w, status, mapUploadResult(result))
}

// ListFiles — GET /api/v1/files.
// Возвращает файлы текущего пользователя с пагинацией,
// отсортированные по времени загрузки (новые первыми).
func (h *APIHandler) ListFiles(w http.ResponseWriter, r *http.Request, params generated.ListFilesParams) {
	owner := currentUser(r)
	if owner == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims")
		return
	}

	limit, offset := paginationDefaults(params.Limit, params.Offset)

	files, total, err := h.ingest.ListFiles(r.Context(), owner.ID, limit, offset)
	if err != nil {
		h.logger.Error("Ошибка получения списка файлов", "error", err)
		apierrors.InternalError(w, "Ошибка получения списка файлов")
		return
	}

	items := make([]generated.File, len(files))
	for i, f := range files {
		items[i] = mapFile(f)
	}

	resp := generated.FileListResponse{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetFile — GET /api/v1/files/{fingerprint}.
// Возвращает метаданные файла. Файл другого пользователя неотличим
// от несуществующего (404).
func (h *APIHandler) GetFile(w http.ResponseWriter, r *http.Request, fingerprint string) {
	owner := currentUser(r)
	if owner == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims")
		return
	}

	if !isFingerprint(fingerprint) {
		apierrors.ValidationError(w, "Некорректный fingerprint: ожидается 64 hex-символа")
		return
	}

	f, err := h.ingest.GetFile(r.Context(), fingerprint, owner.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "Файл не найден")
			return
		}
		h.logger.Error("Ошибка получения файла", "fingerprint", fingerprint, "error", err)
		apierrors.InternalError(w, "Ошибка получения файла")
		return
	}

	writeJSON(w, http.StatusOK, mapFile(f))
}

// currentUser извлекает пользователя из claims запроса.
// Возвращает nil, если запрос не прошёл аутентификацию.
func currentUser(r *http.Request) *model.User {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return nil
	}
	return &model.User{
		ID:       claims.Subject,
		Username: claims.PreferredUsername,
		Email:    claims.Email,
	}
}

// --- Маппинг domain → API ---

// mapFile конвертирует domain model в generated API type.
func mapFile(f *model.FileRecord) generated.File {
	return generated.File{
		Fingerprint: f.Fingerprint,
		FileName:    f.FileName,
		FileSize:    f.FileSize,
		OwnerId:     f.OwnerID,
		UploadedAt:  f.UploadedAt,
	}
}

// mapUploadResult конвертирует результат приёма в generated API type.
func mapUploadResult(res *service.IngestResult) generated.UploadResponse {
	return generated.UploadResponse{
		Fingerprint:  res.File.Fingerprint,
		FileName:     res.File.FileName,
		FileSize:     res.File.FileSize,
		OwnerId:      res.File.OwnerID,
		UploadedAt:   res.File.UploadedAt,
		Created:      res.Created,
		ParsedLines:  res.ParsedLines,
		DroppedLines: res.DroppedLines,
	}
}
