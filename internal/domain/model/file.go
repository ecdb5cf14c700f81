// Пакет model — доменные модели Logsight.
package model

import "time"

// FileRecord — запись загруженного файла логов.
// Хранится в таблице files, ключ — fingerprint.
type FileRecord struct {
	// Fingerprint — SHA-256 от сырых байтов файла (hex, 64 символа).
	// Идентичный контент всегда даёт один и тот же fingerprint,
	// независимо от владельца и имени файла.
	Fingerprint string
	// OwnerID — идентификатор владельца (sub из JWT)
	OwnerID string
	// FileName — отображаемое имя файла
	FileName string
	// FileSize — размер файла в байтах
	FileSize int64
	// UploadedAt — время первой успешной загрузки
	UploadedAt time.Time
}
