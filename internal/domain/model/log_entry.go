package model

import "time"

// LogEntry — одна распарсенная строка access-лога.
// Хранится в таблице log_entries, принадлежит ровно одному FileRecord.
// Записи файла вставляются одним атомарным батчем и не изменяются.
type LogEntry struct {
	// ID — последовательный идентификатор (bigserial, присваивается при вставке)
	ID int64
	// FileFingerprint — fingerprint родительского файла
	FileFingerprint string
	// Timestamp — время запроса, нормализованное к UTC без смещения
	Timestamp time.Time
	// IP — адрес источника запроса
	IP string
	// Method — HTTP-метод
	Method string
	// URI — запрошенный путь
	URI string
	// Status — HTTP статус-код
	Status int
	// Bytes — размер ответа в байтах
	Bytes int64
	// UserAgent — строка User-Agent
	UserAgent string
	// Referer — опциональный referer (в грамматике nginx combined без
	// referer всегда nil)
	Referer *string
}
