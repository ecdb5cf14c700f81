package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/logsight/internal/domain/model"
)

// LogEntryRepository — интерфейс доступа к таблице log_entries.
// Записи вставляются одним батчем сразу после создания файла и далее
// никогда не изменяются; удаление — только каскадом от files.
type LogEntryRepository interface {
	// InsertBatch вставляет записи файла одним батчем в порядке следования.
	// db передаётся явно: батч должен идти в одной транзакции с файлом.
	InsertBatch(ctx context.Context, db DBTX, entries []model.LogEntry) error
	// ListByFingerprint возвращает записи файла в порядке вставки.
	ListByFingerprint(ctx context.Context, fingerprint string, limit, offset int) ([]model.LogEntry, error)
	// ListAllByFingerprint возвращает все записи файла (для анализа).
	ListAllByFingerprint(ctx context.Context, fingerprint string) ([]model.LogEntry, error)
	// CountByFingerprint возвращает количество записей файла.
	CountByFingerprint(ctx context.Context, fingerprint string) (int, error)
}

// logEntryRepo — реализация LogEntryRepository.
type logEntryRepo struct {
	db DBTX
}

// NewLogEntryRepository создаёт репозиторий записей логов.
func NewLogEntryRepository(db DBTX) LogEntryRepository {
	return &logEntryRepo{db: db}
}

// InsertBatch вставляет записи через pgx batch — один round-trip на батч
// вместо запроса на строку.
func (r *logEntryRepo) InsertBatch(ctx context.Context, db DBTX, entries []model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO log_entries (file_fingerprint, ts, ip, method, uri, status, bytes, user_agent, referer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query,
			e.FileFingerprint, e.Timestamp, e.IP, e.Method, e.URI,
			e.Status, e.Bytes, e.UserAgent, e.Referer,
		)
	}

	results := db.SendBatch(ctx, batch)
	defer results.Close()

	for i := range entries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("ошибка вставки записи лога %d: %w", i, err)
		}
	}
	return nil
}

func (r *logEntryRepo) ListByFingerprint(ctx context.Context, fingerprint string, limit, offset int) ([]model.LogEntry, error) {
	query := `
		SELECT id, file_fingerprint, ts, ip, method, uri, status, bytes, user_agent, referer
		FROM log_entries
		WHERE file_fingerprint = $1
		ORDER BY id
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, fingerprint, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записей лога: %w", err)
	}
	defer rows.Close()

	return scanLogEntries(rows)
}

func (r *logEntryRepo) ListAllByFingerprint(ctx context.Context, fingerprint string) ([]model.LogEntry, error) {
	query := `
		SELECT id, file_fingerprint, ts, ip, method, uri, status, bytes, user_agent, referer
		FROM log_entries
		WHERE file_fingerprint = $1
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записей лога: %w", err)
	}
	defer rows.Close()

	return scanLogEntries(rows)
}

func (r *logEntryRepo) CountByFingerprint(ctx context.Context, fingerprint string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM log_entries WHERE file_fingerprint = $1`, fingerprint).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта записей лога: %w", err)
	}
	return count, nil
}

// scanLogEntries сканирует строки результата в срез LogEntry.
func scanLogEntries(rows pgx.Rows) ([]model.LogEntry, error) {
	var result []model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		if err := rows.Scan(
			&e.ID, &e.FileFingerprint, &e.Timestamp, &e.IP, &e.Method, &e.URI,
			&e.Status, &e.Bytes, &e.UserAgent, &e.Referer,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи лога: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
