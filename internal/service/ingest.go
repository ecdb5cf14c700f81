// ingest.go — сервис приёма файлов логов.
// Дедупликация по SHA-256 fingerprint содержимого, идемпотентная
// атомарная загрузка: файл и все его записи в одной транзакции.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/bigkaa/logsight/internal/domain/model"
	"github.com/bigkaa/logsight/internal/parser"
	"github.com/bigkaa/logsight/internal/repository"
)

// Метрики приёма файлов.
var (
	filesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ls_files_ingested_total",
		Help: "Количество принятых новых файлов",
	})
	filesDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ls_files_deduplicated_total",
		Help: "Количество загрузок, совпавших с уже принятым файлом",
	})
	logLinesParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ls_log_lines_parsed_total",
		Help: "Количество успешно разобранных строк логов",
	})
	logLinesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ls_log_lines_dropped_total",
		Help: "Количество строк, не прошедших грамматику и отброшенных",
	})
)

// IngestResult — результат приёма файла.
type IngestResult struct {
	// File — запись файла (новая или ранее загруженная)
	File *model.FileRecord
	// Created — true, если файл принят впервые
	Created bool
	// ParsedLines — количество сохранённых записей (0 при дедупликации)
	ParsedLines int
	// DroppedLines — количество отброшенных строк (0 при дедупликации)
	DroppedLines int
}

// TxRunner выполняет функцию внутри транзакции БД.
// Реализуется repository.TxRunner.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// IngestService — сервис приёма файлов логов.
type IngestService struct {
	fileRepo repository.FileRepository
	logRepo  repository.LogEntryRepository
	userRepo repository.UserRepository
	txRunner TxRunner
	group    singleflight.Group
	logger   *slog.Logger
}

// NewIngestService создаёт сервис приёма.
func NewIngestService(
	fileRepo repository.FileRepository,
	logRepo repository.LogEntryRepository,
	userRepo repository.UserRepository,
	txRunner TxRunner,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		fileRepo: fileRepo,
		logRepo:  logRepo,
		userRepo: userRepo,
		txRunner: txRunner,
		logger:   logger.With(slog.String("component", "ingest_service")),
	}
}

// Ingest принимает файл лога. Возвращает существующую запись при
// повторной загрузке того же содержимого (Created=false) независимо
// от имени файла и владельца.
//
// Конкурентные загрузки одного содержимого схлопываются: внутри
// процесса через singleflight, между процессами через уникальный
// ключ fingerprint в БД (проигравший гонку перечитывает победителя).
func (s *IngestService) Ingest(ctx context.Context, owner *model.User, fileName string, raw []byte) (*IngestResult, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: пустой файл", ErrValidation)
	}

	// Регистрируем владельца из свежих claims
	if err := s.userRepo.Upsert(ctx, owner); err != nil {
		return nil, fmt.Errorf("регистрация пользователя: %w", err)
	}

	fingerprint := parser.Fingerprint(raw)

	// leader выставляется только внутри fn: singleflight выполняет fn
	// ровно у одного вызывающего, остальные разделяют его результат.
	// Флаг shared из Do здесь не годится — он true и у лидера.
	leader := false
	v, err, _ := s.group.Do(fingerprint, func() (interface{}, error) {
		leader = true
		return s.ingestOnce(ctx, owner.ID, fileName, fingerprint, raw)
	})
	if err != nil {
		return nil, err
	}

	result := *(v.(*IngestResult))
	// Участник, разделивший результат лидера, получает дедупликацию
	if !leader && result.Created {
		result.Created = false
		result.ParsedLines = 0
		result.DroppedLines = 0
		filesDeduplicated.Inc()
	}
	return &result, nil
}

// ingestOnce выполняет один проход приёма: проверка дедупликации,
// разбор, атомарная вставка файла и записей.
func (s *IngestService) ingestOnce(ctx context.Context, ownerID, fileName, fingerprint string, raw []byte) (*IngestResult, error) {
	// Дедупликация до разбора: повторное содержимое не парсим
	existing, err := s.fileRepo.GetByFingerprint(ctx, fingerprint)
	if err == nil {
		filesDeduplicated.Inc()
		s.logger.Info("Повторная загрузка, возвращаем существующий файл",
			slog.String("fingerprint", fingerprint),
			slog.String("file_name", fileName),
		)
		return &IngestResult{File: existing, Created: false}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("проверка дедупликации: %w", err)
	}

	parsed := parser.Normalize(raw)

	record := &model.FileRecord{
		Fingerprint: fingerprint,
		OwnerID:     ownerID,
		FileName:    fileName,
		FileSize:    int64(len(raw)),
		UploadedAt:  time.Now().UTC(),
	}

	err = s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
		if err := s.fileRepo.Create(ctx, tx, record); err != nil {
			return err
		}
		return s.logRepo.InsertBatch(ctx, tx, parsed.Entries)
	})
	if err != nil {
		// Проигрыш гонки между процессами: перечитываем победителя
		if errors.Is(err, repository.ErrConflict) {
			winner, getErr := s.fileRepo.GetByFingerprint(ctx, fingerprint)
			if getErr != nil {
				return nil, fmt.Errorf("чтение файла после конфликта: %w", getErr)
			}
			filesDeduplicated.Inc()
			return &IngestResult{File: winner, Created: false}, nil
		}
		return nil, fmt.Errorf("приём файла: %w", err)
	}

	filesIngested.Inc()
	logLinesParsed.Add(float64(len(parsed.Entries)))
	logLinesDropped.Add(float64(parsed.Dropped))

	s.logger.Info("Файл принят",
		slog.String("fingerprint", fingerprint),
		slog.String("file_name", fileName),
		slog.String("owner_id", ownerID),
		slog.Int("parsed_lines", len(parsed.Entries)),
		slog.Int("dropped_lines", parsed.Dropped),
	)

	return &IngestResult{
		File:         record,
		Created:      true,
		ParsedLines:  len(parsed.Entries),
		DroppedLines: parsed.Dropped,
	}, nil
}

// GetFile возвращает файл владельца по fingerprint.
// Чужой или несуществующий файл — ErrNotFound.
func (s *IngestService) GetFile(ctx context.Context, fingerprint, ownerID string) (*model.FileRecord, error) {
	f, err := s.fileRepo.GetOwned(ctx, fingerprint, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение файла: %w", err)
	}
	return f, nil
}

// ListFiles возвращает файлы владельца с пагинацией, новые первыми.
func (s *IngestService) ListFiles(ctx context.Context, ownerID string, limit, offset int) ([]*model.FileRecord, int, error) {
	files, err := s.fileRepo.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("получение списка файлов: %w", err)
	}

	total, err := s.fileRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("подсчёт файлов: %w", err)
	}

	return files, total, nil
}

// ListLogs возвращает записи файла владельца с пагинацией в порядке вставки.
func (s *IngestService) ListLogs(ctx context.Context, fingerprint, ownerID string, limit, offset int) ([]model.LogEntry, int, error) {
	// Проверка владения: чужой файл неотличим от несуществующего
	if _, err := s.fileRepo.GetOwned(ctx, fingerprint, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("проверка владения файлом: %w", err)
	}

	entries, err := s.logRepo.ListByFingerprint(ctx, fingerprint, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("получение записей лога: %w", err)
	}

	total, err := s.logRepo.CountByFingerprint(ctx, fingerprint)
	if err != nil {
		return nil, 0, fmt.Errorf("подсчёт записей лога: %w", err)
	}

	return entries, total, nil
}
