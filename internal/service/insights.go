// insights.go — сервис анализа файлов логов.
// На каждый fingerprint ровно один набор находок: повторный анализ
// возвращает сохранённый набор из кэша или БД, не обращаясь к
// внешнему сервису. Неудачный анализ ничего не сохраняет и может
// быть повторён.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/bigkaa/logsight/internal/domain/model"
	"github.com/bigkaa/logsight/internal/repository"
)

// Метрики анализа.
var analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ls_analyses_total",
	Help: "Количество запусков анализа по результату",
}, []string{"outcome"})

// Analyzer — внешний сервис анализа записей журнала.
type Analyzer interface {
	Analyze(ctx context.Context, fingerprint string, entries []model.LogEntry) ([]model.Insight, error)
}

// InsightService — сервис анализа файлов.
type InsightService struct {
	insightRepo repository.InsightSetRepository
	fileRepo    repository.FileRepository
	logRepo     repository.LogEntryRepository
	analyzer    Analyzer
	cache       *InsightCache
	group       singleflight.Group
	logger      *slog.Logger
}

// NewInsightService создаёт сервис анализа.
func NewInsightService(
	insightRepo repository.InsightSetRepository,
	fileRepo repository.FileRepository,
	logRepo repository.LogEntryRepository,
	analyzer Analyzer,
	cache *InsightCache,
	logger *slog.Logger,
) *InsightService {
	return &InsightService{
		insightRepo: insightRepo,
		fileRepo:    fileRepo,
		logRepo:     logRepo,
		analyzer:    analyzer,
		cache:       cache,
		logger:      logger.With(slog.String("component", "insight_service")),
	}
}

// Analyse возвращает набор находок для файла владельца.
// Порядок поиска: кэш, БД, вызов внешнего сервиса. Конкурентные
// запросы одного fingerprint схлопываются: внутри процесса через
// singleflight, между процессами через уникальный ключ fingerprint
// в БД (проигравший перечитывает набор победителя).
func (s *InsightService) Analyse(ctx context.Context, fingerprint, ownerID string) (*model.InsightSet, error) {
	// Чужой или несуществующий файл неотличимы для вызывающего
	if _, err := s.fileRepo.GetOwned(ctx, fingerprint, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("проверка владения файлом: %w", err)
	}

	if set, ok := s.cache.Get(fingerprint); ok {
		return set, nil
	}

	v, err, _ := s.group.Do(fingerprint, func() (interface{}, error) {
		return s.analyseOnce(ctx, fingerprint)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.InsightSet), nil
}

// analyseOnce выполняет один проход анализа: БД, внешний сервис,
// сохранение с разрешением гонки по уникальному ключу.
func (s *InsightService) analyseOnce(ctx context.Context, fingerprint string) (*model.InsightSet, error) {
	// Сохранённый набор: внешний сервис не вызывается повторно
	existing, err := s.insightRepo.GetByFingerprint(ctx, fingerprint)
	if err == nil {
		s.cache.Add(fingerprint, existing)
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("поиск сохранённого набора: %w", err)
	}

	// Файл без единой валидной записи тоже анализируется:
	// пустой вход — валидный вход для внешнего сервиса
	entries, err := s.logRepo.ListAllByFingerprint(ctx, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("получение записей для анализа: %w", err)
	}

	start := time.Now()
	insights, err := s.analyzer.Analyze(ctx, fingerprint, entries)
	if err != nil {
		analysesTotal.WithLabelValues("error").Inc()
		s.logger.Error("Анализ не выполнен",
			slog.String("fingerprint", fingerprint),
			slog.String("error", err.Error()),
		)
		// Ничего не сохраняем: следующий запрос повторит анализ
		return nil, fmt.Errorf("%w: %s", ErrReasonerUnavailable, err.Error())
	}

	set := &model.InsightSet{
		ID:              uuid.NewString(),
		FileFingerprint: fingerprint,
		Insights:        insights,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.insightRepo.Create(ctx, set); err != nil {
		// Проигрыш гонки между процессами: перечитываем победителя
		if errors.Is(err, repository.ErrConflict) {
			winner, getErr := s.insightRepo.GetByFingerprint(ctx, fingerprint)
			if getErr != nil {
				return nil, fmt.Errorf("чтение набора после конфликта: %w", getErr)
			}
			s.cache.Add(fingerprint, winner)
			return winner, nil
		}
		return nil, fmt.Errorf("сохранение набора находок: %w", err)
	}

	analysesTotal.WithLabelValues("ok").Inc()
	s.cache.Add(fingerprint, set)

	s.logger.Info("Анализ выполнен и сохранён",
		slog.String("fingerprint", fingerprint),
		slog.String("insight_set_id", set.ID),
		slog.Int("entries", len(entries)),
		slog.Int("insights", len(set.Insights)),
		slog.Duration("duration", time.Since(start)),
	)

	return set, nil
}
