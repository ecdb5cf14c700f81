package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/logsight/internal/domain/model"
)

// InsightSetRepository — интерфейс доступа к таблице insight_sets.
// На один fingerprint — не более одного набора (UNIQUE constraint):
// при конкурентном анализе побеждает первая вставка, проигравший
// получает ErrConflict и перечитывает набор победителя.
type InsightSetRepository interface {
	// Create сохраняет набор находок. При существующем fingerprint — ErrConflict.
	Create(ctx context.Context, set *model.InsightSet) error
	// GetByFingerprint возвращает набор находок файла.
	GetByFingerprint(ctx context.Context, fingerprint string) (*model.InsightSet, error)
}

// insightSetRepo — реализация InsightSetRepository.
type insightSetRepo struct {
	db DBTX
}

// NewInsightSetRepository создаёт репозиторий наборов находок.
func NewInsightSetRepository(db DBTX) InsightSetRepository {
	return &insightSetRepo{db: db}
}

func (r *insightSetRepo) Create(ctx context.Context, set *model.InsightSet) error {
	insights, err := json.Marshal(set.Insights)
	if err != nil {
		return fmt.Errorf("ошибка сериализации находок: %w", err)
	}

	query := `
		INSERT INTO insight_sets (id, file_fingerprint, insights, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err = r.db.Exec(ctx, query, set.ID, set.FileFingerprint, insights, set.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: набор находок для %s уже существует", ErrConflict, set.FileFingerprint)
		}
		return fmt.Errorf("ошибка сохранения набора находок: %w", err)
	}
	return nil
}

func (r *insightSetRepo) GetByFingerprint(ctx context.Context, fingerprint string) (*model.InsightSet, error) {
	query := `
		SELECT id, file_fingerprint, insights, created_at
		FROM insight_sets
		WHERE file_fingerprint = $1`

	set := &model.InsightSet{}
	var insights []byte
	err := r.db.QueryRow(ctx, query, fingerprint).Scan(
		&set.ID, &set.FileFingerprint, &insights, &set.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения набора находок: %w", err)
	}

	if err := json.Unmarshal(insights, &set.Insights); err != nil {
		return nil, fmt.Errorf("ошибка десериализации находок: %w", err)
	}
	if set.Insights == nil {
		set.Insights = []model.Insight{}
	}
	return set, nil
}
