package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/logsight/internal/domain/model"
)

// FileRepository — интерфейс доступа к таблице files.
// Файлы content-addressed: ключ — SHA-256 fingerprint сырых байтов.
type FileRepository interface {
	// Create создаёт запись файла. При существующем fingerprint — ErrConflict.
	Create(ctx context.Context, db DBTX, f *model.FileRecord) error
	// GetByFingerprint возвращает файл по fingerprint.
	GetByFingerprint(ctx context.Context, fingerprint string) (*model.FileRecord, error)
	// GetOwned возвращает файл, если он принадлежит owner. Иначе ErrNotFound.
	GetOwned(ctx context.Context, fingerprint, ownerID string) (*model.FileRecord, error)
	// ListByOwner возвращает файлы владельца, новые первыми.
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*model.FileRecord, error)
	// CountByOwner возвращает количество файлов владельца.
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

// fileRepo — реализация FileRepository.
type fileRepo struct {
	db DBTX
}

// NewFileRepository создаёт репозиторий файлов.
func NewFileRepository(db DBTX) FileRepository {
	return &fileRepo{db: db}
}

// Create вставляет запись файла. db передаётся явно, чтобы вставка
// выполнялась в той же транзакции, что и батч log_entries.
func (r *fileRepo) Create(ctx context.Context, db DBTX, f *model.FileRecord) error {
	query := `
		INSERT INTO files (fingerprint, owner_id, file_name, file_size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := db.Exec(ctx, query,
		f.Fingerprint, f.OwnerID, f.FileName, f.FileSize, f.UploadedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: файл с fingerprint %s уже загружен", ErrConflict, f.Fingerprint)
		}
		return fmt.Errorf("ошибка создания файла: %w", err)
	}
	return nil
}

func (r *fileRepo) GetByFingerprint(ctx context.Context, fingerprint string) (*model.FileRecord, error) {
	query := `
		SELECT fingerprint, owner_id, file_name, file_size, uploaded_at
		FROM files
		WHERE fingerprint = $1`

	f := &model.FileRecord{}
	err := r.db.QueryRow(ctx, query, fingerprint).Scan(
		&f.Fingerprint, &f.OwnerID, &f.FileName, &f.FileSize, &f.UploadedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения файла: %w", err)
	}
	return f, nil
}

func (r *fileRepo) GetOwned(ctx context.Context, fingerprint, ownerID string) (*model.FileRecord, error) {
	query := `
		SELECT fingerprint, owner_id, file_name, file_size, uploaded_at
		FROM files
		WHERE fingerprint = $1 AND owner_id = $2`

	f := &model.FileRecord{}
	err := r.db.QueryRow(ctx, query, fingerprint, ownerID).Scan(
		&f.Fingerprint, &f.OwnerID, &f.FileName, &f.FileSize, &f.UploadedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения файла владельца: %w", err)
	}
	return f, nil
}

func (r *fileRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*model.FileRecord, error) {
	query := `
		SELECT fingerprint, owner_id, file_name, file_size, uploaded_at
		FROM files
		WHERE owner_id = $1
		ORDER BY uploaded_at DESC, fingerprint
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка файлов: %w", err)
	}
	defer rows.Close()

	var result []*model.FileRecord
	for rows.Next() {
		f := &model.FileRecord{}
		if err := rows.Scan(
			&f.Fingerprint, &f.OwnerID, &f.FileName, &f.FileSize, &f.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования файла: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *fileRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM files WHERE owner_id = $1`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта файлов: %w", err)
	}
	return count, nil
}
