package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/logsight/internal/domain/model"
)

// UserRepository — интерфейс доступа к таблице users.
// Регистрация и аутентификация — на стороне IdP; локальная запись
// нужна как якорь каскадного удаления owner → files → log_entries /
// insight_sets.
type UserRepository interface {
	// Upsert создаёт пользователя или обновляет username/email из свежих claims.
	Upsert(ctx context.Context, u *model.User) error
	// GetByID возвращает пользователя по идентификатору IdP (sub).
	GetByID(ctx context.Context, id string) (*model.User, error)
	// Delete удаляет пользователя; файлы, записи логов и наборы находок
	// удаляются каскадом.
	Delete(ctx context.Context, id string) error
}

// userRepo — реализация UserRepository.
type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Upsert(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, username, email, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query, u.ID, u.Username, u.Email).Scan(&u.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка upsert пользователя: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, username, email, created_at FROM users WHERE id = $1`

	u := &model.User{}
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
