package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/logsight/internal/config"
	"github.com/bigkaa/logsight/internal/database"
	"github.com/bigkaa/logsight/internal/domain/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// setupTestDB запускает PostgreSQL контейнер, применяет миграции.
// Возвращает pgxpool.Pool и функцию очистки.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("logsight_test"),
		postgres.WithUsername("logsight"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	// Настраиваем env для config.Load()
	os.Setenv("LS_DB_HOST", host)
	os.Setenv("LS_DB_PORT", port.Port())
	os.Setenv("LS_DB_NAME", "logsight_test")
	os.Setenv("LS_DB_USER", "logsight")
	os.Setenv("LS_DB_PASSWORD", "test-password")
	os.Setenv("LS_DB_SSL_MODE", "disable")
	os.Setenv("LS_JWT_JWKS_URL", "http://localhost:8080/realms/test/protocol/openid-connect/certs")
	os.Setenv("LS_REASONER_URL", "http://localhost:9090")
	os.Setenv("LS_REASONER_API_KEY", "test")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Применяем миграции
	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	// Подключаемся
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

// testFingerprint генерирует уникальный fingerprint (64 hex-символа).
func testFingerprint(t *testing.T) string {
	t.Helper()
	sum := sha256.Sum256([]byte(uuid.NewString()))
	return hex.EncodeToString(sum[:])
}

// createTestUser создаёт пользователя-владельца для тестовых файлов.
func createTestUser(t *testing.T, pool *pgxpool.Pool) *model.User {
	t.Helper()
	u := &model.User{
		ID:       uuid.NewString(),
		Username: "alice",
		Email:    "alice@example.com",
	}
	if err := NewUserRepository(pool).Upsert(context.Background(), u); err != nil {
		t.Fatalf("Upsert() ошибка: %v", err)
	}
	return u
}

// createTestFile создаёт запись файла с уникальным fingerprint.
func createTestFile(t *testing.T, pool *pgxpool.Pool, ownerID string) *model.FileRecord {
	t.Helper()
	f := &model.FileRecord{
		Fingerprint: testFingerprint(t),
		OwnerID:     ownerID,
		FileName:    "access.log",
		FileSize:    2326,
		UploadedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := NewFileRepository(pool).Create(context.Background(), pool, f); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	return f
}

// testEntries строит записи лога для файла.
func testEntries(fingerprint string, n int) []model.LogEntry {
	entries := make([]model.LogEntry, n)
	base := time.Date(2023, 10, 10, 13, 55, 36, 0, time.UTC)
	for i := range entries {
		entries[i] = model.LogEntry{
			FileFingerprint: fingerprint,
			Timestamp:       base.Add(time.Duration(i) * time.Second),
			IP:              "192.168.1.10",
			Method:          "GET",
			URI:             "/index.html",
			Status:          200,
			Bytes:           2326,
			UserAgent:       "Mozilla/5.0",
		}
	}
	return entries
}

// --- Тесты UserRepository ---

func TestUserUpsert(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	u := createTestUser(t, pool)
	if u.CreatedAt.IsZero() {
		t.Error("CreatedAt не установлен")
	}

	// Повторный upsert обновляет username/email, created_at сохраняется
	updated := &model.User{ID: u.ID, Username: "alice-renamed", Email: "renamed@example.com"}
	if err := repo.Upsert(ctx, updated); err != nil {
		t.Fatalf("Повторный Upsert() ошибка: %v", err)
	}
	if !updated.CreatedAt.Equal(u.CreatedAt) {
		t.Errorf("CreatedAt изменился: %v != %v", updated.CreatedAt, u.CreatedAt)
	}

	got, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if got.Username != "alice-renamed" {
		t.Errorf("Username = %q, ожидали %q", got.Username, "alice-renamed")
	}

	// Несуществующий пользователь — ErrNotFound
	if _, err := repo.GetByID(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(unknown) = %v, ожидали ErrNotFound", err)
	}
}

// --- Тесты FileRepository ---

func TestFileCreateAndConflict(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewFileRepository(pool)

	owner := createTestUser(t, pool)
	f := createTestFile(t, pool, owner.ID)

	// Повторная вставка того же fingerprint — ErrConflict,
	// даже с другим владельцем и именем
	other := createTestUser(t, pool)
	dup := &model.FileRecord{
		Fingerprint: f.Fingerprint,
		OwnerID:     other.ID,
		FileName:    "copy.log",
		FileSize:    f.FileSize,
		UploadedAt:  time.Now().UTC(),
	}
	if err := repo.Create(ctx, pool, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("Create(dup) = %v, ожидали ErrConflict", err)
	}

	// GetByFingerprint возвращает запись победителя
	got, err := repo.GetByFingerprint(ctx, f.Fingerprint)
	if err != nil {
		t.Fatalf("GetByFingerprint() ошибка: %v", err)
	}
	if got.OwnerID != owner.ID || got.FileName != "access.log" {
		t.Errorf("GetByFingerprint() = %+v, ожидали запись первой загрузки", got)
	}
}

func TestFileGetOwned(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewFileRepository(pool)

	owner := createTestUser(t, pool)
	stranger := createTestUser(t, pool)
	f := createTestFile(t, pool, owner.ID)

	if _, err := repo.GetOwned(ctx, f.Fingerprint, owner.ID); err != nil {
		t.Fatalf("GetOwned(owner) ошибка: %v", err)
	}

	// Чужой файл неотличим от несуществующего
	if _, err := repo.GetOwned(ctx, f.Fingerprint, stranger.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetOwned(stranger) = %v, ожидали ErrNotFound", err)
	}
	if _, err := repo.GetOwned(ctx, testFingerprint(t), owner.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetOwned(unknown) = %v, ожидали ErrNotFound", err)
	}
}

func TestFileListByOwner(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewFileRepository(pool)

	owner := createTestUser(t, pool)
	for range 3 {
		createTestFile(t, pool, owner.ID)
	}

	total, err := repo.CountByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("CountByOwner() ошибка: %v", err)
	}
	if total != 3 {
		t.Errorf("CountByOwner() = %d, ожидали 3", total)
	}

	files, err := repo.ListByOwner(ctx, owner.ID, 2, 0)
	if err != nil {
		t.Fatalf("ListByOwner() ошибка: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("ListByOwner(limit=2) вернул %d, ожидали 2", len(files))
	}

	rest, err := repo.ListByOwner(ctx, owner.ID, 2, 2)
	if err != nil {
		t.Fatalf("ListByOwner(offset=2) ошибка: %v", err)
	}
	if len(rest) != 1 {
		t.Errorf("ListByOwner(offset=2) вернул %d, ожидали 1", len(rest))
	}
}

// --- Тесты LogEntryRepository ---

func TestLogEntriesBatchInsertOrder(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewLogEntryRepository(pool)

	owner := createTestUser(t, pool)
	f := createTestFile(t, pool, owner.ID)

	entries := testEntries(f.Fingerprint, 5)
	referer := "https://example.com/"
	entries[2].Referer = &referer

	if err := repo.InsertBatch(ctx, pool, entries); err != nil {
		t.Fatalf("InsertBatch() ошибка: %v", err)
	}

	count, err := repo.CountByFingerprint(ctx, f.Fingerprint)
	if err != nil {
		t.Fatalf("CountByFingerprint() ошибка: %v", err)
	}
	if count != 5 {
		t.Errorf("CountByFingerprint() = %d, ожидали 5", count)
	}

	// Порядок выдачи соответствует порядку строк в файле
	got, err := repo.ListAllByFingerprint(ctx, f.Fingerprint)
	if err != nil {
		t.Fatalf("ListAllByFingerprint() ошибка: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("ListAllByFingerprint() вернул %d, ожидали 5", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].ID <= got[i-1].ID {
			t.Errorf("Нарушен порядок: id[%d]=%d <= id[%d]=%d", i, got[i].ID, i-1, got[i-1].ID)
		}
		if !got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Errorf("Нарушен порядок timestamp на позиции %d", i)
		}
	}
	if got[2].Referer == nil || *got[2].Referer != referer {
		t.Errorf("Referer не сохранён: %v", got[2].Referer)
	}

	// Пагинация
	page, err := repo.ListByFingerprint(ctx, f.Fingerprint, 2, 3)
	if err != nil {
		t.Fatalf("ListByFingerprint() ошибка: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("ListByFingerprint(limit=2, offset=3) вернул %d, ожидали 2", len(page))
	}
	if len(page) == 2 && page[0].ID != got[3].ID {
		t.Errorf("Смещение: первая запись id=%d, ожидали %d", page[0].ID, got[3].ID)
	}
}

// --- Тесты InsightSetRepository ---

func TestInsightSetUnique(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewInsightSetRepository(pool)

	owner := createTestUser(t, pool)
	f := createTestFile(t, pool, owner.ID)

	set := &model.InsightSet{
		ID:              uuid.NewString(),
		FileFingerprint: f.Fingerprint,
		Insights: []model.Insight{
			{
				Category:       model.CategorySecurity,
				Title:          "Подбор пароля",
				Description:    "Серия 401 с одного IP",
				Severity:       model.SeverityHigh,
				Recommendation: "Заблокировать IP",
				Confidence:     92,
				AnomalyLogs:    []int64{1, 2, 3},
			},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := repo.Create(ctx, set); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}

	// Второй набор для того же fingerprint — ErrConflict
	loser := &model.InsightSet{
		ID:              uuid.NewString(),
		FileFingerprint: f.Fingerprint,
		Insights:        []model.Insight{},
		CreatedAt:       time.Now().UTC(),
	}
	if err := repo.Create(ctx, loser); !errors.Is(err, ErrConflict) {
		t.Errorf("Create(loser) = %v, ожидали ErrConflict", err)
	}

	got, err := repo.GetByFingerprint(ctx, f.Fingerprint)
	if err != nil {
		t.Fatalf("GetByFingerprint() ошибка: %v", err)
	}
	if got.ID != set.ID {
		t.Errorf("ID = %q, ожидали набор победителя %q", got.ID, set.ID)
	}
	if len(got.Insights) != 1 || got.Insights[0].Category != model.CategorySecurity {
		t.Errorf("Находки не сохранились: %+v", got.Insights)
	}
	if len(got.Insights) == 1 && len(got.Insights[0].AnomalyLogs) != 3 {
		t.Errorf("AnomalyLogs = %v, ожидали 3 элемента", got.Insights[0].AnomalyLogs)
	}
}

func TestInsightSetEmpty(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewInsightSetRepository(pool)

	owner := createTestUser(t, pool)
	f := createTestFile(t, pool, owner.ID)

	// Пустой набор находок — валидный результат анализа
	set := &model.InsightSet{
		ID:              uuid.NewString(),
		FileFingerprint: f.Fingerprint,
		Insights:        []model.Insight{},
		CreatedAt:       time.Now().UTC(),
	}
	if err := repo.Create(ctx, set); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}

	got, err := repo.GetByFingerprint(ctx, f.Fingerprint)
	if err != nil {
		t.Fatalf("GetByFingerprint() ошибка: %v", err)
	}
	if got.Insights == nil || len(got.Insights) != 0 {
		t.Errorf("Insights = %v, ожидали пустой срез", got.Insights)
	}
}

// --- Каскадное удаление ---

func TestUserDeleteCascade(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	userRepo := NewUserRepository(pool)
	fileRepo := NewFileRepository(pool)
	logRepo := NewLogEntryRepository(pool)
	insightRepo := NewInsightSetRepository(pool)

	owner := createTestUser(t, pool)
	f := createTestFile(t, pool, owner.ID)

	if err := logRepo.InsertBatch(ctx, pool, testEntries(f.Fingerprint, 2)); err != nil {
		t.Fatalf("InsertBatch() ошибка: %v", err)
	}
	set := &model.InsightSet{
		ID:              uuid.NewString(),
		FileFingerprint: f.Fingerprint,
		Insights:        []model.Insight{},
		CreatedAt:       time.Now().UTC(),
	}
	if err := insightRepo.Create(ctx, set); err != nil {
		t.Fatalf("Create(set) ошибка: %v", err)
	}

	// Удаляем владельца — файлы, записи и находки уходят каскадом
	if err := userRepo.Delete(ctx, owner.ID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}

	if _, err := fileRepo.GetByFingerprint(ctx, f.Fingerprint); !errors.Is(err, ErrNotFound) {
		t.Errorf("Файл пережил каскадное удаление: %v", err)
	}
	count, err := logRepo.CountByFingerprint(ctx, f.Fingerprint)
	if err != nil {
		t.Fatalf("CountByFingerprint() ошибка: %v", err)
	}
	if count != 0 {
		t.Errorf("Записи лога пережили каскадное удаление: %d", count)
	}
	if _, err := insightRepo.GetByFingerprint(ctx, f.Fingerprint); !errors.Is(err, ErrNotFound) {
		t.Errorf("Набор находок пережил каскадное удаление: %v", err)
	}

	// Повторное удаление — ErrNotFound
	if err := userRepo.Delete(ctx, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Повторный Delete() = %v, ожидали ErrNotFound", err)
	}
}

// --- TxRunner ---

func TestRunInTxRollback(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, pool)
	fileRepo := NewFileRepository(pool)
	logRepo := NewLogEntryRepository(pool)
	runner := NewTxRunner(pool)

	fingerprint := testFingerprint(t)
	wantErr := errors.New("искусственный сбой")

	// Ошибка внутри fn откатывает и файл, и записи
	err := runner.RunInTx(ctx, func(tx pgx.Tx) error {
		f := &model.FileRecord{
			Fingerprint: fingerprint,
			OwnerID:     owner.ID,
			FileName:    "access.log",
			FileSize:    100,
			UploadedAt:  time.Now().UTC(),
		}
		if err := fileRepo.Create(ctx, tx, f); err != nil {
			return err
		}
		if err := logRepo.InsertBatch(ctx, tx, testEntries(fingerprint, 1)); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("RunInTx() = %v, ожидали искусственный сбой", err)
	}

	if _, err := fileRepo.GetByFingerprint(ctx, fingerprint); !errors.Is(err, ErrNotFound) {
		t.Errorf("Файл сохранился несмотря на откат: %v", err)
	}
	count, err := logRepo.CountByFingerprint(ctx, fingerprint)
	if err != nil {
		t.Fatalf("CountByFingerprint() ошибка: %v", err)
	}
	if count != 0 {
		t.Errorf("Записи сохранились несмотря на откат: %d", count)
	}
}
