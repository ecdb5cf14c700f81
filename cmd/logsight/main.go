// Точка входа Logsight — сервис приёма и анализа access-логов веб-серверов.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт клиент внешнего сервиса анализа, сервисный слой и API handlers,
// запускает topologymetrics и HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/logsight/internal/api/handlers"
	"github.com/bigkaa/logsight/internal/api/middleware"
	"github.com/bigkaa/logsight/internal/config"
	"github.com/bigkaa/logsight/internal/database"
	"github.com/bigkaa/logsight/internal/reasoner"
	"github.com/bigkaa/logsight/internal/repository"
	"github.com/bigkaa/logsight/internal/server"
	"github.com/bigkaa/logsight/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Logsight запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// Предупреждения о дефолтных значениях topologymetrics
	if os.Getenv("LS_DEPHEALTH_GROUP") == "" {
		logger.Warn("LS_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	// Проверка здоровья PostgreSQL идёт через существующий пул соединений,
	// что позволяет обнаружить его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Клиент внешнего сервиса анализа
	reasonerClient, err := reasoner.New(
		cfg.ReasonerURL,
		cfg.ReasonerAPIKey,
		cfg.ReasonerModel,
		cfg.ReasonerTimeout,
		cfg.CACertPath,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания клиента сервиса анализа", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Клиент сервиса анализа создан",
		slog.String("url", cfg.ReasonerURL),
		slog.String("model", cfg.ReasonerModel),
	)

	// 6. Repositories
	fileRepo := repository.NewFileRepository(pool)
	logRepo := repository.NewLogEntryRepository(pool)
	insightRepo := repository.NewInsightSetRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	// 7. Services
	ingestSvc := service.NewIngestService(fileRepo, logRepo, userRepo, txRunner, logger)

	insightCache := service.NewInsightCache(cfg.InsightCacheSize, cfg.InsightCacheTTL)
	insightSvc := service.NewInsightService(
		insightRepo, fileRepo, logRepo,
		reasonerClient, insightCache,
		logger,
	)

	// 8. Readiness checkers (PostgreSQL + IdP + reasoner)
	pgChecker := database.NewReadinessChecker(pool)
	idpChecker, err := middleware.NewIDPReadinessChecker(cfg.JWTJWKSURL, cfg.CACertPath, cfg.ReasonerTimeout)
	if err != nil {
		logger.Error("Ошибка создания IdP readiness checker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	reasonerChecker := reasoner.NewReadinessChecker(cfg.ReasonerURL, cfg.ReasonerTimeout)
	healthHandler := handlers.NewHealthHandler(pgChecker, idpChecker, reasonerChecker)

	// 9. API handler (реализует generated.ServerInterface)
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		ingestSvc,
		insightSvc,
		cfg.MaxUploadSize,
		logger,
	)

	// 10. JWT middleware
	jwtAuth, err := middleware.NewJWTAuth(
		cfg.JWTJWKSURL,
		cfg.CACertPath,
		cfg.JWTIssuer,
		cfg.JWTLeeway,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer jwtAuth.Close()
	logger.Info("JWT middleware инициализирован",
		slog.String("jwks_url", cfg.JWTJWKSURL),
		slog.String("issuer", cfg.JWTIssuer),
	)

	// 11. topologymetrics — мониторинг зависимостей (PostgreSQL + IdP + reasoner)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"logsight",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.JWTJWKSURL,
		cfg.ReasonerURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 12. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, jwtAuth)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 13. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Logsight остановлен")
}
