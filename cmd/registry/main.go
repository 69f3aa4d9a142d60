// Package main - точка входа сервиса eduflow-registry.
//
// Реестр студенческих карточек: зачисление, посещаемость, платежи,
// групповые метки, CSV-отчёты и AI-аналитика. Авторитетное состояние
// живёт в памяти; каждая успешная мутация синхронно сохраняется в Redis
// (и, опционально, архивируется в PostgreSQL).
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: Redis, PostgreSQL, генеративный AI
// - Interface: HTTP endpoints, CSV exports
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	// Application layer
	"github.com/eduflow/eduflow-registry/internal/application/command"
	"github.com/eduflow/eduflow-registry/internal/application/query"
	"github.com/eduflow/eduflow-registry/internal/application/registry"

	// Infrastructure layer
	"github.com/eduflow/eduflow-registry/internal/infrastructure/external/genai"
	"github.com/eduflow/eduflow-registry/internal/infrastructure/persistence/postgres"
	"github.com/eduflow/eduflow-registry/internal/infrastructure/persistence/redis"

	// Interface layer
	httpserver "github.com/eduflow/eduflow-registry/internal/interface/http"

	// Packages
	"github.com/eduflow/eduflow-registry/config"
	"github.com/eduflow/eduflow-registry/internal/domain/roster"
	"github.com/eduflow/eduflow-registry/pkg/logger"
	"github.com/eduflow/eduflow-registry/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Level: logger.ParseLevel(cfg.Log.Level),
	})
	log.Info("starting eduflow-registry",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("archive", cfg.Archive.Enabled),
		logger.Bool("genai", cfg.GenAI.EnableInsights),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К REDIS (основное хранилище снимков)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis...")

	redisCfg := redis.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	redisCfg.DialTimeout = cfg.Redis.DialTimeout
	redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

	var snapshotStore *redis.Store
	probe := retry.StartupProbeRetrier()
	err = probe.Do(ctx, func(ctx context.Context) error {
		snapshotStore, err = redis.NewStore(redisCfg, log)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		log.Info("closing Redis connection...")
		_ = snapshotStore.Close()
	}()
	log.Info("Redis connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ПОДКЛЮЧЕНИЕ К POSTGRESQL (опциональный архив снимков)
	// ─────────────────────────────────────────────────────────────────────────
	var archive roster.SnapshotStore
	if cfg.Archive.Enabled {
		log.Info("connecting to snapshot archive...")

		pgCfg := postgres.DefaultConfig()
		pgCfg.Host = cfg.Archive.Host
		pgCfg.Port = cfg.Archive.Port
		pgCfg.User = cfg.Archive.User
		pgCfg.Password = cfg.Archive.Password
		pgCfg.Database = cfg.Archive.Database
		pgCfg.SSLMode = cfg.Archive.SSLMode
		pgCfg.MaxConns = int32(cfg.Archive.MaxConns)
		pgCfg.MinConns = int32(cfg.Archive.MinConns)
		pgCfg.MaxConnLifetime = cfg.Archive.ConnMaxLifetime

		pool, perr := postgres.Connect(ctx, pgCfg)
		if perr != nil {
			// Архив необязателен: реестр полноценно работает на одном Redis.
			log.Warn("archive unavailable, continuing without it", logger.Err(perr))
		} else {
			defer pool.Close()
			if merr := postgres.Migrate(ctx, pool); merr != nil {
				return fmt.Errorf("archive migration failed: %w", merr)
			}
			archive = postgres.NewSnapshotArchive(pool, log)
			log.Info("snapshot archive ready")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ГИДРАТАЦИЯ РЕЕСТРА
	// ─────────────────────────────────────────────────────────────────────────
	reg := registry.New(registry.Dependencies{
		Snapshots:  snapshotStore,
		Archive:    archive,
		LabelStore: snapshotStore,
		Logger:     log,
	})
	if err := reg.Load(ctx); err != nil {
		return fmt.Errorf("failed to load registry state: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ AI-КОЛЛАБОРАТОРА (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var insightHandler *query.GetInsightHandler
	var avatarHandler *command.GenerateAvatarHandler
	if cfg.GenAI.EnableInsights {
		log.Info("initializing generative AI client...")

		genaiCfg := genai.DefaultConfig(cfg.GenAI.BaseURL, cfg.GenAI.APIKey)
		genaiCfg.TextModel = cfg.GenAI.TextModel
		genaiCfg.ImageModel = cfg.GenAI.ImageModel
		genaiCfg.Timeout = cfg.GenAI.RequestTimeout
		genaiCfg.Logger = slog.Default()
		genaiCfg.Debug = cfg.App.Debug

		client := genai.NewClient(genaiCfg)
		insightHandler = query.NewGetInsightHandler(reg, client)
		avatarHandler = command.NewGenerateAvatarHandler(reg, client)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ЗАПУСК HTTP-СЕРВЕРА
	// ─────────────────────────────────────────────────────────────────────────
	httpCfg := httpserver.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	httpCfg.APIKeyHeader = cfg.HTTP.APIKeyHeader
	httpCfg.APIKeyHashes = cfg.HTTP.APIKeyHashes

	srv := httpserver.NewServer(httpCfg, httpserver.Dependencies{
		Registry:         reg,
		Enroll:           command.NewEnrollStudentHandler(reg),
		Update:           command.NewUpdateStudentHandler(reg),
		Remove:           command.NewRemoveStudentHandler(reg),
		LogAttendance:    command.NewLogAttendanceHandler(reg),
		RemoveAttendance: command.NewRemoveAttendanceHandler(reg),
		BulkAttendance:   command.NewBulkAttendanceHandler(reg),
		LogPayment:       command.NewLogPaymentHandler(reg),
		SortRoster:       command.NewSortRosterHandler(reg),
		ManageLabels:     command.NewManageLabelsHandler(reg),
		GenerateAvatar:   avatarHandler,
		GetStudent:       query.NewGetStudentHandler(reg),
		ListStudents:     query.NewListStudentsHandler(reg),
		GetDashboard:     query.NewGetDashboardHandler(reg, 0),
		GetInsight:       insightHandler,
		Logger:           log,
	})

	errCh := srv.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ОЖИДАНИЕ ЗАВЕРШЕНИЯ И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", logger.Err(err))
	}

	// Финальный снимок: состояние в памяти авторитетно, фиксируем его.
	reg.Flush(shutdownCtx)
	log.Info("shutdown complete")
	return nil
}
