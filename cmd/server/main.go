package main

import (
	"InvKeeper/internal/cache"
	"InvKeeper/internal/config"
	"InvKeeper/internal/handlers"
	"InvKeeper/internal/middleware"
	"InvKeeper/internal/repo"
	"InvKeeper/internal/service"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// вложения моложе этого срока могут ещё не быть привязаны к записи
const orphanGrace = time.Hour

func main() {
	cfg := config.NewConfig()

	// создаём регистратор zap
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.LogJSON {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DatabaseDSN
	if dsn == "" {
		dsn = repo.DefaultSQLiteDSN
	}
	gormDB, err := repo.InitDB(dsn)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	revoked, err := cache.NewStore(cache.Config{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		sugar.Fatalw("failed to initialize revocation store", "error", err)
	}
	defer func() { _ = revoked.Close() }()

	userService := service.NewUserService(repo.NewUserRepository(gormDB))
	sessions := service.NewSessionService(cfg.AuthSecret, cfg.TokenTTL, revoked)
	vault := service.NewAttachmentService(repo.NewAttachmentRepository(gormDB), sugar, cfg.AttachmentMaxBytes())
	itemService := service.NewItemService(repo.NewItemRepository(gormDB), vault, sugar)
	exportService := service.NewExportService(itemService)

	if n, err := vault.PurgeOrphans(ctx, orphanGrace); err != nil {
		sugar.Warnw("failed to purge orphan attachments", "error", err)
	} else if n > 0 {
		sugar.Infow("purged orphan attachments", "count", n)
	}

	h := handlers.NewHandler(handlers.Services{
		Users:       userService,
		Sessions:    sessions,
		Items:       itemService,
		Attachments: vault,
		Export:      exportService,
	}, sugar, cfg)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	sugar.Infow("Starting server",
		"addr", cfg.BaseURL,
		"https", cfg.EnableHTTPS,
		"database", dbKind(cfg.DatabaseDSN),
		"redis", cfg.RedisAddr != "",
		"rate_limit_rps", cfg.RateLimitRPS,
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("graceful shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}

// dbKind не выводит DSN целиком: там может быть пароль
func dbKind(dsn string) string {
	if dsn == "" {
		return "sqlite"
	}
	return "external"
}
