// Package hoopup собирает приложение: хранилище, миграции, кеш, сервисы,
// HTTP-сервер и его жизненный цикл.
package hoopup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/abdisalam/hoopup/internal/cache"
	"github.com/abdisalam/hoopup/internal/config"
	"github.com/abdisalam/hoopup/internal/lib/jwt"
	"github.com/abdisalam/hoopup/internal/migrations"
	authservice "github.com/abdisalam/hoopup/internal/services/auth"
	profileservice "github.com/abdisalam/hoopup/internal/services/profile"
	sessionservice "github.com/abdisalam/hoopup/internal/services/session"
	"github.com/abdisalam/hoopup/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создаёт приложение: подключается к PostgreSQL и Redis,
// применяет миграции и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.NewAuthService(db, jwtMaker)
	sessionService := sessionservice.NewSessionService(db, cacheRedis, logger)
	profileService := profileservice.NewProfileService(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, sessionService, profileService, func() error {
		return repository.CheckDatabaseReady(db)
	})

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
