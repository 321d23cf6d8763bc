// Package hoopup предоставляет маршруты приложения.
package hoopup

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/abdisalam/hoopup/internal/http/handlers/auth/login"
	"github.com/abdisalam/hoopup/internal/http/handlers/auth/register"
	"github.com/abdisalam/hoopup/internal/http/handlers/health"
	"github.com/abdisalam/hoopup/internal/http/handlers/profile"
	"github.com/abdisalam/hoopup/internal/http/handlers/session/create"
	"github.com/abdisalam/hoopup/internal/http/handlers/session/join"
	"github.com/abdisalam/hoopup/internal/http/handlers/session/leave"
	"github.com/abdisalam/hoopup/internal/http/handlers/session/list"
	"github.com/abdisalam/hoopup/internal/http/handlers/session/read"
	"github.com/abdisalam/hoopup/internal/http/handlers/session/remove"
	"github.com/abdisalam/hoopup/internal/http/handlers/session/update"
	"github.com/abdisalam/hoopup/internal/http/middlewarectx"
	authservice "github.com/abdisalam/hoopup/internal/services/auth"
	profileservice "github.com/abdisalam/hoopup/internal/services/profile"
	sessionservice "github.com/abdisalam/hoopup/internal/services/session"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	sessionService *sessionservice.SessionService,
	profileService *profileservice.ProfileService,
	storageReady func() error,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	healthHandler := health.New(logger, storageReady)
	r.Get("/", healthHandler.Home)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/ready", healthHandler.Ready)

	// Открытые конечные точки
	r.Post("/users/register", register.New(logger, authService).ServeHTTP)
	r.Post("/users/login", login.New(logger, authService).ServeHTTP)
	r.Get("/sessions", list.New(logger, sessionService).ServeHTTP)
	r.Get("/sessions/{id}", read.New(logger, sessionService).ServeHTTP)

	// Группа с JWT аутентификацией
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(authService, logger))
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Post("/sessions", create.New(logger, sessionService).ServeHTTP)
		r.Put("/sessions/{id}", update.New(logger, sessionService).ServeHTTP)
		r.Delete("/sessions/{id}", remove.New(logger, sessionService).ServeHTTP)
		r.Post("/sessions/{id}/join", join.New(logger, sessionService).ServeHTTP)
		r.Post("/sessions/{id}/leave", leave.New(logger, sessionService).ServeHTTP)
		r.Get("/api/profile", profile.New(logger, profileService).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
