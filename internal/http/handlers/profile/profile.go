// Package profile реализует HTTP-обработчик сводного профиля пользователя.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/abdisalam/hoopup/internal/http/middlewarectx"
	"github.com/abdisalam/hoopup/internal/http/response"
	"github.com/abdisalam/hoopup/internal/lib/sl"
	"github.com/abdisalam/hoopup/internal/models"
	"github.com/abdisalam/hoopup/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики сборки профиля.
type Service interface {
	Get(ctx context.Context, username string) (*models.Profile, error)
}

// Handler обрабатывает HTTP-запросы профиля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Профиль текущего пользователя
// @Description Возвращает созданные и посещаемые сессии пользователя со счётчиками.
// @Tags Profile
// @Produce  json
// @Success 200 {object} map[string]any "Профиль"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /api/profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	prof, err := h.service.Get(r.Context(), username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			log.Error("acting user not found", slog.String("username", username))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		log.Error("failed to assemble profile", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load profile"))
		return
	}

	log.Info("profile returned", slog.String("username", username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"profile": prof,
	}))
}
