// Package remove реализует HTTP-обработчик удаления сессии.
//
// Удалить сессию может только её создатель.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/abdisalam/hoopup/internal/http/middlewarectx"
	"github.com/abdisalam/hoopup/internal/http/response"
	"github.com/abdisalam/hoopup/internal/lib/sl"
	sessionservice "github.com/abdisalam/hoopup/internal/services/session"
	"github.com/abdisalam/hoopup/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики удаления сессии.
type Service interface {
	Remove(ctx context.Context, id int64, username string) error
}

// Handler обрабатывает HTTP-запросы удаления сессии.
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
// @Summary Удалить сессию
// @Description Удаляет сессию. Доступно только создателю.
// @Tags Sessions
// @Produce  json
// @Param id path int true "ID сессии"
// @Success 200 {object} response.Response "Сессия удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Вызывающий не является создателем"
// @Failure 404 {object} response.ErrorResponse "Сессия не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /sessions/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Remove(r.Context(), id, username); err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			log.Error("session not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
		case errors.Is(err, sessionservice.ErrNotCreator):
			log.Error("forbidden: not the creator", slog.String("username", username))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("you can only delete sessions you created"))
		default:
			log.Error("failed to delete session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not delete session"))
		}
		return
	}

	log.Info("session deleted", slog.Int64("id", id))
	render.JSON(w, r, response.OK())
}
