// Package join реализует HTTP-обработчик присоединения пользователя к сессии.
//
// Тело запроса указывает целевого пользователя по username. Повторное
// присоединение — no-op: сессия возвращается без изменений.
package join

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/abdisalam/hoopup/internal/http/response"
	"github.com/abdisalam/hoopup/internal/lib/sl"
	"github.com/abdisalam/hoopup/internal/models"
	"github.com/abdisalam/hoopup/internal/storage/repository"
)

// Request — тело запроса с именем целевого пользователя.
type Request struct {
	Username string `json:"username" validate:"required"`
}

// Service описывает интерфейс бизнес-логики присоединения к сессии.
type Service interface {
	Join(ctx context.Context, id int64, targetUsername string) (*models.Session, error)
}

// Handler обрабатывает HTTP-запросы присоединения к сессии.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Присоединиться к сессии
// @Description Добавляет пользователя в участники. Идемпотентно.
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Param id path int true "ID сессии"
// @Param request body Request true "Целевой пользователь"
// @Success 200 {object} map[string]any "Сессия с обновленным списком участников"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 404 {object} response.ErrorResponse "Сессия или пользователь не найдены"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /sessions/{id}/join [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.join"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sess, err := h.service.Join(r.Context(), id, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			log.Error("session not found", slog.Int64("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("session not found"))
		case errors.Is(err, repository.ErrUserNotFound):
			log.Error("target user not found", slog.String("username", req.Username))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to join session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not join session"))
		}
		return
	}

	log.Info("user joined session", slog.Int64("id", id), slog.String("username", req.Username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"session": sess,
	}))
}
