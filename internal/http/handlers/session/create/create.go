// Package create реализует HTTP-обработчик создания новой игровой сессии.
//
// Обработчик принимает JSON-черновик сессии, валидирует его, извлекает имя
// пользователя из контекста запроса и делегирует создание сервису. Создателем
// сессии становится аутентифицированный вызывающий.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/abdisalam/hoopup/internal/http/middlewarectx"
	"github.com/abdisalam/hoopup/internal/http/response"
	"github.com/abdisalam/hoopup/internal/lib/sl"
	"github.com/abdisalam/hoopup/internal/models"
	sessionservice "github.com/abdisalam/hoopup/internal/services/session"
	"github.com/abdisalam/hoopup/internal/storage/repository"
)

// Service описывает интерфейс бизнес-логики создания сессии.
type Service interface {
	Create(ctx context.Context, username string, draft models.SessionDraft) (*models.Session, error)
}

// Handler управляет HTTP-запросами на создание сессий.
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
// @Summary Создать новую сессию
// @Description Создает сессию, создателем становится текущий пользователь.
// @Tags Sessions
// @Accept  json
// @Produce  json
// @Param request body models.SessionDraft true "Черновик сессии"
// @Success 200 {object} map[string]any "Созданная сессия"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /sessions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var draft models.SessionDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", draft))

	if err := h.validate.Struct(draft); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	username, ok := r.Context().Value(middlewarectx.User).(string)
	if !ok || username == "" {
		log.Error("username not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sess, err := h.service.Create(r.Context(), username, draft)
	if err != nil {
		switch {
		case errors.Is(err, sessionservice.ErrValidation):
			log.Error("invalid session draft", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, repository.ErrUserNotFound):
			// Токен валиден, но такого пользователя в хранилище нет.
			log.Error("acting user not found", slog.String("username", username))
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
		default:
			log.Error("failed to create session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create session"))
		}
		return
	}

	log.Info("session created", slog.Int64("id", sess.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"session": sess,
	}))
}
