// Package health реализует liveness- и readiness-обработчики.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/abdisalam/hoopup/internal/http/response"
	"github.com/abdisalam/hoopup/internal/lib/sl"
)

// Handler отвечает на liveness- и readiness-запросы.
// Liveness всегда успешен, readiness проверяет хранилище.
type Handler struct {
	log   *slog.Logger
	ready func() error
}

// New создает новый Handler. ready проверяет готовность хранилища.
func New(log *slog.Logger, ready func() error) *Handler {
	return &Handler{
		log:   log,
		ready: ready,
	}
}

// Home godoc
// @Summary Корневая проверка
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any
// @Router / [get]
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "Hoop API is running",
	}))
}

// Health godoc
// @Summary Проверка живости сервиса
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "ok",
	}))
}

// Ready godoc
// @Summary Проверка готовности сервиса
// @Description Отвечает успешно только когда хранилище доступно и схема применена.
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /health/ready [get]
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.ready(); err != nil {
		h.log.Error("storage not ready", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("storage not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "ready",
	}))
}
