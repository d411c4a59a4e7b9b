// Package activate подтверждает оплату и активирует подписку.
package activate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cloudslims/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cloudslims/internal/http/response"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	"github.com/magabrotheeeer/cloudslims/internal/models"
)

// Request — необязательное тело: явная дата окончания вместо «через год».
type Request struct {
	ValidUntil *time.Time `json:"valid_until,omitempty"`
}

// Service активирует запись.
type Service interface {
	Activate(ctx context.Context, actorID, id string, validUntil *time.Time) (models.TenantRow, error)
}

// Handler обрабатывает POST /admin/subscriptions/{id}/activate.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Активировать подписку
// @Description Переводит pending в active. Без valid_until срок действия один год от текущего момента
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID подписки"
// @Param request body Request false "Дата окончания"
// @Success 200 {object} response.Response{data=models.TenantRow}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Нужна роль admin"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 409 {object} response.ErrorResponse "Переход запрещён"
// @Router /admin/subscriptions/{id}/activate [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.activate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	s, ok := middlewarectx.SessionFrom(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	id := chi.URLParam(r, "id")
	row, err := h.service.Activate(r.Context(), s.UserID, id, req.ValidUntil)
	if err != nil {
		response.Fail(w, r, log, "failed to activate subscription", err)
		return
	}

	log.Info("subscription activated", slog.String("subscription_id", id), slog.String("admin_id", s.UserID))
	render.JSON(w, r, response.OKWithData(row))
}
