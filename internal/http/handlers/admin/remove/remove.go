// Package remove удаляет запись подписки.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cloudslims/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cloudslims/internal/http/response"
)

// Service удаляет запись.
type Service interface {
	Delete(ctx context.Context, actorID, id string) error
}

// Handler обрабатывает DELETE /admin/subscriptions/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить запись
// @Description Удаляет только запись подписки. Профиль и учётная запись остаются
// @Tags Admin
// @Produce  json
// @Param id path string true "ID подписки"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Нужна роль admin"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Router /admin/subscriptions/{id} [delete]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.remove"
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

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), s.UserID, id); err != nil {
		response.Fail(w, r, log, "failed to delete subscription", err)
		return
	}

	log.Info("subscription deleted", slog.String("subscription_id", id), slog.String("admin_id", s.UserID))
	render.JSON(w, r, response.OK())
}
