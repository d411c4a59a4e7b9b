// Package reject отклоняет заявку.
package reject

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cloudslims/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cloudslims/internal/http/response"
	"github.com/magabrotheeeer/cloudslims/internal/models"
)

// Service отклоняет запись.
type Service interface {
	Reject(ctx context.Context, actorID, id string) (models.TenantRow, error)
}

// Handler обрабатывает POST /admin/subscriptions/{id}/reject.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отклонить заявку
// @Tags Admin
// @Produce  json
// @Param id path string true "ID подписки"
// @Success 200 {object} response.Response{data=models.TenantRow}
// @Failure 403 {object} response.ErrorResponse "Нужна роль admin"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 409 {object} response.ErrorResponse "Переход запрещён"
// @Router /admin/subscriptions/{id}/reject [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.reject"
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
	row, err := h.service.Reject(r.Context(), s.UserID, id)
	if err != nil {
		response.Fail(w, r, log, "failed to reject subscription", err)
		return
	}

	log.Info("subscription rejected", slog.String("subscription_id", id), slog.String("admin_id", s.UserID))
	render.JSON(w, r, response.OKWithData(row))
}
