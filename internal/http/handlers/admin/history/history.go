// Package history отдает все записи одного арендатора.
package history

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

// Service читает историю арендатора.
type Service interface {
	History(ctx context.Context, actorID, userID string) ([]models.TenantRow, error)
}

// Handler обрабатывает GET /admin/tenants/{userID}/history.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История арендатора
// @Description Все записи пользователя, новые первыми
// @Tags Admin
// @Produce  json
// @Param userID path string true "ID пользователя"
// @Success 200 {object} response.Response{data=[]models.TenantRow}
// @Failure 403 {object} response.ErrorResponse "Нужна роль admin"
// @Router /admin/tenants/{userID}/history [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.history"
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
	rows, err := h.service.History(r.Context(), s.UserID, chi.URLParam(r, "userID"))
	if err != nil {
		response.Fail(w, r, log, "failed to read history", err)
		return
	}
	render.JSON(w, r, response.OKWithData(rows))
}
