// Package stats отдает сводку для админ-панели.
package stats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cloudslims/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cloudslims/internal/http/response"
	"github.com/magabrotheeeer/cloudslims/internal/models"
)

// Service считает показатели.
type Service interface {
	Stats(ctx context.Context, actorID string) (models.Stats, error)
}

// Handler обрабатывает GET /admin/stats.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сводка
// @Description Число арендаторов, заявок на проверке, выручка и MRR
// @Tags Admin
// @Produce  json
// @Success 200 {object} response.Response{data=models.Stats}
// @Failure 403 {object} response.ErrorResponse "Нужна роль admin"
// @Router /admin/stats [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.stats"
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
	st, err := h.service.Stats(r.Context(), s.UserID)
	if err != nil {
		response.Fail(w, r, log, "failed to compute stats", err)
		return
	}
	render.JSON(w, r, response.OKWithData(st))
}
