// Package current отдает текущую подписку арендатора.
package current

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

// Service читает текущую подписку.
type Service interface {
	Current(ctx context.Context, userID string) (models.SubscriptionView, error)
}

// Handler обрабатывает GET /me/subscription.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Текущая подписка
// @Description Самая свежая запись пользователя с признаками истечения срока
// @Tags Me
// @Produce  json
// @Success 200 {object} response.Response{data=models.SubscriptionView}
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 404 {object} response.ErrorResponse "Подписок нет"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /me/subscription [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.me.current"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	s, ok := middlewarectx.SessionFrom(r.Context())
	if !ok {
		log.Error("session not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	view, err := h.service.Current(r.Context(), s.UserID)
	if err != nil {
		response.Fail(w, r, log, "failed to read current subscription", err)
		return
	}
	render.JSON(w, r, response.OKWithData(view))
}
