// Package renew создаёт заявку на продление подписки.
package renew

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

// Service создаёт заявку на продление.
type Service interface {
	RequestRenewal(ctx context.Context, userID string) (models.SubscriptionView, error)
}

// Handler обрабатывает POST /me/subscription/renew.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Продление подписки
// @Description Создаёт новую запись pending с тем же планом и актуальной ценой
// @Tags Me
// @Produce  json
// @Success 201 {object} response.Response{data=models.SubscriptionView}
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 404 {object} response.ErrorResponse "Нет подписки для продления"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка"
// @Router /me/subscription/renew [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.me.renew"
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

	view, err := h.service.RequestRenewal(r.Context(), s.UserID)
	if err != nil {
		response.Fail(w, r, log, "failed to request renewal", err)
		return
	}

	log.Info("renewal requested", slog.String("subscription_id", view.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(view))
}
