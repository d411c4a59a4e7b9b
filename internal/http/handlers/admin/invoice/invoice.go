// Package invoice отдает счёт по любой записи для администратора.
package invoice

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cloudslims/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cloudslims/internal/http/response"
	subservice "github.com/magabrotheeeer/cloudslims/internal/services/subscription"
)

// Service формирует счёт.
type Service interface {
	AdminInvoice(ctx context.Context, actorID, id string, format subservice.Format) (subservice.Rendered, error)
}

// Handler обрабатывает GET /admin/subscriptions/{id}/invoice.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Счёт по записи
// @Tags Admin
// @Produce  application/pdf
// @Produce  plain
// @Param id path string true "ID подписки"
// @Param format query string false "pdf или text"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorResponse "Неизвестный формат"
// @Failure 403 {object} response.ErrorResponse "Нужна роль admin"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Router /admin/subscriptions/{id}/invoice [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.invoice"
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

	format, err := subservice.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.Fail(w, r, log, "bad invoice format", err)
		return
	}
	doc, err := h.service.AdminInvoice(r.Context(), s.UserID, chi.URLParam(r, "id"), format)
	if err != nil {
		response.Fail(w, r, log, "failed to build invoice", err)
		return
	}
	response.Attachment(w, doc.Filename, doc.ContentType, doc.Body)
}
