// Package invoice отдает счёт по текущей подписке арендатора.
package invoice

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cloudslims/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cloudslims/internal/http/response"
	subservice "github.com/magabrotheeeer/cloudslims/internal/services/subscription"
)

// Service формирует счёт.
type Service interface {
	Invoice(ctx context.Context, userID string, format subservice.Format) (subservice.Rendered, error)
}

// Handler обрабатывает GET /me/subscription/invoice.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Счёт по подписке
// @Description PDF (по умолчанию) или текстовый счёт с реквизитами оплаты
// @Tags Me
// @Produce  application/pdf
// @Produce  plain
// @Param format query string false "pdf или text"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorResponse "Неизвестный формат"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 404 {object} response.ErrorResponse "Подписок нет"
// @Router /me/subscription/invoice [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.me.invoice"
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

	format, err := subservice.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.Fail(w, r, log, "bad invoice format", err)
		return
	}
	doc, err := h.service.Invoice(r.Context(), s.UserID, format)
	if err != nil {
		response.Fail(w, r, log, "failed to build invoice", err)
		return
	}

	log.Info("invoice downloaded", slog.String("file", doc.Filename))
	response.Attachment(w, doc.Filename, doc.ContentType, doc.Body)
}
