// Package list отдает таблицу арендаторов админ-панели.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cloudslims/internal/directory"
	"github.com/magabrotheeeer/cloudslims/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cloudslims/internal/http/response"
	subservice "github.com/magabrotheeeer/cloudslims/internal/services/subscription"
)

// Service фильтрует и пагинирует записи.
type Service interface {
	AdminList(ctx context.Context, actorID string, req subservice.ListRequest) (directory.Page, error)
}

// Handler обрабатывает GET /admin/subscriptions.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func optional(q url.Values, key string) *string {
	if !q.Has(key) {
		return nil
	}
	v := q.Get(key)
	return &v
}

// ServeHTTP godoc
// @Summary Список подписок
// @Description Поиск, фильтры по статусу и роли, страницы по 5 записей. Непереданные параметры берутся из последнего запроса администратора
// @Tags Admin
// @Produce  json
// @Param search query string false "Подстрока в названии учреждения, ФИО, поддомене или плане"
// @Param status query string false "all, pending, active, rejected (фильтр по сохранённому статусу)"
// @Param role query string false "all, admin, user"
// @Param page query int false "Номер страницы"
// @Success 200 {object} response.Response{data=directory.Page}
// @Failure 400 {object} response.ErrorResponse "Некорректный номер страницы"
// @Failure 403 {object} response.ErrorResponse "Нужна роль admin"
// @Router /admin/subscriptions [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.list"
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

	q := r.URL.Query()
	req := subservice.ListRequest{
		Search: optional(q, "search"),
		Status: optional(q, "status"),
		Role:   optional(q, "role"),
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			log.Warn("invalid page", slog.String("page", raw))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid page"))
			return
		}
		req.Page = &page
	}

	page, err := h.service.AdminList(r.Context(), s.UserID, req)
	if err != nil {
		response.Fail(w, r, log, "failed to list subscriptions", err)
		return
	}
	render.JSON(w, r, response.OKWithData(page))
}
