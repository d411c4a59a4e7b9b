// Package edit применяет правки администратора к записи и профилю.
package edit

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/cloudslims/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cloudslims/internal/http/response"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	"github.com/magabrotheeeer/cloudslims/internal/models"
)

// Service применяет правки.
type Service interface {
	Edit(ctx context.Context, actorID, id string, edit models.AdminEdit) (models.TenantRow, error)
}

// Handler обрабатывает PUT /admin/subscriptions/{id}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Редактировать арендатора
// @Description Меняет профиль и запись в одной транзакции. Непереданные поля не меняются
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID подписки"
// @Param request body models.AdminEdit true "Изменения"
// @Success 200 {object} response.Response{data=models.TenantRow}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Нужна роль admin"
// @Failure 409 {object} response.ErrorResponse "Поддомен занят или переход запрещён"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/subscriptions/{id} [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.edit"
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

	var req models.AdminEdit
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	id := chi.URLParam(r, "id")
	row, err := h.service.Edit(r.Context(), s.UserID, id, req)
	if err != nil {
		response.Fail(w, r, log, "failed to edit tenant", err)
		return
	}

	log.Info("tenant edited", slog.String("subscription_id", id), slog.String("admin_id", s.UserID))
	render.JSON(w, r, response.OKWithData(row))
}
