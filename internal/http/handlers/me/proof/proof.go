// Package proof принимает чек об оплате для текущей подписки.
package proof

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cloudslims/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cloudslims/internal/http/response"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	"github.com/magabrotheeeer/cloudslims/internal/models"
	"github.com/magabrotheeeer/cloudslims/internal/storage/objectstore"
)

// formOverhead — запас на заголовки multipart сверх размера файла.
const formOverhead = 1 << 20

// Service загружает чек и прикрепляет его к подписке.
type Service interface {
	UploadProof(ctx context.Context, userID string, data []byte) (models.SubscriptionView, error)
}

// Handler обрабатывает POST /me/subscription/proof.
type Handler struct {
	log     *slog.Logger
	service Service
	maxSize int64
}

// New создает новый экземпляр Handler. maxSize — предельный размер файла в байтах.
func New(log *slog.Logger, service Service, maxSize int64) *Handler {
	return &Handler{log: log, service: service, maxSize: maxSize}
}

// ServeHTTP godoc
// @Summary Загрузка чека об оплате
// @Description Принимает изображение в поле file и прикрепляет его к текущей подписке
// @Tags Me
// @Accept  multipart/form-data
// @Produce  json
// @Param file formData file true "Изображение чека"
// @Success 200 {object} response.Response{data=models.SubscriptionView}
// @Failure 400 {object} response.ErrorResponse "Нет файла или файл слишком большой"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 422 {object} response.ErrorResponse "Файл не является изображением"
// @Failure 502 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /me/subscription/proof [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.me.proof"
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

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+formOverhead)
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			response.Fail(w, r, log, "proof rejected", fmt.Errorf("%s: %w", op, objectstore.ErrTooLarge))
			return
		}
		log.Warn("failed to parse multipart form", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		log.Warn("file field is missing", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("field file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		log.Error("failed to read uploaded file", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read file"))
		return
	}

	view, err := h.service.UploadProof(r.Context(), s.UserID, data)
	if err != nil {
		response.Fail(w, r, log, "proof rejected", err)
		return
	}

	log.Info("payment proof attached", slog.String("subscription_id", view.ID))
	render.JSON(w, r, response.OKWithData(view))
}
