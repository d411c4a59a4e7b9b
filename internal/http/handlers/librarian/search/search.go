// Package search обрабатывает запросы к ИИ-библиотекарю.
package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/cloudslims/internal/http/response"
	"github.com/magabrotheeeer/cloudslims/internal/librarian"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
)

// Request — поисковый запрос. Exclude — уже показанные названия.
type Request struct {
	Query   string   `json:"query" validate:"required,max=500"`
	Exclude []string `json:"exclude"`
}

// Librarian подбирает книги.
type Librarian interface {
	Search(ctx context.Context, query string, exclude []string) ([]librarian.Book, error)
	Offline() bool
}

// Recorder считает обращения к библиотекарю.
type Recorder interface {
	Librarian(source string, err error)
}

// Handler обрабатывает POST /librarian/search.
type Handler struct {
	log       *slog.Logger
	librarian Librarian
	metrics   Recorder
	validate  *validator.Validate
}

// New создает новый экземпляр Handler. metrics может быть nil.
func New(log *slog.Logger, l Librarian, metrics Recorder) *Handler {
	return &Handler{
		log:       log,
		librarian: l,
		metrics:   metrics,
		validate:  validator.New(),
	}
}

// ServeHTTP godoc
// @Summary ИИ-библиотекарь
// @Description Возвращает три рекомендации по запросу. Без ключа API отвечает офлайн-подборкой
// @Tags Librarian
// @Accept  json
// @Produce  json
// @Param request body Request true "Запрос"
// @Success 200 {object} response.Response{data=[]librarian.Book}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 502 {object} response.ErrorResponse "Модель недоступна"
// @Router /librarian/search [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.librarian.search"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	books, err := h.librarian.Search(r.Context(), req.Query, req.Exclude)
	if h.metrics != nil {
		source := "gemini"
		if h.librarian.Offline() {
			source = "offline"
		}
		h.metrics.Librarian(source, err)
	}
	if err != nil {
		response.Fail(w, r, log, "librarian search failed", err)
		return
	}

	render.JSON(w, r, response.OKWithData(books))
}
