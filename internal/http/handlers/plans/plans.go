// Package plans отдает каталог тарифных планов.
package plans

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cloudslims/internal/http/response"
	"github.com/magabrotheeeer/cloudslims/internal/lifecycle"
)

// Handler обрабатывает GET /plans.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Тарифные планы
// @Description Starter, Pro и Enterprise с годовой ценой в рупиях
// @Tags Plans
// @Produce  json
// @Success 200 {object} response.Response{data=[]lifecycle.Plan}
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(lifecycle.Plans()))
}
