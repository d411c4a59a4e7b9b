package response

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
)

// Fail логирует ошибку сервиса и отвечает соответствующим статусом.
// Ошибки 5xx логируются как Error, остальные как Warn.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg string, err error) {
	code, text := StatusFor(err)
	if code >= http.StatusInternalServerError {
		log.Error(msg, sl.Err(err))
	} else {
		log.Warn(msg, sl.Err(err), slog.Int("status", code))
	}
	render.Status(r, code)
	render.JSON(w, r, Error(text))
}

// Attachment отдаёт файл для скачивания.
func Attachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
