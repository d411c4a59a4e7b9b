// Package session отвечает на GET /session: какой экран показать клиенту.
package session

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cloudslims/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cloudslims/internal/http/response"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	sessionrouter "github.com/magabrotheeeer/cloudslims/internal/session"
)

// Handler обрабатывает GET /session.
type Handler struct {
	log      *slog.Logger
	sessions sessionrouter.SessionSource
	profiles sessionrouter.ProfileFetcher
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions sessionrouter.SessionSource, profiles sessionrouter.ProfileFetcher) *Handler {
	return &Handler{log: log, sessions: sessions, profiles: profiles}
}

// ServeHTTP godoc
// @Summary Состояние сессии
// @Description Возвращает экран (anonymous, admin, user) по токену и свежему профилю
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response{data=sessionrouter.Snapshot}
// @Router /session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.session"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	router := sessionrouter.NewRouter(h.sessions, h.profiles)
	unsubscribe := router.Subscribe(r.Context(), h.sessions)
	defer unsubscribe()

	snap, err := router.Start(r.Context(), middlewarectx.BearerToken(r))
	if err != nil {
		response.Fail(w, r, log, "failed to start session router", err)
		return
	}
	if snap.ProfileErr != nil {
		log.Warn("profile unavailable for session", sl.Err(snap.ProfileErr))
	}
	if snap.Session != nil {
		s := *snap.Session
		s.Token = ""
		snap.Session = &s
	}

	render.JSON(w, r, response.OKWithData(snap))
}
