// Package middlewarectx HTTP middleware: проверка сессии по Bearer-токену,
// доступ только для администратора и ограничение частоты запросов.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cloudslims/internal/http/response"
	"github.com/magabrotheeeer/cloudslims/internal/identity"
	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
	"github.com/magabrotheeeer/cloudslims/internal/models"
	"github.com/magabrotheeeer/cloudslims/internal/storage"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// SessionKey — ключ подтверждённой сессии в контексте.
const SessionKey Key = "session"

// SessionSource проверяет токен.
type SessionSource interface {
	CurrentSession(ctx context.Context, token string) (*identity.Session, error)
}

// ProfileFetcher читает профиль пользователя.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
}

// BearerToken достаёт токен из заголовка Authorization.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// WithSession кладёт сессию в контекст.
func WithSession(ctx context.Context, s identity.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// SessionFrom возвращает сессию из контекста.
func SessionFrom(ctx context.Context) (identity.Session, bool) {
	s, ok := ctx.Value(SessionKey).(identity.Session)
	return s, ok
}

// Auth пропускает запрос только с действующей сессией.
func Auth(sessions SessionSource, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Auth"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			s, err := sessions.CurrentSession(r.Context(), BearerToken(r))
			if err != nil {
				if errors.Is(err, identity.ErrNoSession) || errors.Is(err, identity.ErrInvalidSession) {
					log.Warn("unauthorized request", sl.Err(err))
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("missing or invalid session"))
					return
				}
				log.Error("failed to check session", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), *s)))
		})
	}
}

// RequireAdmin пропускает только администраторов. Роль берётся из свежего профиля.
// Ставится после Auth.
func RequireAdmin(profiles ProfileFetcher, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireAdmin"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			s, ok := SessionFrom(r.Context())
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid session"))
				return
			}
			p, err := profiles.GetProfile(r.Context(), s.UserID)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				log.Warn("session without profile", slog.String("user_id", s.UserID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("admin role required"))
				return
			case err != nil:
				log.Error("failed to fetch profile", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			case p.Role != models.RoleAdmin:
				log.Warn("admin route denied", slog.String("user_id", s.UserID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
