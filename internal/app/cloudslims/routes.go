// Package cloudslims собирает HTTP API: маршруты, middleware и зависимости.
package cloudslims

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/cloudslims/docs" // регистрирует описание API для Swagger UI
	adminactivate "github.com/magabrotheeeer/cloudslims/internal/http/handlers/admin/activate"
	adminedit "github.com/magabrotheeeer/cloudslims/internal/http/handlers/admin/edit"
	adminhistory "github.com/magabrotheeeer/cloudslims/internal/http/handlers/admin/history"
	admininvoice "github.com/magabrotheeeer/cloudslims/internal/http/handlers/admin/invoice"
	adminlist "github.com/magabrotheeeer/cloudslims/internal/http/handlers/admin/list"
	adminreject "github.com/magabrotheeeer/cloudslims/internal/http/handlers/admin/reject"
	adminremove "github.com/magabrotheeeer/cloudslims/internal/http/handlers/admin/remove"
	adminstats "github.com/magabrotheeeer/cloudslims/internal/http/handlers/admin/stats"
	"github.com/magabrotheeeer/cloudslims/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/cloudslims/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/cloudslims/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/cloudslims/internal/http/handlers/auth/session"
	"github.com/magabrotheeeer/cloudslims/internal/http/handlers/health"
	"github.com/magabrotheeeer/cloudslims/internal/http/handlers/librarian/search"
	"github.com/magabrotheeeer/cloudslims/internal/http/handlers/me/current"
	meinvoice "github.com/magabrotheeeer/cloudslims/internal/http/handlers/me/invoice"
	"github.com/magabrotheeeer/cloudslims/internal/http/handlers/me/proof"
	"github.com/magabrotheeeer/cloudslims/internal/http/handlers/me/renew"
	"github.com/magabrotheeeer/cloudslims/internal/http/handlers/plans"
	"github.com/magabrotheeeer/cloudslims/internal/http/middlewarectx"
	"github.com/magabrotheeeer/cloudslims/internal/identity"
	"github.com/magabrotheeeer/cloudslims/internal/librarian"
	"github.com/magabrotheeeer/cloudslims/internal/metrics"
	accountservice "github.com/magabrotheeeer/cloudslims/internal/services/account"
	subservice "github.com/magabrotheeeer/cloudslims/internal/services/subscription"
)

// Deps — зависимости обработчиков.
type Deps struct {
	Identity      identity.Provider
	Profiles      middlewarectx.ProfileFetcher
	Accounts      *accountservice.AccountService
	Subscriptions *subservice.SubscriptionService
	Librarian     *librarian.Librarian
	Metrics       *metrics.Metrics
	Checks        map[string]health.Check

	ProofMaxSize   int64
	LibrarianRPS   float64
	LibrarianBurst int
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, d.Accounts).ServeHTTP)
		r.Post("/login", login.New(logger, d.Accounts).ServeHTTP)
		r.Get("/session", session.New(logger, d.Identity, d.Profiles).ServeHTTP)
		r.Get("/plans", plans.New(logger).ServeHTTP)
		r.With(middlewarectx.RateLimit(logger, d.LibrarianRPS, d.LibrarianBurst)).
			Post("/librarian/search", search.New(logger, d.Librarian, d.Metrics).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.Auth(d.Identity, logger))

			r.Post("/logout", logout.New(logger, d.Accounts).ServeHTTP)
			r.Get("/me/subscription", current.New(logger, d.Subscriptions).ServeHTTP)
			r.Post("/me/subscription/proof", proof.New(logger, d.Subscriptions, d.ProofMaxSize).ServeHTTP)
			r.Post("/me/subscription/renew", renew.New(logger, d.Subscriptions).ServeHTTP)
			r.Get("/me/subscription/invoice", meinvoice.New(logger, d.Subscriptions).ServeHTTP)

			// Администратор: роль проверяется по свежему профилю и здесь, и в сервисе
			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(d.Profiles, logger))
				r.Get("/subscriptions", adminlist.New(logger, d.Subscriptions).ServeHTTP)
				r.Get("/stats", adminstats.New(logger, d.Subscriptions).ServeHTTP)
				r.Get("/tenants/{userID}/history", adminhistory.New(logger, d.Subscriptions).ServeHTTP)
				r.Post("/subscriptions/{id}/activate", adminactivate.New(logger, d.Subscriptions).ServeHTTP)
				r.Post("/subscriptions/{id}/reject", adminreject.New(logger, d.Subscriptions).ServeHTTP)
				r.Put("/subscriptions/{id}", adminedit.New(logger, d.Subscriptions).ServeHTTP)
				r.Delete("/subscriptions/{id}", adminremove.New(logger, d.Subscriptions).ServeHTTP)
				r.Get("/subscriptions/{id}/invoice", admininvoice.New(logger, d.Subscriptions).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, d.Checks).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
