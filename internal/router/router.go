package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-user-auth/internal/config"
	"go-user-auth/internal/handler"
	"go-user-auth/internal/metrics"
	"go-user-auth/internal/middleware"
	"go-user-auth/internal/model"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Menu   *handler.MenuHandler
	Admin  *handler.AdminHandler
	Health *handler.HealthHandler
}

func New(
	cfg *config.Config,
	m *metrics.Metrics,
	authMiddleware *middleware.AuthMiddleware,
	h Handlers,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging(m))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", h.Health.Check)
	r.Handle("/metrics", m.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(rateLimitMiddleware.Handler)
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(authMiddleware.Authenticate)

		api.Get("/health", h.Health.Check)

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/logout", h.Auth.Logout)
		})

		api.Group(func(authed chi.Router) {
			authed.Use(authMiddleware.RequireAuth)

			authed.Get("/users/profile", h.User.Profile)
			authed.Put("/users/password", h.User.ChangePassword)
			authed.Get("/menus", h.Menu.List)
		})

		api.Route("/admin/users/{id}", func(admin chi.Router) {
			admin.Use(authMiddleware.RequireRole(model.RoleAdmin))

			admin.Post("/unlock", h.Admin.Unlock)
			admin.Post("/reset-password", h.Admin.ResetPassword)
			admin.Put("/status", h.Admin.SetStatus)
			admin.Get("/events", h.Admin.Events)
		})
	})

	return r
}
