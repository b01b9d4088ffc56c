package handlers

import (
	"time"

	"github.com/WxboySuper/Productivity-Hub-sub001/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type RouterDeps struct {
	Auth          *AuthHandler
	Tasks         *TaskHandler
	Projects      *ProjectHandler
	Notifications *NotificationHandler
	Health        *HealthHandler

	Sessions       middleware.SessionResolver
	CookieName     string
	AllowedOrigins []string
	RateLimitRPM   int
	RequestTimeout time.Duration
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.RateLimit(deps.RateLimitRPM))
	r.Use(middleware.Session(deps.Sessions, deps.CookieName))

	r.Get("/health", deps.Health.Health)

	r.Route("/api", func(r chi.Router) {
		// CSRF covers every mutating /api route, including login and
		// register: the SPA bootstraps a token via GET /api/csrf-token
		// before its first POST.
		r.Use(middleware.CSRF)

		r.Get("/csrf-token", deps.Auth.CSRFToken)
		r.Post("/register", deps.Auth.Register)
		r.Post("/login", deps.Auth.Login)

		r.Route("/password-reset", func(r chi.Router) {
			r.Post("/request", deps.Auth.PasswordResetRequest)
			r.Post("/confirm", deps.Auth.PasswordResetConfirm)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Post("/logout", deps.Auth.Logout)
			r.Get("/me", deps.Auth.Me)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", deps.Tasks.List)
				r.Post("/", deps.Tasks.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", deps.Tasks.Get)
					r.Put("/", deps.Tasks.Update)
					r.Delete("/", deps.Tasks.Delete)

					r.Post("/complete", deps.Tasks.Complete)
					r.Post("/reopen", deps.Tasks.Reopen)
				})
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", deps.Projects.List)
				r.Post("/", deps.Projects.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", deps.Projects.Get)
					r.Put("/", deps.Projects.Update)
					r.Delete("/", deps.Projects.Delete)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", deps.Notifications.List)

				r.Route("/{id}", func(r chi.Router) {
					r.Post("/read", deps.Notifications.MarkRead)
					r.Post("/dismiss", deps.Notifications.Dismiss)
					r.Post("/snooze", deps.Notifications.Snooze)
				})
			})
		})
	})

	return r
}
