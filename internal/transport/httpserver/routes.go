package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"hotel-ops-go/internal/config"
	"hotel-ops-go/internal/transport/httpserver/handler"
	authmw "hotel-ops-go/internal/transport/httpserver/middleware"
	"hotel-ops-go/pkg/logger"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.Sync.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		auth := authmw.NewIdentityAuth(cfg.Auth, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Route("/sync", func(r chi.Router) {
				r.Post("/pull", handlers.Pull)
				r.Post("/push", handlers.Push)
				r.Get("/status", handlers.SyncStatus)
				r.Post("/logout", handlers.Logout)
				r.Get("/devices", handlers.ListDevices)
				r.Post("/conflicts/resolve", handlers.ResolveConflict)
			})
		})
	})

	return r
}
