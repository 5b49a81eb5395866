package server

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"posdash/internal/backend"
	"posdash/internal/handlers"
	applog "posdash/internal/log"
)

func newRouter(h *handlers.Handler, storage *backend.Storage, allowedOrigins []string, trustedProxies []netip.Prefix) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(trustedRealIP(trustedProxies))
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)

	applog.Debug(context.Background(), "registering http routes")
	h.Routes(r)

	r.Handle(backend.PublicPathPrefix+"*", storage.Handler())
	applog.Debug(context.Background(), "route registered", "path", backend.PublicPathPrefix, "static", true)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
		h.APIRoutes(r)
	})
	applog.Debug(context.Background(), "route registered", "path", "/api/v1", "origins", len(allowedOrigins))
	return r
}
