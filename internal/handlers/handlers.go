// Package handlers serves the browser dashboard and the JSON API. Handlers
// share one Handler value that carries the session manager and services.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/alexedwards/scs/v2"

	applog "posdash/internal/log"
	"posdash/internal/ratelimit"
	"posdash/internal/services"
)

// Config lists the collaborators a Handler needs.
type Config struct {
	Sessions *scs.SessionManager
	Services *services.Services
	// LoginLimiter throttles sign-in and token requests per client address.
	// Nil disables throttling.
	LoginLimiter *ratelimit.Limiter
	// Ping reports database health for /healthz.
	Ping func(context.Context) error
}

type Handler struct {
	sessions *scs.SessionManager
	svc      *services.Services
	limiter  *ratelimit.Limiter
	ping     func(context.Context) error
}

func New(cfg Config) (*Handler, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("handlers: session manager is required")
	}
	if cfg.Services == nil {
		return nil, errors.New("handlers: services are required")
	}
	return &Handler{
		sessions: cfg.Sessions,
		svc:      cfg.Services,
		limiter:  cfg.LoginLimiter,
		ping:     cfg.Ping,
	}, nil
}

// render writes the partial for HTMX requests and the full page otherwise.
func render(w http.ResponseWriter, r *http.Request, full, partial templ.Component) {
	renderStatus(w, r, http.StatusOK, full, partial)
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, full, partial templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	component := full
	if isHTMX(r) {
		applog.Debug(r.Context(), "rendering HTMX partial", "path", r.URL.Path)
		component = partial
	} else {
		applog.Debug(r.Context(), "rendering full page", "path", r.URL.Path)
	}
	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render component", "path", r.URL.Path, "error", err)
	}
}

// redirect sends the browser to target; HTMX requests get HX-Redirect.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "method not allowed", "method", r.Method, "path", r.URL.Path)
	w.WriteHeader(http.StatusMethodNotAllowed)
}
