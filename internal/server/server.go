package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"posdash/internal/backend"
	"posdash/internal/handlers"
	applog "posdash/internal/log"
	"posdash/internal/ratelimit"
	"posdash/internal/services"
)

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr    string
	Session SessionConfig
	Backend *backend.Client
	// AllowedOrigins lists the origins allowed to call the JSON API from a
	// browser. Empty disables cross-origin access.
	AllowedOrigins []string
	// TrustedProxies lists the peers (IPs or CIDR ranges) allowed to set the
	// client address through X-Forwarded-For and friends.
	TrustedProxies []string
	LoginLimit     LoginLimit
}

// SessionConfig controls session behavior for the HTTP server.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
	// Store overrides the in-memory session store, e.g. with session.RedisStore.
	Store scs.Store
}

// LoginLimit throttles sign-in attempts per client IP.
type LoginLimit struct {
	PerMinute int
	Burst     int
}

// Server wraps an http.Server and exposes helpers for bootstrapping a
// production-ready web service.
type Server struct {
	config     Config
	httpServer *http.Server
	limiter    *ratelimit.Limiter
	stopSweep  context.CancelFunc
}

// New builds a new Server using the provided configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Backend == nil {
		return nil, errors.New("server: backend client is required")
	}
	trustedProxies, err := parseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	applog.Debug(context.Background(), "initializing server",
		"addr", cfg.Addr,
		"sessionLifetime", cfg.Session.Lifetime.String(),
		"sessionCookie", cfg.Session.CookieName,
	)

	sessionCfg := cfg.Session
	if sessionCfg.Lifetime <= 0 {
		applog.Debug(context.Background(), "session lifetime not provided, using default")
		sessionCfg.Lifetime = 12 * time.Hour
	}
	if strings.TrimSpace(sessionCfg.CookieName) == "" {
		applog.Debug(context.Background(), "session cookie name not provided, using default")
		sessionCfg.CookieName = "posdash_session"
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = sessionCfg.Lifetime
	sessionManager.Cookie.Name = sessionCfg.CookieName
	sessionManager.Cookie.Domain = sessionCfg.CookieDomain
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = sessionCfg.CookieSecure
	if sessionCfg.Store != nil {
		sessionManager.Store = sessionCfg.Store
	}

	applog.Debug(context.Background(), "session manager configured",
		"cookieName", sessionCfg.CookieName,
		"cookieDomain", sessionCfg.CookieDomain,
		"cookieSecure", sessionCfg.CookieSecure,
		"sharedStore", sessionCfg.Store != nil,
	)

	limiter := ratelimit.PerMinute(cfg.LoginLimit.PerMinute, cfg.LoginLimit.Burst)
	h, err := handlers.New(handlers.Config{
		Sessions:     sessionManager,
		Services:     services.New(cfg.Backend),
		LoginLimiter: limiter,
		Ping:         cfg.Backend.Ping,
	})
	if err != nil {
		return nil, err
	}

	applog.Debug(context.Background(), "handler dependencies configured")

	handler := sessionManager.LoadAndSave(newRouter(h, cfg.Backend.Storage, cfg.AllowedOrigins, trustedProxies))

	applog.Debug(context.Background(), "http handler chain prepared")

	return &Server{
		config:  cfg,
		limiter: limiter,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopSweep = cancel
	go s.limiter.Run(ctx, time.Minute)

	applog.Debug(ctx, "server starting listener", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	if s.stopSweep != nil {
		s.stopSweep()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	applog.Debug(ctx, "server initiating graceful shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
