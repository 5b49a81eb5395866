package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"posdash/internal/backend"
	"posdash/internal/config"
	"posdash/internal/db"
	"posdash/internal/db/mock"
	applog "posdash/internal/log"
	"posdash/internal/server"
	"posdash/internal/session"
)

type serverLifecycle interface {
	Start() error
	Stop() error
}

var (
	loadConfigFunc      = config.Load
	setLogLevelFunc     = applog.SetLevel
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	newBackendFunc      = backend.New
	dialSessionStore    = func(ctx context.Context, url string) (scs.Store, func() error, error) {
		store, err := session.Dial(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	newServerFunc = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	defer func() { _ = applog.Sync() }()

	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}
	if err := setLogLevelFunc(cfg.Logging.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Logging.Level, "error", err)
		return 1
	}

	var database *gorm.DB
	if cfg.Database.UseMock || cfg.Database.URL == "" {
		applog.Info(ctx, "using seeded in-memory database", "email", mock.AdminEmail)
		database, err = newMockDatabaseFunc(ctx)
	} else {
		database, err = configureDatabase(cfg.Database)
	}
	if err != nil {
		applog.Error(ctx, "failed to configure database", "error", err)
		return 1
	}

	client, err := newBackendFunc(backend.Config{
		DB:         database,
		StorageDir: cfg.Storage.Dir,
		PublicURL:  cfg.Server.PublicURL,
		Auth: backend.AuthConfig{
			Secret:                   []byte(cfg.Auth.JWTSecret),
			AccessTokenTTL:           cfg.Auth.AccessTokenTTL,
			RecoveryTokenTTL:         cfg.Auth.RecoveryTokenTTL,
			RequireEmailConfirmation: cfg.Auth.RequireEmailConfirmation,
		},
	})
	if err != nil {
		applog.Error(ctx, "failed to build backend client", "error", err)
		return 1
	}

	sessionCfg := server.SessionConfig{
		Lifetime:     cfg.Auth.Session.Lifetime,
		CookieName:   cfg.Auth.Session.CookieName,
		CookieDomain: cfg.Auth.Session.CookieDomain,
		CookieSecure: cfg.Auth.Session.CookieSecure,
	}
	if cfg.Redis.URL != "" {
		store, closeStore, err := dialSessionStore(ctx, cfg.Redis.URL)
		if err != nil {
			applog.Error(ctx, "failed to connect session store", "error", err)
			return 1
		}
		defer func() { _ = closeStore() }()
		sessionCfg.Store = store
		applog.Info(ctx, "sessions stored in redis")
	}

	srv, err := newServerFunc(server.Config{
		Addr:           cfg.Server.Addr,
		Session:        sessionCfg,
		Backend:        client,
		AllowedOrigins: cfg.API.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		LoginLimit: server.LoginLimit{
			PerMinute: cfg.RateLimit.LoginPerMinute,
			Burst:     cfg.RateLimit.LoginBurst,
		},
	})
	if err != nil {
		applog.Error(ctx, "failed to create server", "error", err)
		return 1
	}

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr)
		errCh <- srv.Start()
	}()

	sigCh, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-sigCh:
		applog.Info(ctx, "shutting down http server", "signal", sig.String())
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		applog.Error(ctx, "server encountered an error", "error", err)
		return 1
	}
	return 0
}
