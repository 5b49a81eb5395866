package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"gorm.io/gorm"

	"posdash/internal/backend"
	"posdash/internal/config"
	"posdash/internal/server"
)

type stubServer struct {
	startErr       error
	stopErr        error
	blockUntilStop bool

	startCalled bool
	stopCalled  bool

	startGate   chan struct{}
	startNotify chan struct{}
}

func newStubServer(startErr, stopErr error, block bool) *stubServer {
	s := &stubServer{
		startErr:       startErr,
		stopErr:        stopErr,
		blockUntilStop: block,
		startNotify:    make(chan struct{}),
	}
	if block {
		s.startGate = make(chan struct{})
	}
	return s
}

func (s *stubServer) Start() error {
	s.startCalled = true
	close(s.startNotify)
	if s.blockUntilStop {
		<-s.startGate
	}
	return s.startErr
}

func (s *stubServer) Stop() error {
	s.stopCalled = true
	if s.blockUntilStop {
		close(s.startGate)
	}
	return s.stopErr
}

// restoreHooks puts every injectable function back after the test.
func restoreHooks(t *testing.T) {
	t.Helper()
	originalLoadConfig := loadConfigFunc
	originalSetLogLevel := setLogLevelFunc
	originalMock := newMockDatabaseFunc
	originalConfigure := configureDatabase
	originalBackend := newBackendFunc
	originalDial := dialSessionStore
	originalNewServer := newServerFunc
	originalSubscribe := subscribeShutdownSig

	t.Cleanup(func() {
		loadConfigFunc = originalLoadConfig
		setLogLevelFunc = originalSetLogLevel
		newMockDatabaseFunc = originalMock
		configureDatabase = originalConfigure
		newBackendFunc = originalBackend
		dialSessionStore = originalDial
		newServerFunc = originalNewServer
		subscribeShutdownSig = originalSubscribe
	})

	setLogLevelFunc = func(string) error { return nil }
	newBackendFunc = func(backend.Config) (*backend.Client, error) { return &backend.Client{}, nil }
}

func mockConfig() config.Config {
	return config.Config{
		Server:   config.ServerConfig{Addr: ":8080"},
		Database: config.DatabaseConfig{UseMock: true},
		Logging:  config.LoggingConfig{Level: "debug"},
		Auth: config.AuthConfig{
			Session: config.SessionConfig{
				Lifetime:     time.Hour,
				CookieName:   "test",
				CookieSecure: true,
			},
			JWTSecret: "cmd-server-test-secret",
		},
		Storage:   config.StorageConfig{Dir: "data/storage"},
		RateLimit: config.RateLimitConfig{LoginPerMinute: 10, LoginBurst: 5},
	}
}

func TestRunUsesMockDatabaseWhenConfigured(t *testing.T) {
	restoreHooks(t)

	cfg := mockConfig()
	var mockCalled bool
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	newMockDatabaseFunc = func(ctx context.Context) (*gorm.DB, error) {
		mockCalled = true
		return &gorm.DB{}, nil
	}
	configureDatabase = func(config.DatabaseConfig) (*gorm.DB, error) {
		t.Fatal("configureDatabase should not be called when mock is enabled")
		return nil, nil
	}
	var gotBackend backend.Config
	newBackendFunc = func(c backend.Config) (*backend.Client, error) {
		gotBackend = c
		return &backend.Client{}, nil
	}

	serverStub := newStubServer(http.ErrServerClosed, nil, true)
	var gotServer server.Config
	newServerFunc = func(c server.Config) (serverLifecycle, error) {
		gotServer = c
		return serverStub, nil
	}

	shutdownCh := make(chan os.Signal, 1)
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return shutdownCh, func() {}
	}

	go func() {
		<-serverStub.startNotify
		shutdownCh <- syscall.SIGTERM
	}()

	code := run(context.Background())
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !mockCalled {
		t.Fatal("expected mock database to be used")
	}
	if !serverStub.startCalled || !serverStub.stopCalled {
		t.Fatal("expected server start and stop to be invoked")
	}
	if string(gotBackend.Auth.Secret) != cfg.Auth.JWTSecret || gotBackend.StorageDir != cfg.Storage.Dir {
		t.Fatalf("unexpected backend config %+v", gotBackend)
	}
	if gotServer.Session.CookieName != "test" || gotServer.Session.Store != nil || gotServer.LoginLimit.Burst != 5 {
		t.Fatalf("unexpected server config %+v", gotServer)
	}
}

func TestRunUsesRedisSessionsWhenConfigured(t *testing.T) {
	restoreHooks(t)

	cfg := mockConfig()
	cfg.Redis.URL = "redis://localhost:6379/0"
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) { return &gorm.DB{}, nil }

	store := memstore.New()
	var closed bool
	dialSessionStore = func(_ context.Context, url string) (scs.Store, func() error, error) {
		if url != cfg.Redis.URL {
			t.Fatalf("dialed %q", url)
		}
		return store, func() error { closed = true; return nil }, nil
	}
	serverStub := newStubServer(nil, nil, false)
	newServerFunc = func(c server.Config) (serverLifecycle, error) {
		if c.Session.Store != store {
			t.Fatal("expected the redis store to back sessions")
		}
		return serverStub, nil
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return make(chan os.Signal), func() {}
	}

	if code := run(context.Background()); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !closed {
		t.Fatal("expected session store to be closed on exit")
	}
}

func TestRunFailsWhenSessionStoreUnavailable(t *testing.T) {
	restoreHooks(t)

	cfg := mockConfig()
	cfg.Redis.URL = "redis://localhost:6379/0"
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) { return &gorm.DB{}, nil }
	dialSessionStore = func(context.Context, string) (scs.Store, func() error, error) {
		return nil, nil, errors.New("connection refused")
	}
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		t.Fatal("server should not be built without a session store")
		return nil, nil
	}

	if code := run(context.Background()); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunReturnsErrorWhenServerStartFails(t *testing.T) {
	restoreHooks(t)

	cfg := mockConfig()
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) { return &gorm.DB{}, nil }

	serverStub := newStubServer(errors.New("listener failure"), nil, false)
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		return serverStub, nil
	}

	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return make(chan os.Signal), func() {}
	}

	code := run(context.Background())
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if serverStub.stopCalled {
		t.Fatal("server stop should not be called on start error")
	}
}

func TestRunHandlesDatabaseConfigurationError(t *testing.T) {
	restoreHooks(t)

	cfg := config.Config{
		Server:   config.ServerConfig{Addr: ":8080"},
		Database: config.DatabaseConfig{URL: "postgres://example", UseMock: false},
		Logging:  config.LoggingConfig{Level: "info"},
	}

	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) {
		t.Fatal("mock database should not be used when URL is configured")
		return nil, nil
	}
	configureDatabase = func(config.DatabaseConfig) (*gorm.DB, error) {
		return nil, errors.New("db connection refused")
	}

	code := run(context.Background())
	if code != 1 {
		t.Fatalf("expected exit code 1 on database configuration failure, got %d", code)
	}
}

func TestRunHandlesBackendError(t *testing.T) {
	restoreHooks(t)

	cfg := mockConfig()
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) { return &gorm.DB{}, nil }
	newBackendFunc = func(backend.Config) (*backend.Client, error) {
		return nil, errors.New("storage directory is required")
	}

	if code := run(context.Background()); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunReturnsErrorWhenLogLevelInvalid(t *testing.T) {
	restoreHooks(t)

	cfg := config.Config{Logging: config.LoggingConfig{Level: "invalid"}}
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return errors.New("invalid level") }

	code := run(context.Background())
	if code != 1 {
		t.Fatalf("expected exit code 1 for invalid log level, got %d", code)
	}
}
