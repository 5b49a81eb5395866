package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"posdash/internal/backend"
	"posdash/internal/db/mock"
	"posdash/internal/ratelimit"
	"posdash/internal/services"
	"posdash/models"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []backend.Message
}

func (m *recordingMailer) Send(_ context.Context, msg backend.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) lastLink(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("expected an email to be sent")
	}
	body := m.sent[len(m.sent)-1].Body
	idx := strings.Index(body, "http")
	if idx < 0 {
		t.Fatalf("no link in email body %q", body)
	}
	return body[idx:]
}

// testApp drives the full router through the session middleware and keeps
// cookies between requests like a browser would.
type testApp struct {
	handler *Handler
	svc     *services.Services
	mailer  *recordingMailer
	http    http.Handler
	cookies map[string]*http.Cookie
}

type appOption func(*Config)

func withLimiter(l *ratelimit.Limiter) appOption {
	return func(c *Config) { c.LoginLimiter = l }
}

func withPing(ping func(context.Context) error) appOption {
	return func(c *Config) { c.Ping = ping }
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()

	db, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("mock.New() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	mailer := &recordingMailer{}
	client, err := backend.New(backend.Config{
		DB:         db,
		StorageDir: t.TempDir(),
		PublicURL:  "http://pos.test",
		Mailer:     mailer,
		Auth:       backend.AuthConfig{Secret: []byte("handlers-test-secret"), AccessTokenTTL: time.Hour},
	})
	if err != nil {
		t.Fatalf("backend.New() error = %v", err)
	}

	svc := services.New(client)
	sm := scs.New()
	cfg := Config{Sessions: sm, Services: svc, Ping: client.Ping}
	for _, opt := range opts {
		opt(&cfg)
	}
	h, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	router := chi.NewRouter()
	h.Routes(router)
	router.Route("/api/v1", h.APIRoutes)

	return &testApp{
		handler: h,
		svc:     svc,
		mailer:  mailer,
		http:    sm.LoadAndSave(router),
		cookies: map[string]*http.Cookie{},
	}
}

func (a *testApp) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range a.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	a.http.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		a.cookies[c.Name] = c
	}
	return rr
}

func (a *testApp) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (a *testApp) htmxGet(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("HX-Request", "true")
	return a.do(t, req)
}

func httpPostForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func (a *testApp) post(t *testing.T, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, httpPostForm(path, values))
}

func (a *testApp) signIn(t *testing.T) {
	t.Helper()
	rr := a.post(t, "/auth/login", url.Values{"email": {mock.AdminEmail}, "password": {mock.AdminPassword}})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != dashboardPath {
		t.Fatalf("sign in = %d %q, body %s", rr.Code, rr.Header().Get("Location"), rr.Body.String())
	}
}

func (a *testApp) apiToken(t *testing.T) string {
	t.Helper()
	body := `{"email":"` + mock.AdminEmail + `","password":"` + mock.AdminPassword + `"}`
	rr := a.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("token status = %d, body %s", rr.Code, rr.Body.String())
	}
	var session backend.Session
	if err := json.Unmarshal(rr.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return session.AccessToken
}

func (a *testApp) api(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.http.ServeHTTP(rr, req)
	return rr
}

func findCategory(t *testing.T, a *testApp, name string) models.Category {
	t.Helper()
	items, err := a.svc.Categories.List(context.Background(), services.ListOptions{Search: name})
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	for _, c := range items {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("category %q not found", name)
	return models.Category{}
}

func findProduct(t *testing.T, a *testApp, name string) models.Product {
	t.Helper()
	items, err := a.svc.Products.List(context.Background(), services.ListOptions{Search: name})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	for _, p := range items {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not found", name)
	return models.Product{}
}

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Services: &services.Services{}}); err == nil {
		t.Fatal("expected an error without a session manager")
	}
	if _, err := New(Config{Sessions: scs.New()}); err == nil {
		t.Fatal("expected an error without services")
	}
}

func TestIsHTMX(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTMX(req) {
		t.Fatal("expected false when no HTMX headers present")
	}
	req.Header.Set("HX-Request", "true")
	if !isHTMX(req) {
		t.Fatal("expected true when HX-Request header present")
	}
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{services.ValidationError("name", "Name is required"), http.StatusBadRequest},
		{&services.Error{Kind: services.ErrNotFound, Err: errors.New("gone")}, http.StatusNotFound},
		{&services.Error{Kind: services.ErrConflict, Err: errors.New("dup")}, http.StatusConflict},
		{&services.Error{Kind: services.ErrInvalidCredentials, Err: errors.New("nope")}, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Fatalf("statusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	rr := app.get(t, "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}
	var resp healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Time.IsZero() {
		t.Fatalf("unexpected health response %+v", resp)
	}
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, withPing(func(context.Context) error { return errors.New("down") }))
	rr := app.get(t, "/healthz")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"database":"unreachable"`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestHomeRendersLandingAndRedirectsSignedInUsers(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	rr := app.get(t, "/")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `data-page="landing"`) {
		t.Fatalf("landing = %d", rr.Code)
	}

	app.signIn(t)
	rr = app.get(t, "/")
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != dashboardPath {
		t.Fatalf("signed-in home = %d %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	for _, path := range []string{"/dashboard", "/products", "/categories", "/materials", "/recipes"} {
		rr := app.get(t, path)
		if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != loginPath {
			t.Fatalf("GET %s = %d %q", path, rr.Code, rr.Header().Get("Location"))
		}
	}

	rr := app.htmxGet(t, "/dashboard")
	if rr.Header().Get("HX-Redirect") != loginPath {
		t.Fatalf("expected HX-Redirect to login, got %q", rr.Header().Get("HX-Redirect"))
	}
}
