package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/arvield/cloudnotes/internal/auth"
	"github.com/arvield/cloudnotes/internal/config"
	"github.com/arvield/cloudnotes/internal/errs"
	"github.com/arvield/cloudnotes/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func testServer(cfg *config.Config) *server.Server {
	log := zerolog.Nop()
	return &server.Server{Config: cfg, Logger: &log}
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestAllowedHostsWildcard(t *testing.T) {
	s := testServer(&config.Config{
		Deployment: config.Deployment{AllowedHosts: []string{"*"}},
	})
	mw := NewGlobalMiddlewares(s).AllowedHosts()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "anything.example.com"
	rec := httptest.NewRecorder()

	if err := mw(okHandler)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("wildcard rejected host: %v", err)
	}
}

func TestAllowedHostsEnforcement(t *testing.T) {
	s := testServer(&config.Config{
		Deployment: config.Deployment{AllowedHosts: []string{"cloudnotes-xyz-ew.a.run.app"}},
	})
	mw := NewGlobalMiddlewares(s).AllowedHosts()
	e := echo.New()

	tests := []struct {
		host    string
		allowed bool
	}{
		{"cloudnotes-xyz-ew.a.run.app", true},
		{"cloudnotes-xyz-ew.a.run.app:443", true},
		{"CloudNotes-XYZ-ew.A.RUN.app", true},
		{"evil.example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = tt.host
		rec := httptest.NewRecorder()

		err := mw(okHandler)(e.NewContext(req, rec))
		if tt.allowed && err != nil {
			t.Errorf("host %q rejected: %v", tt.host, err)
		}
		if !tt.allowed {
			httpErr, ok := err.(*errs.HTTPError)
			if !ok {
				t.Errorf("host %q: error = %v, want *errs.HTTPError", tt.host, err)
				continue
			}
			if httpErr.Status != http.StatusBadRequest {
				t.Errorf("host %q: status = %d, want 400", tt.host, httpErr.Status)
			}
		}
	}
}

func TestAuthenticateWithoutCookie(t *testing.T) {
	s := testServer(&config.Config{SecretKey: "secret"})
	mw := NewAuthMiddleware(s).Authenticate()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	rec := httptest.NewRecorder()

	err := mw(okHandler)(e.NewContext(req, rec))
	httpErr, ok := err.(*errs.HTTPError)
	if !ok || httpErr.Status != http.StatusUnauthorized {
		t.Fatalf("error = %v, want 401 *errs.HTTPError", err)
	}
}

func TestAuthenticateValidSession(t *testing.T) {
	s := testServer(&config.Config{SecretKey: "secret"})
	mw := NewAuthMiddleware(s).Authenticate()

	token, err := auth.IssueToken("secret", "user-42", "alice", true, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := mw(func(c echo.Context) error {
		called = true
		if got := GetUserID(c); got != "user-42" {
			t.Errorf("user id in context = %q, want user-42", got)
		}
		if name, _ := c.Get(UserNameKey).(string); name != "alice" {
			t.Errorf("user name in context = %q, want alice", name)
		}
		if super, _ := c.Get(UserSuperuserKey).(bool); !super {
			t.Error("superuser flag lost")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("valid session rejected: %v", err)
	}
	if !called {
		t.Fatal("handler never ran")
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	s := testServer(&config.Config{SecretKey: "secret"})
	mw := NewAuthMiddleware(s).Authenticate()

	token, err := auth.IssueToken("other-secret", "user-42", "alice", false, time.Now())
	if err != nil {
		t.Fatal(err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	rec := httptest.NewRecorder()

	err = mw(okHandler)(e.NewContext(req, rec))
	httpErr, ok := err.(*errs.HTTPError)
	if !ok || httpErr.Status != http.StatusUnauthorized {
		t.Fatalf("error = %v, want 401 *errs.HTTPError", err)
	}
}

func TestRateLimitBurstThenReject(t *testing.T) {
	s := testServer(&config.Config{})
	mw := NewRateLimitMiddleware(s).Limit()
	e := echo.New()

	request := func(ip string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		return mw(okHandler)(e.NewContext(req, rec))
	}

	for i := 0; i < rateLimitBurst; i++ {
		if err := request("10.0.0.1"); err != nil {
			t.Fatalf("request %d within burst rejected: %v", i, err)
		}
	}

	err := request("10.0.0.1")
	echoErr, ok := err.(*echo.HTTPError)
	if !ok || echoErr.Code != http.StatusTooManyRequests {
		t.Fatalf("error after burst = %v, want 429", err)
	}

	// A different client has its own bucket.
	if err := request("10.0.0.2"); err != nil {
		t.Errorf("fresh client rejected: %v", err)
	}
}

func TestRateLimitSeparateClients(t *testing.T) {
	s := testServer(&config.Config{})
	mw := NewRateLimitMiddleware(s).Limit()
	e := echo.New()

	for i := 0; i < rateLimitBurst*2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderXRealIP, "10.0.1."+strconv.Itoa(i))
		rec := httptest.NewRecorder()
		if err := mw(okHandler)(e.NewContext(req, rec)); err != nil {
			t.Fatalf("client %d rejected on first request: %v", i, err)
		}
	}
}

func TestRequestIDGeneratedAndPreserved(t *testing.T) {
	e := echo.New()
	mw := RequestID()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(okHandler)(c); err != nil {
		t.Fatal(err)
	}
	if GetRequestID(c) == "" {
		t.Error("no request id generated")
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("request id not echoed in response header")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "incoming-id")
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	if err := mw(okHandler)(c); err != nil {
		t.Fatal(err)
	}
	if got := GetRequestID(c); got != "incoming-id" {
		t.Errorf("request id = %q, want the incoming one preserved", got)
	}
}
