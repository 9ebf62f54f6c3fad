package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lensloft/gallerybackend/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AdminUsername: "admin",
		AdminPassword: "correct-horse",
		AuthSecret:    "test-secret",
		SessionTTL:    time.Hour,
		Environment:   "test",
	}
}

func doLogin(t *testing.T, h *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := NewAuthHandler(testConfig())

	cases := []string{
		`{"username":"admin","password":"wrong"}`,
		`{"username":"intruder","password":"correct-horse"}`,
	}
	for _, body := range cases {
		rec := doLogin(t, h, body)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("login %s -> %d, want 401", body, rec.Code)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Error("cookie issued for bad credentials")
		}
	}

	if rec := doLogin(t, h, `{"username":"admin"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing password -> %d, want 400", rec.Code)
	}
}

func TestLoginIssuesSessionCookie(t *testing.T) {
	h := NewAuthHandler(testConfig())

	rec := doLogin(t, h, `{"username":"admin","password":"correct-horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login -> %d, want 200", rec.Code)
	}

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no session cookie issued")
	}
	if !session.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
	if session.SameSite != http.SameSiteLaxMode {
		t.Error("session cookie is not SameSite=Lax")
	}

	// the issued cookie satisfies the auth middleware
	protected := RequireAuth(h.Cfg.AuthSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req.AddCookie(session)
	authed := httptest.NewRecorder()
	protected.ServeHTTP(authed, req)
	if authed.Code != http.StatusNoContent {
		t.Errorf("authed request -> %d, want 204", authed.Code)
	}
}

func TestRequireAuthBlocksAnonymousAndForged(t *testing.T) {
	cfg := testConfig()
	protected := RequireAuth(cfg.AuthSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous request -> %d, want 401", rec.Code)
	}

	// a token signed with a different secret must not pass
	other := NewAuthHandler(&config.Config{
		AdminUsername: "admin", AdminPassword: "x",
		AuthSecret: "other-secret", SessionTTL: time.Hour,
	})
	forged, err := other.issueToken("admin")
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/analytics", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: forged})
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("forged token -> %d, want 401", rec.Code)
	}
}

func TestAuthStatus(t *testing.T) {
	h := NewAuthHandler(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	rec := httptest.NewRecorder()
	h.Status(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"authenticated":false`) {
		t.Errorf("anonymous status = %d %s", rec.Code, rec.Body.String())
	}

	token, err := h.issueToken("admin")
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	rec = httptest.NewRecorder()
	h.Status(rec, req)
	if !strings.Contains(rec.Body.String(), `"authenticated":true`) {
		t.Errorf("authed status = %s", rec.Body.String())
	}
}
