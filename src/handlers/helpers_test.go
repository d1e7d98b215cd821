package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schakibb/Manehej-back/src/middleware"
	"github.com/schakibb/Manehej-back/src/models"
	"github.com/schakibb/Manehej-back/src/repositories/memory"
	"github.com/schakibb/Manehej-back/src/services"
	"github.com/schakibb/Manehej-back/src/tokens"
	"golang.org/x/crypto/bcrypt"
)

// Test helpers for handler tests

const (
	testEmail    = "admin@manehej.com"
	testPassword = "Admin@123456"
)

// testServer wires the real router over in-memory repositories and a movable clock
type testServer struct {
	router   *gin.Engine
	auth     *services.AuthService
	admins   *memory.AdminRepository
	sessions *memory.SessionRepository
	now      time.Time
}

func (ts *testServer) clock() time.Time       { return ts.now }
func (ts *testServer) advance(d time.Duration) { ts.now = ts.now.Add(d) }

func newTestServer(t *testing.T, limits RouteLimits) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{now: time.Now()}

	codec, err := tokens.NewCodec(tokens.Config{
		AccessSecret:  "handler-access-secret-0123456789ab",
		RefreshSecret: "handler-refresh-secret-0123456789a",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Now:           ts.clock,
	})
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	ts.admins = memory.NewAdminRepository()
	ts.sessions = memory.NewSessionRepository(ts.clock)
	ts.auth = services.NewAuthService(ts.admins, ts.sessions, codec, services.NewBcryptHasher(bcrypt.MinCost))
	ts.auth.SetClock(ts.clock)

	if _, err := ts.auth.EnsureAdmin(context.Background(), services.SeedAdmin{
		Name:     "System Administrator",
		Email:    testEmail,
		Password: testPassword,
	}); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}

	cookies := &middleware.Cookies{AccessMaxAge: 15 * time.Minute, RefreshMaxAge: 7 * 24 * time.Hour}
	gate := middleware.NewGate(codec, ts.auth, cookies)

	ts.router = gin.New()
	RegisterRoutes(ts.router, NewAuthHandler(ts.auth, cookies, true), NewHealthHandler(nil, models.EnvTest, "test"), gate, limits)
	return ts
}

// do sends a request with optional JSON body and cookies
func (ts *testServer) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// login performs a successful login and returns the cookies it set
func (ts *testServer) login(t *testing.T) (access, refresh *http.Cookie) {
	t.Helper()
	w := ts.do(http.MethodPost, AuthBasePath+"/login", `{"email":"`+testEmail+`","password":"`+testPassword+`"}`)
	assertStatusCode(t, w, http.StatusOK)
	access = findCookie(w, models.AccessTokenCookie)
	refresh = findCookie(w, models.RefreshTokenCookie)
	if access == nil || refresh == nil {
		t.Fatalf("login did not set both cookies: %v", w.Header()["Set-Cookie"])
	}
	return access, refresh
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// assertStatusCode checks if response status code matches expected
func assertStatusCode(t *testing.T, w *httptest.ResponseRecorder, expectedCode int) {
	t.Helper()
	if w.Code != expectedCode {
		t.Errorf("expected status %d, got %d: %s", expectedCode, w.Code, w.Body.String())
	}
}

// decodeResponse parses the JSON envelope
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return response
}

// assertJSONMessage checks the envelope message
func assertJSONMessage(t *testing.T, w *httptest.ResponseRecorder, expected string) {
	t.Helper()
	if got := decodeResponse(t, w)["message"]; got != expected {
		t.Errorf("expected message '%s', got '%v'", expected, got)
	}
}

var errDatabase = errors.New("connection refused")

func seed(email string) services.SeedAdmin {
	return services.SeedAdmin{Name: "Other Admin", Email: email, Password: testPassword}
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
