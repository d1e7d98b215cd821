package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schakibb/Manehej-back/src/middleware"
	"github.com/schakibb/Manehej-back/src/models"
	"github.com/schakibb/Manehej-back/src/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleLogin_Success(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})

	w := ts.do(http.MethodPost, AuthBasePath+"/login", `{"email":"ADMIN@manehej.com","password":"`+testPassword+`"}`)
	assertStatusCode(t, w, http.StatusOK)

	resp := decodeResponse(t, w)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Login successful", resp["message"])

	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])
	admin := data["admin"].(map[string]interface{})
	assert.Equal(t, testEmail, admin["email"])
	assert.NotContains(t, w.Body.String(), "password_hash")

	access := findCookie(w, models.AccessTokenCookie)
	refresh := findCookie(w, models.RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.Equal(t, 900, access.MaxAge)
	assert.Equal(t, 7*24*3600, refresh.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, refresh.SameSite)
	assert.Equal(t, "/", refresh.Path)
}

func TestHandleLogin_Failures(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"wrong password", `{"email":"admin@manehej.com","password":"Nope@123456"}`, http.StatusUnauthorized, "Invalid email or password"},
		{"unknown email", `{"email":"ghost@manehej.com","password":"` + testPassword + `"}`, http.StatusUnauthorized, "Invalid email or password"},
		{"missing password", `{"email":"admin@manehej.com"}`, http.StatusBadRequest, "Validation failed"},
		{"bad email", `{"email":"not-an-email","password":"x"}`, http.StatusBadRequest, "Validation failed"},
		{"malformed json", `{"email":`, http.StatusBadRequest, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPost, AuthBasePath+"/login", tt.body)
			assertStatusCode(t, w, tt.status)
			assertJSONMessage(t, w, tt.message)
			assert.Nil(t, findCookie(w, models.RefreshTokenCookie))
		})
	}
}

func TestHandleLogin_BindingErrorsNameFields(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})

	w := ts.do(http.MethodPost, AuthBasePath+"/login", `{"email":"admin@manehej.com"}`)
	assertStatusCode(t, w, http.StatusBadRequest)

	errs, ok := decodeResponse(t, w)["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errs, 1)
	first := errs[0].(map[string]interface{})
	assert.Equal(t, "password", first["field"])
	assert.Equal(t, "password is required", first["message"])
}

func TestHandleLogin_RateLimited(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(middleware.RateLimitConfig{Max: 2, Window: time.Minute, Message: "Too many login attempts, please try again later."})
	t.Cleanup(limiter.Stop)
	ts := newTestServer(t, RouteLimits{Login: limiter.Middleware()})

	body := `{"email":"admin@manehej.com","password":"Wrong@123456"}`
	for i := 0; i < 2; i++ {
		assertStatusCode(t, ts.do(http.MethodPost, AuthBasePath+"/login", body), http.StatusUnauthorized)
	}
	w := ts.do(http.MethodPost, AuthBasePath+"/login", body)
	assertStatusCode(t, w, http.StatusTooManyRequests)
	assertJSONMessage(t, w, "Too many login attempts, please try again later.")
}

// A refresh token alone keeps a client signed in after the access token expires.
func TestGatedRoute_RefreshesExpiredAccessToken(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})
	access, refresh := ts.login(t)

	w := ts.do(http.MethodGet, AuthBasePath+"/me", "", access)
	assertStatusCode(t, w, http.StatusOK)
	assert.Empty(t, w.Header().Get(models.AccessTokenHeader))

	ts.advance(16 * time.Minute)

	w = ts.do(http.MethodGet, AuthBasePath+"/me", "", access)
	assertStatusCode(t, w, http.StatusUnauthorized)
	assertJSONMessage(t, w, "Access denied. Authentication required.")

	w = ts.do(http.MethodGet, AuthBasePath+"/profile", "", refresh)
	assertStatusCode(t, w, http.StatusOK)

	renewed := findCookie(w, models.AccessTokenCookie)
	require.NotNil(t, renewed)
	assert.NotEqual(t, access.Value, renewed.Value)
	assert.Equal(t, renewed.Value, w.Header().Get(models.AccessTokenHeader))

	payload, err := ts.auth.Codec().VerifyAccess(renewed.Value)
	require.NoError(t, err)
	assert.Equal(t, testEmail, payload.Email)

	// the new access token works on its own
	w = ts.do(http.MethodGet, AuthBasePath+"/me", "", renewed)
	assertStatusCode(t, w, http.StatusOK)
}

func TestGatedRoute_RejectsAfterLogout(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})
	_, refresh := ts.login(t)

	w := ts.do(http.MethodPost, AuthBasePath+"/logout", "", refresh)
	assertStatusCode(t, w, http.StatusOK)
	assertJSONMessage(t, w, "Logout successful")

	cleared := findCookie(w, models.RefreshTokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.MaxAge < 0)

	w = ts.do(http.MethodGet, AuthBasePath+"/me", "", refresh)
	assertStatusCode(t, w, http.StatusUnauthorized)
	assertJSONMessage(t, w, "Session expired. Please login again.")
}

func TestHandleLogout_WithoutTokenStillSucceeds(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})

	w := ts.do(http.MethodPost, AuthBasePath+"/logout", "")
	assertStatusCode(t, w, http.StatusOK)

	w = ts.do(http.MethodPost, AuthBasePath+"/logout", "", &http.Cookie{Name: models.RefreshTokenCookie, Value: "garbage"})
	assertStatusCode(t, w, http.StatusOK)
}

func TestHandleRefreshToken(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})
	_, refresh := ts.login(t)

	w := ts.do(http.MethodPost, AuthBasePath+"/refresh-token", "", refresh)
	assertStatusCode(t, w, http.StatusOK)
	assertJSONMessage(t, w, "Token refreshed successfully")
	require.NotNil(t, findCookie(w, models.AccessTokenCookie))
	assert.Nil(t, findCookie(w, models.RefreshTokenCookie))

	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.NotEmpty(t, data["accessToken"])

	w = ts.do(http.MethodPost, AuthBasePath+"/refresh-token", "")
	assertStatusCode(t, w, http.StatusUnauthorized)
	assertJSONMessage(t, w, "Invalid or expired refresh token")
}

func TestHandleRefreshToken_HeaderBinding(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})
	_, refresh := ts.login(t)

	req, _ := http.NewRequest(http.MethodPost, AuthBasePath+"/refresh-token", nil)
	req.Header.Set(models.RefreshTokenHeader, refresh.Value)
	w := serve(ts.router, req)
	assertStatusCode(t, w, http.StatusOK)
}

func TestHandleVerifySession(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})
	_, refresh := ts.login(t)

	w := ts.do(http.MethodGet, AuthBasePath+"/verify-session", "", refresh)
	assertStatusCode(t, w, http.StatusOK)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, testEmail, data["email"])
	assert.Equal(t, string(models.RoleAdmin), data["role"])

	ts.advance(8 * 24 * time.Hour)
	w = ts.do(http.MethodGet, AuthBasePath+"/verify-session", "", refresh)
	assertStatusCode(t, w, http.StatusUnauthorized)
}

func TestHandleGetProfile(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})
	access, _ := ts.login(t)

	w := ts.do(http.MethodGet, AuthBasePath+"/profile", "", access)
	assertStatusCode(t, w, http.StatusOK)
	assertJSONMessage(t, w, "Profile retrieved successfully")

	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "System Administrator", data["name"])
	assert.Equal(t, float64(1), data["active_sessions"])
}

func TestHandleGetProfile_AdminVanished(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})

	token, err := ts.auth.Codec().IssueAccess(tokens.Payload{
		AdminID: "6f1c4a8e-8f4f-4f5e-9c53-2b7f3b0c9d11",
		Email:   "gone@manehej.com",
		Role:    models.RoleAdmin,
	})
	require.NoError(t, err)

	w := ts.do(http.MethodGet, AuthBasePath+"/me", "", &http.Cookie{Name: models.AccessTokenCookie, Value: token})
	assertStatusCode(t, w, http.StatusNotFound)
	assertJSONMessage(t, w, "Admin not found")
}

func TestHandleUpdateProfile(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})
	access, _ := ts.login(t)

	w := ts.do(http.MethodPut, AuthBasePath+"/profile", `{"name":"Head Admin"}`, access)
	assertStatusCode(t, w, http.StatusOK)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Head Admin", data["name"])
	assert.Equal(t, testEmail, data["email"])

	w = ts.do(http.MethodPut, AuthBasePath+"/profile", `{"name":"A"}`, access)
	assertStatusCode(t, w, http.StatusBadRequest)

	w = ts.do(http.MethodPut, AuthBasePath+"/profile", `{"email":"nope"}`, access)
	assertStatusCode(t, w, http.StatusBadRequest)

	w = ts.do(http.MethodPut, AuthBasePath+"/profile", `{"name":"Nobody"}`)
	assertStatusCode(t, w, http.StatusUnauthorized)
}

func TestHandleUpdateProfile_Conflict(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})
	access, _ := ts.login(t)

	if _, err := ts.auth.EnsureAdmin(t.Context(), seed("other@manehej.com")); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}

	w := ts.do(http.MethodPut, AuthBasePath+"/profile", `{"email":"Other@manehej.com"}`, access)
	assertStatusCode(t, w, http.StatusConflict)
	assertJSONMessage(t, w, "Email already exists")
}

func TestHandleChangePassword(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})
	access, refresh := ts.login(t)

	w := ts.do(http.MethodPut, AuthBasePath+"/change-password",
		`{"current_password":"Wrong@123456","new_password":"Fresh#2026ab","confirm_password":"Fresh#2026ab"}`, access)
	assertStatusCode(t, w, http.StatusUnauthorized)
	assertJSONMessage(t, w, "Current password is incorrect")

	w = ts.do(http.MethodPut, AuthBasePath+"/change-password",
		`{"current_password":"`+testPassword+`","new_password":"Fresh#2026ab","confirm_password":"Other#2026ab"}`, access)
	assertStatusCode(t, w, http.StatusBadRequest)

	w = ts.do(http.MethodPut, AuthBasePath+"/change-password",
		`{"current_password":"`+testPassword+`","new_password":"weak","confirm_password":"weak"}`, access)
	assertStatusCode(t, w, http.StatusBadRequest)

	w = ts.do(http.MethodPut, AuthBasePath+"/change-password",
		`{"current_password":"`+testPassword+`","new_password":"Fresh#2026ab","confirm_password":"Fresh#2026ab"}`, access)
	assertStatusCode(t, w, http.StatusOK)
	assertJSONMessage(t, w, "Password changed successfully. Please login again.")
	cleared := findCookie(w, models.AccessTokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// the old refresh session is gone
	w = ts.do(http.MethodPost, AuthBasePath+"/refresh-token", "", refresh)
	assertStatusCode(t, w, http.StatusUnauthorized)

	w = ts.do(http.MethodPost, AuthBasePath+"/login", `{"email":"admin@manehej.com","password":"Fresh#2026ab"}`)
	assertStatusCode(t, w, http.StatusOK)
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t, RouteLimits{})

	w := ts.do(http.MethodGet, "/api/admin/unknown", "")
	assertStatusCode(t, w, http.StatusNotFound)
	assertJSONMessage(t, w, "Route /api/admin/unknown not found")
}

func TestRespondError_HidesUnexpectedDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, show := range []bool{false, true} {
		router := gin.New()
		router.GET("/boom", func(c *gin.Context) {
			RespondError(c, errDatabase, show)
		})

		req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
		w := serve(router, req)
		assertStatusCode(t, w, http.StatusInternalServerError)
		assertJSONMessage(t, w, "Internal Server Error")
		assert.Equal(t, show, strings.Contains(w.Body.String(), "connection refused"))
	}
}
