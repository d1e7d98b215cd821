package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schakibb/Manehej-back/src/models"
)

// Cookies writes the HttpOnly auth cookies
type Cookies struct {
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

// SetAccessToken writes the access token cookie
func (ck *Cookies) SetAccessToken(c *gin.Context, token string) {
	ck.set(c, models.AccessTokenCookie, token, maxAgeSeconds(ck.AccessMaxAge))
}

// SetRefreshToken writes the refresh token cookie
func (ck *Cookies) SetRefreshToken(c *gin.Context, token string) {
	ck.set(c, models.RefreshTokenCookie, token, maxAgeSeconds(ck.RefreshMaxAge))
}

// Clear expires both auth cookies
func (ck *Cookies) Clear(c *gin.Context) {
	ck.set(c, models.AccessTokenCookie, "", -1)
	ck.set(c, models.RefreshTokenCookie, "", -1)
}

func (ck *Cookies) set(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   ck.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Set-Cookie wants whole seconds
func maxAgeSeconds(d time.Duration) int {
	s := int(d / time.Second)
	if s <= 0 {
		return 1
	}
	return s
}
