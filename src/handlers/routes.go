package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/schakibb/Manehej-back/src/middleware"
)

// AuthBasePath is the prefix of every admin auth route
const AuthBasePath = "/api/admin/auth"

// RouteLimits holds optional per-route rate limit middleware
type RouteLimits struct {
	Login          gin.HandlerFunc
	PasswordChange gin.HandlerFunc
}

// RegisterRoutes mounts the health and admin auth routes
func RegisterRoutes(router *gin.Engine, auth *AuthHandler, health *HealthHandler, gate *middleware.Gate, limits RouteLimits) {
	router.GET("/", health.HandleInfo)
	router.GET("/health", health.HandleHealth)
	router.GET("/ready", health.HandleReady)

	group := router.Group(AuthBasePath)

	// Public
	group.POST("/login", withLimit(limits.Login, auth.HandleLogin)...)
	group.GET("/verify-session", auth.HandleVerifySession)
	group.POST("/refresh-token", auth.HandleRefreshToken)
	group.POST("/logout", auth.HandleLogout)

	// Gated
	protected := group.Group("", gate.RequireAuth(), middleware.RequireAdmin())
	protected.GET("/profile", auth.HandleGetProfile)
	protected.PUT("/profile", auth.HandleUpdateProfile)
	protected.GET("/me", auth.HandleGetProfile)
	protected.PUT("/change-password", withLimit(limits.PasswordChange, auth.HandleChangePassword)...)

	router.NoRoute(NotFound)
}

func withLimit(limit gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if limit == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{limit, h}
}
