package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schakibb/Manehej-back/src/middleware"
	"github.com/schakibb/Manehej-back/src/services"
)

const requestTimeout = 10 * time.Second

// AuthHandler handles admin authentication HTTP requests
type AuthHandler struct {
	authService *services.AuthService
	cookies     *middleware.Cookies
	showDetail  bool
}

// NewAuthHandler creates a new authentication handler.
// showDetail exposes unexpected error text in responses and is meant for development.
func NewAuthHandler(authService *services.AuthService, cookies *middleware.Cookies, showDetail bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		showDetail:  showDetail,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents a partial profile update
type UpdateProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=255"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// HandleLogin handles POST /api/admin/auth/login
func (h *AuthHandler) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	deviceInfo := c.GetHeader("User-Agent")
	if deviceInfo == "" {
		deviceInfo = "unknown"
	}

	result, err := h.authService.Login(ctx, services.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		IPAddress:  c.ClientIP(),
		DeviceInfo: deviceInfo,
	})
	if err != nil {
		RespondError(c, err, h.showDetail)
		return
	}

	h.cookies.SetAccessToken(c, result.AccessToken)
	h.cookies.SetRefreshToken(c, result.RefreshToken)

	RespondSuccess(c, http.StatusOK, "Login successful", result)
}

// HandleVerifySession handles GET /api/admin/auth/verify-session
func (h *AuthHandler) HandleVerifySession(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	payload, err := h.authService.VerifySession(ctx, middleware.CredentialsFrom(c).Refresh)
	if err != nil {
		RespondError(c, err, h.showDetail)
		return
	}

	RespondSuccess(c, http.StatusOK, "Session is valid", payload)
}

// HandleRefreshToken handles POST /api/admin/auth/refresh-token
func (h *AuthHandler) HandleRefreshToken(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	result, err := h.authService.Refresh(ctx, middleware.CredentialsFrom(c).Refresh)
	if err != nil {
		RespondError(c, err, h.showDetail)
		return
	}

	h.cookies.SetAccessToken(c, result.AccessToken)
	RespondSuccess(c, http.StatusOK, "Token refreshed successfully", result)
}

// HandleLogout handles POST /api/admin/auth/logout. It always succeeds.
func (h *AuthHandler) HandleLogout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	h.authService.Logout(ctx, middleware.CredentialsFrom(c).Refresh)
	h.cookies.Clear(c)

	RespondSuccess(c, http.StatusOK, "Logout successful", nil)
}

// HandleGetProfile handles GET /api/admin/auth/profile and /me
func (h *AuthHandler) HandleGetProfile(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	profile, err := h.authService.GetProfile(ctx, principal.AdminID)
	if err != nil {
		RespondError(c, err, h.showDetail)
		return
	}

	RespondSuccess(c, http.StatusOK, "Profile retrieved successfully", profile)
}

// HandleUpdateProfile handles PUT /api/admin/auth/profile
func (h *AuthHandler) HandleUpdateProfile(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	admin, err := h.authService.UpdateProfile(ctx, principal.AdminID, services.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		RespondError(c, err, h.showDetail)
		return
	}

	RespondSuccess(c, http.StatusOK, "Profile updated successfully", admin)
}

// HandleChangePassword handles PUT /api/admin/auth/change-password.
// Every session of the admin is revoked, so the caller's cookies are cleared too.
func (h *AuthHandler) HandleChangePassword(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	err := h.authService.ChangePassword(ctx, principal.AdminID, services.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		RespondError(c, err, h.showDetail)
		return
	}

	h.cookies.Clear(c)
	RespondSuccess(c, http.StatusOK, "Password changed successfully. Please login again.", nil)
}

func (h *AuthHandler) principal(c *gin.Context) (*middleware.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Message: "Admin not authenticated"})
		return nil, false
	}
	return p, true
}
