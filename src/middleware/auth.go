package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schakibb/Manehej-back/src/logging"
	"github.com/schakibb/Manehej-back/src/models"
	"github.com/schakibb/Manehej-back/src/services"
	"github.com/schakibb/Manehej-back/src/tokens"
)

// PrincipalKey is the gin context key for the authenticated admin
const PrincipalKey = "admin"

var (
	// ErrAuthenticationRequired means no usable credentials were presented
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrSessionExpired means the refresh path was attempted and failed
	ErrSessionExpired = errors.New("session expired")

	errUnknownRole = errors.New("unknown role")
)

const (
	msgAuthRequired     = "Access denied. Authentication required."
	msgSessionExpired   = "Session expired. Please login again."
	msgNotAuthenticated = "Admin not authenticated"
	msgForbidden        = "Insufficient permissions"
)

// State is the outcome of classifying a request's credentials
type State int

const (
	StateUnauthenticated State = iota
	StateRejected
	StateAccessValid
	StateRefreshed
)

func (s State) String() string {
	switch s {
	case StateRejected:
		return "rejected"
	case StateAccessValid:
		return "access_valid"
	case StateRefreshed:
		return "refreshed"
	default:
		return "unauthenticated"
	}
}

// Principal is the admin identity attached to an authenticated request
type Principal struct {
	AdminID uuid.UUID   `json:"admin_id"`
	Email   string      `json:"email"`
	Role    models.Role `json:"role"`
}

// Credentials are the raw tokens presented by a client
type Credentials struct {
	Access  string
	Refresh string

	// AccessFallback is a Bearer token sent alongside an access cookie.
	// It is only tried when Access fails to verify.
	AccessFallback string
}

// Decision is the result of Gate.Classify
type Decision struct {
	State          State
	Principal      *Principal
	NewAccessToken string // set only when State is StateRefreshed
	Reason         error  // set only when State is StateRejected
}

// TokenVerifier checks token signatures and expiry
type TokenVerifier interface {
	VerifyAccess(raw string) (tokens.Payload, error)
	VerifyRefresh(raw string) (tokens.Payload, error)
}

// SessionRefresher mints a new access token from a live refresh session
type SessionRefresher interface {
	Refresh(ctx context.Context, rawRefreshToken string) (*services.RefreshResult, error)
}

// Gate decides whether a request is authenticated, refreshing the access
// token transparently when only the refresh token is still good.
type Gate struct {
	verifier  TokenVerifier
	refresher SessionRefresher
	cookies   *Cookies
	log       zerolog.Logger
}

// NewGate creates an authentication gate
func NewGate(verifier TokenVerifier, refresher SessionRefresher, cookies *Cookies) *Gate {
	return &Gate{
		verifier:  verifier,
		refresher: refresher,
		cookies:   cookies,
		log:       logging.NewLogger("auth_gate"),
	}
}

// Classify runs the credential state machine. A valid access token never
// touches the session store.
func (g *Gate) Classify(ctx context.Context, creds Credentials) Decision {
	if creds.Access == "" && creds.Refresh == "" {
		return rejected(ErrAuthenticationRequired)
	}

	for _, access := range []string{creds.Access, creds.AccessFallback} {
		if access == "" {
			continue
		}
		if payload, err := g.verifier.VerifyAccess(access); err == nil {
			if p, err := principalFrom(payload); err == nil {
				return Decision{State: StateAccessValid, Principal: p}
			}
		}
	}

	if creds.Refresh == "" {
		return rejected(ErrAuthenticationRequired)
	}

	payload, err := g.verifier.VerifyRefresh(creds.Refresh)
	if err != nil {
		return rejected(ErrSessionExpired)
	}
	p, err := principalFrom(payload)
	if err != nil {
		return rejected(ErrSessionExpired)
	}

	res, err := g.refresher.Refresh(ctx, creds.Refresh)
	if err != nil {
		if !errors.Is(err, services.ErrAuthenticationFailed) {
			g.log.Error().Err(err).Msg("refresh failed unexpectedly")
		}
		return rejected(ErrSessionExpired)
	}

	return Decision{State: StateRefreshed, Principal: p, NewAccessToken: res.AccessToken}
}

// RequireAuth rejects unauthenticated requests with 401
func (g *Gate) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		d := g.Classify(c.Request.Context(), CredentialsFrom(c))
		if d.State == StateRejected {
			abortWithMessage(c, http.StatusUnauthorized, reasonMessage(d.Reason))
			return
		}

		g.apply(c, d)
		c.Next()
	}
}

// OptionalAuth attaches a principal when it can and never rejects
func (g *Gate) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		creds := CredentialsFrom(c)
		if creds.Access != "" || creds.Refresh != "" {
			if d := g.Classify(c.Request.Context(), creds); d.State != StateRejected {
				g.apply(c, d)
			}
		}
		c.Next()
	}
}

func (g *Gate) apply(c *gin.Context, d Decision) {
	if d.State == StateRefreshed {
		g.cookies.SetAccessToken(c, d.NewAccessToken)
		c.Header(models.AccessTokenHeader, d.NewAccessToken)
	}
	c.Set(PrincipalKey, d.Principal)
}

// RequireRole must run after RequireAuth
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			abortWithMessage(c, http.StatusUnauthorized, msgNotAuthenticated)
			return
		}
		if !slices.Contains(roles, p.Role) {
			abortWithMessage(c, http.StatusForbidden, msgForbidden)
			return
		}
		c.Next()
	}
}

// RequireAdmin allows only the ADMIN role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// GetPrincipal returns the authenticated admin, if any
func GetPrincipal(c *gin.Context) (*Principal, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok && p != nil
}

// CredentialsFrom reads tokens from cookies, falling back to headers.
// A Bearer header sent with an access cookie becomes AccessFallback, so a
// stale cookie does not hide a valid header. The refresh cookie always wins
// over X-Refresh-Token.
func CredentialsFrom(c *gin.Context) Credentials {
	var creds Credentials

	if v, err := c.Cookie(models.AccessTokenCookie); err == nil {
		creds.Access = v
	}
	if v, err := c.Cookie(models.RefreshTokenCookie); err == nil {
		creds.Refresh = v
	}

	if bearer := bearerToken(c.GetHeader("Authorization")); bearer != "" {
		switch {
		case creds.Access == "":
			creds.Access = bearer
		case bearer != creds.Access:
			creds.AccessFallback = bearer
		}
	}
	if creds.Refresh == "" {
		creds.Refresh = strings.TrimSpace(c.GetHeader(models.RefreshTokenHeader))
	}

	return creds
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func principalFrom(p tokens.Payload) (*Principal, error) {
	if !p.Role.Valid() {
		return nil, errUnknownRole
	}
	id, err := uuid.Parse(p.AdminID)
	if err != nil {
		return nil, err
	}
	return &Principal{AdminID: id, Email: p.Email, Role: p.Role}, nil
}

func rejected(reason error) Decision {
	return Decision{State: StateRejected, Reason: reason}
}

func reasonMessage(err error) string {
	if errors.Is(err, ErrSessionExpired) {
		return msgSessionExpired
	}
	return msgAuthRequired
}

func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
