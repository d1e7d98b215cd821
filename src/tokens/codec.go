package tokens

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/schakibb/Manehej-back/src/models"
)

// Issuer identifies tokens minted by this service
const Issuer = "manehej-admin-platform"

// MinSecretLength is the minimum signing secret length in bytes
const MinSecretLength = 32

var (
	// ErrTokenInvalid covers malformed, mis-signed and foreign tokens
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired indicates the token is past its expiry
	ErrTokenExpired = errors.New("token expired")

	// ErrSecretTooShort is returned by NewCodec for weak secrets
	ErrSecretTooShort = errors.New("token secret too short")
)

// Payload is the claim bundle shared by access and refresh tokens
type Payload struct {
	AdminID string      `json:"admin_id"`
	Email   string      `json:"email"`
	Role    models.Role `json:"role"`
}

// Claims is the JWT body
type Claims struct {
	Payload
	jwt.RegisteredClaims
}

// Config holds both signing contexts
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Now overrides the clock; nil means time.Now
	Now func() time.Time
}

type signer struct {
	name   string
	secret []byte
	ttl    time.Duration
}

// Codec signs and verifies access and refresh tokens.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	access  signer
	refresh signer
	now     func() time.Time
}

// NewCodec validates secrets and lifetimes
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.AccessSecret) < MinSecretLength {
		return nil, fmt.Errorf("%w: ACCESS_TOKEN_SECRET must be at least %d characters long", ErrSecretTooShort, MinSecretLength)
	}
	if len(cfg.RefreshSecret) < MinSecretLength {
		return nil, fmt.Errorf("%w: REFRESH_TOKEN_SECRET must be at least %d characters long", ErrSecretTooShort, MinSecretLength)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Codec{
		access:  signer{name: "access", secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL},
		refresh: signer{name: "refresh", secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL},
		now:     now,
	}, nil
}

// AccessTTL returns the configured access token lifetime
func (c *Codec) AccessTTL() time.Duration { return c.access.ttl }

// RefreshTTL returns the configured refresh token lifetime
func (c *Codec) RefreshTTL() time.Duration { return c.refresh.ttl }

// IssueAccess mints a short-lived access token
func (c *Codec) IssueAccess(p Payload) (string, error) {
	return c.issue(c.access, p)
}

// IssueRefresh mints a long-lived refresh token
func (c *Codec) IssueRefresh(p Payload) (string, error) {
	return c.issue(c.refresh, p)
}

// VerifyAccess checks an access token and returns its payload
func (c *Codec) VerifyAccess(token string) (Payload, error) {
	return c.verify(c.access, token)
}

// VerifyRefresh checks a refresh token and returns its payload
func (c *Codec) VerifyRefresh(token string) (Payload, error) {
	return c.verify(c.refresh, token)
}

func (c *Codec) issue(s signer, p Payload) (string, error) {
	now := c.now()
	claims := Claims{
		Payload: p,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", s.name, err)
	}
	return signed, nil
}

func (c *Codec) verify(s signer, tokenString string) (Payload, error) {
	if tokenString == "" {
		return Payload{}, ErrTokenInvalid
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Payload{}, fmt.Errorf("%s %w", s.name, ErrTokenExpired)
		}
		return Payload{}, fmt.Errorf("%s %w: %v", s.name, ErrTokenInvalid, err)
	}
	if !token.Valid || claims.AdminID == "" {
		return Payload{}, fmt.Errorf("%s %w", s.name, ErrTokenInvalid)
	}

	return claims.Payload, nil
}

// HashToken returns the hex SHA-256 of a raw token.
// Sessions are looked up by this value so the raw token is never stored.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
