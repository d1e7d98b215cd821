package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schakibb/Manehej-back/src/logging"
	"github.com/schakibb/Manehej-back/src/models"
	"github.com/schakibb/Manehej-back/src/repositories"
	"github.com/schakibb/Manehej-back/src/tokens"
)

// AuthService runs the login, refresh, logout and password workflows
type AuthService struct {
	admins   repositories.AdminRepository
	sessions repositories.SessionRepository
	codec    *tokens.Codec
	hasher   PasswordHasher
	now      func() time.Time
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new authentication service
func NewAuthService(admins repositories.AdminRepository, sessions repositories.SessionRepository, codec *tokens.Codec, hasher PasswordHasher) *AuthService {
	return &AuthService{
		admins:   admins,
		sessions: sessions,
		codec:    codec,
		hasher:   hasher,
		now:      time.Now,
		log:      logging.NewLogger("auth_service"),
	}
}

// SetClock replaces the clock used for timestamps and expiries
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// Codec exposes the token codec used by the service
func (s *AuthService) Codec() *tokens.Codec {
	return s.codec
}

// LoginInput carries credentials plus advisory client details
type LoginInput struct {
	Email      string
	Password   string
	IPAddress  string
	DeviceInfo string
}

// LoginResult is returned on successful login
type LoginResult struct {
	Admin        models.PublicAdmin `json:"admin"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
}

// RefreshResult carries a newly minted access token
type RefreshResult struct {
	AccessToken string         `json:"accessToken"`
	Payload     tokens.Payload `json:"-"`
}

// ChangePasswordInput is the change-password request
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// UpdateProfileInput is a partial profile update; nil fields are left alone
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

// Profile is the admin profile view
type Profile struct {
	models.PublicAdmin
	ActiveSessions int `json:"active_sessions"`
}

// Login verifies credentials, issues a token pair and records the refresh session.
// Unknown email, inactive account and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := NormalizeEmail(in.Email)
	invalid := newError(ErrAuthenticationFailed, msgInvalidCredentials)

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// keep timing close to the wrong-password path
			s.hasher.Compare(s.fakeHash(), in.Password)
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	passwordOK := s.hasher.Compare(admin.PasswordHash, in.Password)
	if !passwordOK || !admin.IsActive {
		s.log.Info().
			Str("admin_id", admin.ID.String()).
			Bool("active", admin.IsActive).
			Msg("login rejected")
		return nil, invalid
	}

	now := s.now()
	if err := s.admins.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		s.log.Warn().Err(err).Str("admin_id", admin.ID.String()).Msg("failed to update last_login")
	} else {
		admin.LastLogin = &now
	}

	payload := payloadFor(admin)
	accessToken, err := s.codec.IssueAccess(payload)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.IssueRefresh(payload)
	if err != nil {
		return nil, err
	}

	// The session must exist before the refresh token leaves this function.
	session := &models.Session{
		ID:         uuid.New(),
		AdminID:    admin.ID,
		TokenHash:  tokens.HashToken(refreshToken),
		IPAddress:  in.IPAddress,
		DeviceInfo: in.DeviceInfo,
		ExpiresAt:  now.Add(s.codec.RefreshTTL()),
		IsActive:   true,
		CreatedAt:  now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.Info().
		Str("admin_id", admin.ID.String()).
		Str("session_id", session.ID.String()).
		Str("ip", in.IPAddress).
		Msg("admin logged in")

	return &LoginResult{
		Admin:        admin.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh mints a new access token from a refresh token backed by a live session.
// The refresh token itself is neither rotated nor extended.
func (s *AuthService) Refresh(ctx context.Context, rawRefreshToken string) (*RefreshResult, error) {
	session, admin, err := s.resolveSession(ctx, rawRefreshToken)
	if err != nil {
		return nil, err
	}

	payload := payloadFor(admin)
	accessToken, err := s.codec.IssueAccess(payload)
	if err != nil {
		return nil, err
	}

	s.touch(ctx, session.ID)

	return &RefreshResult{AccessToken: accessToken, Payload: payload}, nil
}

// VerifySession reports who owns a refresh token's live session
func (s *AuthService) VerifySession(ctx context.Context, rawRefreshToken string) (*tokens.Payload, error) {
	session, admin, err := s.resolveSession(ctx, rawRefreshToken)
	if err != nil {
		return nil, err
	}

	s.touch(ctx, session.ID)

	payload := payloadFor(admin)
	return &payload, nil
}

// Logout deactivates the session behind a refresh token. It never fails.
func (s *AuthService) Logout(ctx context.Context, rawRefreshToken string) {
	if rawRefreshToken == "" {
		return
	}
	if err := s.sessions.DeactivateByHash(ctx, tokens.HashToken(rawRefreshToken)); err != nil {
		s.log.Warn().Err(err).Msg("failed to deactivate session on logout")
	}
}

// ChangePassword replaces the password and deactivates every session of the
// admin, including the one making the request.
func (s *AuthService) ChangePassword(ctx context.Context, adminID uuid.UUID, in ChangePasswordInput) error {
	if in.NewPassword != in.ConfirmPassword {
		return newError(ErrValidationFailed, msgPasswordMismatch)
	}

	admin, err := s.getAdmin(ctx, adminID)
	if err != nil {
		return err
	}

	if !s.hasher.Compare(admin.PasswordHash, in.CurrentPassword) {
		return newError(ErrAuthenticationFailed, msgWrongPassword)
	}

	if err := ValidatePasswordStrength(in.NewPassword); err != nil {
		return &Error{Kind: ErrValidationFailed, Message: err.Error()}
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return err
	}

	if err := s.admins.UpdatePassword(ctx, adminID, hash, s.now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return newError(ErrNotFound, msgAdminNotFound)
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	n, err := s.sessions.DeactivateAllForAdmin(ctx, adminID)
	if err != nil {
		return fmt.Errorf("failed to invalidate sessions: %w", err)
	}

	s.log.Info().
		Str("admin_id", adminID.String()).
		Int64("sessions_invalidated", n).
		Msg("password changed")
	return nil
}

// GetProfile returns the admin's public profile
func (s *AuthService) GetProfile(ctx context.Context, adminID uuid.UUID) (*Profile, error) {
	admin, err := s.getAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{PublicAdmin: admin.Public()}
	sessions, err := s.sessions.ListActiveForAdmin(ctx, adminID)
	if err != nil {
		s.log.Warn().Err(err).Str("admin_id", adminID.String()).Msg("failed to count sessions")
	} else {
		profile.ActiveSessions = len(sessions)
	}
	return profile, nil
}

// UpdateProfile applies a partial name/email update
func (s *AuthService) UpdateProfile(ctx context.Context, adminID uuid.UUID, in UpdateProfileInput) (*models.PublicAdmin, error) {
	admin, err := s.getAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	name := admin.Name
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
	}

	email := admin.Email
	if in.Email != nil {
		email = NormalizeEmail(*in.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
	}

	if email != admin.Email {
		other, err := s.admins.GetByEmail(ctx, email)
		switch {
		case err == nil && other.ID != admin.ID:
			return nil, newError(ErrConflict, msgEmailExists)
		case err != nil && !errors.Is(err, repositories.ErrNotFound):
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
	}

	updated, err := s.admins.UpdateProfile(ctx, adminID, name, email, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrEmailTaken):
			return nil, newError(ErrConflict, msgEmailExists)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, newError(ErrNotFound, msgAdminNotFound)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	public := updated.Public()
	return &public, nil
}

// CleanupExpiredSessions deletes expired sessions and returns how many went
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("expired sessions purged")
	}
	return n, nil
}

func (s *AuthService) resolveSession(ctx context.Context, raw string) (*models.Session, *models.Admin, error) {
	invalid := newError(ErrAuthenticationFailed, msgInvalidRefreshToken)
	if raw == "" {
		return nil, nil, invalid
	}

	session, err := s.sessions.FindActiveByHash(ctx, tokens.HashToken(raw))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, invalid
		}
		return nil, nil, fmt.Errorf("failed to find session: %w", err)
	}

	// Deactivated admins lose their refresh sessions here, not in the store.
	admin, err := s.admins.GetByID(ctx, session.AdminID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, invalid
		}
		return nil, nil, fmt.Errorf("failed to load session owner: %w", err)
	}
	if !admin.IsActive {
		return nil, nil, invalid
	}

	return session, admin, nil
}

func (s *AuthService) getAdmin(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, msgAdminNotFound)
		}
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}
	return admin, nil
}

// touch is best-effort
func (s *AuthService) touch(ctx context.Context, sessionID uuid.UUID) {
	if err := s.sessions.TouchLastUsed(ctx, sessionID, s.now()); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("failed to update session last_used_at")
	}
}

func (s *AuthService) fakeHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("not-a-real-password")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func payloadFor(admin *models.Admin) tokens.Payload {
	return tokens.Payload{
		AdminID: admin.ID.String(),
		Email:   admin.Email,
		Role:    admin.Role,
	}
}

func validateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 2 || n > 255 {
		return newError(ErrValidationFailed, "Name must be between 2 and 255 characters")
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return newError(ErrValidationFailed, "Please provide a valid email address")
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
