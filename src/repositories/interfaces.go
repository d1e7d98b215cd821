package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/schakibb/Manehej-back/src/models"
)

var (
	// ErrNotFound indicates no matching row
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken indicates the email is owned by another admin
	ErrEmailTaken = errors.New("email already exists")
)

// AdminRepository defines the interface for admin data access.
// Emails are compared lower-cased.
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateProfile(ctx context.Context, id uuid.UUID, name, email string, updatedAt time.Time) (*models.Admin, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, updatedAt time.Time) error
	Count(ctx context.Context) (int64, error)
}

// SessionRepository defines the interface for refresh-session data access.
// Sessions are addressed by the hash of their refresh token.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error

	// FindActiveByHash returns ErrNotFound unless the session is active and unexpired
	FindActiveByHash(ctx context.Context, tokenHash string) (*models.Session, error)

	// DeactivateByHash is a no-op when nothing matches
	DeactivateByHash(ctx context.Context, tokenHash string) error

	DeactivateAllForAdmin(ctx context.Context, adminID uuid.UUID) (int64, error)
	TouchLastUsed(ctx context.Context, sessionID uuid.UUID, at time.Time) error
	ListActiveForAdmin(ctx context.Context, adminID uuid.UUID) ([]models.Session, error)

	// PurgeExpired deletes expired rows regardless of is_active
	PurgeExpired(ctx context.Context) (int64, error)
}
