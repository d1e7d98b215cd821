package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/schakibb/Manehej-back/src/models"
	"github.com/schakibb/Manehej-back/src/repositories"
)

const sessionColumns = `id, admin_id, token_hash, ip_address, device_info, expires_at, is_active, last_used_at, created_at`

// SessionRepository implements repositories.SessionRepository using PostgreSQL.
// Every method is a single statement; row atomicity is left to the database.
type SessionRepository struct {
	db  DBTX
	now func() time.Time
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admin_sessions (id, admin_id, token_hash, ip_address, device_info, expires_at, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		session.ID,
		session.AdminID,
		session.TokenHash,
		session.IPAddress,
		session.DeviceInfo,
		session.ExpiresAt,
		session.IsActive,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindActiveByHash retrieves a usable session by token hash
func (r *SessionRepository) FindActiveByHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM admin_sessions
		WHERE token_hash = $1 AND is_active = true AND expires_at > $2
		LIMIT 1
	`, tokenHash, r.now())

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// DeactivateByHash marks the matching session inactive
func (r *SessionRepository) DeactivateByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE admin_sessions SET is_active = false
		WHERE token_hash = $1 AND is_active = true
	`, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}
	return nil
}

// DeactivateAllForAdmin marks every active session of the admin inactive
func (r *SessionRepository) DeactivateAllForAdmin(ctx context.Context, adminID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE admin_sessions SET is_active = false
		WHERE admin_id = $1 AND is_active = true
	`, adminID)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate admin sessions: %w", err)
	}
	return result.RowsAffected(), nil
}

// TouchLastUsed updates last_used_at
func (r *SessionRepository) TouchLastUsed(ctx context.Context, sessionID uuid.UUID, at time.Time) error {
	result, err := r.db.Exec(ctx, `UPDATE admin_sessions SET last_used_at = $1 WHERE id = $2`, at, sessionID)
	if err != nil {
		return fmt.Errorf("failed to update last_used_at: %w", err)
	}
	if result.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// ListActiveForAdmin returns the admin's usable sessions, newest first
func (r *SessionRepository) ListActiveForAdmin(ctx context.Context, adminID uuid.UUID) ([]models.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM admin_sessions
		WHERE admin_id = $1 AND is_active = true AND expires_at > $2
		ORDER BY created_at DESC
	`, adminID, r.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// PurgeExpired deletes every expired session and returns the count
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM admin_sessions WHERE expires_at < $1`, r.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}

func scanSession(row pgx.Row) (*models.Session, error) {
	s := &models.Session{}
	err := row.Scan(
		&s.ID,
		&s.AdminID,
		&s.TokenHash,
		&s.IPAddress,
		&s.DeviceInfo,
		&s.ExpiresAt,
		&s.IsActive,
		&s.LastUsedAt,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

var _ repositories.SessionRepository = (*SessionRepository)(nil)
