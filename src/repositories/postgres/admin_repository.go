package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/schakibb/Manehej-back/src/models"
	"github.com/schakibb/Manehej-back/src/repositories"
)

const adminColumns = `id, name, email, password_hash, role, is_active, last_login, created_at, updated_at`

// AdminRepository implements repositories.AdminRepository using PostgreSQL
type AdminRepository struct {
	db DBTX
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db DBTX) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create inserts a new admin
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admins (id, name, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		admin.ID,
		admin.Name,
		strings.ToLower(admin.Email),
		admin.PasswordHash,
		string(admin.Role),
		admin.IsActive,
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repositories.ErrEmailTaken
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// GetByID retrieves an admin by ID
func (r *AdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	row := r.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
	admin, err := scanAdmin(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin by id: %w", err)
	}
	return admin, nil
}

// GetByEmail retrieves an admin by lower-cased email
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	row := r.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE email = $1`, strings.ToLower(email))
	admin, err := scanAdmin(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}
	return admin, nil
}

// UpdateLastLogin sets last_login
func (r *AdminRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.Exec(ctx, `UPDATE admins SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last_login: %w", err)
	}
	if result.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// UpdateProfile overwrites name and email
func (r *AdminRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string, updatedAt time.Time) (*models.Admin, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE admins SET name = $1, email = $2, updated_at = $3
		WHERE id = $4
		RETURNING `+adminColumns,
		name, strings.ToLower(email), updatedAt, id,
	)
	admin, err := scanAdmin(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repositories.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update admin profile: %w", err)
	}
	return admin, nil
}

// UpdatePassword replaces the password hash
func (r *AdminRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, updatedAt time.Time) error {
	result, err := r.db.Exec(ctx, `UPDATE admins SET password_hash = $1, updated_at = $2 WHERE id = $3`, passwordHash, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Count returns the number of admins
func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

// scanAdmin maps pgx.ErrNoRows to repositories.ErrNotFound
func scanAdmin(row pgx.Row) (*models.Admin, error) {
	admin := &models.Admin{}
	var role string
	err := row.Scan(
		&admin.ID,
		&admin.Name,
		&admin.Email,
		&admin.PasswordHash,
		&role,
		&admin.IsActive,
		&admin.LastLogin,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	admin.Role = models.Role(role)
	return admin, nil
}

var _ repositories.AdminRepository = (*AdminRepository)(nil)
