package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/schakibb/Manehej-back/src/models"
	"github.com/schakibb/Manehej-back/src/repositories"
)

// SeedAdmin describes an admin to create at startup
type SeedAdmin struct {
	Name     string
	Email    string
	Password string
}

// EnsureAdmin creates the admin unless one with the same email already exists.
// It reports whether a row was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, seed SeedAdmin) (bool, error) {
	email := NormalizeEmail(seed.Email)
	if err := validateEmail(email); err != nil {
		return false, err
	}
	name := strings.TrimSpace(seed.Name)
	if name == "" {
		name = "System Administrator"
	}
	if err := validateName(name); err != nil {
		return false, err
	}

	_, err := s.admins.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return false, fmt.Errorf("failed to check admin: %w", err)
	}

	if err := ValidatePasswordStrength(seed.Password); err != nil {
		return false, &Error{Kind: ErrValidationFailed, Message: err.Error()}
	}

	hash, err := s.hasher.Hash(seed.Password)
	if err != nil {
		return false, err
	}

	now := s.now()
	admin := &models.Admin{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		// lost a race with another instance seeding the same email
		if errors.Is(err, repositories.ErrEmailTaken) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	s.log.Info().Str("admin_id", admin.ID.String()).Str("email", email).Msg("admin seeded")
	return true, nil
}

// SeedAdmins runs EnsureAdmin for each seed and returns how many were created
func (s *AuthService) SeedAdmins(ctx context.Context, seeds []SeedAdmin) (int, error) {
	created := 0
	for _, seed := range seeds {
		ok, err := s.EnsureAdmin(ctx, seed)
		if err != nil {
			return created, fmt.Errorf("failed to seed admin %s: %w", seed.Email, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// AdminCount returns how many admin accounts exist
func (s *AuthService) AdminCount(ctx context.Context) (int64, error) {
	n, err := s.admins.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return n, nil
}
