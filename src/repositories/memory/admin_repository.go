package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schakibb/Manehej-back/src/models"
	"github.com/schakibb/Manehej-back/src/repositories"
)

// AdminRepository keeps admins in process memory
type AdminRepository struct {
	mu     sync.RWMutex
	admins map[uuid.UUID]*models.Admin
}

// NewAdminRepository creates an empty admin repository
func NewAdminRepository() *AdminRepository {
	return &AdminRepository{admins: make(map[uuid.UUID]*models.Admin)}
}

func (r *AdminRepository) Create(_ context.Context, admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(admin.Email)
	for _, existing := range r.admins {
		if existing.Email == email {
			return repositories.ErrEmailTaken
		}
	}

	stored := *admin
	stored.Email = email
	r.admins[admin.ID] = &stored
	return nil
}

func (r *AdminRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	admin, ok := r.admins[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *admin
	return &cp, nil
}

func (r *AdminRepository) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, admin := range r.admins {
		if admin.Email == email {
			cp := *admin
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *AdminRepository) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	admin, ok := r.admins[id]
	if !ok {
		return repositories.ErrNotFound
	}
	admin.LastLogin = &at
	return nil
}

func (r *AdminRepository) UpdateProfile(_ context.Context, id uuid.UUID, name, email string, updatedAt time.Time) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	admin, ok := r.admins[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}

	email = strings.ToLower(email)
	for otherID, other := range r.admins {
		if otherID != id && other.Email == email {
			return nil, repositories.ErrEmailTaken
		}
	}

	admin.Name = name
	admin.Email = email
	admin.UpdatedAt = updatedAt
	cp := *admin
	return &cp, nil
}

func (r *AdminRepository) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	admin, ok := r.admins[id]
	if !ok {
		return repositories.ErrNotFound
	}
	admin.PasswordHash = passwordHash
	admin.UpdatedAt = updatedAt
	return nil
}

func (r *AdminRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.admins)), nil
}

// SetActive toggles an admin's is_active flag
func (r *AdminRepository) SetActive(id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	admin, ok := r.admins[id]
	if !ok {
		return repositories.ErrNotFound
	}
	admin.IsActive = active
	return nil
}

var _ repositories.AdminRepository = (*AdminRepository)(nil)
