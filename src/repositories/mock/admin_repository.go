package mock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schakibb/Manehej-back/src/models"
	"github.com/schakibb/Manehej-back/src/repositories"
)

// AdminRepository is a mock implementation of repositories.AdminRepository
type AdminRepository struct {
	// Function stubs that can be overridden in tests
	CreateFunc          func(ctx context.Context, admin *models.Admin) error
	GetByIDFunc         func(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	GetByEmailFunc      func(ctx context.Context, email string) (*models.Admin, error)
	UpdateLastLoginFunc func(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateProfileFunc   func(ctx context.Context, id uuid.UUID, name, email string, updatedAt time.Time) (*models.Admin, error)
	UpdatePasswordFunc  func(ctx context.Context, id uuid.UUID, passwordHash string, updatedAt time.Time) error
	CountFunc           func(ctx context.Context) (int64, error)

	// Call tracking
	Calls map[string][]interface{}
}

// NewAdminRepository creates a new mock admin repository
func NewAdminRepository() *AdminRepository {
	return &AdminRepository{
		Calls: make(map[string][]interface{}),
	}
}

func (m *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	m.Calls["Create"] = append(m.Calls["Create"], admin)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, admin)
	}
	return nil
}

func (m *AdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	m.Calls["GetByID"] = append(m.Calls["GetByID"], id)
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrNotFound
}

func (m *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	m.Calls["GetByEmail"] = append(m.Calls["GetByEmail"], email)
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, repositories.ErrNotFound
}

func (m *AdminRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.Calls["UpdateLastLogin"] = append(m.Calls["UpdateLastLogin"], id)
	if m.UpdateLastLoginFunc != nil {
		return m.UpdateLastLoginFunc(ctx, id, at)
	}
	return nil
}

func (m *AdminRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string, updatedAt time.Time) (*models.Admin, error) {
	m.Calls["UpdateProfile"] = append(m.Calls["UpdateProfile"], id)
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, name, email, updatedAt)
	}
	return nil, repositories.ErrNotFound
}

func (m *AdminRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, updatedAt time.Time) error {
	m.Calls["UpdatePassword"] = append(m.Calls["UpdatePassword"], id)
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash, updatedAt)
	}
	return nil
}

func (m *AdminRepository) Count(ctx context.Context) (int64, error) {
	m.Calls["Count"] = append(m.Calls["Count"], nil)
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

// Ensure AdminRepository implements the interface
var _ repositories.AdminRepository = (*AdminRepository)(nil)
