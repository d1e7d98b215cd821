package mock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/schakibb/Manehej-back/src/models"
	"github.com/schakibb/Manehej-back/src/repositories"
)

// SessionRepository is a mock implementation of repositories.SessionRepository
type SessionRepository struct {
	// Function stubs that can be overridden in tests
	CreateFunc                func(ctx context.Context, session *models.Session) error
	FindActiveByHashFunc      func(ctx context.Context, tokenHash string) (*models.Session, error)
	DeactivateByHashFunc      func(ctx context.Context, tokenHash string) error
	DeactivateAllForAdminFunc func(ctx context.Context, adminID uuid.UUID) (int64, error)
	TouchLastUsedFunc         func(ctx context.Context, sessionID uuid.UUID, at time.Time) error
	ListActiveForAdminFunc    func(ctx context.Context, adminID uuid.UUID) ([]models.Session, error)
	PurgeExpiredFunc          func(ctx context.Context) (int64, error)

	// Call tracking
	Calls map[string][]interface{}
}

// NewSessionRepository creates a new mock session repository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		Calls: make(map[string][]interface{}),
	}
}

func (m *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	m.Calls["Create"] = append(m.Calls["Create"], session)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	return nil
}

func (m *SessionRepository) FindActiveByHash(ctx context.Context, tokenHash string) (*models.Session, error) {
	m.Calls["FindActiveByHash"] = append(m.Calls["FindActiveByHash"], tokenHash)
	if m.FindActiveByHashFunc != nil {
		return m.FindActiveByHashFunc(ctx, tokenHash)
	}
	return nil, repositories.ErrNotFound
}

func (m *SessionRepository) DeactivateByHash(ctx context.Context, tokenHash string) error {
	m.Calls["DeactivateByHash"] = append(m.Calls["DeactivateByHash"], tokenHash)
	if m.DeactivateByHashFunc != nil {
		return m.DeactivateByHashFunc(ctx, tokenHash)
	}
	return nil
}

func (m *SessionRepository) DeactivateAllForAdmin(ctx context.Context, adminID uuid.UUID) (int64, error) {
	m.Calls["DeactivateAllForAdmin"] = append(m.Calls["DeactivateAllForAdmin"], adminID)
	if m.DeactivateAllForAdminFunc != nil {
		return m.DeactivateAllForAdminFunc(ctx, adminID)
	}
	return 0, nil
}

func (m *SessionRepository) TouchLastUsed(ctx context.Context, sessionID uuid.UUID, at time.Time) error {
	m.Calls["TouchLastUsed"] = append(m.Calls["TouchLastUsed"], sessionID)
	if m.TouchLastUsedFunc != nil {
		return m.TouchLastUsedFunc(ctx, sessionID, at)
	}
	return nil
}

func (m *SessionRepository) ListActiveForAdmin(ctx context.Context, adminID uuid.UUID) ([]models.Session, error) {
	m.Calls["ListActiveForAdmin"] = append(m.Calls["ListActiveForAdmin"], adminID)
	if m.ListActiveForAdminFunc != nil {
		return m.ListActiveForAdminFunc(ctx, adminID)
	}
	return nil, nil
}

func (m *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	m.Calls["PurgeExpired"] = append(m.Calls["PurgeExpired"], nil)
	if m.PurgeExpiredFunc != nil {
		return m.PurgeExpiredFunc(ctx)
	}
	return 0, nil
}

// Ensure SessionRepository implements the interface
var _ repositories.SessionRepository = (*SessionRepository)(nil)
