package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schakibb/Manehej-back/src/models"
	"github.com/schakibb/Manehej-back/src/repositories"
)

// SessionRepository keeps sessions in process memory.
// Used for development and as the test double for workflow tests.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.Session
	now      func() time.Time
}

// NewSessionRepository creates an empty session repository.
// A nil clock means time.Now.
func NewSessionRepository(now func() time.Time) *SessionRepository {
	if now == nil {
		now = time.Now
	}
	return &SessionRepository{
		sessions: make(map[uuid.UUID]*models.Session),
		now:      now,
	}
}

func (r *SessionRepository) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *SessionRepository) FindActiveByHash(_ context.Context, tokenHash string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	for _, s := range r.sessions {
		if s.TokenHash == tokenHash && s.UsableAt(now) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *SessionRepository) DeactivateByHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.TokenHash == tokenHash {
			s.IsActive = false
		}
	}
	return nil
}

func (r *SessionRepository) DeactivateAllForAdmin(_ context.Context, adminID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, s := range r.sessions {
		if s.AdminID == adminID && s.IsActive {
			s.IsActive = false
			n++
		}
	}
	return n, nil
}

func (r *SessionRepository) TouchLastUsed(_ context.Context, sessionID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return repositories.ErrNotFound
	}
	s.LastUsedAt = &at
	return nil
}

func (r *SessionRepository) ListActiveForAdmin(_ context.Context, adminID uuid.UUID) ([]models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	var out []models.Session
	for _, s := range r.sessions {
		if s.AdminID == adminID && s.UsableAt(now) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *SessionRepository) PurgeExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var n int64
	for id, s := range r.sessions {
		if s.ExpiresAt.Before(now) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

// All returns a snapshot of every stored session, active or not
func (r *SessionRepository) All() []models.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out
}

var _ repositories.SessionRepository = (*SessionRepository)(nil)
