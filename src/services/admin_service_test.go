package services

import (
	"context"
	"errors"
	"testing"

	"github.com/schakibb/Manehej-back/src/repositories/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAdmin_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.EnsureAdmin(ctx, SeedAdmin{Email: " ADMIN@manehej.com", Password: "Different#123"})
	require.NoError(t, err)
	assert.False(t, created)

	// the original password still works
	_, err = f.svc.Login(ctx, LoginInput{Email: testEmail, Password: testPassword})
	assert.NoError(t, err)

	n, err := f.admins.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEnsureAdmin_DefaultsName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.EnsureAdmin(ctx, SeedAdmin{Email: "ops@manehej.com", Password: testPassword})
	require.NoError(t, err)
	require.True(t, created)

	admin, err := f.admins.GetByEmail(ctx, "ops@manehej.com")
	require.NoError(t, err)
	assert.Equal(t, "System Administrator", admin.Name)
	assert.True(t, admin.IsActive)
	assert.NotEqual(t, testPassword, admin.PasswordHash)
}

func TestEnsureAdmin_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		seed SeedAdmin
	}{
		{name: "weak password", seed: SeedAdmin{Email: "weak@manehej.com", Password: "password"}},
		{name: "bad email", seed: SeedAdmin{Email: "nope", Password: testPassword}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := f.svc.EnsureAdmin(ctx, tt.seed)
			assert.False(t, created)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestSeedAdmins(t *testing.T) {
	f := newFixture(t)

	n, err := f.svc.SeedAdmins(context.Background(), []SeedAdmin{
		{Name: "Existing", Email: testEmail, Password: testPassword},
		{Name: "Editor", Email: "editor@manehej.com", Password: testPassword},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = f.svc.SeedAdmins(context.Background(), []SeedAdmin{{Email: "x@manehej.com", Password: "short"}})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestAdminCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.svc.AdminCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.svc.EnsureAdmin(ctx, SeedAdmin{Email: "second@manehej.com", Password: testPassword})
	require.NoError(t, err)
	n, err = f.svc.AdminCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestAdminCount_StoreError(t *testing.T) {
	f := newFixture(t)
	repo := mock.NewAdminRepository()
	repo.CountFunc = func(ctx context.Context) (int64, error) {
		return 0, errors.New("connection refused")
	}
	svc := NewAuthService(repo, f.sessions, f.svc.Codec(), f.svc.hasher)

	_, err := svc.AdminCount(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Len(t, repo.Calls["Count"], 1)
}
