package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application"
	domauth "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/auth"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/identity"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/jwttoken"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/memory"
)

type fixture struct {
	guard    *Guard
	tokens   *jwttoken.Service
	profiles *memory.ProfileRepository
}

func newFixture(t *testing.T, opts ...jwttoken.Option) fixture {
	t.Helper()
	tokens, err := jwttoken.New("test-secret", opts...)
	require.NoError(t, err)
	profiles := memory.NewProfileRepository()
	return fixture{guard: NewGuard(tokens, profiles), tokens: tokens, profiles: profiles}
}

func TestRequireIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, err := f.tokens.Issue("a@x.com")
	require.NoError(t, err)

	email, err := f.guard.RequireIdentity(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)

	_, err = f.guard.RequireIdentity(ctx, "")
	assert.ErrorIs(t, err, domauth.ErrUnauthorized)

	_, err = f.guard.RequireIdentity(ctx, "not-a-token")
	assert.ErrorIs(t, err, domauth.ErrUnauthorized)
	assert.ErrorIs(t, err, domauth.ErrTokenMalformed)

	other, err := jwttoken.New("other-secret")
	require.NoError(t, err)
	forged, err := other.Issue("a@x.com")
	require.NoError(t, err)
	_, err = f.guard.RequireIdentity(ctx, forged)
	assert.ErrorIs(t, err, domauth.ErrForbidden)
	assert.ErrorIs(t, err, domauth.ErrTokenInvalidSignature)
}

func TestRequireIdentityExpired(t *testing.T) {
	now := time.Now()
	f := newFixture(t, jwttoken.WithClock(func() time.Time { return now }), jwttoken.WithTTL(time.Hour))

	token, err := f.tokens.Issue("a@x.com")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = f.guard.RequireIdentity(context.Background(), token)
	assert.ErrorIs(t, err, domauth.ErrForbidden)
	assert.ErrorIs(t, err, domauth.ErrTokenExpired)
}

func TestRequireAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.profiles.Upsert(ctx, "user@x.com", identity.Fields{})
	require.NoError(t, err)
	_, _, err = f.profiles.Upsert(ctx, "admin@x.com", identity.Fields{})
	require.NoError(t, err)
	_, err = f.profiles.SetRole(ctx, "admin@x.com", identity.RoleAdmin)
	require.NoError(t, err)

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{name: "admin", email: "admin@x.com"},
		{name: "admin mixed case", email: " Admin@X.com "},
		{name: "role none", email: "user@x.com", wantErr: domauth.ErrForbidden},
		{name: "absent profile", email: "ghost@x.com", wantErr: domauth.ErrForbidden},
		{name: "no identity", email: "", wantErr: domauth.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.guard.RequireAdmin(ctx, tt.email)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

type failingRoles struct{}

func (failingRoles) Get(context.Context, string) (*identity.Profile, error) {
	return nil, errors.New("connection reset")
}

func TestRequireAdminStoreFailureIsUpstream(t *testing.T) {
	tokens, err := jwttoken.New("s")
	require.NoError(t, err)
	g := NewGuard(tokens, failingRoles{})

	err = g.RequireAdmin(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, application.ErrUpstream)
	assert.NotErrorIs(t, err, domauth.ErrForbidden)
}

func TestRequireSelfAndOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.NoError(t, f.guard.RequireSelf("a@x.com", "A@x.com"))
	assert.ErrorIs(t, f.guard.RequireSelf("a@x.com", "b@x.com"), domauth.ErrForbidden)
	assert.ErrorIs(t, f.guard.RequireSelf("", ""), domauth.ErrForbidden)

	assert.NoError(t, f.guard.RequireOwnerOrAdmin(ctx, "o@x.com", "o@x.com"))
	assert.ErrorIs(t, f.guard.RequireOwnerOrAdmin(ctx, "b@x.com", "o@x.com"), domauth.ErrForbidden)

	_, _, err := f.profiles.Upsert(ctx, "admin@x.com", identity.Fields{})
	require.NoError(t, err)
	_, err = f.profiles.SetRole(ctx, "admin@x.com", identity.RoleAdmin)
	require.NoError(t, err)
	assert.NoError(t, f.guard.RequireOwnerOrAdmin(ctx, "admin@x.com", "o@x.com"))

	ok, err := f.guard.IsAdmin(ctx, "admin@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.guard.IsAdmin(ctx, "ghost@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
