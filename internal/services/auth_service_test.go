package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/utils"
)

func newAuthService(f *fixture) *AuthService {
	issuer := utils.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	return NewAuthService(f.userSvc, f.users, f.tokens, issuer, discardLogger())
}

func TestSignupAndAuthenticate(t *testing.T) {
	f := newFixture()
	auth := newAuthService(f)
	ctx := context.Background()

	session, err := auth.Signup(ctx, CreateUserRequest{Email: "new@example.com", Name: "New", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotEmpty(t, session.Tokens.AccessToken)
	require.NotEmpty(t, session.Tokens.RefreshToken)

	actor, err := auth.Authenticate(ctx, session.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, actor.UserID)
	assert.Equal(t, models.RoleSuperAdmin, actor.Role)

	// a refresh token is not an access token
	_, err = auth.Authenticate(ctx, session.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin(t *testing.T) {
	f := newFixture()
	auth := newAuthService(f)
	ctx := context.Background()
	_, err := auth.Signup(ctx, CreateUserRequest{Email: "user@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	session, err := auth.Login(ctx, " USER@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotNil(t, session.User.LastLoginAt)

	_, err = auth.Login(ctx, "user@example.com", "wrong-horse")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = auth.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginWithStoredHashVariants(t *testing.T) {
	f := newFixture()
	auth := newAuthService(f)
	ctx := context.Background()
	session, err := auth.Signup(ctx, CreateUserRequest{Email: "old@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	weak, err := utils.PasswordParams{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 16, SaltLen: 8}.Hash("correct-horse")
	require.NoError(t, err)
	require.NoError(t, f.users.update(session.User.ID, func(u *models.User) { u.PasswordHash = weak }))
	_, err = auth.Login(ctx, "old@example.com", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, f.users.update(session.User.ID, func(u *models.User) { u.PasswordHash = "not-a-hash" }))
	_, err = auth.Login(ctx, "old@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newFixture()
	auth := newAuthService(f)
	ctx := context.Background()
	session, err := auth.Signup(ctx, CreateUserRequest{Email: "user@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	rotated, err := auth.Refresh(ctx, session.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.Tokens.RefreshToken, rotated.Tokens.RefreshToken)

	_, err = auth.Refresh(ctx, session.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = auth.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogoutRevokesTokens(t *testing.T) {
	f := newFixture()
	auth := newAuthService(f)
	ctx := context.Background()
	session, err := auth.Signup(ctx, CreateUserRequest{Email: "user@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, session.Tokens.AccessToken, session.Tokens.RefreshToken))
	assert.Len(t, f.tokens.revoked, 2)
	for _, ttl := range f.tokens.revoked {
		assert.Greater(t, ttl, time.Duration(0))
	}

	_, err = auth.Authenticate(ctx, session.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = auth.Refresh(ctx, session.Tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateFailsClosed(t *testing.T) {
	f := newFixture()
	auth := newAuthService(f)
	ctx := context.Background()
	session, err := auth.Signup(ctx, CreateUserRequest{Email: "user@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	f.tokens.err = errors.New("redis down")
	_, err = auth.Authenticate(ctx, session.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateSeesRoleChanges(t *testing.T) {
	f := newFixture()
	auth := newAuthService(f)
	ctx := context.Background()
	f.seedUser(70000, "root@example.com", models.RoleSuperAdmin)
	session, err := auth.Signup(ctx, CreateUserRequest{Email: "user@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, f.users.UpdateRole(ctx, session.User.ID, models.RoleAdmin))
	actor, err := auth.Authenticate(ctx, session.Tokens.AccessToken)
	require.NoError(t, err)
	assert.True(t, actor.IsAdmin())

	require.NoError(t, f.users.Delete(ctx, session.User.ID))
	_, err = auth.Authenticate(ctx, session.Tokens.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
