package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("a-secret", "r-secret", time.Minute, time.Hour)
	userID := uuid.New()

	pair, err := issuer.Issue(userID)
	require.NoError(t, err)

	access, err := issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	got, err := access.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	refresh, err := issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, access.ID, refresh.ID)

	_, err = issuer.VerifyAccess(pair.RefreshToken)
	assert.Error(t, err)
	_, err = issuer.VerifyRefresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("a-secret", "r-secret", time.Minute, time.Hour)
	start := time.Now()
	issuer.now = func() time.Time { return start }

	pair, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	issuer.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = issuer.VerifyAccess(pair.AccessToken)
	assert.Error(t, err)

	claims, err := issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.InDelta(t, float64(58*time.Minute), float64(claims.Remaining(issuer.now())), float64(time.Second))
}
