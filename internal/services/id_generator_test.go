package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
)

var projectIDPattern = regexp.MustCompile(`^[0-9]+-[A-Z]{2}$`)

func TestNextUserIDStartsAtMinimum(t *testing.T) {
	f := newFixture()
	assert.Equal(t, models.MinUserHumanID, f.ids.NextUserID(context.Background()))
}

func TestNextUserIDIncrementsMaximum(t *testing.T) {
	f := newFixture()
	f.seedUser(70041, "a@example.com", models.RoleUser)
	f.seedUser(70007, "b@example.com", models.RoleUser)

	assert.Equal(t, int64(70042), f.ids.NextUserID(context.Background()))
}

func TestNextUserIDFallsBackWhenLookupFails(t *testing.T) {
	f := newFixture()
	f.users.maxErr = errors.New("connection reset")
	f.ids.now = func() time.Time { return time.UnixMilli(1_700_000_123_456) }
	f.ids.intN = func(int) int { return 7 }

	// 70000 + (1700000123456 mod 10^6)*1000 + 7
	assert.Equal(t, int64(70000+123456*1000+7), f.ids.NextUserID(context.Background()))
}

func TestNextProjectIDFormat(t *testing.T) {
	f := newFixture()
	letters := []int{1, 25}
	f.ids.intN = func(int) int {
		n := letters[0]
		letters = append(letters[1:], n)
		return n
	}

	id := f.ids.NextProjectID(context.Background())
	assert.Equal(t, "700-BZ", id)
	assert.Regexp(t, projectIDPattern, id)
}

func TestNextProjectIDIncrementsPrefix(t *testing.T) {
	f := newFixture()
	f.projects.projects[models.Project{}.ID] = models.Project{HumanID: "915-QQ"}

	id := f.ids.NextProjectID(context.Background())
	require.Regexp(t, projectIDPattern, id)
	assert.Equal(t, "916-", id[:4])
}

func TestNextProjectIDFallsBackToTimestamp(t *testing.T) {
	f := newFixture()
	f.projects.maxErr = errors.New("timeout")
	f.ids.now = func() time.Time { return time.UnixMilli(1_700_000_000_000) }

	id := f.ids.NextProjectID(context.Background())
	require.Regexp(t, projectIDPattern, id)
	assert.Equal(t, "1700000000000-", id[:14])
}
