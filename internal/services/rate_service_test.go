package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/pricing"
)

func adminActor() models.Actor {
	return models.Actor{HumanID: 70000, Role: models.RoleAdmin}
}

func TestRateServiceSeedsOnFirstRead(t *testing.T) {
	f := newFixture()

	table, err := f.rateSvc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(23), table.Rates["Spanish"])
	assert.Equal(t, int64(1), table.Version)
	assert.NotNil(t, f.rates.table)
}

func TestSetLanguageRateIsVisibleToNextQuote(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.rateSvc.SetLanguageRate(ctx, adminActor(), "spanish", 40)
	require.NoError(t, err)

	table, err := f.rateSvc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(40), table.Rates["spanish"])
	_, stale := table.Rates["Spanish"]
	assert.False(t, stale)

	quote, err := f.quoteSvc.Analyze(ctx, QuoteRequest{
		FileName:    "doc.txt",
		Document:    []byte("one two"),
		Languages:   []string{"Spanish"},
		ProjectType: "fusion",
	})
	require.NoError(t, err)
	assert.Equal(t, pricing.Money(80), quote.Subtotal)
}

func TestSetLanguageRateRejectsNonPositive(t *testing.T) {
	f := newFixture()
	_, err := f.rateSvc.SetLanguageRate(context.Background(), adminActor(), "Klingon", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRemoveLanguage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	table, err := f.rateSvc.RemoveLanguage(ctx, adminActor(), "japanese")
	require.NoError(t, err)
	_, ok := table.Rates["Japanese"]
	assert.False(t, ok)
	assert.Equal(t, pricing.DefaultRateCents, table.RateFor("Japanese"))

	_, err = f.rateSvc.RemoveLanguage(ctx, adminActor(), "Japanese")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSettings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	multiplier := 1.5

	table, err := f.rateSvc.UpdateSettings(ctx, adminActor(), &multiplier, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.5, table.ProjectTypeMultiplier)
	assert.Equal(t, pricing.DefaultPMFeePercent, table.PMFeePercent)

	low := 0.5
	_, err = f.rateSvc.UpdateSettings(ctx, adminActor(), &low, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.rateSvc.UpdateSettings(ctx, adminActor(), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRateEditsRequireAdmin(t *testing.T) {
	f := newFixture()
	user := models.Actor{HumanID: 70001, Role: models.RoleUser}

	_, err := f.rateSvc.SetLanguageRate(context.Background(), user, "Spanish", 10)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.rateSvc.Replace(context.Background(), user, pricing.DefaultRateTable())
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestResetWithoutActorOnlyWhileEmpty(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	table, err := f.rateSvc.Reset(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), table.Version)

	_, err = f.rateSvc.Reset(ctx, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	admin := adminActor()
	_, err = f.rateSvc.SetLanguageRate(ctx, admin, "Spanish", 99)
	require.NoError(t, err)
	table, err = f.rateSvc.Reset(ctx, &admin)
	require.NoError(t, err)
	assert.Equal(t, int64(23), table.Rates["Spanish"])
	assert.Equal(t, int64(3), table.Version)
}

func TestRateEditsFailWhenStoreUnavailable(t *testing.T) {
	f := newFixture()
	f.rates.getErr = errors.New("connection refused")

	_, err := f.rateSvc.SetLanguageRate(context.Background(), adminActor(), "Spanish", 30)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)

	table := f.rateSvc.ForPricing(context.Background())
	assert.Equal(t, int64(23), table.RateFor("Spanish"))
}

func TestReplaceRejectsCaseDuplicateLanguages(t *testing.T) {
	f := newFixture()
	table := pricing.DefaultRateTable()
	table.Rates["english"] = 40

	_, err := f.rateSvc.Replace(context.Background(), adminActor(), table)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
