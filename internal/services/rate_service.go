package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/pricing"
	"github.com/sidharth07/verbiforge-sub000/internal/repositories"
)

// RateService manages the rate table. Reads always go to the store so an
// edit is visible to the very next quote.
type RateService struct {
	store RateStore
	seed  pricing.RateTable
	log   *slog.Logger
}

func NewRateService(store RateStore, seed pricing.RateTable, log *slog.Logger) *RateService {
	return &RateService{store: store, seed: seed.Clone(), log: log}
}

// Current returns the stored table, seeding it on first read.
func (s *RateService) Current(ctx context.Context) (pricing.RateTable, error) {
	table, err := s.store.Get(ctx)
	if err == nil {
		return table, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return pricing.RateTable{}, fmt.Errorf("load rate table: %w", err)
	}

	seeded, err := s.store.SeedIfMissing(ctx, s.seed)
	if err != nil {
		return pricing.RateTable{}, fmt.Errorf("seed rate table: %w", err)
	}
	if seeded {
		s.log.InfoContext(ctx, "rate table seeded", "languages", len(s.seed.Rates))
	}
	table, err = s.store.Get(ctx)
	if err != nil {
		return pricing.RateTable{}, fmt.Errorf("load rate table: %w", err)
	}
	return table, nil
}

// ForPricing returns the table quotes are priced with. A failed read is not
// surfaced: the seed table prices the quote and the failure is logged.
func (s *RateService) ForPricing(ctx context.Context) pricing.RateTable {
	table, err := s.Current(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "rate table unavailable, pricing with seed rates", "error", err)
		return s.seed.Clone()
	}
	return table
}

// Replace overwrites the whole table.
func (s *RateService) Replace(ctx context.Context, actor models.Actor, table pricing.RateTable) (pricing.RateTable, error) {
	if !actor.IsAdmin() {
		return pricing.RateTable{}, forbidden("admin privileges required")
	}
	return s.save(ctx, actor, table.Normalize())
}

// SetLanguageRate adds a language or changes its rate.
func (s *RateService) SetLanguageRate(ctx context.Context, actor models.Actor, language string, cents int64) (pricing.RateTable, error) {
	if !actor.IsAdmin() {
		return pricing.RateTable{}, forbidden("admin privileges required")
	}
	language = strings.TrimSpace(language)
	if language == "" {
		return pricing.RateTable{}, invalidInput("language is required")
	}
	table, err := s.Current(ctx)
	if err != nil {
		return pricing.RateTable{}, err
	}
	table = table.Clone()
	if existing, ok := findLanguage(table, language); ok {
		delete(table.Rates, existing)
	}
	table.Rates[language] = cents
	return s.save(ctx, actor, table)
}

// RemoveLanguage deletes a language; later quotes price it at the default rate.
func (s *RateService) RemoveLanguage(ctx context.Context, actor models.Actor, language string) (pricing.RateTable, error) {
	if !actor.IsAdmin() {
		return pricing.RateTable{}, forbidden("admin privileges required")
	}
	table, err := s.Current(ctx)
	if err != nil {
		return pricing.RateTable{}, err
	}
	existing, ok := findLanguage(table, strings.TrimSpace(language))
	if !ok {
		return pricing.RateTable{}, notFound("language %q is not in the rate table", language)
	}
	table = table.Clone()
	delete(table.Rates, existing)
	return s.save(ctx, actor, table)
}

// UpdateSettings changes the pure-project multiplier and/or the PM fee percent.
func (s *RateService) UpdateSettings(ctx context.Context, actor models.Actor, multiplier, pmFeePercent *float64) (pricing.RateTable, error) {
	if !actor.IsAdmin() {
		return pricing.RateTable{}, forbidden("admin privileges required")
	}
	if multiplier == nil && pmFeePercent == nil {
		return pricing.RateTable{}, invalidInput("nothing to update")
	}
	table, err := s.Current(ctx)
	if err != nil {
		return pricing.RateTable{}, err
	}
	table = table.Clone()
	if multiplier != nil {
		table.ProjectTypeMultiplier = *multiplier
	}
	if pmFeePercent != nil {
		table.PMFeePercent = *pmFeePercent
	}
	return s.save(ctx, actor, table)
}

// Reset restores the seed table. Anyone may reset while no table exists yet;
// afterwards it requires admin capability.
func (s *RateService) Reset(ctx context.Context, actor *models.Actor) (pricing.RateTable, error) {
	if actor == nil || !actor.IsAdmin() {
		_, err := s.store.Get(ctx)
		switch {
		case err == nil:
			return pricing.RateTable{}, forbidden("admin privileges required")
		case !errors.Is(err, repositories.ErrNotFound):
			return pricing.RateTable{}, fmt.Errorf("load rate table: %w", err)
		}
	}
	saved, err := s.store.Save(ctx, s.seed)
	if err != nil {
		return pricing.RateTable{}, fmt.Errorf("save rate table: %w", err)
	}
	s.log.InfoContext(ctx, "rate table reset", "version", saved.Version)
	return saved, nil
}

func (s *RateService) save(ctx context.Context, actor models.Actor, table pricing.RateTable) (pricing.RateTable, error) {
	if err := table.Validate(); err != nil {
		return pricing.RateTable{}, invalidInput("%s", err.Error())
	}
	saved, err := s.store.Save(ctx, table)
	if err != nil {
		return pricing.RateTable{}, fmt.Errorf("save rate table: %w", err)
	}
	s.log.InfoContext(ctx, "rate table updated", "version", saved.Version, "by", actor.HumanID)
	return saved, nil
}

func findLanguage(table pricing.RateTable, language string) (string, bool) {
	if _, ok := table.Rates[language]; ok {
		return language, true
	}
	for existing := range table.Rates {
		if strings.EqualFold(existing, language) {
			return existing, true
		}
	}
	return "", false
}
