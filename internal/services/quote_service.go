package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/sidharth07/verbiforge-sub000/internal/pricing"
)

// QuoteRequest is an uploaded document plus the pricing choices.
type QuoteRequest struct {
	FileName    string
	Document    []byte
	Languages   []string
	ProjectType string
}

// QuoteService prices documents against the current rate table without
// persisting anything.
type QuoteService struct {
	rates *RateService
}

func NewQuoteService(rates *RateService) *QuoteService {
	return &QuoteService{rates: rates}
}

func (s *QuoteService) Analyze(ctx context.Context, req QuoteRequest) (pricing.Quote, error) {
	if strings.TrimSpace(req.FileName) == "" {
		return pricing.Quote{}, invalidInput("a file is required")
	}
	if !pricing.IsSupportedFile(req.FileName) {
		return pricing.Quote{}, invalidInput("unsupported file type %q, accepted: %s",
			filepath.Ext(req.FileName), strings.Join(pricing.SupportedExtensions(), ", "))
	}
	projectType, err := pricing.ParseProjectType(req.ProjectType)
	if err != nil {
		return pricing.Quote{}, invalidInput("%s", err.Error())
	}
	if len(pricing.NormalizeLanguages(req.Languages)) == 0 {
		return pricing.Quote{}, invalidInput("%s", pricing.ErrNoLanguages.Error())
	}

	table := s.rates.ForPricing(ctx)

	units := pricing.CountUnits(req.Document, filepath.Ext(req.FileName))
	quote, err := pricing.ComputeQuote(units, req.Languages, projectType, table)
	if err != nil {
		if errors.Is(err, pricing.ErrNoLanguages) || errors.Is(err, pricing.ErrUnknownProjectType) || errors.Is(err, pricing.ErrNegativeUnits) {
			return pricing.Quote{}, invalidInput("%s", err.Error())
		}
		return pricing.Quote{}, err
	}
	return quote, nil
}
