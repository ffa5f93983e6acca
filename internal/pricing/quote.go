package pricing

import (
	"errors"
	"math"
	"strings"
)

// ProjectType selects the billing mode of a project.
type ProjectType string

const (
	ProjectTypeFusion ProjectType = "fusion"
	ProjectTypePure   ProjectType = "pure"
)

// PMFeeCap is the ceiling of the project-management fee ($500.00).
const PMFeeCap Money = 50000

var (
	ErrNoLanguages        = errors.New("at least one target language is required")
	ErrUnknownProjectType = errors.New("project type must be fusion or pure")
	ErrNegativeUnits      = errors.New("unit count cannot be negative")
)

// ParseProjectType accepts "fusion" or "pure" in any case.
func ParseProjectType(s string) (ProjectType, error) {
	switch ProjectType(strings.ToLower(strings.TrimSpace(s))) {
	case ProjectTypeFusion:
		return ProjectTypeFusion, nil
	case ProjectTypePure:
		return ProjectTypePure, nil
	}
	return "", ErrUnknownProjectType
}

// LineItem is the cost of one target language.
type LineItem struct {
	Language string `json:"language"`
	Cost     Money  `json:"cost"`
}

// Quote is an itemized price for a document.
type Quote struct {
	UnitCount         int64       `json:"unit_count"`
	ProjectType       ProjectType `json:"project_type"`
	MultiplierApplied float64     `json:"multiplier_applied"`
	PMFeePercent      float64     `json:"pm_fee_percent"`
	Breakdown         []LineItem  `json:"breakdown"`
	Subtotal          Money       `json:"subtotal"`
	PMFee             Money       `json:"pm_fee"`
	Total             Money       `json:"total"`
}

// NormalizeLanguages trims names, drops blanks and keeps the first occurrence
// of duplicates, preserving the caller's order.
func NormalizeLanguages(languages []string) []string {
	seen := make(map[string]struct{}, len(languages))
	out := make([]string, 0, len(languages))
	for _, lang := range languages {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			continue
		}
		key := strings.ToLower(lang)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, lang)
	}
	return out
}

// MultiplierFor returns the multiplier a project type receives.
func MultiplierFor(projectType ProjectType, table RateTable) float64 {
	if projectType == ProjectTypePure {
		return table.ProjectTypeMultiplier
	}
	return 1.0
}

// ComputeQuote prices unitCount units into each language. Every line item is
// rounded to the cent on its own and the subtotal is the exact sum of the lines.
func ComputeQuote(unitCount int64, languages []string, projectType ProjectType, table RateTable) (Quote, error) {
	if unitCount < 0 {
		return Quote{}, ErrNegativeUnits
	}
	if projectType != ProjectTypeFusion && projectType != ProjectTypePure {
		return Quote{}, ErrUnknownProjectType
	}
	langs := NormalizeLanguages(languages)
	if len(langs) == 0 {
		return Quote{}, ErrNoLanguages
	}

	multiplier := MultiplierFor(projectType, table)
	breakdown := make([]LineItem, 0, len(langs))
	var subtotal Money
	for _, lang := range langs {
		cost := lineCost(unitCount, table.RateFor(lang), multiplier)
		breakdown = append(breakdown, LineItem{Language: lang, Cost: cost})
		subtotal += cost
	}

	pmFee := PMFee(subtotal, table.PMFeePercent)
	return Quote{
		UnitCount:         unitCount,
		ProjectType:       projectType,
		MultiplierApplied: multiplier,
		PMFeePercent:      table.PMFeePercent,
		Breakdown:         breakdown,
		Subtotal:          subtotal,
		PMFee:             pmFee,
		Total:             subtotal + pmFee,
	}, nil
}

// PMFee is percent of subtotal, rounded to the cent and capped at PMFeeCap.
func PMFee(subtotal Money, percent float64) Money {
	fee := Money(math.Round(float64(subtotal) * percent / 100))
	return fee.Min(PMFeeCap)
}

// lineCost is unitCount*rate cents scaled by the multiplier. With a 1.0
// multiplier the result is exact integer arithmetic.
func lineCost(unitCount, rateCents int64, multiplier float64) Money {
	base := unitCount * rateCents
	if multiplier == 1.0 {
		return Money(base)
	}
	return Money(math.Round(float64(base) * multiplier))
}
