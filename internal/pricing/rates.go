package pricing

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultRateCents prices languages missing from the table.
	DefaultRateCents int64 = 25
	// DefaultProjectTypeMultiplier is applied to pure projects.
	DefaultProjectTypeMultiplier = 1.3
	// DefaultPMFeePercent is the project-management surcharge.
	DefaultPMFeePercent = 1.0
)

var (
	ErrInvalidRate       = errors.New("rate must be a positive number of cents")
	ErrInvalidMultiplier = errors.New("project type multiplier must be at least 1.0")
	ErrInvalidPMFee      = errors.New("pm fee percent must be between 0 and 100")
	ErrEmptyLanguage     = errors.New("language name is required")
	ErrDuplicateLanguage = errors.New("language is listed more than once")
)

// RateTable is the administrator-managed price list. It is stored as one
// versioned record and read fresh for every quote.
type RateTable struct {
	Rates                 map[string]int64 `json:"rates" yaml:"rates"`
	ProjectTypeMultiplier float64          `json:"project_type_multiplier" yaml:"project_type_multiplier"`
	PMFeePercent          float64          `json:"pm_fee_percent" yaml:"pm_fee_percent"`
	Version               int64            `json:"version" yaml:"-"`
	UpdatedAt             time.Time        `json:"updated_at" yaml:"-"`
}

var defaultRates = map[string]int64{
	"Arabic":     30,
	"Chinese":    28,
	"Dutch":      27,
	"English":    25,
	"French":     25,
	"German":     27,
	"Hindi":      22,
	"Italian":    25,
	"Japanese":   32,
	"Korean":     30,
	"Polish":     24,
	"Portuguese": 24,
	"Russian":    26,
	"Spanish":    23,
	"Swedish":    29,
	"Turkish":    24,
}

// DefaultRateTable returns the table seeded at first boot.
func DefaultRateTable() RateTable {
	rates := make(map[string]int64, len(defaultRates))
	for lang, cents := range defaultRates {
		rates[lang] = cents
	}
	return RateTable{
		Rates:                 rates,
		ProjectTypeMultiplier: DefaultProjectTypeMultiplier,
		PMFeePercent:          DefaultPMFeePercent,
	}
}

// LoadRateTableFile reads a YAML seed file. Missing multiplier or fee fall back
// to the built-in defaults; the result is validated.
func LoadRateTableFile(path string) (RateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RateTable{}, fmt.Errorf("read rate seed file: %w", err)
	}
	seed := RateTable{
		ProjectTypeMultiplier: DefaultProjectTypeMultiplier,
		PMFeePercent:          DefaultPMFeePercent,
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return RateTable{}, fmt.Errorf("parse rate seed file: %w", err)
	}
	seed = seed.Normalize()
	if err := seed.Validate(); err != nil {
		return RateTable{}, fmt.Errorf("rate seed file %s: %w", path, err)
	}
	return seed, nil
}

// Validate checks the table invariants.
func (t RateTable) Validate() error {
	seen := make(map[string]string, len(t.Rates))
	for _, lang := range t.Languages() {
		key := strings.ToLower(strings.TrimSpace(lang))
		if other, ok := seen[key]; ok {
			return fmt.Errorf("%s and %s: %w", other, lang, ErrDuplicateLanguage)
		}
		seen[key] = lang
	}
	for lang, cents := range t.Rates {
		if strings.TrimSpace(lang) == "" {
			return ErrEmptyLanguage
		}
		if cents <= 0 {
			return fmt.Errorf("%s: %w", lang, ErrInvalidRate)
		}
	}
	if t.ProjectTypeMultiplier < 1.0 {
		return ErrInvalidMultiplier
	}
	if t.PMFeePercent < 0 || t.PMFeePercent > 100 {
		return ErrInvalidPMFee
	}
	return nil
}

// Normalize trims language names and returns a table with its own rate map.
func (t RateTable) Normalize() RateTable {
	rates := make(map[string]int64, len(t.Rates))
	for lang, cents := range t.Rates {
		rates[strings.TrimSpace(lang)] = cents
	}
	t.Rates = rates
	return t
}

// Clone returns a deep copy.
func (t RateTable) Clone() RateTable {
	rates := make(map[string]int64, len(t.Rates))
	for lang, cents := range t.Rates {
		rates[lang] = cents
	}
	t.Rates = rates
	return t
}

// RateFor returns the per-unit price for a language. The lookup is exact
// first, then case-insensitive; unknown languages get DefaultRateCents.
func (t RateTable) RateFor(language string) int64 {
	if cents, ok := t.Rates[language]; ok {
		return cents
	}
	for _, lang := range t.Languages() {
		if strings.EqualFold(lang, language) {
			return t.Rates[lang]
		}
	}
	return DefaultRateCents
}

// Languages lists the configured languages alphabetically.
func (t RateTable) Languages() []string {
	langs := make([]string, 0, len(t.Rates))
	for lang := range t.Rates {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
