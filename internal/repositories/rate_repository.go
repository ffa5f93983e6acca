package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidharth07/verbiforge-sub000/internal/pricing"
)

// RateRepository stores the rate table as a single versioned JSON row.
type RateRepository struct {
	pool *pgxpool.Pool
}

func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}

// rateDocument is the stored JSON shape; version and timestamp live in columns.
type rateDocument struct {
	Rates                 map[string]int64 `json:"rates"`
	ProjectTypeMultiplier float64          `json:"project_type_multiplier"`
	PMFeePercent          float64          `json:"pm_fee_percent"`
}

func encodeRateTable(table pricing.RateTable) ([]byte, error) {
	return json.Marshal(rateDocument{
		Rates:                 table.Rates,
		ProjectTypeMultiplier: table.ProjectTypeMultiplier,
		PMFeePercent:          table.PMFeePercent,
	})
}

// Get returns the current table or ErrNotFound when none has been written yet.
func (r *RateRepository) Get(ctx context.Context) (pricing.RateTable, error) {
	var (
		table pricing.RateTable
		data  []byte
	)
	query := `SELECT data, version, updated_at FROM rate_tables WHERE id = 1`
	if err := r.pool.QueryRow(ctx, query).Scan(&data, &table.Version, &table.UpdatedAt); err != nil {
		return pricing.RateTable{}, translate(err)
	}
	var doc rateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return pricing.RateTable{}, fmt.Errorf("decode rate table: %w", err)
	}
	table.Rates = doc.Rates
	table.ProjectTypeMultiplier = doc.ProjectTypeMultiplier
	table.PMFeePercent = doc.PMFeePercent
	return table, nil
}

// Save replaces the table and bumps its version.
func (r *RateRepository) Save(ctx context.Context, table pricing.RateTable) (pricing.RateTable, error) {
	data, err := encodeRateTable(table)
	if err != nil {
		return pricing.RateTable{}, fmt.Errorf("encode rate table: %w", err)
	}

	query := `
		INSERT INTO rate_tables (id, data, version, updated_at)
		VALUES (1, $1, 1, NOW())
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			version = rate_tables.version + 1,
			updated_at = EXCLUDED.updated_at
		RETURNING version, updated_at
	`
	saved := table.Clone()
	if err := r.pool.QueryRow(ctx, query, data).Scan(&saved.Version, &saved.UpdatedAt); err != nil {
		return pricing.RateTable{}, err
	}
	return saved, nil
}

// SeedIfMissing writes table only when no row exists. It reports whether it wrote.
func (r *RateRepository) SeedIfMissing(ctx context.Context, table pricing.RateTable) (bool, error) {
	data, err := encodeRateTable(table)
	if err != nil {
		return false, fmt.Errorf("encode rate table: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `INSERT INTO rate_tables (id, data) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`, data)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
