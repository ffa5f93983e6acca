package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/pricing"
)

const ProjectsHumanIDKey = "projects_human_id_key"

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// breakdownRow is the stored shape of one line item.
type breakdownRow struct {
	Language  string `json:"language"`
	CostCents int64  `json:"cost_cents"`
}

func encodeBreakdown(items []pricing.LineItem) ([]byte, error) {
	rows := make([]breakdownRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, breakdownRow{Language: item.Language, CostCents: item.Cost.Cents()})
	}
	return json.Marshal(rows)
}

func decodeBreakdown(raw []byte) ([]pricing.LineItem, error) {
	var rows []breakdownRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode breakdown: %w", err)
	}
	items := make([]pricing.LineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, pricing.LineItem{Language: row.Language, Cost: pricing.Money(row.CostCents)})
	}
	return items, nil
}

const projectColumns = `id, human_id, owner_id, name, file_name, source_file_ref, unit_count, breakdown,
	subtotal_cents, pm_fee_cents, total_cents, project_type, multiplier_applied, status, eta_days,
	translated_file_ref, created_at, submitted_at, completed_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var (
		project   models.Project
		breakdown []byte
		subtotal  int64
		pmFee     int64
		total     int64
	)
	err := row.Scan(
		&project.ID,
		&project.HumanID,
		&project.OwnerID,
		&project.Name,
		&project.FileName,
		&project.SourceFileRef,
		&project.UnitCount,
		&breakdown,
		&subtotal,
		&pmFee,
		&total,
		&project.ProjectType,
		&project.MultiplierApplied,
		&project.Status,
		&project.ETADays,
		&project.TranslatedFileRef,
		&project.CreatedAt,
		&project.SubmittedAt,
		&project.CompletedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	if project.Breakdown, err = decodeBreakdown(breakdown); err != nil {
		return nil, err
	}
	project.Subtotal = pricing.Money(subtotal)
	project.PMFee = pricing.Money(pmFee)
	project.Total = pricing.Money(total)
	return &project, nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	project.Prepare()

	breakdown, err := encodeBreakdown(project.Breakdown)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	query := `
		INSERT INTO projects (id, human_id, owner_id, name, file_name, source_file_ref, unit_count, breakdown,
			subtotal_cents, pm_fee_cents, total_cents, project_type, multiplier_applied, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = r.pool.Exec(ctx, query,
		project.ID,
		project.HumanID,
		project.OwnerID,
		project.Name,
		project.FileName,
		project.SourceFileRef,
		project.UnitCount,
		breakdown,
		project.Subtotal.Cents(),
		project.PMFee.Cents(),
		project.Total.Cents(),
		project.ProjectType,
		project.MultiplierApplied,
		project.Status,
		project.CreatedAt,
		project.UpdatedAt,
	)
	return translate(err)
}

// FindByID accepts either the uuid primary key or the human id.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	if pk, err := uuid.Parse(id); err == nil {
		query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
		return scanProject(r.pool.QueryRow(ctx, query, pk))
	}
	query := `SELECT ` + projectColumns + ` FROM projects WHERE human_id = $1`
	return scanProject(r.pool.QueryRow(ctx, query, strings.ToUpper(id)))
}

func (r *ProjectRepository) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	var (
		conds []string
		args  []any
	)
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conds = append(conds, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + projectColumns + ` FROM projects`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

// UpdateLifecycle persists the mutable lifecycle fields. Last writer wins.
func (r *ProjectRepository) UpdateLifecycle(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE projects SET
			status = $2, eta_days = $3, translated_file_ref = $4,
			submitted_at = $5, completed_at = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		project.ID,
		project.Status,
		project.ETADays,
		project.TranslatedFileRef,
		project.SubmittedAt,
		project.CompletedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MaxHumanIDPrefix returns the largest numeric prefix among well-formed
// project human ids, or 0 when there are none.
func (r *ProjectRepository) MaxHumanIDPrefix(ctx context.Context) (int64, error) {
	var max int64
	query := `
		SELECT COALESCE(MAX(split_part(human_id, '-', 1)::BIGINT), 0)
		FROM projects
		WHERE human_id ~ '^[0-9]{1,18}-[A-Z]{2}$'
	`
	err := r.pool.QueryRow(ctx, query).Scan(&max)
	return max, err
}
