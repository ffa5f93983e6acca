package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
)

// Unique constraint names created by the users migration.
const (
	UsersHumanIDKey = "users_human_id_key"
	UsersEmailKey   = "users_email_key"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, human_id, email, name, password_hash, role, license, parent_user_id, created_at, last_login_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.HumanID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.License,
		&user.ParentUserID,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Prepare()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (id, human_id, email, name, password_hash, role, license, parent_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.HumanID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.License,
		user.ParentUserID,
		user.CreatedAt,
	)
	return translate(err)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByHumanID(ctx context.Context, humanID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE human_id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, humanID))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY human_id`
	return r.queryUsers(ctx, query)
}

// ListByParent returns the sub-accounts currently attached to parentID.
func (r *UserRepository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE parent_user_id = $1 ORDER BY human_id`
	return r.queryUsers(ctx, query, parentID)
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// SetParent writes the hierarchy columns of one user.
func (r *UserRepository) SetParent(ctx context.Context, userID uuid.UUID, parentID *uuid.UUID, license models.License) error {
	query := `UPDATE users SET parent_user_id = $2, license = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, userID, parentID, license)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DetachChildren clears the parent of every sub-account of parentID and
// resets their license to free. It returns the number of detached users.
func (r *UserRepository) DetachChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	query := `UPDATE users SET parent_user_id = NULL, license = $2 WHERE parent_user_id = $1`
	tag, err := r.pool.Exec(ctx, query, parentID, models.LicenseFree)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, userID, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLicense(ctx context.Context, userID uuid.UUID, license models.License) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET license = $2 WHERE id = $1`, userID, license)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, userID, at)
	return err
}

// Delete removes the user; owned projects go with it through ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// MaxHumanID returns the largest assigned human id, or 0 when there are no users.
func (r *UserRepository) MaxHumanID(ctx context.Context) (int64, error) {
	var max int64
	query := `SELECT COALESCE(MAX(human_id), 0) FROM users WHERE human_id >= $1`
	err := r.pool.QueryRow(ctx, query, models.MinUserHumanID).Scan(&max)
	return max, err
}
