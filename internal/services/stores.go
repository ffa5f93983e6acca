package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/pricing"
)

// UserStore is the persistence the user, account and auth services need.
// *repositories.UserRepository satisfies it.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByHumanID(ctx context.Context, humanID int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]models.User, error)
	SetParent(ctx context.Context, userID uuid.UUID, parentID *uuid.UUID, license models.License) error
	DetachChildren(ctx context.Context, parentID uuid.UUID) (int64, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, role models.Role) error
	UpdateLicense(ctx context.Context, userID uuid.UUID, license models.License) error
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	MaxHumanID(ctx context.Context) (int64, error)
}

// ProjectStore is satisfied by *repositories.ProjectRepository.
type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	UpdateLifecycle(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	MaxHumanIDPrefix(ctx context.Context) (int64, error)
}

// RateStore is satisfied by *repositories.RateRepository.
type RateStore interface {
	Get(ctx context.Context) (pricing.RateTable, error)
	Save(ctx context.Context, table pricing.RateTable) (pricing.RateTable, error)
	SeedIfMissing(ctx context.Context, table pricing.RateTable) (bool, error)
}

// TokenStore is satisfied by *repositories.RedisRepository.
type TokenStore interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	Blacklist(ctx context.Context, jti string, ttl time.Duration) error
}

// ContactStore is satisfied by *repositories.ContactRepository.
type ContactStore interface {
	Create(ctx context.Context, submission *models.ContactSubmission) error
	Recent(ctx context.Context, limit int) ([]models.ContactSubmission, error)
}
