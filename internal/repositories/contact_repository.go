package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
)

// ContactRepository persists public contact-form submissions through gorm.
type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, submission *models.ContactSubmission) error {
	submission.Prepare()
	return r.db.WithContext(ctx).Create(submission).Error
}

// Recent returns the newest submissions first.
func (r *ContactRepository) Recent(ctx context.Context, limit int) ([]models.ContactSubmission, error) {
	var submissions []models.ContactSubmission
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&submissions).Error
	return submissions, err
}
