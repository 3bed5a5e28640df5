package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"libraryhub/internal/api/models"
)

type policyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) PolicyRepository {
	return &policyRepository{db: db}
}

func (r *policyRepository) GetByLibraryID(ctx context.Context, libraryID int64) (*models.Policy, error) {
	var policy models.Policy
	if err := r.db.WithContext(ctx).Where("library_id = ?", libraryID).First(&policy).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *policyRepository) Upsert(ctx context.Context, policy *models.Policy) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "library_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"max_borrow_days", "fine_per_day", "max_books_per_user", "reservation_expiry_days", "updated_at",
			}),
		}).
		Create(policy).Error; err != nil {
		return fmt.Errorf("upsert policy: %w", err)
	}
	return nil
}
