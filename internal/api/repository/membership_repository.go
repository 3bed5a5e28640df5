package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"libraryhub/internal/api/models"
)

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Add(ctx context.Context, userID string, bookID int64, kind string) error {
	entry := &models.UserBookMembership{
		UserID: userID,
		BookID: bookID,
		Kind:   kind,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("add %s membership: %w", kind, err)
	}
	return nil
}

func (r *membershipRepository) Remove(ctx context.Context, userID string, bookID int64, kind string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ? AND kind = ?", userID, bookID, kind).
		Delete(&models.UserBookMembership{})
	if result.Error != nil {
		return fmt.Errorf("remove %s membership: %w", kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *membershipRepository) Exists(ctx context.Context, userID string, bookID int64, kind string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserBookMembership{}).
		Where("user_id = ? AND book_id = ? AND kind = ?", userID, bookID, kind).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *membershipRepository) ListBookIDs(ctx context.Context, userID string, kind string) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserBookMembership{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("added_at ASC").
		Pluck("book_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list %s book ids: %w", kind, err)
	}
	return ids, nil
}

func (r *membershipRepository) ListWithBooks(ctx context.Context, userID string, kind string) ([]models.UserBookMembership, error) {
	var entries []models.UserBookMembership
	if err := r.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("added_at DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list %s memberships: %w", kind, err)
	}
	return entries, nil
}
