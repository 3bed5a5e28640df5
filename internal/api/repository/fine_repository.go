package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"libraryhub/internal/api/models"
)

type fineRepository struct {
	db *gorm.DB
}

func NewFineRepository(db *gorm.DB) FineRepository {
	return &fineRepository{db: db}
}

func (r *fineRepository) Create(ctx context.Context, fine *models.Fine) error {
	if err := r.db.WithContext(ctx).Create(fine).Error; err != nil {
		return fmt.Errorf("create fine: %w", err)
	}
	return nil
}

func (r *fineRepository) GetByID(ctx context.Context, id int64) (*models.Fine, error) {
	var fine models.Fine
	if err := r.db.WithContext(ctx).First(&fine, id).Error; err != nil {
		return nil, err
	}
	return &fine, nil
}

func (r *fineRepository) GetByBorrowID(ctx context.Context, borrowID int64) (*models.Fine, error) {
	var fine models.Fine
	if err := r.db.WithContext(ctx).Where("borrow_id = ?", borrowID).First(&fine).Error; err != nil {
		return nil, err
	}
	return &fine, nil
}

func (r *fineRepository) Update(ctx context.Context, fine *models.Fine) error {
	if err := r.db.WithContext(ctx).Save(fine).Error; err != nil {
		return fmt.Errorf("update fine: %w", err)
	}
	return nil
}

func (r *fineRepository) List(ctx context.Context, params ListFinesParams) ([]models.Fine, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Fine{})

	if params.UserID != "" {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.Paid != nil {
		query = query.Where("is_paid = ?", *params.Paid)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count fines: %w", err)
	}

	var fines []models.Fine
	if err := query.
		Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&fines).Error; err != nil {
		return nil, 0, fmt.Errorf("list fines: %w", err)
	}

	return fines, total, nil
}
