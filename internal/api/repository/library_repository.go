package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"libraryhub/internal/api/models"
)

type libraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

func (r *libraryRepository) Create(ctx context.Context, library *models.Library) error {
	if err := r.db.WithContext(ctx).Create(library).Error; err != nil {
		return fmt.Errorf("create library: %w", err)
	}
	return nil
}

func (r *libraryRepository) GetByID(ctx context.Context, id int64) (*models.Library, error) {
	var library models.Library
	if err := r.db.WithContext(ctx).First(&library, id).Error; err != nil {
		return nil, err
	}
	return &library, nil
}

func (r *libraryRepository) List(ctx context.Context, page, pageSize int) ([]models.Library, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Library{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count libraries: %w", err)
	}

	var libraries []models.Library
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&libraries).Error; err != nil {
		return nil, 0, fmt.Errorf("list libraries: %w", err)
	}

	return libraries, total, nil
}

func (r *libraryRepository) Update(ctx context.Context, library *models.Library) error {
	if err := r.db.WithContext(ctx).Save(library).Error; err != nil {
		return fmt.Errorf("update library: %w", err)
	}
	return nil
}

func (r *libraryRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Library{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete library: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
