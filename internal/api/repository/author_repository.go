package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"libraryhub/internal/api/models"
)

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(ctx context.Context, author *models.Author) error {
	if err := r.db.WithContext(ctx).Create(author).Error; err != nil {
		return fmt.Errorf("create author: %w", err)
	}
	return nil
}

func (r *authorRepository) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	var author models.Author
	if err := r.db.WithContext(ctx).First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) List(ctx context.Context, page, pageSize int) ([]models.Author, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Author{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count authors: %w", err)
	}

	var authors []models.Author
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("list authors: %w", err)
	}

	return authors, total, nil
}

func (r *authorRepository) Update(ctx context.Context, author *models.Author) error {
	if err := r.db.WithContext(ctx).Save(author).Error; err != nil {
		return fmt.Errorf("update author: %w", err)
	}
	return nil
}

func (r *authorRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Author{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete author: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
