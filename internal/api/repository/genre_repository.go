package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"libraryhub/internal/api/models"
)

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, genre *models.Genre) error {
	if err := r.db.WithContext(ctx).Create(genre).Error; err != nil {
		return fmt.Errorf("create genre: %w", err)
	}
	return nil
}

func (r *genreRepository) GetByID(ctx context.Context, id int64) (*models.Genre, error) {
	var genre models.Genre
	if err := r.db.WithContext(ctx).First(&genre, id).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *genreRepository) List(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genres, nil
}

func (r *genreRepository) Update(ctx context.Context, genre *models.Genre) error {
	if err := r.db.WithContext(ctx).Save(genre).Error; err != nil {
		return fmt.Errorf("update genre: %w", err)
	}
	return nil
}

func (r *genreRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Genre{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete genre: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
