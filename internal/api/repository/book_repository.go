package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"libraryhub/internal/api/models"
)

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Genres").
		First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) GetForUpdate(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Book{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete book: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookRepository) List(ctx context.Context, params ListBooksParams) ([]models.Book, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Book{})

	if params.LibraryID != nil {
		query = query.Where("library_id = ?", *params.LibraryID)
	}
	if params.AuthorID != nil {
		query = query.Where("author_id = ?", *params.AuthorID)
	}
	if params.GenreID != nil {
		query = query.Joins("JOIN book_genres ON book_genres.book_id = books.id").
			Where("book_genres.genre_id = ?", *params.GenreID)
	}
	if params.Search != "" {
		query = query.Where("title ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	sortField := params.SortField
	if sortField == "" {
		sortField = "id"
	}
	direction := "ASC"
	if params.SortDesc {
		direction = "DESC"
	}

	var books []models.Book
	if err := query.
		Preload("Author").
		Preload("Genres").
		Order(fmt.Sprintf("%s %s", sortField, direction)).
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&books).Error; err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	return books, total, nil
}

func (r *bookRepository) ReplaceGenres(ctx context.Context, book *models.Book, genreIDs []int64) error {
	var genres []models.Genre
	if len(genreIDs) > 0 {
		if err := r.db.WithContext(ctx).Where("id IN ?", genreIDs).Find(&genres).Error; err != nil {
			return fmt.Errorf("load genres: %w", err)
		}
		if len(genres) != len(genreIDs) {
			return gorm.ErrRecordNotFound
		}
	}
	if err := r.db.WithContext(ctx).Model(book).Association("Genres").Replace(genres); err != nil {
		return fmt.Errorf("replace genres: %w", err)
	}
	return nil
}
