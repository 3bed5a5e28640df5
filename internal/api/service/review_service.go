package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"libraryhub/internal/api/models"
	"libraryhub/internal/api/repository"
)

// ReviewService handles book reviews: one per (user, book).
type ReviewService interface {
	Create(ctx context.Context, actor Actor, bookID int64, rating int, comment *string) (*models.Review, error)
	ListByBook(ctx context.Context, bookID int64, page, pageSize int) ([]models.Review, int64, error)
	Delete(ctx context.Context, actor Actor, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	bookRepo   repository.BookRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, bookRepo repository.BookRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, bookRepo: bookRepo}
}

func (s *reviewService) Create(ctx context.Context, actor Actor, bookID int64, rating int, comment *string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}

	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		return nil, translateNotFound(err, ErrBookNotFound)
	}

	if _, err := s.reviewRepo.FindByUserAndBook(ctx, actor.UserID, bookID); err == nil {
		return nil, ErrReviewExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &models.Review{
		UserID:  actor.UserID,
		BookID:  bookID,
		Rating:  rating,
		Comment: comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) ListByBook(ctx context.Context, bookID int64, page, pageSize int) ([]models.Review, int64, error) {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		return nil, 0, translateNotFound(err, ErrBookNotFound)
	}
	normalizePage(&page, &pageSize)
	return s.reviewRepo.ListByBook(ctx, bookID, page, pageSize)
}

func (s *reviewService) Delete(ctx context.Context, actor Actor, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return translateNotFound(err, ErrReviewNotFound)
	}
	if !actor.canActOn(review.UserID) {
		return ErrForbidden
	}
	return s.reviewRepo.Delete(ctx, reviewID)
}
