package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"libraryhub/internal/api/models"
	"libraryhub/internal/api/repository"
)

// WishlistService maintains the wishlist membership kind. Unlike borrowed
// and reserved, wishlist entries have no backing circulation record and no
// counter impact, so they skip the coordinator.
type WishlistService interface {
	Add(ctx context.Context, actor Actor, bookID int64) error
	Remove(ctx context.Context, actor Actor, bookID int64) error
	List(ctx context.Context, actor Actor) ([]models.UserBookMembership, error)
}

type wishlistService struct {
	membershipRepo repository.MembershipRepository
	bookRepo       repository.BookRepository
}

func NewWishlistService(membershipRepo repository.MembershipRepository, bookRepo repository.BookRepository) WishlistService {
	return &wishlistService{membershipRepo: membershipRepo, bookRepo: bookRepo}
}

func (s *wishlistService) Add(ctx context.Context, actor Actor, bookID int64) error {
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		return translateNotFound(err, ErrBookNotFound)
	}

	exists, err := s.membershipRepo.Exists(ctx, actor.UserID, bookID, models.MembershipWishlist)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyInWishlist
	}

	return s.membershipRepo.Add(ctx, actor.UserID, bookID, models.MembershipWishlist)
}

func (s *wishlistService) Remove(ctx context.Context, actor Actor, bookID int64) error {
	err := s.membershipRepo.Remove(ctx, actor.UserID, bookID, models.MembershipWishlist)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotInWishlist
	}
	return err
}

func (s *wishlistService) List(ctx context.Context, actor Actor) ([]models.UserBookMembership, error) {
	return s.membershipRepo.ListWithBooks(ctx, actor.UserID, models.MembershipWishlist)
}
