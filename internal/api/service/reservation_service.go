package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"libraryhub/internal/api/cache"
	"libraryhub/internal/api/models"
	"libraryhub/internal/api/repository"
)

// ReservationService creates and cancels holds. A reservation moves one copy
// from the available pool to the reserved pool until it is cancelled,
// converted into a loan, or swept after expiry.
type ReservationService interface {
	Create(ctx context.Context, actor Actor, bookID int64) (*models.Reservation, error)
	Cancel(ctx context.Context, actor Actor, reservationID int64) error
	List(ctx context.Context, actor Actor, params repository.ListReservationsParams) ([]models.Reservation, int64, error)
	// SweepExpired cancels up to batch expired reservations and returns how
	// many were released.
	SweepExpired(ctx context.Context, batch int) (int, error)
}

type reservationService struct {
	coordinator     repository.Coordinator
	reservationRepo repository.ReservationRepository
	bookCache       *cache.BookCache
	logger          *slog.Logger
}

func NewReservationService(
	coordinator repository.Coordinator,
	reservationRepo repository.ReservationRepository,
	bookCache *cache.BookCache,
	logger *slog.Logger,
) ReservationService {
	return &reservationService{
		coordinator:     coordinator,
		reservationRepo: reservationRepo,
		bookCache:       bookCache,
		logger:          logger,
	}
}

func (s *reservationService) Create(ctx context.Context, actor Actor, bookID int64) (*models.Reservation, error) {
	var reservation *models.Reservation

	err := s.coordinator.Execute(ctx, func(uow repository.UnitOfWork) error {
		user, err := uow.Users().FindByID(ctx, actor.UserID)
		if err != nil {
			return translateNotFound(err, ErrUserNotFound)
		}
		if !user.IsActive {
			return ErrUserInactive
		}

		book, err := uow.Books().GetForUpdate(ctx, bookID)
		if err != nil {
			return translateNotFound(err, ErrBookNotFound)
		}
		if user.LibraryID != book.LibraryID {
			return ErrCrossLibrary
		}

		holding, err := uow.Loans().HasOpenLoan(ctx, user.ID, bookID)
		if err != nil {
			return err
		}
		if holding {
			return ErrAlreadyBorrowed
		}

		if _, err := uow.Reservations().FindByUserAndBook(ctx, user.ID, bookID); err == nil {
			return ErrReservationExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		policy, err := uow.Policies().GetByLibraryID(ctx, book.LibraryID)
		if err != nil {
			return translateNotFound(err, ErrPolicyNotFound)
		}

		if book.AvailableCopies <= 0 {
			return ErrNoCopiesAvailable
		}
		if err := uow.Ledger().DecrementAvailable(ctx, bookID); err != nil {
			return err
		}
		if err := uow.Ledger().IncrementReserved(ctx, bookID); err != nil {
			return err
		}
		if err := uow.Memberships().Add(ctx, user.ID, bookID, models.MembershipReserved); err != nil {
			return err
		}

		now := time.Now()
		reservation = &models.Reservation{
			UserID:     user.ID,
			BookID:     bookID,
			ReservedAt: now,
			ExpiresAt:  EndOfDay(now.AddDate(0, 0, policy.EffectiveReservationExpiryDays())),
		}
		return uow.Reservations().Create(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBook(ctx, bookID)
	return reservation, nil
}

func (s *reservationService) Cancel(ctx context.Context, actor Actor, reservationID int64) error {
	var bookID int64

	err := s.coordinator.Execute(ctx, func(uow repository.UnitOfWork) error {
		reservation, err := uow.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return translateNotFound(err, ErrReservationNotFound)
		}
		if !actor.canActOn(reservation.UserID) {
			return ErrForbidden
		}
		bookID = reservation.BookID
		return releaseReservation(ctx, uow, reservation)
	})
	if err != nil {
		return err
	}

	s.invalidateBook(ctx, bookID)
	return nil
}

func (s *reservationService) List(ctx context.Context, actor Actor, params repository.ListReservationsParams) ([]models.Reservation, int64, error) {
	if !actor.IsStaff() {
		params.UserID = actor.UserID
	}
	params.Now = time.Now()
	normalizePage(&params.Page, &params.PageSize)
	return s.reservationRepo.List(ctx, params)
}

func (s *reservationService) SweepExpired(ctx context.Context, batch int) (int, error) {
	ids, err := s.reservationRepo.ListExpiredIDs(ctx, time.Now(), batch)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, id := range ids {
		err := s.coordinator.Execute(ctx, func(uow repository.UnitOfWork) error {
			reservation, err := uow.Reservations().GetByID(ctx, id)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// already released by a concurrent cancel or borrow
				return nil
			}
			if err != nil {
				return err
			}
			if !reservation.Expired(time.Now()) {
				return nil
			}
			if err := releaseReservation(ctx, uow, reservation); err != nil {
				return err
			}
			released++
			return nil
		})
		if err != nil {
			return released, err
		}
	}
	return released, nil
}

// releaseReservation undoes a hold inside the active unit of work: the copy
// moves back from reserved to available, the membership entry goes away, and
// the reservation row is deleted.
func releaseReservation(ctx context.Context, uow repository.UnitOfWork, reservation *models.Reservation) error {
	if err := uow.Reservations().Delete(ctx, reservation.ID); err != nil {
		return err
	}
	if err := uow.Ledger().DecrementReserved(ctx, reservation.BookID); err != nil {
		return err
	}
	if err := uow.Ledger().IncrementAvailable(ctx, reservation.BookID); err != nil {
		return err
	}
	return uow.Memberships().Remove(ctx, reservation.UserID, reservation.BookID, models.MembershipReserved)
}

func (s *reservationService) invalidateBook(ctx context.Context, bookID int64) {
	if err := s.bookCache.InvalidateBook(ctx, bookID); err != nil {
		s.logger.Warn("book cache invalidation failed", "book_id", bookID, "error", err)
	}
}
