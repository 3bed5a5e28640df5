package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gorm.io/gorm"

	"libraryhub/internal/api/cache"
	"libraryhub/internal/api/models"
	"libraryhub/internal/api/repository"
)

// CirculationService is the borrow/return/cancel lifecycle of a loan. Every
// mutation runs as one serializable unit of work: loan record, book
// counters, and the user's membership lists commit or roll back together.
type CirculationService interface {
	Borrow(ctx context.Context, actor Actor, bookID int64) (*models.BorrowTransaction, error)
	Return(ctx context.Context, actor Actor, loanID int64) (*models.BorrowTransaction, *models.Fine, error)
	Approve(ctx context.Context, actor Actor, loanID int64) (*models.BorrowTransaction, error)
	Cancel(ctx context.Context, actor Actor, loanID int64) error
	List(ctx context.Context, actor Actor, params repository.ListLoansParams) ([]models.BorrowTransaction, int64, error)
}

type circulationService struct {
	coordinator repository.Coordinator
	loanRepo    repository.LoanRepository
	bookCache   *cache.BookCache
	logger      *slog.Logger
}

func NewCirculationService(
	coordinator repository.Coordinator,
	loanRepo repository.LoanRepository,
	bookCache *cache.BookCache,
	logger *slog.Logger,
) CirculationService {
	return &circulationService{
		coordinator: coordinator,
		loanRepo:    loanRepo,
		bookCache:   bookCache,
		logger:      logger,
	}
}

// Borrow checks the user out one copy of the book. If the user holds a
// reservation for it, the reservation is consumed (reserved pool shrinks);
// otherwise an available copy is taken. The user's own reservation always
// wins over treating the request as a fresh borrow.
func (s *circulationService) Borrow(ctx context.Context, actor Actor, bookID int64) (*models.BorrowTransaction, error) {
	var loan *models.BorrowTransaction

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

		policy, err := uow.Policies().GetByLibraryID(ctx, book.LibraryID)
		if err != nil {
			return translateNotFound(err, ErrPolicyNotFound)
		}
		openLoans, err := uow.Loans().CountOpenByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if openLoans >= int64(policy.MaxBooksPerUser) {
			return ErrBorrowLimitReached
		}

		reservation, err := uow.Reservations().FindByUserAndBook(ctx, user.ID, bookID)
		switch {
		case err == nil:
			// Convert the hold: the copy moves from the reserved pool
			// straight into the loan, the available pool is untouched.
			if err := uow.Ledger().DecrementReserved(ctx, bookID); err != nil {
				return err
			}
			if err := uow.Reservations().Delete(ctx, reservation.ID); err != nil {
				return err
			}
			if err := uow.Memberships().Remove(ctx, user.ID, bookID, models.MembershipReserved); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if book.AvailableCopies <= 0 {
				return ErrNoCopiesAvailable
			}
			if err := uow.Ledger().DecrementAvailable(ctx, bookID); err != nil {
				return err
			}
		default:
			return err
		}

		if err := uow.Memberships().Add(ctx, user.ID, bookID, models.MembershipBorrowed); err != nil {
			return err
		}

		loan = &models.BorrowTransaction{
			UserID:     user.ID,
			BookID:     bookID,
			BorrowDate: time.Now(),
			Status:     models.LoanStatusRequested,
		}
		return uow.Loans().Create(ctx, loan)
	})
	if err != nil {
		return nil, s.reportDefect(err)
	}

	s.invalidateBook(ctx, bookID)
	return loan, nil
}

// Return closes the loan, creates at most one fine when overdue, and always
// replenishes the available pool: a returned copy goes back to "available"
// regardless of whether it was borrowed out of a reservation.
func (s *circulationService) Return(ctx context.Context, actor Actor, loanID int64) (*models.BorrowTransaction, *models.Fine, error) {
	var (
		loan *models.BorrowTransaction
		fine *models.Fine
	)

	err := s.coordinator.Execute(ctx, func(uow repository.UnitOfWork) error {
		var err error
		loan, err = uow.Loans().GetByID(ctx, loanID)
		if err != nil {
			return translateNotFound(err, ErrLoanNotFound)
		}
		if !actor.canActOn(loan.UserID) {
			return ErrForbidden
		}
		if loan.Status == models.LoanStatusReturned {
			return ErrAlreadyReturned
		}

		book, err := uow.Books().GetForUpdate(ctx, loan.BookID)
		if err != nil {
			return translateNotFound(err, ErrBookNotFound)
		}
		policy, err := uow.Policies().GetByLibraryID(ctx, book.LibraryID)
		if err != nil {
			return translateNotFound(err, ErrPolicyNotFound)
		}

		now := time.Now()
		if days := OverdueDays(loan.BorrowDate, policy.MaxBorrowDays, now); days > 0 && policy.FinePerDay > 0 {
			// borrow_id is unique; a second fine for the same loan is a bug
			// and the insert would abort the transaction.
			fine = &models.Fine{
				BorrowID: loan.ID,
				UserID:   loan.UserID,
				Amount:   float64(days) * policy.FinePerDay,
				Reason:   fmt.Sprintf("Returned %d day(s) overdue", days),
				IsPaid:   false,
			}
			if err := uow.Fines().Create(ctx, fine); err != nil {
				return err
			}
		}

		loan.ReturnDate = &now
		loan.Status = models.LoanStatusReturned
		if err := uow.Loans().Update(ctx, loan); err != nil {
			return err
		}

		if err := uow.Ledger().IncrementAvailable(ctx, loan.BookID); err != nil {
			return err
		}
		return uow.Memberships().Remove(ctx, loan.UserID, loan.BookID, models.MembershipBorrowed)
	})
	if err != nil {
		return nil, nil, s.reportDefect(err)
	}

	s.invalidateBook(ctx, loan.BookID)
	return loan, fine, nil
}

// Approve moves a requested loan into the borrowed state (staff only). The
// copy was already consumed at borrow time, so no counters move.
func (s *circulationService) Approve(ctx context.Context, actor Actor, loanID int64) (*models.BorrowTransaction, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	var loan *models.BorrowTransaction
	err := s.coordinator.Execute(ctx, func(uow repository.UnitOfWork) error {
		var err error
		loan, err = uow.Loans().GetByID(ctx, loanID)
		if err != nil {
			return translateNotFound(err, ErrLoanNotFound)
		}
		if loan.Status != models.LoanStatusRequested {
			return ErrLoanNotApprovable
		}
		loan.Status = models.LoanStatusBorrowed
		return uow.Loans().Update(ctx, loan)
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Cancel retracts a loan that is still in the requested phase. The record is
// deleted (it never became a real checkout) and the copy returns to the
// available pool.
func (s *circulationService) Cancel(ctx context.Context, actor Actor, loanID int64) error {
	var bookID int64

	err := s.coordinator.Execute(ctx, func(uow repository.UnitOfWork) error {
		loan, err := uow.Loans().GetByID(ctx, loanID)
		if err != nil {
			return translateNotFound(err, ErrLoanNotFound)
		}
		if !actor.canActOn(loan.UserID) {
			return ErrForbidden
		}
		if loan.Status != models.LoanStatusRequested {
			return ErrLoanNotCancellable
		}
		bookID = loan.BookID

		if err := uow.Loans().Delete(ctx, loan.ID); err != nil {
			return err
		}
		if err := uow.Ledger().IncrementAvailable(ctx, loan.BookID); err != nil {
			return err
		}
		return uow.Memberships().Remove(ctx, loan.UserID, loan.BookID, models.MembershipBorrowed)
	})
	if err != nil {
		return s.reportDefect(err)
	}

	s.invalidateBook(ctx, bookID)
	return nil
}

// List returns loans visible to the actor: members see their own, staff may
// query any user.
func (s *circulationService) List(ctx context.Context, actor Actor, params repository.ListLoansParams) ([]models.BorrowTransaction, int64, error) {
	if !actor.IsStaff() {
		params.UserID = actor.UserID
	}
	normalizePage(&params.Page, &params.PageSize)
	return s.loanRepo.List(ctx, params)
}

// reportDefect logs invariant violations as defects; they indicate a pairing
// bug in a mutation path, not a user-facing condition.
func (s *circulationService) reportDefect(err error) error {
	if errors.Is(err, repository.ErrInvariantViolation) {
		s.logger.Error("copy counter invariant violated", "error", err)
	}
	return err
}

func (s *circulationService) invalidateBook(ctx context.Context, bookID int64) {
	if err := s.bookCache.InvalidateBook(ctx, bookID); err != nil {
		s.logger.Warn("book cache invalidation failed", "book_id", bookID, "error", err)
	}
}

// OverdueDays computes whole days elapsed past the due date with end-of-day
// semantics: the due date is the end of (borrow_date + max_borrow_days), so
// a return before midnight of the due day is never overdue.
func OverdueDays(borrowDate time.Time, maxBorrowDays int, returnedAt time.Time) int {
	due := EndOfDay(borrowDate.AddDate(0, 0, maxBorrowDays))
	if !returnedAt.After(due) {
		return 0
	}
	return int(math.Ceil(returnedAt.Sub(due).Hours() / 24))
}

// EndOfDay clamps t to the last instant of its calendar day.
func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// translateNotFound turns the store's record-not-found into the service's
// typed failure; anything else propagates unmodified.
func translateNotFound(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

func normalizePage(page, pageSize *int) {
	if *page < 1 {
		*page = 1
	}
	if *pageSize < 1 || *pageSize > 100 {
		*pageSize = 20
	}
}
