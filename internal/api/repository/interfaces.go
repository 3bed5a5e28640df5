package repository

import (
	"context"
	"time"

	"libraryhub/internal/api/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type ListBooksParams struct {
	LibraryID *int64
	AuthorID  *int64
	GenreID   *int64
	Search    string
	SortField string // already whitelisted by the service layer
	SortDesc  bool
	Page      int
	PageSize  int
}

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	// GetForUpdate loads the book row locked against concurrent writers.
	// Only meaningful inside a coordinator transaction.
	GetForUpdate(ctx context.Context, id int64) (*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListBooksParams) ([]models.Book, int64, error)
	ReplaceGenres(ctx context.Context, book *models.Book, genreIDs []int64) error
}

type PolicyRepository interface {
	GetByLibraryID(ctx context.Context, libraryID int64) (*models.Policy, error)
	Upsert(ctx context.Context, policy *models.Policy) error
}

type ListLoansParams struct {
	UserID   string
	BookID   *int64
	Status   string
	Page     int
	PageSize int
}

type LoanRepository interface {
	Create(ctx context.Context, loan *models.BorrowTransaction) error
	GetByID(ctx context.Context, id int64) (*models.BorrowTransaction, error)
	Update(ctx context.Context, loan *models.BorrowTransaction) error
	Delete(ctx context.Context, id int64) error
	HasOpenLoan(ctx context.Context, userID string, bookID int64) (bool, error)
	CountOpenByUser(ctx context.Context, userID string) (int64, error)
	List(ctx context.Context, params ListLoansParams) ([]models.BorrowTransaction, int64, error)
}

type ListReservationsParams struct {
	UserID      string
	BookID      *int64
	ExpiredOnly bool
	Now         time.Time
	Page        int
	PageSize    int
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	FindByUserAndBook(ctx context.Context, userID string, bookID int64) (*models.Reservation, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListReservationsParams) ([]models.Reservation, int64, error)
	// ListExpiredIDs feeds the background sweeper.
	ListExpiredIDs(ctx context.Context, now time.Time, limit int) ([]int64, error)
}

type ListFinesParams struct {
	UserID   string
	Paid     *bool
	Page     int
	PageSize int
}

type FineRepository interface {
	Create(ctx context.Context, fine *models.Fine) error
	GetByID(ctx context.Context, id int64) (*models.Fine, error)
	GetByBorrowID(ctx context.Context, borrowID int64) (*models.Fine, error)
	Update(ctx context.Context, fine *models.Fine) error
	List(ctx context.Context, params ListFinesParams) ([]models.Fine, int64, error)
}

// MembershipRepository maintains the denormalized per-user book lists
// (borrowed / reserved / wishlist). The borrowed and reserved kinds are
// caches of loan/reservation rows and must only be written inside the same
// coordinator transaction that writes the authoritative record.
type MembershipRepository interface {
	Add(ctx context.Context, userID string, bookID int64, kind string) error
	Remove(ctx context.Context, userID string, bookID int64, kind string) error
	Exists(ctx context.Context, userID string, bookID int64, kind string) (bool, error)
	ListBookIDs(ctx context.Context, userID string, kind string) ([]int64, error)
	ListWithBooks(ctx context.Context, userID string, kind string) ([]models.UserBookMembership, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	FindByUserAndBook(ctx context.Context, userID string, bookID int64) (*models.Review, error)
	ListByBook(ctx context.Context, bookID int64, page, pageSize int) ([]models.Review, int64, error)
	Delete(ctx context.Context, id int64) error
}

type AuthorRepository interface {
	Create(ctx context.Context, author *models.Author) error
	GetByID(ctx context.Context, id int64) (*models.Author, error)
	List(ctx context.Context, page, pageSize int) ([]models.Author, int64, error)
	Update(ctx context.Context, author *models.Author) error
	Delete(ctx context.Context, id int64) error
}

type GenreRepository interface {
	Create(ctx context.Context, genre *models.Genre) error
	GetByID(ctx context.Context, id int64) (*models.Genre, error)
	List(ctx context.Context) ([]models.Genre, error)
	Update(ctx context.Context, genre *models.Genre) error
	Delete(ctx context.Context, id int64) error
}

type LibraryRepository interface {
	Create(ctx context.Context, library *models.Library) error
	GetByID(ctx context.Context, id int64) (*models.Library, error)
	List(ctx context.Context, page, pageSize int) ([]models.Library, int64, error)
	Update(ctx context.Context, library *models.Library) error
	Delete(ctx context.Context, id int64) error
}

// UnitOfWork hands out repositories bound to one active transaction. Every
// multi-entity circulation mutation goes through it; nothing outside a unit
// of work may touch book counters or membership rows.
type UnitOfWork interface {
	Users() UserRepository
	Books() BookRepository
	Policies() PolicyRepository
	Loans() LoanRepository
	Reservations() ReservationRepository
	Fines() FineRepository
	Memberships() MembershipRepository
	Ledger() CopyLedger
}

// Coordinator wraps a unit of work in a single atomic, serializable
// transaction with bounded wait and execution budgets. On success the
// transaction commits; on any error every write in it is rolled back.
type Coordinator interface {
	Execute(ctx context.Context, fn func(uow UnitOfWork) error) error
}
