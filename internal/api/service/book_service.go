package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"libraryhub/internal/api/cache"
	"libraryhub/internal/api/models"
	"libraryhub/internal/api/repository"
)

// bookSortKeys is the whitelist of recognized sort keys mapped to columns.
// Raw request strings never reach the store layer.
var bookSortKeys = map[string]string{
	"id":         "id",
	"title":      "title",
	"created_at": "created_at",
	"available":  "available_copies",
	"total":      "total_copies",
}

type CreateBookInput struct {
	LibraryID   int64
	Title       string
	ISBN        *string
	Description *string
	AuthorID    *int64
	GenreIDs    []int64
	TotalCopies int
}

type UpdateBookInput struct {
	Title       *string
	ISBN        *string
	Description *string
	AuthorID    *int64
	GenreIDs    []int64
	TotalCopies *int
}

type BookListQuery struct {
	LibraryID *int64
	AuthorID  *int64
	GenreID   *int64
	Search    string
	Sort      string
	Desc      bool
	Page      int
	PageSize  int
}

// BookService is the catalog side of books. Copy counters are writable only
// through the ledger: creation seeds them, resizing goes through
// SetTotalCopies, and everything else leaves them alone.
type BookService interface {
	Create(ctx context.Context, actor Actor, input CreateBookInput) (*models.Book, error)
	Get(ctx context.Context, bookID int64) (*models.Book, error)
	List(ctx context.Context, query BookListQuery) ([]models.Book, int64, error)
	Update(ctx context.Context, actor Actor, bookID int64, input UpdateBookInput) (*models.Book, error)
	Delete(ctx context.Context, actor Actor, bookID int64) error
}

type bookService struct {
	coordinator repository.Coordinator
	bookRepo    repository.BookRepository
	libraryRepo repository.LibraryRepository
	bookCache   *cache.BookCache
	logger      *slog.Logger
}

func NewBookService(
	coordinator repository.Coordinator,
	bookRepo repository.BookRepository,
	libraryRepo repository.LibraryRepository,
	bookCache *cache.BookCache,
	logger *slog.Logger,
) BookService {
	return &bookService{
		coordinator: coordinator,
		bookRepo:    bookRepo,
		libraryRepo: libraryRepo,
		bookCache:   bookCache,
		logger:      logger,
	}
}

func (s *bookService) Create(ctx context.Context, actor Actor, input CreateBookInput) (*models.Book, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.TotalCopies < 0 {
		return nil, fmt.Errorf("%w: total_copies must not be negative", ErrInvalidInput)
	}
	if _, err := s.libraryRepo.GetByID(ctx, input.LibraryID); err != nil {
		return nil, translateNotFound(err, ErrLibraryNotFound)
	}

	book := &models.Book{
		LibraryID:       input.LibraryID,
		Title:           input.Title,
		ISBN:            input.ISBN,
		Description:     input.Description,
		AuthorID:        input.AuthorID,
		TotalCopies:     input.TotalCopies,
		AvailableCopies: input.TotalCopies,
		ReservedCopies:  0,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}
	if len(input.GenreIDs) > 0 {
		if err := s.bookRepo.ReplaceGenres(ctx, book, input.GenreIDs); err != nil {
			return nil, translateNotFound(err, ErrGenreNotFound)
		}
	}
	return s.bookRepo.GetByID(ctx, book.ID)
}

// Get reads through the cache; stale counters between transactions are
// acceptable on the read path.
func (s *bookService) Get(ctx context.Context, bookID int64) (*models.Book, error) {
	if cached, err := s.bookCache.GetBook(ctx, bookID); err != nil {
		s.logger.Warn("book cache read failed", "book_id", bookID, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, translateNotFound(err, ErrBookNotFound)
	}

	if err := s.bookCache.SetBook(ctx, book); err != nil {
		s.logger.Warn("book cache write failed", "book_id", bookID, "error", err)
	}
	return book, nil
}

func (s *bookService) List(ctx context.Context, query BookListQuery) ([]models.Book, int64, error) {
	sortField := "id"
	if query.Sort != "" {
		field, ok := bookSortKeys[query.Sort]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrInvalidSortKey, query.Sort)
		}
		sortField = field
	}
	normalizePage(&query.Page, &query.PageSize)

	return s.bookRepo.List(ctx, repository.ListBooksParams{
		LibraryID: query.LibraryID,
		AuthorID:  query.AuthorID,
		GenreID:   query.GenreID,
		Search:    query.Search,
		SortField: sortField,
		SortDesc:  query.Desc,
		Page:      query.Page,
		PageSize:  query.PageSize,
	})
}

func (s *bookService) Update(ctx context.Context, actor Actor, bookID int64, input UpdateBookInput) (*models.Book, error) {
	if !actor.IsStaff() {
		return nil, ErrForbidden
	}

	err := s.coordinator.Execute(ctx, func(uow repository.UnitOfWork) error {
		book, err := uow.Books().GetForUpdate(ctx, bookID)
		if err != nil {
			return translateNotFound(err, ErrBookNotFound)
		}

		if input.Title != nil {
			book.Title = *input.Title
		}
		if input.ISBN != nil {
			book.ISBN = input.ISBN
		}
		if input.Description != nil {
			book.Description = input.Description
		}
		if input.AuthorID != nil {
			book.AuthorID = input.AuthorID
		}
		if err := uow.Books().Update(ctx, book); err != nil {
			return err
		}

		if input.GenreIDs != nil {
			if err := uow.Books().ReplaceGenres(ctx, book, input.GenreIDs); err != nil {
				return translateNotFound(err, ErrGenreNotFound)
			}
		}

		// Resizing the collection must honor outstanding commitments, so it
		// goes through the ledger rather than a plain field write.
		if input.TotalCopies != nil {
			if *input.TotalCopies < 0 {
				return fmt.Errorf("%w: total_copies must not be negative", ErrInvalidInput)
			}
			if err := uow.Ledger().SetTotalCopies(ctx, bookID, *input.TotalCopies); err != nil {
				if errors.Is(err, repository.ErrInvariantViolation) {
					return fmt.Errorf("%w: total_copies below borrowed+reserved copies", ErrInvalidInput)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateBook(ctx, bookID)
	return s.bookRepo.GetByID(ctx, bookID)
}

func (s *bookService) Delete(ctx context.Context, actor Actor, bookID int64) error {
	if !actor.IsStaff() {
		return ErrForbidden
	}

	err := s.coordinator.Execute(ctx, func(uow repository.UnitOfWork) error {
		book, err := uow.Books().GetForUpdate(ctx, bookID)
		if err != nil {
			return translateNotFound(err, ErrBookNotFound)
		}
		// Copies out with users or on hold block deletion.
		if book.AvailableCopies != book.TotalCopies {
			return fmt.Errorf("%w: book has outstanding loans or reservations", ErrInvalidInput)
		}
		return uow.Books().Delete(ctx, bookID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}

	s.invalidateBook(ctx, bookID)
	return nil
}

func (s *bookService) invalidateBook(ctx context.Context, bookID int64) {
	if err := s.bookCache.InvalidateBook(ctx, bookID); err != nil {
		s.logger.Warn("book cache invalidation failed", "book_id", bookID, "error", err)
	}
}
