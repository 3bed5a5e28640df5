package service

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"libraryhub/internal/api/cache"
	"libraryhub/internal/api/models"
	"libraryhub/internal/api/repository"
)

// fixture wires every service onto one in-memory store so tests exercise the
// real service logic end to end, coordinator included.
type fixture struct {
	store        *memStore
	circulation  CirculationService
	reservations ReservationService
	fines        FineService
	books        BookService
	wishlist     WishlistService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	coordinator := &memCoordinator{store: store}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	disabledCache := &cache.BookCache{}

	return &fixture{
		store:        store,
		circulation:  NewCirculationService(coordinator, memLoans{store}, disabledCache, logger),
		reservations: NewReservationService(coordinator, memReservations{store}, disabledCache, logger),
		fines:        NewFineService(coordinator, memFines{store}),
		books:        NewBookService(coordinator, memBooks{store}, memLibraries{store}, disabledCache, logger),
		wishlist:     NewWishlistService(memMemberships{store}, memBooks{store}),
	}
}

func (f *fixture) seedLibrary() int64 {
	id := f.store.id()
	f.store.libraries[id] = &models.Library{ID: id, Name: fmt.Sprintf("Library %d", id)}
	return id
}

func (f *fixture) seedPolicy(libraryID int64, maxBorrowDays, maxBooks int, finePerDay float64) {
	f.store.policies[libraryID] = &models.Policy{
		LibraryID:             libraryID,
		MaxBorrowDays:         maxBorrowDays,
		FinePerDay:            finePerDay,
		MaxBooksPerUser:       maxBooks,
		ReservationExpiryDays: 7,
	}
}

func (f *fixture) seedUser(libraryID int64, role string) *models.User {
	id := fmt.Sprintf("user-%d", f.store.id())
	user := &models.User{
		ID:        id,
		Username:  id,
		Email:     id + "@example.com",
		Role:      role,
		LibraryID: libraryID,
		IsActive:  true,
	}
	f.store.users[id] = user
	return user
}

func (f *fixture) seedBook(libraryID int64, totalCopies int) *models.Book {
	id := f.store.id()
	book := &models.Book{
		ID:              id,
		LibraryID:       libraryID,
		Title:           fmt.Sprintf("Book %d", id),
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
	}
	f.store.books[id] = book
	return book
}

func (f *fixture) actorFor(user *models.User) Actor {
	return Actor{UserID: user.ID, Role: user.Role, LibraryID: user.LibraryID}
}

func (f *fixture) book(id int64) *models.Book {
	return f.store.books[id]
}

// backdateLoan shifts a loan's borrow date into the past.
func (f *fixture) backdateLoan(loanID int64, days int) {
	f.store.loans[loanID].BorrowDate = time.Now().AddDate(0, 0, -days)
}

func listLoansFor(userID string) repository.ListLoansParams {
	return repository.ListLoansParams{UserID: userID, Page: 1, PageSize: 20}
}
