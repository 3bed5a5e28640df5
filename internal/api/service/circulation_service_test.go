package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/api/models"
)

func TestBorrowTakesAvailableCopy(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 0)
	user := f.seedUser(libraryID, models.RoleMember)
	book := f.seedBook(libraryID, 3)

	loan, err := f.circulation.Borrow(context.Background(), f.actorFor(user), book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusRequested, loan.Status)
	assert.Equal(t, user.ID, loan.UserID)

	assert.Equal(t, 2, f.book(book.ID).AvailableCopies)
	assert.Equal(t, 0, f.book(book.ID).ReservedCopies)

	ids, err := memMemberships{f.store}.ListBookIDs(context.Background(), user.ID, models.MembershipBorrowed)
	require.NoError(t, err)
	assert.Equal(t, []int64{book.ID}, ids)
}

func TestBorrowConsumesOwnReservation(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 0)
	user := f.seedUser(libraryID, models.RoleMember)
	book := f.seedBook(libraryID, 1)

	_, err := f.reservations.Create(context.Background(), f.actorFor(user), book.ID)
	require.NoError(t, err)
	require.Equal(t, 0, f.book(book.ID).AvailableCopies)
	require.Equal(t, 1, f.book(book.ID).ReservedCopies)

	// The user's own hold wins even though the available pool is empty.
	loan, err := f.circulation.Borrow(context.Background(), f.actorFor(user), book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusRequested, loan.Status)

	assert.Equal(t, 0, f.book(book.ID).AvailableCopies)
	assert.Equal(t, 0, f.book(book.ID).ReservedCopies)
	assert.Empty(t, f.store.reservations)

	ids, err := memMemberships{f.store}.ListBookIDs(context.Background(), user.ID, models.MembershipReserved)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBorrowFailsWhenNoCopies(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 0)
	holder := f.seedUser(libraryID, models.RoleMember)
	user := f.seedUser(libraryID, models.RoleMember)
	book := f.seedBook(libraryID, 1)

	_, err := f.circulation.Borrow(context.Background(), f.actorFor(holder), book.ID)
	require.NoError(t, err)

	_, err = f.circulation.Borrow(context.Background(), f.actorFor(user), book.ID)
	assert.ErrorIs(t, err, ErrNoCopiesAvailable)
	// A failed borrow leaves no trace.
	assert.Equal(t, 0, f.book(book.ID).AvailableCopies)
	assert.Len(t, f.store.loans, 1)
}

func TestBorrowFailsWhenAlreadyHolding(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 0)
	user := f.seedUser(libraryID, models.RoleMember)
	book := f.seedBook(libraryID, 3)

	_, err := f.circulation.Borrow(context.Background(), f.actorFor(user), book.ID)
	require.NoError(t, err)

	_, err = f.circulation.Borrow(context.Background(), f.actorFor(user), book.ID)
	assert.ErrorIs(t, err, ErrAlreadyBorrowed)
	assert.Equal(t, 2, f.book(book.ID).AvailableCopies)
}

func TestBorrowLimit(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 2, 0)
	user := f.seedUser(libraryID, models.RoleMember)

	for i := 0; i < 2; i++ {
		book := f.seedBook(libraryID, 1)
		_, err := f.circulation.Borrow(context.Background(), f.actorFor(user), book.ID)
		require.NoError(t, err)
	}

	extra := f.seedBook(libraryID, 1)
	_, err := f.circulation.Borrow(context.Background(), f.actorFor(user), extra.ID)
	assert.ErrorIs(t, err, ErrBorrowLimitReached)
	assert.Equal(t, 1, f.book(extra.ID).AvailableCopies)
}

func TestBorrowCrossLibrary(t *testing.T) {
	f := newFixture(t)
	homeID := f.seedLibrary()
	otherID := f.seedLibrary()
	f.seedPolicy(otherID, 14, 5, 0)
	user := f.seedUser(homeID, models.RoleMember)
	book := f.seedBook(otherID, 1)

	_, err := f.circulation.Borrow(context.Background(), f.actorFor(user), book.ID)
	assert.ErrorIs(t, err, ErrCrossLibrary)
}

func TestBorrowInactiveUser(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 0)
	user := f.seedUser(libraryID, models.RoleMember)
	user.IsActive = false
	book := f.seedBook(libraryID, 1)

	_, err := f.circulation.Borrow(context.Background(), f.actorFor(user), book.ID)
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestConcurrentBorrowsNeverOversell(t *testing.T) {
	const copies = 3
	const borrowers = 10

	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 0)
	book := f.seedBook(libraryID, copies)

	users := make([]*models.User, borrowers)
	for i := range users {
		users[i] = f.seedUser(libraryID, models.RoleMember)
	}

	var wg sync.WaitGroup
	errs := make([]error, borrowers)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.circulation.Borrow(context.Background(), f.actorFor(users[i]), book.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrNoCopiesAvailable)
		}
	}
	assert.Equal(t, copies, succeeded)
	assert.Equal(t, 0, f.book(book.ID).AvailableCopies)
	assert.True(t, f.book(book.ID).CountersValid())
	assert.Len(t, f.store.loans, copies)
}

func TestReturnRestoresAvailableCopy(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 1.0)
	user := f.seedUser(libraryID, models.RoleMember)
	book := f.seedBook(libraryID, 2)

	loan, err := f.circulation.Borrow(context.Background(), f.actorFor(user), book.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.book(book.ID).AvailableCopies)

	returned, fine, err := f.circulation.Return(context.Background(), f.actorFor(user), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusReturned, returned.Status)
	assert.NotNil(t, returned.ReturnDate)
	assert.Nil(t, fine, "on-time return must not create a fine")
	assert.Equal(t, 2, f.book(book.ID).AvailableCopies)

	ids, err := memMemberships{f.store}.ListBookIDs(context.Background(), user.ID, models.MembershipBorrowed)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReturnOverdueCreatesFine(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 1.5)
	user := f.seedUser(libraryID, models.RoleMember)
	book := f.seedBook(libraryID, 1)

	loan, err := f.circulation.Borrow(context.Background(), f.actorFor(user), book.ID)
	require.NoError(t, err)
	// Borrowed 20 days ago with a 14-day window: due end of day six days
	// ago, so the return is 6 days late.
	f.backdateLoan(loan.ID, 20)

	_, fine, err := f.circulation.Return(context.Background(), f.actorFor(user), loan.ID)
	require.NoError(t, err)
	require.NotNil(t, fine)
	assert.Equal(t, 9.0, fine.Amount)
	assert.False(t, fine.IsPaid)
	assert.Equal(t, loan.ID, fine.BorrowID)
	assert.Contains(t, fine.Reason, "overdue")
}

func TestReturnOverdueWithZeroFineRate(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 0)
	user := f.seedUser(libraryID, models.RoleMember)
	book := f.seedBook(libraryID, 1)

	loan, err := f.circulation.Borrow(context.Background(), f.actorFor(user), book.ID)
	require.NoError(t, err)
	f.backdateLoan(loan.ID, 30)

	_, fine, err := f.circulation.Return(context.Background(), f.actorFor(user), loan.ID)
	require.NoError(t, err)
	assert.Nil(t, fine)
}

func TestReturnTwice(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 1.0)
	user := f.seedUser(libraryID, models.RoleMember)
	book := f.seedBook(libraryID, 1)

	loan, err := f.circulation.Borrow(context.Background(), f.actorFor(user), book.ID)
	require.NoError(t, err)
	f.backdateLoan(loan.ID, 20)

	_, _, err = f.circulation.Return(context.Background(), f.actorFor(user), loan.ID)
	require.NoError(t, err)

	_, _, err = f.circulation.Return(context.Background(), f.actorFor(user), loan.ID)
	assert.ErrorIs(t, err, ErrAlreadyReturned)
	// The counter did not move again and no second fine appeared.
	assert.Equal(t, 1, f.book(book.ID).AvailableCopies)
	assert.Len(t, f.store.fines, 1)
}

func TestReturnSomeoneElsesLoan(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 0)
	owner := f.seedUser(libraryID, models.RoleMember)
	other := f.seedUser(libraryID, models.RoleMember)
	staff := f.seedUser(libraryID, models.RoleStaff)
	book := f.seedBook(libraryID, 1)

	loan, err := f.circulation.Borrow(context.Background(), f.actorFor(owner), book.ID)
	require.NoError(t, err)

	_, _, err = f.circulation.Return(context.Background(), f.actorFor(other), loan.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Staff can return on the member's behalf.
	_, _, err = f.circulation.Return(context.Background(), f.actorFor(staff), loan.ID)
	assert.NoError(t, err)
}

func TestApprove(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 0)
	member := f.seedUser(libraryID, models.RoleMember)
	staff := f.seedUser(libraryID, models.RoleStaff)
	book := f.seedBook(libraryID, 1)

	loan, err := f.circulation.Borrow(context.Background(), f.actorFor(member), book.ID)
	require.NoError(t, err)

	_, err = f.circulation.Approve(context.Background(), f.actorFor(member), loan.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	approved, err := f.circulation.Approve(context.Background(), f.actorFor(staff), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusBorrowed, approved.Status)

	_, err = f.circulation.Approve(context.Background(), f.actorFor(staff), loan.ID)
	assert.ErrorIs(t, err, ErrLoanNotApprovable)
}

func TestCancelRequestedLoan(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 0)
	user := f.seedUser(libraryID, models.RoleMember)
	book := f.seedBook(libraryID, 1)

	loan, err := f.circulation.Borrow(context.Background(), f.actorFor(user), book.ID)
	require.NoError(t, err)
	require.Equal(t, 0, f.book(book.ID).AvailableCopies)

	err = f.circulation.Cancel(context.Background(), f.actorFor(user), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.book(book.ID).AvailableCopies)
	assert.Empty(t, f.store.loans)
}

func TestCancelApprovedLoan(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 0)
	member := f.seedUser(libraryID, models.RoleMember)
	staff := f.seedUser(libraryID, models.RoleStaff)
	book := f.seedBook(libraryID, 1)

	loan, err := f.circulation.Borrow(context.Background(), f.actorFor(member), book.ID)
	require.NoError(t, err)
	_, err = f.circulation.Approve(context.Background(), f.actorFor(staff), loan.ID)
	require.NoError(t, err)

	err = f.circulation.Cancel(context.Background(), f.actorFor(member), loan.ID)
	assert.ErrorIs(t, err, ErrLoanNotCancellable)
}

func TestListLoansScopedToMember(t *testing.T) {
	f := newFixture(t)
	libraryID := f.seedLibrary()
	f.seedPolicy(libraryID, 14, 5, 0)
	alice := f.seedUser(libraryID, models.RoleMember)
	bob := f.seedUser(libraryID, models.RoleMember)
	staff := f.seedUser(libraryID, models.RoleStaff)

	for _, u := range []*models.User{alice, bob} {
		book := f.seedBook(libraryID, 1)
		_, err := f.circulation.Borrow(context.Background(), f.actorFor(u), book.ID)
		require.NoError(t, err)
	}

	// A member only ever sees their own loans, whatever they ask for.
	loans, total, err := f.circulation.List(context.Background(), f.actorFor(alice), listLoansFor(bob.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, alice.ID, loans[0].UserID)

	_, total, err = f.circulation.List(context.Background(), f.actorFor(staff), listLoansFor(""))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestOverdueDays(t *testing.T) {
	base := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	due := EndOfDay(base.AddDate(0, 0, 14)) // March 15, end of day

	tests := []struct {
		name       string
		returnedAt time.Time
		want       int
	}{
		{"same day", base, 0},
		{"on due day", base.AddDate(0, 0, 14), 0},
		{"last instant of due day", due, 0},
		{"one nanosecond past due", due.Add(time.Nanosecond), 1},
		{"next morning", base.AddDate(0, 0, 15), 1},
		{"six days late", base.AddDate(0, 0, 20), 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverdueDays(base, 14, tt.returnedAt))
		})
	}
}

func TestEndOfDay(t *testing.T) {
	in := time.Date(2025, time.July, 4, 9, 30, 0, 0, time.UTC)
	out := EndOfDay(in)
	assert.Equal(t, 23, out.Hour())
	assert.Equal(t, 59, out.Minute())
	assert.Equal(t, 59, out.Second())
	assert.Equal(t, in.Year(), out.Year())
	assert.Equal(t, in.YearDay(), out.YearDay())
}
