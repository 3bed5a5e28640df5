package service

import "errors"

// Not found: a referenced entity is absent.
var (
	ErrLibraryNotFound     = errors.New("library not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrBookNotFound        = errors.New("book not found")
	ErrPolicyNotFound      = errors.New("policy not found")
	ErrLoanNotFound        = errors.New("borrow transaction not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrFineNotFound        = errors.New("fine not found")
	ErrReviewNotFound      = errors.New("review not found")
	ErrAuthorNotFound      = errors.New("author not found")
	ErrGenreNotFound       = errors.New("genre not found")
	ErrNotInWishlist       = errors.New("book not in wishlist")
)

// Conflict: the requested record already exists or was already finalized.
var (
	ErrReservationExists = errors.New("user already has a reservation for this book")
	ErrReviewExists      = errors.New("user already reviewed this book")
	ErrFineAlreadyPaid   = errors.New("fine is already paid")
	ErrAlreadyInWishlist = errors.New("book already in wishlist")
)

// Invalid state: the entity is in the wrong lifecycle phase for the
// requested transition.
var (
	ErrAlreadyBorrowed    = errors.New("user already holds this book")
	ErrAlreadyReturned    = errors.New("borrow transaction already returned")
	ErrLoanNotCancellable = errors.New("borrow transaction can only be cancelled while requested")
	ErrLoanNotApprovable  = errors.New("borrow transaction can only be approved while requested")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrCrossLibrary       = errors.New("user and book belong to different libraries")
)

// Limit exceeded: a policy limit or copy availability is exhausted.
var (
	ErrBorrowLimitReached = errors.New("borrow limit reached")
	ErrNoCopiesAvailable  = errors.New("no copies available")
)

// Authorization and input.
var (
	ErrForbidden      = errors.New("operation not permitted for this user")
	ErrInvalidSortKey = errors.New("unrecognized sort key")
	ErrInvalidInput   = errors.New("invalid input")
)
