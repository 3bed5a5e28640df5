package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"libraryhub/internal/api/repository"
	"libraryhub/internal/api/service"
)

// requestTimeout bounds handler-side work per request. The coordinator
// enforces tighter budgets on the transactional part.
const requestTimeout = 5 * time.Second

// respondError maps service-layer sentinels onto HTTP statuses. Anything
// unmapped is a 500 with a generic body; internals never leak to clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLibraryNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrBookNotFound),
		errors.Is(err, service.ErrPolicyNotFound),
		errors.Is(err, service.ErrLoanNotFound),
		errors.Is(err, service.ErrReservationNotFound),
		errors.Is(err, service.ErrFineNotFound),
		errors.Is(err, service.ErrReviewNotFound),
		errors.Is(err, service.ErrAuthorNotFound),
		errors.Is(err, service.ErrGenreNotFound),
		errors.Is(err, service.ErrNotInWishlist):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrReservationExists),
		errors.Is(err, service.ErrReviewExists),
		errors.Is(err, service.ErrFineAlreadyPaid),
		errors.Is(err, service.ErrAlreadyInWishlist),
		errors.Is(err, service.ErrNameInUse),
		errors.Is(err, service.ErrEmailInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrAlreadyBorrowed),
		errors.Is(err, service.ErrAlreadyReturned),
		errors.Is(err, service.ErrLoanNotCancellable),
		errors.Is(err, service.ErrLoanNotApprovable),
		errors.Is(err, service.ErrUserInactive),
		errors.Is(err, service.ErrCrossLibrary),
		errors.Is(err, service.ErrBorrowLimitReached),
		errors.Is(err, service.ErrNoCopiesAvailable),
		errors.Is(err, service.ErrInvalidSortKey),
		errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, repository.ErrTxTimeout):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request timed out, please retry"})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// pathID parses the named int64 path parameter, responding 400 on garbage.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func queryInt64Ptr(c *gin.Context, name string) *int64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &value
}
