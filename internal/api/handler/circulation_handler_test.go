package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"libraryhub/internal/api/models"
	"libraryhub/internal/api/repository"
	"libraryhub/internal/api/service"
)

// stubCirculation returns a fixed loan or error from every method.
type stubCirculation struct {
	loan *models.BorrowTransaction
	fine *models.Fine
	err  error
}

func (s *stubCirculation) Borrow(context.Context, service.Actor, int64) (*models.BorrowTransaction, error) {
	return s.loan, s.err
}

func (s *stubCirculation) Return(context.Context, service.Actor, int64) (*models.BorrowTransaction, *models.Fine, error) {
	return s.loan, s.fine, s.err
}

func (s *stubCirculation) Approve(context.Context, service.Actor, int64) (*models.BorrowTransaction, error) {
	return s.loan, s.err
}

func (s *stubCirculation) Cancel(context.Context, service.Actor, int64) error {
	return s.err
}

func (s *stubCirculation) List(context.Context, service.Actor, repository.ListLoansParams) ([]models.BorrowTransaction, int64, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	return []models.BorrowTransaction{*s.loan}, 1, nil
}

func newTestRouter(svc service.CirculationService, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if authenticated {
		router.Use(func(c *gin.Context) {
			c.Set("claims", &service.Claims{UserID: "user-1", Role: models.RoleMember, LibraryID: 1})
		})
	}
	NewCirculationHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func testLoan() *models.BorrowTransaction {
	return &models.BorrowTransaction{
		ID:         7,
		UserID:     "user-1",
		BookID:     3,
		BorrowDate: time.Now(),
		Status:     models.LoanStatusRequested,
	}
}

func TestBorrowEndpointSuccess(t *testing.T) {
	router := newTestRouter(&stubCirculation{loan: testLoan()}, true)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/borrow-transactions", strings.NewReader(`{"book_id":3}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"requested"`)
}

func TestBorrowEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no copies", service.ErrNoCopiesAvailable, http.StatusBadRequest},
		{"limit reached", service.ErrBorrowLimitReached, http.StatusBadRequest},
		{"already holding", service.ErrAlreadyBorrowed, http.StatusBadRequest},
		{"cross library", service.ErrCrossLibrary, http.StatusBadRequest},
		{"book missing", service.ErrBookNotFound, http.StatusNotFound},
		{"inactive user", service.ErrUserInactive, http.StatusBadRequest},
		{"tx budget exhausted", repository.ErrTxTimeout, http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubCirculation{err: tt.err}, true)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/borrow-transactions", strings.NewReader(`{"book_id":3}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestReturnEndpointIncludesFine(t *testing.T) {
	fine := &models.Fine{ID: 1, BorrowID: 7, UserID: "user-1", Amount: 9.0, Reason: "Returned 6 day(s) overdue"}
	loan := testLoan()
	loan.Status = models.LoanStatusReturned
	router := newTestRouter(&stubCirculation{loan: loan, fine: fine}, true)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/borrow-transactions/7/return", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amount":9`)
}

func TestReturnEndpointAlreadyReturned(t *testing.T) {
	router := newTestRouter(&stubCirculation{err: service.ErrAlreadyReturned}, true)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/borrow-transactions/7/return", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCirculationEndpointsRejectBadID(t *testing.T) {
	router := newTestRouter(&stubCirculation{loan: testLoan()}, true)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/borrow-transactions/abc/return", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCirculationEndpointsRequireAuth(t *testing.T) {
	router := newTestRouter(&stubCirculation{loan: testLoan()}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/borrow-transactions", strings.NewReader(`{"book_id":3}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
