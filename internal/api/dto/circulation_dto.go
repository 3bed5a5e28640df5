package dto

import (
	"time"

	"libraryhub/internal/api/models"
)

type BorrowRequest struct {
	BookID int64 `json:"book_id" binding:"required"`
}

type LoanResponse struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"user_id"`
	BookID     int64      `json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     string     `json:"status"`
}

func FromModelToLoanResponse(loan *models.BorrowTransaction) *LoanResponse {
	return &LoanResponse{
		ID:         loan.ID,
		UserID:     loan.UserID,
		BookID:     loan.BookID,
		BorrowDate: loan.BorrowDate,
		ReturnDate: loan.ReturnDate,
		Status:     loan.Status,
	}
}

// ReturnResponse carries the closed loan plus the fine, when the return was
// overdue.
type ReturnResponse struct {
	Loan *LoanResponse `json:"loan"`
	Fine *FineResponse `json:"fine,omitempty"`
}

type LoanListResponse struct {
	Items      []LoanResponse `json:"items"`
	Pagination Pagination     `json:"pagination"`
}
