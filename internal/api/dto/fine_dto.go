package dto

import (
	"time"

	"libraryhub/internal/api/models"
)

type FineResponse struct {
	ID        int64      `json:"id"`
	BorrowID  int64      `json:"borrow_id"`
	UserID    string     `json:"user_id"`
	Amount    float64    `json:"amount"`
	Reason    string     `json:"reason"`
	IsPaid    bool       `json:"is_paid"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func FromModelToFineResponse(fine *models.Fine) *FineResponse {
	return &FineResponse{
		ID:        fine.ID,
		BorrowID:  fine.BorrowID,
		UserID:    fine.UserID,
		Amount:    fine.Amount,
		Reason:    fine.Reason,
		IsPaid:    fine.IsPaid,
		PaidAt:    fine.PaidAt,
		CreatedAt: fine.CreatedAt,
	}
}

type FineListResponse struct {
	Items      []FineResponse `json:"items"`
	Pagination Pagination     `json:"pagination"`
}
