package dto

import (
	"time"

	"libraryhub/internal/api/models"
)

type CreateReviewRequest struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty"`
}

type ReviewResponse struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	BookID    int64     `json:"book_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func FromModelToReviewResponse(review *models.Review) *ReviewResponse {
	resp := &ReviewResponse{
		ID:        review.ID,
		UserID:    review.UserID,
		BookID:    review.BookID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
	if review.User != nil {
		resp.Username = review.User.Username
	}
	return resp
}

type ReviewListResponse struct {
	Items      []ReviewResponse `json:"items"`
	Pagination Pagination       `json:"pagination"`
}
