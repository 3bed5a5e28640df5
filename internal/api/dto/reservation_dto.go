package dto

import (
	"time"

	"libraryhub/internal/api/models"
)

type CreateReservationRequest struct {
	BookID int64 `json:"book_id" binding:"required"`
}

type ReservationResponse struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	BookID     int64     `json:"book_id"`
	ReservedAt time.Time `json:"reserved_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Expired    bool      `json:"expired"`
}

func FromModelToReservationResponse(reservation *models.Reservation, now time.Time) *ReservationResponse {
	return &ReservationResponse{
		ID:         reservation.ID,
		UserID:     reservation.UserID,
		BookID:     reservation.BookID,
		ReservedAt: reservation.ReservedAt,
		ExpiresAt:  reservation.ExpiresAt,
		Expired:    reservation.Expired(now),
	}
}

type ReservationListResponse struct {
	Items      []ReservationResponse `json:"items"`
	Pagination Pagination            `json:"pagination"`
}
