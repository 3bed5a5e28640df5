package models

import "time"

// Reservation is a hold on one copy of a book. At most one per (user, book);
// deleted on cancellation or when converted into a loan.
type Reservation struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     string    `json:"user_id" gorm:"type:uuid;index;not null;uniqueIndex:idx_reservation_user_book"`
	BookID     int64     `json:"book_id" gorm:"index;not null;uniqueIndex:idx_reservation_user_book"`
	ReservedAt time.Time `json:"reserved_at" gorm:"not null"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"index;not null"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// Expired reports whether the hold has lapsed at the given instant.
func (r *Reservation) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
