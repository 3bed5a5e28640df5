package models

import "time"

// DefaultReservationExpiryDays is used when a policy carries a non-positive
// reservation expiry.
const DefaultReservationExpiryDays = 7

// Policy is the per-library circulation configuration. The circulation core
// reads it fresh inside every transaction and never writes it.
type Policy struct {
	ID                    int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	LibraryID             int64     `json:"library_id" gorm:"uniqueIndex;not null"`
	MaxBorrowDays         int       `json:"max_borrow_days" gorm:"not null;default:14"`
	FinePerDay            float64   `json:"fine_per_day" gorm:"type:decimal(10,2);not null;default:0"`
	MaxBooksPerUser       int       `json:"max_books_per_user" gorm:"not null;default:5"`
	ReservationExpiryDays int       `json:"reservation_expiry_days" gorm:"not null;default:7"`
	UpdatedAt             time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Policy) TableName() string {
	return "policies"
}

// EffectiveReservationExpiryDays falls back to the default when the stored
// value is misconfigured (<= 0).
func (p *Policy) EffectiveReservationExpiryDays() int {
	if p.ReservationExpiryDays <= 0 {
		return DefaultReservationExpiryDays
	}
	return p.ReservationExpiryDays
}
