package models

import "time"

// Book carries the three authoritative copy counters. They are denormalized
// on purpose (no aggregate query over loans/reservations on every request)
// and may only be mutated through the repository.CopyLedger inside a
// coordinator transaction. Invariant: available + reserved <= total, all >= 0.
type Book struct {
	ID              int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	LibraryID       int64      `json:"library_id" gorm:"index;not null"`
	Title           string     `json:"title" gorm:"not null"`
	ISBN            *string    `json:"isbn,omitempty" gorm:"uniqueIndex;size:20"`
	Description     *string    `json:"description,omitempty"`
	AuthorID        *int64     `json:"author_id,omitempty" gorm:"index"`
	TotalCopies     int        `json:"total_copies" gorm:"not null;default:0"`
	AvailableCopies int        `json:"available_copies" gorm:"not null;default:0"`
	ReservedCopies  int        `json:"reserved_copies" gorm:"not null;default:0"`
	CreatedAt       *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`

	// associations
	Author *Author `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Genres []Genre `json:"genres,omitempty" gorm:"many2many:book_genres;constraint:OnDelete:CASCADE;"`
}

func (Book) TableName() string {
	return "books"
}

// CountersValid reports whether the copy-counter invariant holds.
func (b *Book) CountersValid() bool {
	if b.TotalCopies < 0 || b.AvailableCopies < 0 || b.ReservedCopies < 0 {
		return false
	}
	return b.AvailableCopies+b.ReservedCopies <= b.TotalCopies
}
