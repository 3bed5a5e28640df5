package models

import "time"

// Membership kinds. The borrowed and reserved lists are caches of the
// authoritative loan/reservation rows and must be written in the same
// transaction; the wishlist has no backing record.
const (
	MembershipBorrowed = "borrowed"
	MembershipReserved = "reserved"
	MembershipWishlist = "wishlist"
)

// UserBookMembership is one entry of a user's denormalized book lists
// (borrowed_book_ids / reserved_book_ids / wishlist_book_ids). Duplicates
// are forbidden by the composite unique index.
type UserBookMembership struct {
	ID      int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID  string    `json:"user_id" gorm:"type:uuid;index;not null;uniqueIndex:idx_membership_user_book_kind"`
	BookID  int64     `json:"book_id" gorm:"not null;uniqueIndex:idx_membership_user_book_kind"`
	Kind    string    `json:"kind" gorm:"size:16;not null;uniqueIndex:idx_membership_user_book_kind"`
	AddedAt time.Time `json:"added_at" gorm:"autoCreateTime"`

	Book *Book `json:"book,omitempty" gorm:"foreignKey:BookID"`
}

func (UserBookMembership) TableName() string {
	return "user_book_memberships"
}
