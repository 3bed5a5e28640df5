package models

import "time"

type Review struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"type:uuid;index;not null;uniqueIndex:idx_review_user_book"`
	BookID    int64     `json:"book_id" gorm:"index;not null;uniqueIndex:idx_review_user_book"`
	Rating    int       `json:"rating" gorm:"not null"` // 1..5
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Review) TableName() string {
	return "reviews"
}
