package models

import "time"

type Author struct {
	ID        int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string     `json:"name" gorm:"not null;size:200"`
	Bio       *string    `json:"bio,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
}

func (Author) TableName() string {
	return "authors"
}
