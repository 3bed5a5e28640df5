package models

import "time"

// Fine is created at most once per loan (BorrowID unique), only when a
// return is overdue. is_paid flips false -> true exactly once.
type Fine struct {
	ID        int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	BorrowID  int64      `json:"borrow_id" gorm:"uniqueIndex;not null"`
	UserID    string     `json:"user_id" gorm:"type:uuid;index;not null"`
	Amount    float64    `json:"amount" gorm:"type:decimal(10,2);not null"`
	Reason    string     `json:"reason" gorm:"not null"`
	IsPaid    bool       `json:"is_paid" gorm:"not null;default:false"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (Fine) TableName() string {
	return "fines"
}
