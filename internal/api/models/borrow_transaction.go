package models

import "time"

// Loan statuses. "overdue" is declared for completeness but loans terminate
// as "returned"; overdue-ness is computed transiently for fine creation.
const (
	LoanStatusRequested = "requested"
	LoanStatusBorrowed  = "borrowed"
	LoanStatusReturned  = "returned"
	LoanStatusOverdue   = "overdue"
)

// BorrowTransaction is one checkout record (a loan). Never deleted once it
// progresses past "requested"; it is the historical record of circulation.
type BorrowTransaction struct {
	ID         int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     string     `json:"user_id" gorm:"type:uuid;index;not null"`
	BookID     int64      `json:"book_id" gorm:"index;not null"`
	BorrowDate time.Time  `json:"borrow_date" gorm:"not null"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     string     `json:"status" gorm:"index;not null;default:'requested'"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (BorrowTransaction) TableName() string {
	return "borrow_transactions"
}

// Open reports whether the loan still holds a copy (not yet returned).
func (t *BorrowTransaction) Open() bool {
	return t.Status != LoanStatusReturned
}
