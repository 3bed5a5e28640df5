package repository

import "gorm.io/gorm"

// gormUnitOfWork binds every repository to one open transaction.
type gormUnitOfWork struct {
	tx *gorm.DB
}

func newGormUnitOfWork(tx *gorm.DB) *gormUnitOfWork {
	return &gormUnitOfWork{tx: tx}
}

func (u *gormUnitOfWork) Users() UserRepository               { return NewUserRepository(u.tx) }
func (u *gormUnitOfWork) Books() BookRepository               { return NewBookRepository(u.tx) }
func (u *gormUnitOfWork) Policies() PolicyRepository          { return NewPolicyRepository(u.tx) }
func (u *gormUnitOfWork) Loans() LoanRepository               { return NewLoanRepository(u.tx) }
func (u *gormUnitOfWork) Reservations() ReservationRepository { return NewReservationRepository(u.tx) }
func (u *gormUnitOfWork) Fines() FineRepository               { return NewFineRepository(u.tx) }
func (u *gormUnitOfWork) Memberships() MembershipRepository   { return NewMembershipRepository(u.tx) }
func (u *gormUnitOfWork) Ledger() CopyLedger                  { return NewCopyLedger(u.tx) }
