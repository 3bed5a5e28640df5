package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"libraryhub/internal/api/models"
)

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *models.BorrowTransaction) error {
	if err := r.db.WithContext(ctx).Create(loan).Error; err != nil {
		return fmt.Errorf("create borrow transaction: %w", err)
	}
	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id int64) (*models.BorrowTransaction, error) {
	var loan models.BorrowTransaction
	if err := r.db.WithContext(ctx).First(&loan, id).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *models.BorrowTransaction) error {
	if err := r.db.WithContext(ctx).Save(loan).Error; err != nil {
		return fmt.Errorf("update borrow transaction: %w", err)
	}
	return nil
}

func (r *loanRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.BorrowTransaction{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete borrow transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *loanRepository) HasOpenLoan(ctx context.Context, userID string, bookID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BorrowTransaction{}).
		Where("user_id = ? AND book_id = ? AND status <> ?", userID, bookID, models.LoanStatusReturned).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *loanRepository) CountOpenByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BorrowTransaction{}).
		Where("user_id = ? AND status <> ?", userID, models.LoanStatusReturned).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *loanRepository) List(ctx context.Context, params ListLoansParams) ([]models.BorrowTransaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.BorrowTransaction{})

	if params.UserID != "" {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.BookID != nil {
		query = query.Where("book_id = ?", *params.BookID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count borrow transactions: %w", err)
	}

	var loans []models.BorrowTransaction
	if err := query.
		Order("borrow_date DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&loans).Error; err != nil {
		return nil, 0, fmt.Errorf("list borrow transactions: %w", err)
	}

	return loans, total, nil
}
