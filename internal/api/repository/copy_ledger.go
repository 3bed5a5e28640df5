package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"libraryhub/internal/api/models"
)

// ErrInvariantViolation means a counter mutation would break
// available + reserved <= total or drive a counter negative. Under correct
// use this never surfaces to a caller; it indicates a pairing bug in a
// mutation path and aborts the enclosing transaction.
var ErrInvariantViolation = errors.New("copy counter invariant violation")

// CopyLedger is the only place that mutates a book's copy counters. Every
// operation re-reads the current counters inside the active transaction and
// validates the post-condition before writing. Counters are authoritative
// fields updated incrementally, never recomputed by scanning loans or
// reservations.
type CopyLedger interface {
	DecrementAvailable(ctx context.Context, bookID int64) error
	IncrementAvailable(ctx context.Context, bookID int64) error
	DecrementReserved(ctx context.Context, bookID int64) error
	IncrementReserved(ctx context.Context, bookID int64) error
	// SetTotalCopies resizes the total while preserving outstanding
	// commitments (borrowed and reserved copies); the available pool absorbs
	// the difference.
	SetTotalCopies(ctx context.Context, bookID int64, total int) error
}

type copyLedger struct {
	tx *gorm.DB // the active transaction, never a bare connection
}

// NewCopyLedger binds the ledger to an active transaction handle.
func NewCopyLedger(tx *gorm.DB) CopyLedger {
	return &copyLedger{tx: tx}
}

func (l *copyLedger) DecrementAvailable(ctx context.Context, bookID int64) error {
	return l.apply(ctx, bookID, -1, 0)
}

func (l *copyLedger) IncrementAvailable(ctx context.Context, bookID int64) error {
	return l.apply(ctx, bookID, +1, 0)
}

func (l *copyLedger) DecrementReserved(ctx context.Context, bookID int64) error {
	return l.apply(ctx, bookID, 0, -1)
}

func (l *copyLedger) IncrementReserved(ctx context.Context, bookID int64) error {
	return l.apply(ctx, bookID, 0, +1)
}

func (l *copyLedger) SetTotalCopies(ctx context.Context, bookID int64, total int) error {
	var book models.Book
	if err := l.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, bookID).Error; err != nil {
		return fmt.Errorf("load book %d for counter update: %w", bookID, err)
	}

	// commitments = borrowed + reserved copies currently out of the pool
	committed := book.TotalCopies - book.AvailableCopies
	book.TotalCopies = total
	book.AvailableCopies = total - committed

	if !book.CountersValid() {
		return fmt.Errorf("%w: book %d cannot shrink to total=%d below %d committed copies",
			ErrInvariantViolation, bookID, total, committed)
	}

	if err := l.tx.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", bookID).
		Updates(map[string]any{
			"total_copies":     book.TotalCopies,
			"available_copies": book.AvailableCopies,
		}).Error; err != nil {
		return fmt.Errorf("update counters for book %d: %w", bookID, err)
	}
	return nil
}

func (l *copyLedger) apply(ctx context.Context, bookID int64, deltaAvailable, deltaReserved int) error {
	var book models.Book
	if err := l.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, bookID).Error; err != nil {
		return fmt.Errorf("load book %d for counter update: %w", bookID, err)
	}

	book.AvailableCopies += deltaAvailable
	book.ReservedCopies += deltaReserved

	if !book.CountersValid() {
		return fmt.Errorf("%w: book %d would reach available=%d reserved=%d total=%d",
			ErrInvariantViolation, bookID, book.AvailableCopies, book.ReservedCopies, book.TotalCopies)
	}

	if err := l.tx.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", bookID).
		Updates(map[string]any{
			"available_copies": book.AvailableCopies,
			"reserved_copies":  book.ReservedCopies,
		}).Error; err != nil {
		return fmt.Errorf("update counters for book %d: %w", bookID, err)
	}
	return nil
}
