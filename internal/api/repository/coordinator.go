package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrTxTimeout means a transaction exceeded its wait or execution budget, or
// kept colliding until the retry budget ran out. It is retryable from the
// caller's point of view.
var ErrTxTimeout = errors.New("transaction exceeded its time budget")

const (
	retryBaseDelay    = 10 * time.Millisecond
	retryJitterFactor = 0.3

	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// Budgets bounds one coordinated transaction: MaxWait limits lock
// acquisition (SET LOCAL lock_timeout), Timeout limits total execution, and
// MaxRetries caps serialization-collision retries.
type Budgets struct {
	MaxWait    time.Duration
	Timeout    time.Duration
	MaxRetries int
}

type gormCoordinator struct {
	db      *gorm.DB
	budgets Budgets
	logger  *slog.Logger
}

// NewCoordinator builds the serializable-transaction coordinator over the
// shared connection pool.
func NewCoordinator(db *gorm.DB, budgets Budgets, logger *slog.Logger) Coordinator {
	if budgets.MaxRetries < 1 {
		budgets.MaxRetries = 1
	}
	return &gormCoordinator{db: db, budgets: budgets, logger: logger}
}

// Execute runs fn inside a serializable transaction, retrying serialization
// collisions with exponential backoff and jitter. Retry schedule: 0ms, 10ms,
// 20ms, 40ms, ... All other errors fail fast and roll the transaction back.
func (c *gormCoordinator) Execute(ctx context.Context, fn func(uow UnitOfWork) error) error {
	var lastErr error

	for attempt := 0; attempt < c.budgets.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			jitter := time.Duration(rand.Float64() * float64(delay) * retryJitterFactor) //nolint:gosec // jitter only
			select {
			case <-time.After(delay + jitter):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrTxTimeout, ctx.Err())
			}
		}

		lastErr = c.runOnce(ctx, fn)
		if lastErr == nil {
			return nil
		}

		if isWaitTimeout(lastErr) {
			return fmt.Errorf("%w: %v", ErrTxTimeout, lastErr)
		}
		if !isSerializationConflict(lastErr) {
			return lastErr
		}

		c.logger.Warn("serializable transaction collided, retrying",
			"attempt", attempt+1, "max_attempts", c.budgets.MaxRetries, "error", lastErr)
	}

	return fmt.Errorf("%w: retry budget exhausted: %v", ErrTxTimeout, lastErr)
}

func (c *gormCoordinator) runOnce(ctx context.Context, fn func(uow UnitOfWork) error) error {
	txCtx, cancel := context.WithTimeout(ctx, c.budgets.Timeout)
	defer cancel()

	return c.db.WithContext(txCtx).Transaction(func(tx *gorm.DB) error {
		// Wait budget: bound lock acquisition for the whole transaction.
		lockTimeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", c.budgets.MaxWait.Milliseconds())
		if err := tx.Exec(lockTimeout).Error; err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
		return fn(newGormUnitOfWork(tx))
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

// isSerializationConflict matches errors worth retrying: two serializable
// transactions touched the same rows and one of them lost.
func isSerializationConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// isWaitTimeout matches budget exhaustion: lock wait or execution deadline.
func isWaitTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgLockNotAvailable
	}
	return false
}
