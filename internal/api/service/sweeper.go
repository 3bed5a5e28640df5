package service

import (
	"context"
	"log/slog"
	"time"
)

const sweepBatchSize = 100

// ReservationSweeper periodically releases expired reservations so they stop
// occupying reserved copies. It is optional: with a zero interval the system
// keeps expired holds until they are cancelled by hand, and they stay
// visible through the expired=true listing filter.
type ReservationSweeper struct {
	reservations ReservationService
	interval     time.Duration
	logger       *slog.Logger
}

func NewReservationSweeper(reservations ReservationService, interval time.Duration, logger *slog.Logger) *ReservationSweeper {
	return &ReservationSweeper{
		reservations: reservations,
		interval:     interval,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled. Call it in its own goroutine.
func (s *ReservationSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("reservation sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("reservation sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reservation sweeper stopped")
			return
		case <-ticker.C:
			released, err := s.reservations.SweepExpired(ctx, sweepBatchSize)
			if err != nil {
				s.logger.Error("reservation sweep failed", "released", released, "error", err)
				continue
			}
			if released > 0 {
				s.logger.Info("expired reservations released", "count", released)
			}
		}
	}
}
