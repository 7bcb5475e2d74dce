package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/drivehub/service-booking/internal/application"
)

// sweepBatchSize caps how many overdue holds one sweep processes.
const sweepBatchSize = 200

// ExpirySweeper periodically cancels pending reservations whose payment
// hold window has run out, freeing their vehicles for other customers.
type ExpirySweeper struct {
	bookings *application.BookingService
	schedule string
	cron     *cron.Cron
	logger   *zap.Logger
}

// NewExpirySweeper creates a sweeper on the given cron schedule.
func NewExpirySweeper(bookings *application.BookingService, schedule string, logger *zap.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		bookings: bookings,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start registers the sweep and begins the cron loop. It returns immediately.
func (s *ExpirySweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.sweep(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("expiry sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *ExpirySweeper) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("expiry sweeper stopped")
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	now := time.Now().UTC()
	expired, err := s.bookings.ExpireOverdue(ctx, now, sweepBatchSize)
	if err != nil {
		s.logger.Error("expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.logger.Info("expired overdue reservations", zap.Int("count", expired))
	}
}
