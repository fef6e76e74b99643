// Package scheduler runs the periodic EMI payment sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/loan-service/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper is the job the reminder runs
type Sweeper interface {
	SweepPayments(ctx context.Context) (service.SweepResult, error)
}

// Reminder marks overdue payments and sends EMI reminders on a cron schedule
type Reminder struct {
	cron    *cron.Cron
	sweeper Sweeper
	log     *logrus.Logger
	timeout time.Duration
}

// NewReminder registers the sweep under spec, a standard five-field cron
// expression or a descriptor such as @daily. Schedules are evaluated in UTC.
func NewReminder(spec string, sweeper Sweeper, log *logrus.Logger) (*Reminder, error) {
	r := &Reminder{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cron.PrintfLogger(log)), cron.SkipIfStillRunning(cron.PrintfLogger(log))),
		),
		sweeper: sweeper,
		log:     log,
		timeout: 10 * time.Minute,
	}
	if _, err := r.cron.AddFunc(spec, r.Run); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return r, nil
}

// Run performs one sweep
func (r *Reminder) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	res, err := r.sweeper.SweepPayments(ctx)
	if err != nil {
		r.log.Errorf("Payment sweep failed: %v", err)
		return
	}
	r.log.WithFields(logrus.Fields{
		"overdue":     res.Overdue,
		"reminded":    res.Reminded,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Payment sweep completed")
}

// Start begins running the schedule in the background
func (r *Reminder) Start() {
	r.cron.Start()
	r.log.Info("Payment reminder scheduler started")
}

// Stop halts the schedule and waits for a running sweep up to ctx's deadline
func (r *Reminder) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		r.log.Info("Payment reminder scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
