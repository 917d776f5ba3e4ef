package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PeriodOpener creates the DRAFT main payroll run of a period when none exists.
type PeriodOpener interface {
	EnsureMainRun(ctx context.Context, year, month int) (runID int64, created bool, err error)
}

type PayrollJobs struct {
	opener   PeriodOpener
	interval time.Duration
	now      func() time.Time
}

func NewPayrollJobs(opener PeriodOpener, interval time.Duration) *PayrollJobs {
	return &PayrollJobs{opener: opener, interval: interval, now: time.Now}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("open-payroll-period", j.interval, j.OpenCurrentPeriod)
}

// OpenCurrentPeriod ensures the current month has a DRAFT main run.
func (j *PayrollJobs) OpenCurrentPeriod(ctx context.Context) error {
	now := j.now()
	runID, created, err := j.opener.EnsureMainRun(ctx, now.Year(), int(now.Month()))
	if err != nil {
		return fmt.Errorf("failed to open payroll period %d-%02d: %w", now.Year(), now.Month(), err)
	}
	if created {
		slog.InfoContext(ctx, "Cron: opened payroll period", "payroll_run_id", runID, "year", now.Year(), "month", int(now.Month()))
	}
	return nil
}
