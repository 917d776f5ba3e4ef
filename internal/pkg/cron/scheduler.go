package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"
)

// Job represents a scheduled job
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs each registered job once at start and then on its interval.
// Overlapping runs of the same job are skipped.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []Job
	cron    *robfig.Cron
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{jobs: make([]Job, 0)}
}

// AddJob registers a job; jobs added after Start are not scheduled.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{Name: name, Interval: interval, Fn: fn})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Start schedules every job under a context derived from parent.
func (s *Scheduler) Start(parent context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.running = true

	logger := slogCronLogger{}
	s.cron = robfig.New(robfig.WithLogger(logger), robfig.WithChain(robfig.Recover(logger)))
	for _, job := range s.jobs {
		job := job
		wrapped := robfig.NewChain(robfig.SkipIfStillRunning(logger)).Then(robfig.FuncJob(func() {
			s.executeJob(ctx, job)
		}))
		s.cron.Schedule(robfig.Every(job.Interval), wrapped)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			wrapped.Run()
		}()
	}
	s.cron.Start()

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, c := s.cancel, s.cron
	s.mu.Unlock()

	slog.Info("Stopping cron scheduler...")
	cancel()
	<-c.Stop().Done()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) executeJob(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err := job.Fn(ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
}

// RunOnce runs all jobs once synchronously.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	s.mu.Unlock()

	for _, job := range jobs {
		s.executeJob(ctx, job)
	}
}

// slogCronLogger routes the cron library's own logging through slog.
type slogCronLogger struct{}

func (slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
