package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yymzk/calbridge/pkg/logger"
)

// Scheduler runs a job on a fixed interval with a manual trigger. A
// manual run cancels the pending timer and re-arms it afterwards, so
// two runs never land back to back.
type Scheduler struct {
	cron     *cron.Cron
	interval time.Duration
	job      func(context.Context) error
	log      logger.Logger

	mu    sync.Mutex
	entry cron.EntryID
	armed bool
}

// SchedulerOption applies a configuration option to the Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets a custom logger.
func WithSchedulerLogger(l logger.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// NewScheduler creates a stopped scheduler that will run job every
// interval once started.
func NewScheduler(interval time.Duration, job func(context.Context) error, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		cron:     cron.New(),
		interval: interval,
		job:      job,
		log:      logger.Get().Named("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start arms the interval timer and begins running jobs.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed {
		return
	}
	s.entry = s.schedule()
	s.armed = true
	s.cron.Start()
	s.log.Info(context.Background(), "scheduler started",
		logger.String("interval", s.interval.String()))
}

// TriggerNow runs the job immediately on the calling goroutine and
// returns its outcome. The pending scheduled run is cancelled first and
// re-armed after the job returns, resetting the interval clock.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	s.mu.Lock()
	if s.armed {
		s.cron.Remove(s.entry)
	}
	s.mu.Unlock()

	err := s.job(ctx)

	s.mu.Lock()
	if s.armed {
		s.entry = s.schedule()
	}
	s.mu.Unlock()
	return err
}

// Stop cancels future runs and returns a context that is done once any
// in-flight scheduled job has finished.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	s.armed = false
	s.mu.Unlock()
	return s.cron.Stop()
}

func (s *Scheduler) schedule() cron.EntryID {
	return s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		if err := s.job(context.Background()); err != nil {
			s.log.Warn(context.Background(), "scheduled run failed", logger.Error(err))
		}
	}))
}
