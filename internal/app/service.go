// Package syncer runs the calendar bridge: it pulls events from the
// source calendar, reconciles them against the persistent cache, and
// replays the differences onto the target calendar one write at a time.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yymzk/calbridge/internal/adapters/repository"
	"github.com/yymzk/calbridge/internal/adapters/source"
	"github.com/yymzk/calbridge/internal/adapters/target"
	"github.com/yymzk/calbridge/internal/domain/schedule"
	"github.com/yymzk/calbridge/pkg/logger"
	"github.com/yymzk/calbridge/pkg/metrics"
)

// Config is the slice of application configuration the synchronizer
// needs. *config.Config satisfies it.
type Config interface {
	// EventPageURL is the source UI page used for deep-links, or nil
	// when not configured. A nil URL makes every cycle fail fast.
	EventPageURL() *url.URL
	// SyncPeriod is the width of the sync window starting at now.
	SyncPeriod() time.Duration
}

// Synchronizer mirrors a window of the source calendar onto one target
// calendar. At most one cycle runs at a time; concurrent calls are
// rejected, never queued.
type Synchronizer struct {
	source   source.Client
	target   target.Client
	store    repository.Store
	cfg      Config
	progress *Tracker
	log      logger.Logger

	running      atomic.Bool
	fetchRetries int
	now          func() time.Time
}

// Option applies a configuration option to the Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFetchRetries sets how many times the bulk source fetch is retried
// after the first failure.
func WithFetchRetries(n int) Option {
	return func(s *Synchronizer) {
		if n >= 0 {
			s.fetchRetries = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Synchronizer over the given adapters.
func New(src source.Client, tgt target.Client, store repository.Store, cfg Config, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		source:   src,
		target:   tgt,
		store:    store,
		cfg:      cfg,
		progress: NewTracker(),
		log:      logger.Get().Named("syncer"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Progress exposes the cycle state for subscribers and status surfaces.
func (s *Synchronizer) Progress() *Tracker { return s.progress }

// Sync runs one full cycle against calendarID. It returns
// ErrSyncInProgress when a cycle is already running, ErrConfiguration
// when the deep-link page URL is missing, ErrCycleFailed (with the
// cause wrapped) for any other failure, and nil on full success.
//
// The cycle never throws away partial work: once the target-write phase
// starts, a failed item is logged and counted while the remaining items
// still sync. Only cache failures and a malformed bulk payload abort
// the cycle outright.
func (s *Synchronizer) Sync(ctx context.Context, calendarID string) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer s.running.Store(false)

	pageURL := s.cfg.EventPageURL()
	if pageURL == nil {
		s.log.Error(ctx, "refusing to sync without an event page url")
		return ErrConfiguration
	}

	cycleID := uuid.NewString()
	log := s.log.Named(cycleID[:8])
	begun := s.now()
	defer func() { metrics.ObserveCycleDuration(s.now().Sub(begun)) }()

	start := begun
	end := start.Add(s.cfg.SyncPeriod())
	log.Info(ctx, "sync cycle started",
		logger.String("calendar", calendarID),
		logger.String("window_start", start.Format(time.RFC3339)),
		logger.String("window_end", end.Format(time.RFC3339)))

	// Snapshot the tracked window before fetching so the stale-id pass
	// works against pre-cycle cache state.
	tracked, err := s.store.FindInRange(ctx, schedule.NewAllDay(start), schedule.NewAllDay(end))
	if err != nil {
		return s.fail(ctx, log, fmt.Errorf("read tracked window: %w", err))
	}

	s.progress.startFetch()
	schedules, err := s.fetchWindow(ctx, log, start, end)
	if err != nil {
		return s.fail(ctx, log, err)
	}

	s.progress.startTarget(len(schedules))
	failed, err := s.removeStale(ctx, log, calendarID, pageURL, schedules, tracked)
	if err != nil {
		return s.fail(ctx, log, err)
	}

	total := len(schedules)
	for i, sched := range schedules {
		if err := ctx.Err(); err != nil {
			return s.fail(ctx, log, err)
		}
		if err := s.syncOne(ctx, calendarID, sched, pageURL); err != nil {
			if errors.Is(err, repository.ErrStore) {
				return s.fail(ctx, log, err)
			}
			failed++
			metrics.IncItem(metrics.ActionFail)
			log.Warn(ctx, "schedule sync failed",
				logger.String("id", sched.ID), logger.Error(err))
		}
		s.progress.setProgress(i+1, total)
	}

	if failed > 0 {
		s.progress.endCycle(ResultFailed, nil)
		metrics.IncCycle(metrics.ResultFailed)
		log.Warn(ctx, "sync cycle finished with failures",
			logger.Int("failed", failed), logger.Int("total", total))
		return fmt.Errorf("%w: %d of %d items", ErrCycleFailed, failed, total)
	}

	finished := s.now()
	s.progress.endCycle(ResultSuccess, &finished)
	metrics.IncCycle(metrics.ResultSuccess)
	metrics.SetLastSuccess(finished)
	log.Info(ctx, "sync cycle succeeded", logger.Int("total", total))
	return nil
}

// fail ends the cycle in the Failed state and wraps the cause.
func (s *Synchronizer) fail(ctx context.Context, log logger.Logger, cause error) error {
	s.progress.endCycle(ResultFailed, nil)
	metrics.IncCycle(metrics.ResultFailed)
	log.Warn(ctx, "sync cycle failed", logger.Error(cause))
	return fmt.Errorf("%w: %w", ErrCycleFailed, cause)
}

// fetchWindow pulls and converts every source event overlapping
// [start, end), retrying the bulk fetch on transient failures. A single
// malformed payload aborts the whole fetch: syncing a partial window
// would delete the missing items from the target.
func (s *Synchronizer) fetchWindow(ctx context.Context, log logger.Logger, start, end time.Time) ([]schedule.Schedule, error) {
	var (
		raws []schedule.SourceEvent
		err  error
	)
	for attempt := 0; attempt <= s.fetchRetries; attempt++ {
		if attempt > 0 {
			metrics.IncFetchRetry()
			log.Warn(ctx, "retrying source fetch",
				logger.Int("attempt", attempt), logger.Error(err))
		}
		raws, err = s.source.GetEvents(ctx, start, end, true)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch source window: %w", err)
	}

	schedules := make([]schedule.Schedule, 0, len(raws))
	for _, raw := range raws {
		sched, err := schedule.FromSourceEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("convert event %s: %w", raw.ID, err)
		}
		schedules = append(schedules, sched)
	}
	slices.SortStableFunc(schedules, schedule.Compare)
	return schedules, nil
}

// removeStale reconciles cached schedules that the window fetch no
// longer returned: each is re-fetched by id and either updated in place
// (it moved out of the window) or deleted from the target (it is gone
// at the source). Returns the number of items that failed; only cache
// errors are returned as err.
func (s *Synchronizer) removeStale(ctx context.Context, log logger.Logger, calendarID string, pageURL *url.URL, fetched, tracked []schedule.Schedule) (int, error) {
	inWindow := make(map[string]struct{}, len(fetched))
	for _, sched := range fetched {
		inWindow[sched.ID] = struct{}{}
	}

	failed := 0
	for _, cached := range tracked {
		if _, ok := inWindow[cached.ID]; ok {
			continue
		}
		raw, err := s.source.GetEventByID(ctx, cached.ID)
		if err != nil {
			failed++
			metrics.IncItem(metrics.ActionFail)
			log.Warn(ctx, "stale schedule refetch failed",
				logger.String("id", cached.ID), logger.Error(err))
			continue
		}

		if raw == nil {
			// Gone at the source. A NotFound from the target means the
			// event is already absent there, which is the desired end
			// state, so the cache entry is still dropped.
			if err := s.target.DeleteEvent(ctx, calendarID, cached.ID); err != nil {
				var apiErr *target.APIError
				if !errors.As(err, &apiErr) || apiErr.Reason != target.ReasonNotFound {
					failed++
					metrics.IncItem(metrics.ActionFail)
					log.Warn(ctx, "target delete failed",
						logger.String("id", cached.ID), logger.Error(err))
					continue
				}
			}
			if err := s.store.Remove(ctx, cached.ID); err != nil {
				return failed, fmt.Errorf("remove schedule %s: %w", cached.ID, err)
			}
			metrics.IncItem(metrics.ActionDelete)
			continue
		}

		sched, err := schedule.FromSourceEvent(*raw)
		if err != nil {
			failed++
			metrics.IncItem(metrics.ActionFail)
			log.Warn(ctx, "stale schedule malformed",
				logger.String("id", cached.ID), logger.Error(err))
			continue
		}
		if err := s.writeEvent(ctx, calendarID, sched, cached.Version, pageURL); err != nil {
			if errors.Is(err, repository.ErrStore) {
				return failed, err
			}
			failed++
			metrics.IncItem(metrics.ActionFail)
			log.Warn(ctx, "stale schedule update failed",
				logger.String("id", cached.ID), logger.Error(err))
		}
	}
	return failed, nil
}

// syncOne applies one fetched schedule to the target calendar and, on
// success, writes it through to the cache.
func (s *Synchronizer) syncOne(ctx context.Context, calendarID string, sched schedule.Schedule, pageURL *url.URL) error {
	cached, err := s.store.Get(ctx, sched.ID)
	if err != nil {
		return fmt.Errorf("get schedule %s: %w", sched.ID, err)
	}
	if cached == nil {
		return s.insertEvent(ctx, calendarID, sched, pageURL)
	}
	return s.writeEvent(ctx, calendarID, sched, cached.Version, pageURL)
}

// insertEvent inserts into the target, falling back to an update when
// the event already exists there from an earlier run with a lost cache.
func (s *Synchronizer) insertEvent(ctx context.Context, calendarID string, sched schedule.Schedule, pageURL *url.URL) error {
	ev := sched.ToTargetEvent(pageURL)
	action := metrics.ActionInsert
	err := s.target.InsertEvent(ctx, calendarID, ev)
	if err != nil {
		var apiErr *target.APIError
		if errors.As(err, &apiErr) && apiErr.Reason == target.ReasonAlreadyExists {
			action = metrics.ActionUpdate
			err = s.target.UpdateEvent(ctx, calendarID, ev)
		}
	}
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, sched); err != nil {
		return fmt.Errorf("cache schedule %s: %w", sched.ID, err)
	}
	metrics.IncItem(action)
	return nil
}

// writeEvent updates the target, falling back to an insert when the
// event disappeared from the target behind the cache's back.
func (s *Synchronizer) writeEvent(ctx context.Context, calendarID string, sched schedule.Schedule, cachedVersion string, pageURL *url.URL) error {
	if cachedVersion == sched.Version {
		metrics.IncItem(metrics.ActionNoop)
		return nil
	}
	ev := sched.ToTargetEvent(pageURL)
	action := metrics.ActionUpdate
	err := s.target.UpdateEvent(ctx, calendarID, ev)
	if err != nil {
		var apiErr *target.APIError
		if errors.As(err, &apiErr) && apiErr.Reason == target.ReasonNotFound {
			action = metrics.ActionInsert
			err = s.target.InsertEvent(ctx, calendarID, ev)
		}
	}
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, sched); err != nil {
		return fmt.Errorf("cache schedule %s: %w", sched.ID, err)
	}
	metrics.IncItem(action)
	return nil
}
