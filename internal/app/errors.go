package syncer

import "errors"

// Sentinel outcomes of a sync cycle, matched with errors.Is.
var (
	// ErrConfiguration means the source event page URL is not set; the
	// cycle refuses to start before touching network or cache.
	ErrConfiguration = errors.New("source event page url not configured")

	// ErrSyncInProgress means a cycle is already running; the request is
	// rejected, never queued.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrCycleFailed means the cycle ran but did not fully succeed.
	ErrCycleFailed = errors.New("sync cycle failed")
)
