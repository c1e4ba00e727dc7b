package source

import "errors"

// ErrFetch marks a source calendar fetch failure. All fetch failures are
// assumed transient and retryable; the synchronizer decides how often.
var ErrFetch = errors.New("source fetch failed")
