package repository

import "errors"

// ErrStore marks a cache I/O failure. Callers must treat it as fatal to
// the operation that triggered it; there is no silent data loss.
var ErrStore = errors.New("schedule store failure")
