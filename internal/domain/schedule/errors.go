package schedule

import "errors"

// ErrMalformedEvent marks a source payload the model cannot normalize:
// missing required date info, conflicting date blocks, or a recurrence
// condition lacking a required field. Callers match it with errors.Is.
var ErrMalformedEvent = errors.New("malformed source event")
