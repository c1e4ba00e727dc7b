package target

import "fmt"

// Reason classifies a target calendar API failure.
type Reason string

const (
	ReasonNotFound      Reason = "notFound"
	ReasonAlreadyExists Reason = "alreadyExists"
	ReasonUnknown       Reason = "unknown"
)

// APIError is a failed target calendar call. NotFound and AlreadyExists
// are recoverable through the synchronizer's insert/update swap; Unknown
// counts as a per-item failure.
type APIError struct {
	Reason     Reason
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("target calendar api: %s (status %d): %s", e.Reason, e.StatusCode, e.Message)
}
