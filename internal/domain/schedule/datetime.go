package schedule

import "time"

// DateTime is a point in time with optional time-of-day precision.
// HasTime=false marks an all-day value: it must always be rendered as a
// bare date, never a timestamp. The instant still carries a timezone so
// all-day values order correctly against timed ones.
type DateTime struct {
	Time    time.Time
	HasTime bool
}

// NewDateTime returns a timed DateTime.
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t, HasTime: true}
}

// NewAllDay returns an all-day DateTime anchored at the given instant.
func NewAllDay(t time.Time) DateTime {
	return DateTime{Time: t, HasTime: false}
}

// Compare orders by instant only; HasTime never participates in ordering.
func (d DateTime) Compare(other DateTime) int {
	return d.Time.Compare(other.Time)
}

// Before reports whether d's instant is before other's.
func (d DateTime) Before(other DateTime) bool {
	return d.Time.Before(other.Time)
}

// Equal reports instant equality regardless of HasTime.
func (d DateTime) Equal(other DateTime) bool {
	return d.Time.Equal(other.Time)
}

// Zone returns the IANA zone name of the underlying instant.
func (d DateTime) Zone() string {
	return d.Time.Location().String()
}
