// Package schedule holds the canonical calendar event model: the
// normalization of raw source payloads into Schedule values and their
// translation into the target calendar's event shape.
package schedule

import (
	"net/url"
	"strings"
)

// Visibility controls who can see the event at the target.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Status distinguishes confirmed events from tentative ones.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusTentative Status = "tentative"
)

// Transparency controls whether the event blocks time. Banner events are
// transparent so they don't collide with real bookings.
type Transparency string

const (
	TransparencyOpaque      Transparency = "opaque"
	TransparencyTransparent Transparency = "transparent"
)

// Attendee is a person invited to the event.
type Attendee struct {
	ID          string
	DisplayName string
}

// Location is a facility booked for the event. Same shape as Attendee,
// different role.
type Location struct {
	ID          string
	DisplayName string
}

// Schedule is the canonical representation of one calendar item.
// It is constructed once per fetch by FromSourceEvent and never mutated.
// For a recurring item Start and End describe only the first occurrence;
// End is exclusive. Raw keeps the source payload so the cache can rebuild
// the Schedule without re-fetching.
type Schedule struct {
	ID           string
	Version      string
	Summary      string
	Description  string
	Locations    []Location
	Attendees    []Attendee
	Start        DateTime
	End          DateTime
	Visibility   Visibility
	Status       Status
	Transparency Transparency
	Recurrence   *Recurrence
	Raw          SourceEvent
}

// Compare orders schedules by start instant.
func Compare(left, right Schedule) int {
	return left.Start.Compare(right.Start)
}

// TargetDateTime is the target calendar's date-or-datetime shape. Exactly
// one of Date and DateTime is set.
type TargetDateTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// TargetSource is the deep-link back to the original source item.
type TargetSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// TargetEvent is the target calendar's event resource.
type TargetEvent struct {
	ID           string         `json:"id"`
	Summary      string         `json:"summary"`
	Description  string         `json:"description,omitempty"`
	Location     string         `json:"location,omitempty"`
	Start        TargetDateTime `json:"start"`
	End          TargetDateTime `json:"end"`
	Visibility   Visibility     `json:"visibility"`
	Status       Status         `json:"status"`
	Transparency Transparency   `json:"transparency"`
	Recurrence   []string       `json:"recurrence"`
	Source       TargetSource   `json:"source"`
}

// ToTargetEvent converts the schedule into the target calendar's event
// resource. It is total: every valid Schedule converts. eventPageURL is
// the configured source event page; the deep-link appends event=<id>.
func (s Schedule) ToTargetEvent(eventPageURL *url.URL) TargetEvent {
	deepLink := *eventPageURL
	deepLink.RawQuery = "event=" + url.QueryEscape(s.ID)

	ev := TargetEvent{
		ID:           s.ID,
		Summary:      s.Summary,
		Description:  s.Description,
		Start:        targetDateTime(s.Start),
		End:          targetDateTime(s.End),
		Visibility:   s.Visibility,
		Status:       s.Status,
		Transparency: s.Transparency,
		Recurrence:   []string{},
		Source:       TargetSource{Title: s.Summary, URL: deepLink.String()},
	}
	if s.Recurrence != nil {
		ev.Recurrence = s.Recurrence.Lines(s.Start)
	}
	if len(s.Locations) > 0 {
		names := make([]string, len(s.Locations))
		for i, loc := range s.Locations {
			names[i] = loc.DisplayName
		}
		ev.Location = strings.Join(names, ", ")
	}
	return ev
}

func targetDateTime(d DateTime) TargetDateTime {
	if d.HasTime {
		return TargetDateTime{
			DateTime: d.Time.UTC().Format("2006-01-02T15:04:05.000Z"),
			TimeZone: d.Zone(),
		}
	}
	return TargetDateTime{
		Date:     d.Time.Format("2006-01-02"),
		TimeZone: d.Zone(),
	}
}
