package schedule

import (
	"fmt"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// FromSourceEvent normalizes one raw source payload into a Schedule.
// It is the single validating step between the loosely-shaped source
// contract and the canonical model; anything it cannot interpret fails
// with ErrMalformedEvent.
func FromSourceEvent(ev SourceEvent) (Schedule, error) {
	if ev.ID == "" {
		return Schedule{}, fmt.Errorf("event without id: %w", ErrMalformedEvent)
	}

	loc, err := locationOf(ev.Timezone)
	if err != nil {
		return Schedule{}, fmt.Errorf("event %s: unknown timezone %q: %w", ev.ID, ev.Timezone, ErrMalformedEvent)
	}
	endLoc := loc
	if ev.EndTimezone != "" {
		endLoc, err = locationOf(ev.EndTimezone)
		if err != nil {
			return Schedule{}, fmt.Errorf("event %s: unknown end timezone %q: %w", ev.ID, ev.EndTimezone, ErrMalformedEvent)
		}
	}

	attendees, locations, err := classifyMembers(ev.ID, ev.Members)
	if err != nil {
		return Schedule{}, err
	}

	visibility, err := visibilityFromPublicType(ev.ID, ev.PublicType)
	if err != nil {
		return Schedule{}, err
	}
	status, transparency, err := statusFromEventType(ev.ID, ev.EventType)
	if err != nil {
		return Schedule{}, err
	}

	var (
		start, end DateTime
		recurrence *Recurrence
	)
	switch {
	case ev.RepeatInfo != nil:
		recurrence, err = recurrenceFromRepeatInfo(ev.ID, ev.RepeatInfo, loc)
		if err != nil {
			return Schedule{}, err
		}
		start, end, err = firstOccurrence(ev.ID, ev.RepeatInfo.Condition, loc)
		if err != nil {
			return Schedule{}, err
		}
	case ev.When != nil:
		start, end, err = explicitPeriod(ev.ID, ev.When, loc, endLoc)
		if err != nil {
			return Schedule{}, err
		}
	default:
		return Schedule{}, fmt.Errorf("event %s: neither repeat_info nor when present: %w", ev.ID, ErrMalformedEvent)
	}

	return Schedule{
		ID:           ev.ID,
		Version:      ev.Version,
		Summary:      ev.Detail,
		Description:  ev.Description,
		Locations:    locations,
		Attendees:    attendees,
		Start:        start,
		End:          end,
		Visibility:   visibility,
		Status:       status,
		Transparency: transparency,
		Recurrence:   recurrence,
		Raw:          ev,
	}, nil
}

func locationOf(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// classifyMembers splits the member list into attendees (users) and
// locations (facilities). Organizations are dropped; a member carrying
// none of the three references is malformed.
func classifyMembers(id string, members []SourceMember) ([]Attendee, []Location, error) {
	attendees := []Attendee{}
	locations := []Location{}
	for _, m := range members {
		switch {
		case m.User != nil:
			attendees = append(attendees, Attendee{ID: m.User.ID, DisplayName: m.User.Name})
		case m.Facility != nil:
			locations = append(locations, Location{ID: m.Facility.ID, DisplayName: m.Facility.Name})
		case m.Organization != nil:
			// Organizations have no target calendar representation.
		default:
			return nil, nil, fmt.Errorf("event %s: member with no user, facility or organization: %w", id, ErrMalformedEvent)
		}
	}
	return attendees, locations, nil
}

func visibilityFromPublicType(id, publicType string) (Visibility, error) {
	switch publicType {
	case "", "public":
		return VisibilityPublic, nil
	case "private", "qualified":
		return VisibilityPrivate, nil
	}
	return "", fmt.Errorf("event %s: unknown public_type %q: %w", id, publicType, ErrMalformedEvent)
}

func statusFromEventType(id, eventType string) (Status, Transparency, error) {
	switch eventType {
	case "normal", "repeat":
		return StatusConfirmed, TransparencyOpaque, nil
	case "banner":
		return StatusConfirmed, TransparencyTransparent, nil
	case "temporary":
		return StatusTentative, TransparencyTransparent, nil
	}
	return "", "", fmt.Errorf("event %s: unknown event_type %q: %w", id, eventType, ErrMalformedEvent)
}

// recurrenceFromRepeatInfo maps the source repeat condition onto the
// recurrence union. The condition end date is the rule's until bound and
// is mandatory.
func recurrenceFromRepeatInfo(id string, ri *RepeatInfo, loc *time.Location) (*Recurrence, error) {
	cond := ri.Condition
	if cond.EndDate == "" {
		return nil, fmt.Errorf("event %s: recurrence without end date: %w", id, ErrMalformedEvent)
	}
	var until time.Time
	var err error
	if cond.EndTime != "" {
		until, err = time.ParseInLocation(dateTimeLayout, cond.EndDate+" "+cond.EndTime, loc)
	} else {
		until, err = time.ParseInLocation(dateLayout, cond.EndDate, loc)
	}
	if err != nil {
		return nil, fmt.Errorf("event %s: bad recurrence end %q %q: %w", id, cond.EndDate, cond.EndTime, ErrMalformedEvent)
	}

	rec := &Recurrence{Until: until}
	switch cond.Type {
	case "day":
		rec.Freq = FreqDaily
	case "weekday":
		rec.Freq = FreqWeekly
		rec.ByWeekday = BusinessWeekdays
	case "week":
		wd, err := requiredWeekday(id, cond.Week)
		if err != nil {
			return nil, err
		}
		rec.Freq = FreqWeekly
		rec.ByWeekday = []Weekday{wd}
	case "1stweek", "2ndweek", "3rdweek", "4thweek", "lastweek":
		wd, err := requiredWeekday(id, cond.Week)
		if err != nil {
			return nil, err
		}
		rec.Freq = FreqMonthly
		rec.ByOrdinal = &OrdinalWeekday{Ordinal: ordinalOf(cond.Type), Weekday: wd}
	case "month":
		if cond.Day == nil {
			return nil, fmt.Errorf("event %s: monthly recurrence without day: %w", id, ErrMalformedEvent)
		}
		rec.Freq = FreqMonthly
		rec.ByMonthDay = *cond.Day
	default:
		return nil, fmt.Errorf("event %s: unknown recurrence type %q: %w", id, cond.Type, ErrMalformedEvent)
	}

	for _, ex := range ri.Exclusions {
		t, err := parseInstant(ex.Start, loc)
		if err != nil {
			return nil, fmt.Errorf("event %s: bad exclusion date %q: %w", id, ex.Start, ErrMalformedEvent)
		}
		rec.Exclusions = append(rec.Exclusions, t)
	}
	return rec, nil
}

func requiredWeekday(id string, week *int) (Weekday, error) {
	if week == nil {
		return "", fmt.Errorf("event %s: recurrence without weekday: %w", id, ErrMalformedEvent)
	}
	wd, ok := weekdayFromCode(*week)
	if !ok {
		return "", fmt.Errorf("event %s: weekday %d out of range: %w", id, *week, ErrMalformedEvent)
	}
	return wd, nil
}

func ordinalOf(condType string) int {
	switch condType {
	case "1stweek":
		return 1
	case "2ndweek":
		return 2
	case "3rdweek":
		return 3
	case "4thweek":
		return 4
	default: // lastweek
		return 5
	}
}

// firstOccurrence derives start and end of a recurring event's first
// instance from its condition. Without a start time the occurrence is
// all-day and both bounds collapse to the start date.
func firstOccurrence(id string, cond RepeatCondition, loc *time.Location) (DateTime, DateTime, error) {
	if cond.StartDate == "" {
		return DateTime{}, DateTime{}, fmt.Errorf("event %s: recurrence without start date: %w", id, ErrMalformedEvent)
	}
	if cond.StartTime == "" {
		day, err := time.ParseInLocation(dateLayout, cond.StartDate, loc)
		if err != nil {
			return DateTime{}, DateTime{}, fmt.Errorf("event %s: bad recurrence start date %q: %w", id, cond.StartDate, ErrMalformedEvent)
		}
		return NewAllDay(day), NewAllDay(day), nil
	}
	start, err := time.ParseInLocation(dateTimeLayout, cond.StartDate+" "+cond.StartTime, loc)
	if err != nil {
		return DateTime{}, DateTime{}, fmt.Errorf("event %s: bad recurrence start %q %q: %w", id, cond.StartDate, cond.StartTime, ErrMalformedEvent)
	}
	if cond.EndTime == "" {
		day, err := time.ParseInLocation(dateLayout, cond.StartDate, loc)
		if err != nil {
			return DateTime{}, DateTime{}, fmt.Errorf("event %s: bad recurrence start date %q: %w", id, cond.StartDate, ErrMalformedEvent)
		}
		return NewDateTime(start), NewAllDay(day), nil
	}
	end, err := time.ParseInLocation(dateTimeLayout, cond.StartDate+" "+cond.EndTime, loc)
	if err != nil {
		return DateTime{}, DateTime{}, fmt.Errorf("event %s: bad recurrence end time %q: %w", id, cond.EndTime, ErrMalformedEvent)
	}
	return NewDateTime(start), NewDateTime(end), nil
}

// explicitPeriod reads the schedule of a non-recurring event. The when
// block must carry exactly one date (all-day) or one datetime (timed)
// entry; the end may live in a different timezone than the start.
func explicitPeriod(id string, when *SourceWhen, loc, endLoc *time.Location) (DateTime, DateTime, error) {
	switch {
	case len(when.Dates) == 1 && len(when.Datetimes) == 0:
		p := when.Dates[0]
		if p.End == "" {
			return DateTime{}, DateTime{}, fmt.Errorf("event %s: date period without end: %w", id, ErrMalformedEvent)
		}
		start, err := time.ParseInLocation(dateLayout, p.Start, loc)
		if err != nil {
			return DateTime{}, DateTime{}, fmt.Errorf("event %s: bad date %q: %w", id, p.Start, ErrMalformedEvent)
		}
		end, err := time.ParseInLocation(dateLayout, p.End, endLoc)
		if err != nil {
			return DateTime{}, DateTime{}, fmt.Errorf("event %s: bad date %q: %w", id, p.End, ErrMalformedEvent)
		}
		return NewAllDay(start), NewAllDay(end), nil
	case len(when.Datetimes) == 1 && len(when.Dates) == 0:
		p := when.Datetimes[0]
		if p.End == "" {
			return DateTime{}, DateTime{}, fmt.Errorf("event %s: datetime period without end: %w", id, ErrMalformedEvent)
		}
		start, err := parseInstant(p.Start, loc)
		if err != nil {
			return DateTime{}, DateTime{}, fmt.Errorf("event %s: bad datetime %q: %w", id, p.Start, ErrMalformedEvent)
		}
		end, err := parseInstant(p.End, endLoc)
		if err != nil {
			return DateTime{}, DateTime{}, fmt.Errorf("event %s: bad datetime %q: %w", id, p.End, ErrMalformedEvent)
		}
		return NewDateTime(start), NewDateTime(end), nil
	case len(when.Dates)+len(when.Datetimes) > 1:
		return DateTime{}, DateTime{}, fmt.Errorf("event %s: more than one date or datetime period: %w", id, ErrMalformedEvent)
	}
	return DateTime{}, DateTime{}, fmt.Errorf("event %s: when block without date or datetime: %w", id, ErrMalformedEvent)
}

// parseInstant accepts an RFC 3339 timestamp (converted into loc) or a
// zone-less local timestamp interpreted in loc.
func parseInstant(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation(dateTimeLayout, s, loc)
}
