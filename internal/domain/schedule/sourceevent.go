package schedule

// SourceEvent is the typed contract for one raw groupware event as
// delivered by the source calendar client. Attribute presence varies by
// event kind: a recurring event carries RepeatInfo, a one-off event
// carries When with either a date (all-day) or datetime block. Only
// FromSourceEvent is allowed to interpret this shape; the rest of the
// system works with Schedule.
type SourceEvent struct {
	ID          string         `json:"id"`
	Version     string         `json:"version"`
	EventType   string         `json:"event_type"`
	PublicType  string         `json:"public_type,omitempty"`
	Detail      string         `json:"detail,omitempty"`
	Description string         `json:"description,omitempty"`
	Timezone    string         `json:"timezone"`
	EndTimezone string         `json:"end_timezone,omitempty"`
	Members     []SourceMember `json:"members,omitempty"`
	When        *SourceWhen    `json:"when,omitempty"`
	RepeatInfo  *RepeatInfo    `json:"repeat_info,omitempty"`
}

// SourceMember is one entry of the event's member list. Exactly one of
// the three references is expected to be set.
type SourceMember struct {
	User         *MemberRef `json:"user,omitempty"`
	Facility     *MemberRef `json:"facility,omitempty"`
	Organization *MemberRef `json:"organization,omitempty"`
}

// MemberRef identifies a user, facility or organization.
type MemberRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SourceWhen holds the explicit schedule of a non-recurring event.
type SourceWhen struct {
	Dates     []SourcePeriod `json:"dates,omitempty"`
	Datetimes []SourcePeriod `json:"datetimes,omitempty"`
}

// SourcePeriod is a start/end pair; the format depends on the enclosing
// block (bare date for Dates, RFC 3339 for Datetimes and exclusions).
type SourcePeriod struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// RepeatInfo carries the recurrence condition of a repeating event and
// the instances excluded from it.
type RepeatInfo struct {
	Condition  RepeatCondition `json:"condition"`
	Exclusions []SourcePeriod  `json:"exclusive_datetimes,omitempty"`
}

// RepeatCondition describes the repetition shape. Week is the numeric
// weekday (0=Sunday) required by the week/Nthweek types; Day is the day
// of month required by the month type. Both are pointers because zero is
// a meaningful weekday.
type RepeatCondition struct {
	Type      string `json:"type"`
	Day       *int   `json:"day,omitempty"`
	Week      *int   `json:"week,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}
