package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is the base repetition unit of a recurrence rule.
type Frequency string

const (
	FreqDaily   Frequency = "DAILY"
	FreqWeekly  Frequency = "WEEKLY"
	FreqMonthly Frequency = "MONTHLY"
)

// Weekday is the two-letter RFC 5545 weekday code.
type Weekday string

const (
	Sunday    Weekday = "SU"
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
)

// BusinessWeekdays is the expansion of the source's "weekday" shorthand.
var BusinessWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// OrdinalWeekday selects the nth weekday of a month. Ordinal runs 1..4;
// 5 means the last week of the month.
type OrdinalWeekday struct {
	Ordinal int
	Weekday Weekday
}

// Recurrence describes how an event repeats. Exactly one of ByOrdinal and
// ByMonthDay may be set, and only for FreqMonthly; ByWeekday applies only
// to FreqWeekly. Zero values mean "absent" for Count, Interval, Until and
// ByMonthDay.
type Recurrence struct {
	Freq       Frequency
	Until      time.Time
	Count      int
	Interval   int
	ByWeekday  []Weekday
	ByOrdinal  *OrdinalWeekday
	ByMonthDay int
	Exclusions []time.Time
}

// Lines renders the rule as target calendar recurrence lines: one RRULE
// followed by one EXDATE line per exclusion date. The field order inside
// the RRULE is fixed: FREQ, COUNT or UNTIL, INTERVAL, BYDAY.
//
// Two deviations from RFC 5545 are kept on purpose because every event
// already stored at the target was created with them, and re-encoding
// would make all recurring events diff as modified:
//   - a monthly rule with a bare month day emits BYDAY=<n> instead of
//     BYMONTHDAY=<n>
//   - UNTIL is a bare local date, not a UTC timestamp
func (r *Recurrence) Lines(start DateTime) []string {
	parts := []string{fmt.Sprintf("RRULE:FREQ=%s", r.Freq)}
	if r.Count > 0 {
		parts = append(parts, fmt.Sprintf("COUNT=%d", r.Count))
	} else if !r.Until.IsZero() {
		parts = append(parts, fmt.Sprintf("UNTIL=%s", r.Until.Format("20060102")))
	}
	if r.Interval > 0 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", r.Interval))
	}
	switch r.Freq {
	case FreqWeekly:
		if len(r.ByWeekday) > 0 {
			days := make([]string, len(r.ByWeekday))
			for i, d := range r.ByWeekday {
				days[i] = string(d)
			}
			parts = append(parts, "BYDAY="+strings.Join(days, ","))
		}
	case FreqMonthly:
		if r.ByOrdinal != nil {
			parts = append(parts, fmt.Sprintf("BYDAY=%d%s", r.ByOrdinal.Ordinal, r.ByOrdinal.Weekday))
		} else if r.ByMonthDay > 0 {
			parts = append(parts, fmt.Sprintf("BYDAY=%d", r.ByMonthDay))
		}
	}

	lines := []string{strings.Join(parts, ";")}
	for _, ex := range r.Exclusions {
		// A timed event suppresses the instance starting at the event's
		// time-of-day on the excluded date; an all-day event suppresses
		// the exclusion instant itself.
		tod := ex
		if start.HasTime {
			tod = start.Time
		}
		lines = append(lines, fmt.Sprintf("EXDATE;TZID=%s;VALUE=DATE-TIME:%sT%s",
			ex.Location(), ex.Format("20060102"), tod.Format("150405")))
	}
	return lines
}

// weekdayFromCode maps the source's numeric weekday (0=Sunday) to its
// two-letter code.
func weekdayFromCode(day int) (Weekday, bool) {
	switch day {
	case 0:
		return Sunday, true
	case 1:
		return Monday, true
	case 2:
		return Tuesday, true
	case 3:
		return Wednesday, true
	case 4:
		return Thursday, true
	case 5:
		return Friday, true
	case 6:
		return Saturday, true
	}
	return "", false
}
